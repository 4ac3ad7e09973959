// Package storage keeps uploaded files on local disk, keyed by filename.
package storage

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// allowedExtensions mirrors the upload allowlist of the chat room.
var allowedExtensions = map[string]struct{}{
	".txt": {}, ".pdf": {}, ".png": {}, ".jpg": {},
	".jpeg": {}, ".gif": {}, ".zip": {}, ".rar": {},
}

type UploadStore struct {
	dir string
	log *slog.Logger
}

func NewUploadStore(dir string, log *slog.Logger) (*UploadStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &UploadStore{dir: dir, log: log}, nil
}

// Save stores the blob under its client-provided name and returns the key
// it is retrievable by. The name is reduced to its base so a crafted path
// cannot escape the upload directory.
func (u *UploadStore) Save(name string, r io.Reader) (string, error) {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("no file selected")
	}
	ext := strings.ToLower(filepath.Ext(name))
	if _, ok := allowedExtensions[ext]; !ok {
		return "", fmt.Errorf("file type not allowed: %s", ext)
	}

	dst, err := os.Create(filepath.Join(u.dir, name))
	if err != nil {
		return "", fmt.Errorf("save file: %w", err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, r); err != nil {
		return "", fmt.Errorf("save file: %w", err)
	}

	// Sniff the actual content type for the audit log; the allowlist
	// above only sees the extension.
	if mime, err := mimetype.DetectFile(filepath.Join(u.dir, name)); err == nil {
		u.log.Info("File stored", "name", name, "mime", mime.String())
	}
	return name, nil
}

// Path resolves a stored filename to its on-disk location, refusing names
// that resolve outside the upload directory.
func (u *UploadStore) Path(name string) (string, error) {
	name = filepath.Base(name)
	path := filepath.Join(u.dir, name)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("file not found: %s", name)
	}
	return path, nil
}
