//go:generate go run go.uber.org/mock/mockgen -source=secret.go -destination=../mocks/mock_secret_repository.go -package=mocks
package repositories

import (
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

// secretKey is the fixed key of the AccessSecret singleton. At most one
// value ever exists under it for the lifetime of the datastore.
const secretKey = "config:chat_password"

type ISecretRepository interface {
	InstallIfAbsent(hash string) (current string, installed bool, err error)
	Get() (hash string, exists bool, err error)
}

type SecretRepository struct {
	// The mutex serializes the check-then-set so two concurrent first
	// logins cannot both install different secrets.
	mu sync.Mutex
	db *badger.DB
}

func NewSecretRepository(db *badger.DB) *SecretRepository {
	return &SecretRepository{db: db}
}

// InstallIfAbsent stores hash when no secret exists yet. It returns the
// hash that is authoritative afterwards: the caller's own hash when it won
// the installation, or the previously installed one to verify against.
func (s *SecretRepository) InstallIfAbsent(hash string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var current string
	installed := false
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(secretKey))
		switch {
		case err == nil:
			return item.Value(func(val []byte) error {
				current = string(val)
				return nil
			})
		case stderrors.Is(err, badger.ErrKeyNotFound):
			installed = true
			current = hash
			return txn.Set([]byte(secretKey), []byte(hash))
		default:
			return err
		}
	})
	if err != nil {
		return "", false, fmt.Errorf("install chat password: %w", err)
	}
	return current, installed, nil
}

// Get reports the installed secret hash, if any.
func (s *SecretRepository) Get() (string, bool, error) {
	var current string
	exists := false
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(secretKey))
		if stderrors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		exists = true
		return item.Value(func(val []byte) error {
			current = string(val)
			return nil
		})
	})
	if err != nil {
		return "", false, fmt.Errorf("read chat password: %w", err)
	}
	return current, exists, nil
}
