//go:generate go run go.uber.org/mock/mockgen -source=gate_service.go -destination=../mocks/mock_gate_service.go -package=mocks
package services

import (
	"fmt"
	"log/slog"
	"strings"

	"lanchat/auth"
	"lanchat/errors"
	"lanchat/repositories"
)

type IGateService interface {
	Authenticate(username, password string) (string, error)
}

// GateService guards the room with a single shared secret. The first
// successful login with a non-empty password installs the secret for the
// lifetime of the datastore; every later login must match it.
type GateService struct {
	secrets repositories.ISecretRepository
	log     *slog.Logger
}

func NewGateService(secrets repositories.ISecretRepository, log *slog.Logger) *GateService {
	return &GateService{secrets: secrets, log: log}
}

// Authenticate validates the asserted identity against the shared secret
// and returns it on success. There is deliberately no rate limiting or
// lockout.
func (s *GateService) Authenticate(username, password string) (string, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" {
		return "", errors.ErrUsernameMissing
	}
	if err := auth.ValidateLogin(auth.LoginRequest{Username: username, Password: password}); err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrUsernameMissing, err)
	}

	if password == "" {
		_, exists, err := s.secrets.Get()
		if err != nil {
			return "", err
		}
		if !exists {
			return "", errors.ErrSecretRequired
		}
		// An installed secret is never empty, so an empty password
		// cannot match it.
		return "", errors.ErrIncorrectSecret
	}

	hash, err := auth.HashSecret(password)
	if err != nil {
		return "", err
	}

	// InstallIfAbsent decides the first-writer race: exactly one caller
	// installs its hash, everyone else verifies against the winner's.
	current, installed, err := s.secrets.InstallIfAbsent(hash)
	if err != nil {
		return "", err
	}
	if installed {
		s.log.Info("Chat password installed", "by", username)
		return username, nil
	}

	match, err := auth.VerifySecret(password, current)
	if err != nil {
		return "", err
	}
	if !match {
		return "", errors.ErrIncorrectSecret
	}
	return username, nil
}
