package errors

import "fmt"

var (
	ErrUsernameMissing = fmt.Errorf("username is required")
	ErrSecretRequired  = fmt.Errorf("no chat password set yet, the first user must choose one")
	ErrIncorrectSecret = fmt.Errorf("incorrect chat password")
	ErrUnauthenticated = fmt.Errorf("not logged in")
	ErrSessionExpired  = fmt.Errorf("session expired")
	ErrEmptyMessage    = fmt.Errorf("message is empty")
	ErrMessageTooLong  = fmt.Errorf("message exceeds the maximum length")
	ErrPersistence     = fmt.Errorf("message could not be persisted")
	ErrWorkerPanic     = fmt.Errorf("worker panic")
)
