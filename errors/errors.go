package errors

import "fmt"

var (
	ErrWorkerPanic       = fmt.Errorf("worker panic")
	ErrDuplicateUsername = fmt.Errorf("username already taken")
	ErrEmptyUsername     = fmt.Errorf("username is empty")
	ErrUserNotFound      = fmt.Errorf("user not found")
	ErrSessionClosed     = fmt.Errorf("session closed")
	ErrOutboxFull        = fmt.Errorf("outbox full")
	ErrInvalidConfig     = fmt.Errorf("invalid configuration")
	ErrEmptyWords        = fmt.Errorf("no words have been found")
)
