package interview

import (
	"errors"
	"fmt"
)

var (
	ErrPoolExhausted            = errors.New("question pool exhausted")
	ErrInvalidQuestionIndex     = errors.New("invalid question index")
	ErrQuestionAlreadyResolved  = errors.New("question already resolved")
	ErrSessionAlreadyInProgress = errors.New("interview already in progress")
	ErrSessionIncomplete        = errors.New("interview has unresolved questions")
	ErrSessionNotFound          = errors.New("interview not found")
	// ErrStaleSession is returned by a Repository when the session was saved
	// by someone else since it was loaded.
	ErrStaleSession             = errors.New("interview was changed concurrently")
)

// SessionInProgressError is returned when a candidate already has an open
// session. It matches ErrSessionAlreadyInProgress with errors.Is.
type SessionInProgressError struct {
	SessionID string
}

func (e *SessionInProgressError) Error() string {
	return fmt.Sprintf("%s: %s", ErrSessionAlreadyInProgress, e.SessionID)
}

func (e *SessionInProgressError) Unwrap() error {
	return ErrSessionAlreadyInProgress
}
