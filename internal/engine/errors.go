package engine

import (
	"errors"
	"fmt"
)

// Kind classifies engine errors.
type Kind string

const (
	KindInvalidArgument   Kind = "invalid_argument"
	KindSessionNotFound   Kind = "session_not_found"
	KindProtocolViolation Kind = "protocol_violation"
)

// Sentinels for errors.Is. Every *Error matches the sentinel of its Kind.
var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrSessionNotFound   = errors.New("session not found")
	ErrProtocolViolation = errors.New("protocol violation")
)

// Error is returned by every engine operation that fails. Field names the
// offending argument when there is one.
type Error struct {
	Kind   Kind
	Field  string
	Detail string
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// Is matches the sentinel for e.Kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrInvalidArgument:
		return e.Kind == KindInvalidArgument
	case ErrSessionNotFound:
		return e.Kind == KindSessionNotFound
	case ErrProtocolViolation:
		return e.Kind == KindProtocolViolation
	}
	return false
}

func invalid(field, format string, args ...any) error {
	return &Error{Kind: KindInvalidArgument, Field: field, Detail: fmt.Sprintf(format, args...)}
}

func notFound(id string) error {
	return &Error{Kind: KindSessionNotFound, Field: "session_id", Detail: fmt.Sprintf("no session %q (call start_session first)", id)}
}

func violation(format string, args ...any) error {
	return &Error{Kind: KindProtocolViolation, Detail: fmt.Sprintf(format, args...)}
}
