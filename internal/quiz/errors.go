package quiz

import "errors"

var (
	// ErrInvalidRequest covers missing or malformed fields, including an
	// answer echo that does not match the session's active question.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrSessionNotFound means the session identifier is unknown.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionTerminal means the session is completed or expired and
	// accepts no further answers.
	ErrSessionTerminal = errors.New("session is no longer active")
)
