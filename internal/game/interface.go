// Package game defines the session abstraction shared by the bot's interactive
// features and a registry that tracks live sessions by ID.
package game

import (
	"errors"

	"github.com/google/uuid"
)

// Registry errors.
var (
	ErrNilSession      = errors.New("cannot register nil session")
	ErrEmptySessionID  = errors.New("session id cannot be empty")
	ErrSessionNotFound = errors.New("session not found")
	ErrDuplicateID     = errors.New("session id already registered")
)

// Session is one bounded interactive exchange, scoped to the chat where it was
// triggered. A session owns all of its mutable state; once finalized it
// accepts no further input.
type Session interface {
	// ID returns the opaque session identifier used to route input events.
	ID() string

	// ChatID returns the chat the session was started in.
	ChatID() int64

	// Finalized reports whether the session has reached its terminal state.
	Finalized() bool
}

// NewSessionID returns a fresh opaque session identifier.
func NewSessionID() string {
	return uuid.NewString()
}
