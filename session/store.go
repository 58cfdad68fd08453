package session

import (
	"context"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("no cached session")

// Store persists exactly one encoded session.
type Store interface {
	// Load returns ErrNotFound when nothing has been saved yet.
	Load(ctx context.Context) (string, error)
	// Save replaces whatever was stored before.
	Save(ctx context.Context, text string) error
	Delete(ctx context.Context) error
}

type IoError struct {
	Op       string
	Location string
	Err      error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("session %s %s: %v", e.Op, e.Location, e.Err)
}

func (e *IoError) Unwrap() error { return e.Err }
