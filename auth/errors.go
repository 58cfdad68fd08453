package auth

import (
	"errors"
	"fmt"
)

var (
	ErrLogin             = errors.New("login failed")
	ErrMissingPassword   = errors.New("no password supplied")
	ErrMissingIdentifier = errors.New("no identifier supplied")
)

// LoginError is the only error Authenticate returns.
type LoginError struct {
	Identifier string
	Err        error
}

func (e *LoginError) Error() string {
	return fmt.Sprintf("login as %q failed: %v", e.Identifier, e.Err)
}

func (e *LoginError) Unwrap() error { return e.Err }

func (e *LoginError) Is(target error) bool { return target == ErrLogin }
