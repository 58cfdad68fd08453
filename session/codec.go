package session

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrDecode = errors.New("malformed session cookie")

var encoding = base64.RawURLEncoding.Strict()

type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrDecode, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrDecode, e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// Encode serializes the cookie as a JSON object and encodes it with the
// unpadded URL-safe base64 alphabet.
func Encode(c Cookie) string {
	// a struct of strings always marshals
	b, _ := json.Marshal(c)
	return encoding.EncodeToString(b)
}

// wire form; pointers tell a missing field from an empty one
type rawCookie struct {
	Access  *string `json:"access"`
	Did     *string `json:"did"`
	Refresh *string `json:"refresh"`
}

// Decode is the inverse of Encode. Every field must be present; partial
// cookies are rejected rather than filled with defaults.
func Decode(text string) (Cookie, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Cookie{}, &DecodeError{Reason: "empty payload"}
	}

	b, err := encoding.DecodeString(text)
	if err != nil {
		return Cookie{}, &DecodeError{Reason: "invalid base64", Err: err}
	}

	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '{' {
		return Cookie{}, &DecodeError{Reason: "payload is not an object"}
	}

	var raw rawCookie
	if err := json.Unmarshal(b, &raw); err != nil {
		return Cookie{}, &DecodeError{Reason: "invalid json", Err: err}
	}

	var missing []string
	if raw.Access == nil {
		missing = append(missing, "access")
	}
	if raw.Did == nil {
		missing = append(missing, "did")
	}
	if raw.Refresh == nil {
		missing = append(missing, "refresh")
	}
	if len(missing) > 0 {
		return Cookie{}, &DecodeError{Reason: "missing " + strings.Join(missing, ", ")}
	}

	return Cookie{
		Access:  *raw.Access,
		Did:     *raw.Did,
		Refresh: *raw.Refresh,
	}, nil
}
