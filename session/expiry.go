package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwt"
)

var ErrNoExpiry = errors.New("token carries no expiry")

// AccessExpiry reads the exp claim of an access token. The signature is
// not checked: only the PDS can do that, and the value is for display.
func AccessExpiry(accessJwt string) (time.Time, error) {
	tok, err := jwt.ParseInsecure([]byte(accessJwt))
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse access token: %w", err)
	}

	exp := tok.Expiration()
	if exp.IsZero() {
		return time.Time{}, ErrNoExpiry
	}

	return exp, nil
}
