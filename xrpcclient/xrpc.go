package xrpcclient

import (
	"errors"
	"fmt"
	"net/http"

	indigoxrpc "github.com/bluesky-social/indigo/xrpc"
)

var (
	ErrAuth    = errors.New("authentication rejected")
	ErrNetwork = errors.New("network error")
	ErrService = errors.New("xrpc request failed")
)

// error names a PDS answers with when the credentials or tokens are at fault
var authErrors = map[string]bool{
	"AuthenticationRequired":  true,
	"AuthFactorTokenRequired": true,
	"AccountTakedown":         true,
	"ExpiredToken":            true,
	"InvalidToken":            true,
}

// produces a more manageable error: the result matches exactly one of
// ErrAuth, ErrNetwork or ErrService and still wraps the original.
func HandleXrpcErr(err error) error {
	if err == nil {
		return nil
	}

	var xrpcerr *indigoxrpc.Error
	if ok := errors.As(err, &xrpcerr); !ok {
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	switch {
	case xrpcerr.StatusCode == http.StatusUnauthorized, xrpcerr.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %w", ErrAuth, err)
	case authErrors[errorName(err)]:
		return fmt.Errorf("%w: %w", ErrAuth, err)
	default:
		return fmt.Errorf("%w: %w", ErrService, err)
	}
}

// IsExpired reports whether the PDS refused an access token only because
// it has expired, which a refresh can fix.
func IsExpired(err error) bool {
	return errorName(err) == "ExpiredToken"
}

func errorName(err error) string {
	var xe *indigoxrpc.XRPCError
	if errors.As(err, &xe) {
		return xe.ErrStr
	}
	return ""
}
