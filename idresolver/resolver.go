package idresolver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/bluesky-social/indigo/atproto/identity"
	"github.com/bluesky-social/indigo/atproto/identity/redisdir"
	"github.com/bluesky-social/indigo/atproto/syntax"
	"github.com/carlmjohnson/versioninfo"
)

var ErrNoPDS = errors.New("identity declares no PDS endpoint")

type Resolver struct {
	directory identity.Directory
}

func New(directory identity.Directory) *Resolver {
	return &Resolver{directory: directory}
}

func BaseDirectory(plcUrl string) identity.Directory {
	base := identity.BaseDirectory{
		PLCURL: plcUrl,
		HTTPClient: http.Client{
			Timeout: time.Second * 10,
			Transport: &http.Transport{
				IdleConnTimeout: time.Millisecond * 1000,
				MaxIdleConns:    100,
			},
		},
		Resolver: net.Resolver{
			Dial: func(ctx context.Context, network, address string) (net.Conn, error) {
				d := net.Dialer{Timeout: time.Second * 3}
				return d.DialContext(ctx, network, address)
			},
		},
		TryAuthoritativeDNS: true,
		// primary Bluesky PDS instance only supports HTTP resolution method
		SkipDNSDomainSuffixes: []string{".bsky.social"},
		UserAgent:             "skyline/" + versioninfo.Short(),
	}
	return &base
}

func RedisDirectory(url, plcUrl string) (identity.Directory, error) {
	hitTTL := time.Hour * 24
	errTTL := time.Second * 30
	invalidHandleTTL := time.Minute * 5
	return redisdir.NewRedisDirectory(
		BaseDirectory(plcUrl),
		url,
		hitTTL,
		errTTL,
		invalidHandleTTL,
		10000,
	)
}

// DefaultResolver caches lookups in memory, which only helps within one
// run. RedisResolver keeps them across runs.
func DefaultResolver(plcUrl string) *Resolver {
	base := BaseDirectory(plcUrl)
	cached := identity.NewCacheDirectory(base, 1_000, time.Hour*24, time.Minute*2, time.Minute*5)
	return &Resolver{
		directory: &cached,
	}
}

func RedisResolver(redisUrl, plcUrl string) (*Resolver, error) {
	directory, err := RedisDirectory(redisUrl, plcUrl)
	if err != nil {
		return nil, err
	}
	return &Resolver{
		directory: directory,
	}, nil
}

func (r *Resolver) ResolveIdent(ctx context.Context, arg string) (*identity.Identity, error) {
	id, err := syntax.ParseAtIdentifier(arg)
	if err != nil {
		return nil, err
	}

	return r.directory.Lookup(ctx, *id)
}

// PDSEndpoint finds the PDS hosting the account named by a handle or DID.
func (r *Resolver) PDSEndpoint(ctx context.Context, arg string) (string, error) {
	ident, err := r.ResolveIdent(ctx, arg)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", arg, err)
	}

	endpoint := ident.PDSEndpoint()
	if endpoint == "" {
		return "", fmt.Errorf("%s: %w", ident.DID, ErrNoPDS)
	}

	return endpoint, nil
}
