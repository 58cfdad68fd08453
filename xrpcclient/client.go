package xrpcclient

import (
	"context"
	"fmt"
	"net/http"
	"time"

	comatproto "github.com/bluesky-social/indigo/api/atproto"
	indigoxrpc "github.com/bluesky-social/indigo/xrpc"
	"github.com/carlmjohnson/versioninfo"
	"tangled.sh/tangled.sh/skyline/session"
)

// Client talks to a single PDS on behalf of one account. It is the only
// place that knows the shape of the session endpoints.
type Client struct {
	host        string
	httpClient  *http.Client
	userAgent   string
	fanoutLimit int
}

type ClientOpt func(*Client)

func WithHTTPClient(c *http.Client) ClientOpt {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

func WithUserAgent(ua string) ClientOpt {
	return func(cl *Client) {
		if ua != "" {
			cl.userAgent = ua
		}
	}
}

// WithFanoutLimit bounds the number of parallel requests made by
// Agent.Profiles.
func WithFanoutLimit(n int) ClientOpt {
	return func(cl *Client) {
		cl.fanoutLimit = n
	}
}

func New(host string, opts ...ClientOpt) *Client {
	c := &Client{
		host: host,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		userAgent:   "skyline/" + versioninfo.Short(),
		fanoutLimit: 8,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) Host() string {
	return c.host
}

// bearer builds an xrpc client that sends token as its bearer credential
func (c *Client) bearer(token string) *indigoxrpc.Client {
	ua := c.userAgent
	xc := &indigoxrpc.Client{
		Client:    c.httpClient,
		Host:      c.host,
		UserAgent: &ua,
	}
	if token != "" {
		xc.Auth = &indigoxrpc.AuthInfo{AccessJwt: token}
	}
	return xc
}

// Login exchanges an identifier (handle, DID or email) and an app password
// for a new session.
func (c *Client) Login(ctx context.Context, identifier, password string) (*session.Session, error) {
	out, err := comatproto.ServerCreateSession(ctx, c.bearer(""), &comatproto.ServerCreateSession_Input{
		Identifier: identifier,
		Password:   password,
	})
	if err != nil {
		return nil, fmt.Errorf("createSession: %w", HandleXrpcErr(err))
	}

	return &session.Session{
		AccessJwt:      out.AccessJwt,
		RefreshJwt:     out.RefreshJwt,
		Did:            out.Did,
		Handle:         out.Handle,
		Email:          out.Email,
		EmailConfirmed: out.EmailConfirmed,
		Active:         out.Active,
		Status:         out.Status,
	}, nil
}

// Resume validates a cached cookie against the PDS. An expired access
// token is refreshed once with the refresh token; the returned session
// then carries the new tokens.
func (c *Client) Resume(ctx context.Context, cookie session.Cookie) (*session.Session, error) {
	sess := cookie.Session()

	out, err := comatproto.ServerGetSession(ctx, c.bearer(sess.AccessJwt))
	if err == nil {
		if out.Did != sess.Did {
			return nil, fmt.Errorf("%w: session belongs to %s, cookie names %s", ErrAuth, out.Did, sess.Did)
		}
		sess.Handle = out.Handle
		sess.Email = out.Email
		sess.EmailConfirmed = out.EmailConfirmed
		sess.Active = out.Active
		sess.Status = out.Status
		return sess, nil
	}

	if !IsExpired(err) {
		return nil, fmt.Errorf("getSession: %w", HandleXrpcErr(err))
	}

	// refreshSession takes the refresh token as its bearer
	ref, err := comatproto.ServerRefreshSession(ctx, c.bearer(sess.RefreshJwt))
	if err != nil {
		return nil, fmt.Errorf("refreshSession: %w", HandleXrpcErr(err))
	}
	if ref.Did != sess.Did {
		return nil, fmt.Errorf("%w: refreshed session belongs to %s, cookie names %s", ErrAuth, ref.Did, sess.Did)
	}

	sess.AccessJwt = ref.AccessJwt
	sess.RefreshJwt = ref.RefreshJwt
	sess.Handle = ref.Handle
	sess.Active = ref.Active
	sess.Status = ref.Status
	return sess, nil
}

// Authorize returns an Agent acting as the session's account.
func (c *Client) Authorize(sess *session.Session) *Agent {
	ua := c.userAgent
	return &Agent{
		xrpcc: &indigoxrpc.Client{
			Client:    c.httpClient,
			Host:      c.host,
			UserAgent: &ua,
			Auth: &indigoxrpc.AuthInfo{
				AccessJwt:  sess.AccessJwt,
				RefreshJwt: sess.RefreshJwt,
				Handle:     sess.Handle,
				Did:        sess.Did,
			},
		},
		session:     *sess,
		fanoutLimit: c.fanoutLimit,
	}
}
