// Package auth produces an authenticated session, reusing the cached one
// when the PDS still accepts it.
package auth

import (
	"context"
	"errors"
	"log/slog"

	"tangled.sh/tangled.sh/skyline/session"
)

// Remote is the part of the PDS client Authenticate drives.
type Remote interface {
	Login(ctx context.Context, identifier, password string) (*session.Session, error)
	// Resume validates a cached cookie, refreshing its tokens if needed.
	Resume(ctx context.Context, cookie session.Cookie) (*session.Session, error)
}

type Credentials struct {
	Identifier string
	Password   string
}

// Handle is what a successful Authenticate hands back.
type Handle struct {
	Session *session.Session
	// State is Restored or Ready.
	State       State
	Transitions []Transition
	Fallbacks   []Fallback
}

func (h *Handle) Restored() bool {
	return h.State == Restored
}

type Authenticator struct {
	store  session.Store
	remote Remote
	logger *slog.Logger
}

func New(store session.Store, remote Remote, logger *slog.Logger) *Authenticator {
	return &Authenticator{
		store:  store,
		remote: remote,
		logger: logger,
	}
}

// Authenticate tries the cached session first and falls back to a
// password login. Each remote call is made at most once. Only a failed
// login is returned as an error, as a *LoginError.
func (a *Authenticator) Authenticate(ctx context.Context, creds Credentials) (*Handle, error) {
	m := &machine{logger: a.logger, identifier: creds.Identifier}
	m.enter(TryRestore)

	sess, reason, cause := a.restore(ctx)
	if reason == noFallback {
		m.enter(Restored)
		return m.handle(sess), nil
	}
	m.fallback(reason, cause)
	m.enter(NeedsLogin)

	sess, err := a.login(ctx, creds)
	if err != nil {
		err = m.fallback(LoginRejected, err)
		m.enter(LoginFailed)
		return nil, err
	}

	if err := a.store.Save(ctx, session.Encode(sess.Cookie())); err != nil {
		m.fallback(CacheWriteFailed, err)
	} else {
		a.logger.Info("session cached", "did", sess.Did)
	}

	m.enter(Ready)
	return m.handle(sess), nil
}

func (a *Authenticator) restore(ctx context.Context) (*session.Session, Fallback, error) {
	text, err := a.store.Load(ctx)
	if err != nil {
		return nil, CacheMiss, err
	}

	cookie, err := session.Decode(text)
	if err != nil {
		return nil, CacheCorrupt, err
	}

	a.logger.Info("logging in with cached session", "did", cookie.Did)
	sess, err := a.remote.Resume(ctx, cookie)
	if err != nil {
		return nil, ResumeRejected, err
	}
	if sess == nil {
		return nil, ResumeRejected, errors.New("resume returned no session")
	}

	a.logger.Info("cached session successfully validated", "did", sess.Did, "handle", sess.Handle)
	return sess, noFallback, nil
}

func (a *Authenticator) login(ctx context.Context, creds Credentials) (*session.Session, error) {
	if creds.Identifier == "" {
		return nil, ErrMissingIdentifier
	}
	if creds.Password == "" {
		return nil, ErrMissingPassword
	}

	a.logger.Info("logging in with password", "identifier", creds.Identifier)
	sess, err := a.remote.Login(ctx, creds.Identifier, creds.Password)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, errors.New("login returned no session")
	}

	a.logger.Info("logged in", "did", sess.Did, "handle", sess.Handle)
	return sess, nil
}

type machine struct {
	logger     *slog.Logger
	identifier string

	state       State
	transitions []Transition
	fallbacks   []Fallback
}

func (m *machine) enter(s State) {
	m.transitions = append(m.transitions, Transition{From: m.state, To: s})
	m.logger.Debug("auth state", "from", m.state, "to", s)
	m.state = s
}

// fallback records why the happy path was left and applies the policy.
// It returns a non-nil error only for fatal reasons.
func (m *machine) fallback(f Fallback, cause error) error {
	m.fallbacks = append(m.fallbacks, f)

	switch f {
	case CacheMiss:
		if errors.Is(cause, session.ErrNotFound) {
			m.logger.Info("no cached session")
		} else {
			m.logger.Warn("could not read cached session", "err", cause)
		}
	case CacheCorrupt:
		m.logger.Warn("cached session is corrupt, ignoring it", "err", cause)
	case ResumeRejected:
		m.logger.Warn("cached session rejected, falling back to login", "err", cause)
	case CacheWriteFailed:
		m.logger.Warn("could not cache session, next run will log in again", "err", cause)
	case LoginRejected:
		m.logger.Error("login failed", "identifier", m.identifier, "err", cause)
	}

	if f.Fatal() {
		return &LoginError{Identifier: m.identifier, Err: cause}
	}
	return nil
}

func (m *machine) handle(sess *session.Session) *Handle {
	return &Handle{
		Session:     sess,
		State:       m.state,
		Transitions: m.transitions,
		Fallbacks:   m.fallbacks,
	}
}
