// Package app holds the skyline command tree and the wiring between
// configuration, storage and the PDS client.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"tangled.sh/tangled.sh/skyline/auth"
	"tangled.sh/tangled.sh/skyline/cache"
	"tangled.sh/tangled.sh/skyline/config"
	"tangled.sh/tangled.sh/skyline/cursor"
	"tangled.sh/tangled.sh/skyline/idresolver"
	"tangled.sh/tangled.sh/skyline/log"
	"tangled.sh/tangled.sh/skyline/render"
	"tangled.sh/tangled.sh/skyline/session"
	"tangled.sh/tangled.sh/skyline/xrpcclient"
)

var ErrNoHost = errors.New("no PDS host configured and no identifier to discover it from")

func Command() *cli.Command {
	return &cli.Command{
		Name:   config.AppName,
		Usage:  "log in to a PDS and read your timeline",
		Action: Run,

		// errors are reported and turned into an exit status by main
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
		Commands: []*cli.Command{
			sessionCommand(),
			timelineCommand(),
			profilesCommand(),
			logoutCommand(),
		},
		Description: `
Environment variables:
	SKYLINE_PDS_HOST                 (default: discovered from the identifier)
	SKYLINE_PDS_PLC_URL              (default: https://plc.directory)
	SKYLINE_PDS_USER_AGENT
	SKYLINE_PDS_IDENTITY_CACHE       (default: memory)
	SKYLINE_CREDENTIALS_IDENTIFIER
	SKYLINE_CREDENTIALS_IDENTIFIER_FILE (default: api.id)
	SKYLINE_CREDENTIALS_PASSWORD_FILE   (default: api.key)
	SKYLINE_SESSION_BACKEND          (default: file)
	SKYLINE_SESSION_PATH             (default: ~/.local/skyline_auth)
	SKYLINE_SESSION_NAME             (default: default)
	SKYLINE_CURSOR_BACKEND           (default: sqlite)
	SKYLINE_CURSOR_DB_PATH           (default: ~/.local/skyline.db)
	SKYLINE_REDIS_ADDR               (default: localhost:6379)
	SKYLINE_REDIS_PASS
	SKYLINE_REDIS_DB                 (default: 0)
	SKYLINE_TIMELINE_LIMIT           (default: 30)
	SKYLINE_FANOUT_LIMIT             (default: 8)
	SKYLINE_FANOUT_POLICY            (default: failfast)
	SKYLINE_LOG_LEVEL                (default: info)
	SKYLINE_COLOR                    (default: auto)
`,
	}
}

// Run is the plain skyline invocation: authenticate, then print the
// session and the first timeline page.
func Run(ctx context.Context, cmd *cli.Command) error {
	e, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer e.close()

	h, agent, err := e.authenticate(ctx)
	if err != nil {
		return err
	}

	e.printSession(h)
	fmt.Fprintln(e.w)
	return e.timeline(ctx, agent, "", e.cfg.Timeline.Limit)
}

// env is everything a command needs once configuration is loaded.
type env struct {
	cfg     *config.Config
	logger  *slog.Logger
	w       io.Writer
	out     *render.Renderer
	store   session.Store
	cursors cursor.Store // opened by cursorStore

	redis   *cache.Cache
	closers []func() error
}

func setup(ctx context.Context, cmd *cli.Command) (*env, error) {
	cfg, err := config.LoadConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := log.SetLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	w := cmd.Root().Writer
	if w == nil {
		w = os.Stdout
	}

	e := &env{
		cfg:    cfg,
		logger: log.FromContext(ctx),
		w:      w,
		out:    render.New(w, render.WithColor(render.UseColor(cfg.Color, w))),
	}

	if e.store, err = e.sessionStore(ctx); err != nil {
		e.close()
		return nil, err
	}

	return e, nil
}

func (e *env) close() {
	var err error
	for _, c := range e.closers {
		err = multierr.Append(err, c())
	}
	if err != nil {
		e.logger.Warn("failed to close resources", "err", err)
	}
}

// cache connects to redis the first time a component asks for it
func (e *env) cache(ctx context.Context) (*cache.Cache, error) {
	if e.redis != nil {
		return e.redis, nil
	}

	c, err := cache.FromURL(ctx, e.cfg.Redis.ToURL())
	if err != nil {
		return nil, err
	}
	e.redis = c
	e.closers = append(e.closers, c.Close)
	return c, nil
}

func (e *env) sessionStore(ctx context.Context) (session.Store, error) {
	switch e.cfg.Session.Backend {
	case "redis":
		c, err := e.cache(ctx)
		if err != nil {
			return nil, err
		}
		return session.NewRedisStore(c, e.cfg.Session.Name), nil
	default:
		return session.NewFileStore(e.cfg.Session.Path), nil
	}
}

// cursorStore opens the timeline position store on first use, so commands
// that never page leave no database behind.
func (e *env) cursorStore(ctx context.Context) (cursor.Store, error) {
	if e.cursors != nil {
		return e.cursors, nil
	}

	switch e.cfg.Cursor.Backend {
	case "memory":
		e.cursors = &cursor.MemoryStore{}
	case "redis":
		c, err := e.cache(ctx)
		if err != nil {
			return nil, err
		}
		e.cursors = cursor.NewRedisCursorStore(c)
	default:
		if err := os.MkdirAll(filepath.Dir(e.cfg.Cursor.DbPath), 0o700); err != nil {
			return nil, fmt.Errorf("failed to create cursor db directory: %w", err)
		}
		s, err := cursor.NewSQLiteStore(e.cfg.Cursor.DbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open cursor db: %w", err)
		}
		e.closers = append(e.closers, s.Close)
		e.cursors = s
	}

	return e.cursors, nil
}

// credentials reads the configured credentials. A read failure is not an
// error yet: a cached session may make them unnecessary.
func (e *env) credentials() (auth.Credentials, error) {
	creds, err := config.ReadCredentials(e.cfg.Credentials)
	if err != nil {
		e.logger.Debug("credentials unavailable", "err", err)
		id := strings.TrimPrefix(strings.TrimSpace(e.cfg.Credentials.Identifier), "@")
		return auth.Credentials{Identifier: id}, err
	}
	return auth.Credentials{Identifier: creds.Identifier, Password: creds.Password}, nil
}

// host returns the configured PDS host, or discovers it from the
// identifier, or from the DID of the cached session when no identifier is
// at hand.
func (e *env) host(ctx context.Context, identifier string) (string, error) {
	if e.cfg.Pds.Host != "" {
		return e.cfg.Pds.Host, nil
	}

	subject := identifier
	if subject == "" {
		if text, err := e.store.Load(ctx); err == nil {
			if cookie, err := session.Decode(text); err == nil {
				subject = cookie.Did
			}
		}
	}
	if subject == "" {
		return "", ErrNoHost
	}

	var resolver *idresolver.Resolver
	switch e.cfg.Pds.IdentityCache {
	case "redis":
		r, err := idresolver.RedisResolver(e.cfg.Redis.ToURL(), e.cfg.Pds.PlcUrl)
		if err != nil {
			return "", fmt.Errorf("failed to set up identity cache: %w", err)
		}
		resolver = r
	default:
		resolver = idresolver.DefaultResolver(e.cfg.Pds.PlcUrl)
	}

	host, err := resolver.PDSEndpoint(ctx, subject)
	if err != nil {
		return "", err
	}
	e.logger.Info("discovered PDS", "subject", subject, "host", host)
	return host, nil
}

func (e *env) client(ctx context.Context, identifier string) (*xrpcclient.Client, error) {
	host, err := e.host(ctx, identifier)
	if err != nil {
		return nil, err
	}

	return xrpcclient.New(host,
		xrpcclient.WithUserAgent(e.cfg.Pds.UserAgent),
		xrpcclient.WithFanoutLimit(e.cfg.Fanout.Limit),
	), nil
}

func (e *env) authenticate(ctx context.Context) (*auth.Handle, *xrpcclient.Agent, error) {
	creds, credErr := e.credentials()

	client, err := e.client(ctx, creds.Identifier)
	if err != nil {
		return nil, nil, withCredentialErr(err, credErr)
	}

	a := auth.New(e.store, client, log.SubLogger(e.logger, "auth"))
	h, err := a.Authenticate(ctx, creds)
	if err != nil {
		return nil, nil, withCredentialErr(err, credErr)
	}

	return h, client.Authorize(h.Session), nil
}

// withCredentialErr keeps a credential read failure next to the error it
// probably explains.
func withCredentialErr(err, credErr error) error {
	if credErr == nil {
		return err
	}
	return fmt.Errorf("%w (reading credentials: %w)", err, credErr)
}

func (e *env) printSession(h *auth.Handle) {
	expiry, err := session.AccessExpiry(h.Session.AccessJwt)
	if err != nil {
		e.logger.Debug("access token expiry unknown", "err", err)
	}
	e.out.Session(h.Session, h.Restored(), expiry)
}
