package log

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/log"
)

// level is shared by every logger from this package, including ones made
// before the configuration was read.
var level slog.LevelVar

// SetLevel changes the level of every logger from this package. Unknown
// names leave the level untouched and return an error.
func SetLevel(name string) error {
	l, err := log.ParseLevel(name)
	if err != nil {
		return err
	}
	level.Set(slog.Level(l))
	return nil
}

// leveled filters records against the shared level before they reach
// the charmbracelet logger, which itself lets everything through.
type leveled struct {
	*log.Logger
}

func (h leveled) Enabled(_ context.Context, l slog.Level) bool {
	return l >= level.Level()
}

func (h leveled) WithAttrs(attrs []slog.Attr) slog.Handler {
	return leveled{h.Logger.WithAttrs(attrs).(*log.Logger)}
}

func (h leveled) WithGroup(name string) slog.Handler {
	return leveled{h.Logger.WithGroup(name).(*log.Logger)}
}

func NewHandler(name string) slog.Handler {
	return NewHandlerTo(os.Stderr, name)
}

// NewHandlerTo is NewHandler with an explicit destination, mostly for tests.
func NewHandlerTo(w io.Writer, name string) slog.Handler {
	return leveled{log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          name,
		Level:           log.DebugLevel,
	})}
}

func New(name string) *slog.Logger {
	return slog.New(NewHandler(name))
}

type ctxKey struct{}

// IntoContext adds a logger to a context. Use FromContext to
// pull the logger out.
func IntoContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns a logger from a context.Context;
// if the passed context is nil, we return the default slog
// logger.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		v := ctx.Value(ctxKey{})
		if v == nil {
			return slog.Default()
		}
		return v.(*slog.Logger)
	}

	return slog.Default()
}

// sublogger derives a new logger from an existing one by appending a suffix to its prefix.
func SubLogger(base *slog.Logger, suffix string) *slog.Logger {
	// try to get the underlying charmbracelet logger
	if h, ok := base.Handler().(leveled); ok {
		prefix := h.GetPrefix()
		if prefix != "" {
			prefix = prefix + "/" + suffix
		} else {
			prefix = suffix
		}
		return slog.New(leveled{h.WithPrefix(prefix)})
	}

	// Fallback: no known handler type
	return slog.New(NewHandler(suffix))
}
