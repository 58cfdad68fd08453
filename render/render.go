// Package render prints sessions, profiles and posts for a terminal.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/bluesky-social/indigo/atproto/syntax"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/mitchellh/go-wordwrap"
)

type Renderer struct {
	w     io.Writer
	width uint
	now   func() time.Time

	name   *color.Color
	handle *color.Color
	dim    *color.Color
	accent *color.Color
}

type Opt func(*Renderer)

func WithWidth(width uint) Opt {
	return func(r *Renderer) {
		r.width = width
	}
}

func WithClock(now func() time.Time) Opt {
	return func(r *Renderer) {
		r.now = now
	}
}

func WithColor(enabled bool) Opt {
	return func(r *Renderer) {
		for _, c := range []*color.Color{r.name, r.handle, r.dim, r.accent} {
			if enabled {
				c.EnableColor()
			} else {
				c.DisableColor()
			}
		}
	}
}

func New(w io.Writer, opts ...Opt) *Renderer {
	r := &Renderer{
		w:      w,
		width:  80,
		now:    time.Now,
		name:   color.New(color.Bold),
		handle: color.New(color.FgCyan),
		dim:    color.New(color.Faint),
		accent: color.New(color.FgMagenta),
	}
	WithColor(false)(r)
	for _, o := range opts {
		o(r)
	}
	return r
}

// UseColor decides whether output to w should be colored for a mode of
// "always", "never" or "auto".
func UseColor(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}

	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (r *Renderer) printf(format string, a ...any) {
	fmt.Fprintf(r.w, format, a...)
}

// wrap indents every line of s and breaks it at the renderer width
func (r *Renderer) wrap(s, indent string) string {
	width := r.width
	if width > uint(len(indent))+20 {
		width -= uint(len(indent))
	}

	var b strings.Builder
	for i, line := range strings.Split(wordwrap.WrapString(s, width), "\n") {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(indent)
		b.WriteString(line)
	}
	return b.String()
}

func (r *Renderer) ago(raw string) string {
	dt, err := syntax.ParseDatetimeLenient(raw)
	if err != nil {
		return raw
	}
	return humanize.RelTime(dt.Time(), r.now(), "ago", "from now")
}

func displayName(name *string, handle string) string {
	if name != nil && strings.TrimSpace(*name) != "" {
		return strings.TrimSpace(*name)
	}
	return handle
}

func (r *Renderer) actor(name *string, handle string) string {
	return fmt.Sprintf("%s %s", r.name.Sprint(displayName(name, handle)), r.handle.Sprint("@"+handle))
}

func count(n *int64) string {
	if n == nil {
		return "0"
	}
	return humanize.Comma(*n)
}

