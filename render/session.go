package render

import (
	"time"

	"github.com/dustin/go-humanize"
	"tangled.sh/tangled.sh/skyline/session"
)

// Session prints who is logged in. expiry may be zero when unknown.
func (r *Renderer) Session(s *session.Session, restored bool, expiry time.Time) {
	source := "fresh login"
	if restored {
		source = "restored from cache"
	}

	r.printf("%s %s\n", r.dim.Sprint("did:   "), s.Did)
	if s.Handle != "" {
		r.printf("%s %s\n", r.dim.Sprint("handle:"), r.handle.Sprint("@"+s.Handle))
	}
	if s.Email != nil {
		confirmed := ""
		if s.EmailConfirmed != nil && *s.EmailConfirmed {
			confirmed = " (confirmed)"
		}
		r.printf("%s %s%s\n", r.dim.Sprint("email: "), *s.Email, confirmed)
	}
	if s.Status != nil && *s.Status != "" {
		r.printf("%s %s\n", r.dim.Sprint("status:"), *s.Status)
	}
	r.printf("%s %s\n", r.dim.Sprint("source:"), source)
	if !expiry.IsZero() {
		r.printf("%s %s\n", r.dim.Sprint("access:"), "expires "+humanize.RelTime(expiry, r.now(), "ago", "from now"))
	}
}
