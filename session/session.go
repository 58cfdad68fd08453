// Package session holds the authenticated session of a PDS account and
// its durable, reduced form.
package session

// Session is the full session returned by com.atproto.server.createSession,
// getSession or refreshSession.
type Session struct {
	AccessJwt  string
	RefreshJwt string
	Did        string

	// Optional metadata. None of it survives a trip through Cookie; a
	// resumed session gets it back from the PDS.
	Handle         string
	Email          *string
	EmailConfirmed *bool
	Active         *bool
	Status         *string
}

// Cookie is the only part of a Session that is ever persisted.
type Cookie struct {
	Access  string `json:"access"`
	Did     string `json:"did"`
	Refresh string `json:"refresh"`
}

// Cookie projects the session down to the fields needed to resume it.
func (s *Session) Cookie() Cookie {
	return Cookie{
		Access:  s.AccessJwt,
		Did:     s.Did,
		Refresh: s.RefreshJwt,
	}
}

// Session rebuilds a session from the cookie. Optional metadata is left
// empty.
func (c Cookie) Session() *Session {
	return &Session{
		AccessJwt:  c.Access,
		RefreshJwt: c.Refresh,
		Did:        c.Did,
	}
}
