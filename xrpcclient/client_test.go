package xrpcclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/bluesky-social/indigo/api/bsky"
	indigoxrpc "github.com/bluesky-social/indigo/xrpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tangled.sh/tangled.sh/skyline/fanout"
	"tangled.sh/tangled.sh/skyline/session"
)

// fakePDS answers the handful of endpoints the client uses.
type fakePDS struct {
	mu sync.Mutex

	password string
	did      string
	handle   string

	access  map[string]bool
	expired map[string]bool
	refresh map[string]bool

	calls   map[string]int
	lastReq map[string]*http.Request
}

func newFakePDS(t *testing.T) (*fakePDS, *httptest.Server) {
	t.Helper()
	p := &fakePDS{
		password: "app-pw-123",
		did:      "did:plc:x",
		handle:   "alice.example",
		access:   map[string]bool{},
		expired:  map[string]bool{},
		refresh:  map[string]bool{},
		calls:    map[string]int{},
		lastReq:  map[string]*http.Request{},
	}
	srv := httptest.NewServer(p)
	t.Cleanup(srv.Close)
	return p, srv
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func xrpcError(w http.ResponseWriter, status int, name, msg string) {
	writeJSON(w, status, map[string]string{"error": name, "message": msg})
}

func bearer(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

func (p *fakePDS) count(method string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[method]
}

func (p *fakePDS) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	method := strings.TrimPrefix(r.URL.Path, "/xrpc/")

	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls[method]++
	p.lastReq[method] = r

	authed := func() bool {
		tok := bearer(r)
		if p.expired[tok] {
			xrpcError(w, http.StatusBadRequest, "ExpiredToken", "Token has expired")
			return false
		}
		if !p.access[tok] {
			xrpcError(w, http.StatusBadRequest, "InvalidToken", "Token could not be verified")
			return false
		}
		return true
	}

	switch method {
	case "com.atproto.server.createSession":
		var in struct {
			Identifier string `json:"identifier"`
			Password   string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in.Identifier != p.handle || in.Password != p.password {
			xrpcError(w, http.StatusUnauthorized, "AuthenticationRequired", "Invalid identifier or password")
			return
		}
		p.access["A1"] = true
		p.refresh["R1"] = true
		writeJSON(w, http.StatusOK, map[string]any{
			"accessJwt":      "A1",
			"refreshJwt":     "R1",
			"did":            p.did,
			"handle":         p.handle,
			"email":          "alice@example.com",
			"emailConfirmed": true,
			"active":         true,
		})

	case "com.atproto.server.getSession":
		if !authed() {
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"did":    p.did,
			"handle": p.handle,
			"email":  "alice@example.com",
		})

	case "com.atproto.server.refreshSession":
		tok := bearer(r)
		if !p.refresh[tok] {
			xrpcError(w, http.StatusBadRequest, "ExpiredToken", "Token has been revoked")
			return
		}
		delete(p.refresh, tok)
		p.access["A2"] = true
		p.refresh["R2"] = true
		writeJSON(w, http.StatusOK, map[string]any{
			"accessJwt":  "A2",
			"refreshJwt": "R2",
			"did":        p.did,
			"handle":     p.handle,
		})

	case "app.bsky.feed.getTimeline":
		if !authed() {
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"cursor": "next-page",
			"feed": []any{
				map[string]any{
					"post": map[string]any{
						"uri":    "at://did:plc:x/app.bsky.feed.post/3k",
						"cid":    "bafyreib2rxk3rh6kzwq",
						"author": map[string]any{"did": p.did, "handle": p.handle},
						"record": map[string]any{
							"$type":     "app.bsky.feed.post",
							"text":      "hello from the timeline",
							"createdAt": "2024-05-01T12:00:00.000Z",
						},
						"indexedAt": "2024-05-01T12:00:01.000Z",
					},
				},
			},
		})

	case "app.bsky.actor.getProfile":
		if !authed() {
			return
		}
		actor := r.URL.Query().Get("actor")
		if actor == "missing.example" {
			xrpcError(w, http.StatusBadRequest, "InvalidRequest", "Profile not found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"did":            "did:plc:" + strings.ReplaceAll(actor, ".", ""),
			"handle":         actor,
			"followersCount": 1200,
		})

	default:
		xrpcError(w, http.StatusNotImplemented, "MethodNotImplemented", method)
	}
}

func TestLogin(t *testing.T) {
	pds, srv := newFakePDS(t)
	c := New(srv.URL)

	sess, err := c.Login(context.Background(), "alice.example", "app-pw-123")
	require.NoError(t, err)

	assert.Equal(t, "A1", sess.AccessJwt)
	assert.Equal(t, "R1", sess.RefreshJwt)
	assert.Equal(t, "did:plc:x", sess.Did)
	assert.Equal(t, "alice.example", sess.Handle)
	require.NotNil(t, sess.Email)
	assert.Equal(t, "alice@example.com", *sess.Email)
	assert.Equal(t, 1, pds.count("com.atproto.server.createSession"))
	assert.Contains(t, pds.lastReq["com.atproto.server.createSession"].Header.Get("User-Agent"), "skyline/")
}

func TestLoginRejected(t *testing.T) {
	_, srv := newFakePDS(t)
	c := New(srv.URL)

	_, err := c.Login(context.Background(), "alice.example", "wrong")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuth)
	assert.NotErrorIs(t, err, ErrNetwork)

	var xe *indigoxrpc.Error
	require.ErrorAs(t, err, &xe)
	assert.Equal(t, http.StatusUnauthorized, xe.StatusCode)
}

func TestLoginUnreachable(t *testing.T) {
	_, srv := newFakePDS(t)
	srv.Close()

	_, err := New(srv.URL).Login(context.Background(), "alice.example", "app-pw-123")
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestResumeValid(t *testing.T) {
	pds, srv := newFakePDS(t)
	pds.access["A0"] = true

	sess, err := New(srv.URL).Resume(context.Background(), session.Cookie{Access: "A0", Did: "did:plc:x", Refresh: "R0"})
	require.NoError(t, err)

	assert.Equal(t, "A0", sess.AccessJwt)
	assert.Equal(t, "R0", sess.RefreshJwt)
	assert.Equal(t, "alice.example", sess.Handle, "metadata comes back from the PDS")
	assert.Equal(t, 0, pds.count("com.atproto.server.refreshSession"))
	assert.Equal(t, "Bearer A0", pds.lastReq["com.atproto.server.getSession"].Header.Get("Authorization"))
}

func TestResumeRefreshesExpiredToken(t *testing.T) {
	pds, srv := newFakePDS(t)
	pds.expired["A0"] = true
	pds.refresh["R0"] = true

	sess, err := New(srv.URL).Resume(context.Background(), session.Cookie{Access: "A0", Did: "did:plc:x", Refresh: "R0"})
	require.NoError(t, err)

	assert.Equal(t, "A2", sess.AccessJwt)
	assert.Equal(t, "R2", sess.RefreshJwt)
	assert.Equal(t, "Bearer R0", pds.lastReq["com.atproto.server.refreshSession"].Header.Get("Authorization"))
}

func TestResumeRejected(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(p *fakePDS)
		cookie session.Cookie
	}{
		{
			name:   "revoked access token",
			setup:  func(p *fakePDS) {},
			cookie: session.Cookie{Access: "stale", Did: "did:plc:x", Refresh: "stale"},
		},
		{
			name:   "expired access and refresh tokens",
			setup:  func(p *fakePDS) { p.expired["stale"] = true },
			cookie: session.Cookie{Access: "stale", Did: "did:plc:x", Refresh: "stale"},
		},
		{
			name:   "cookie for another account",
			setup:  func(p *fakePDS) { p.access["A0"] = true },
			cookie: session.Cookie{Access: "A0", Did: "did:plc:someoneelse", Refresh: "R0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pds, srv := newFakePDS(t)
			tt.setup(pds)

			_, err := New(srv.URL).Resume(context.Background(), tt.cookie)
			assert.ErrorIs(t, err, ErrAuth)
		})
	}
}

func TestAgentTimeline(t *testing.T) {
	pds, srv := newFakePDS(t)
	c := New(srv.URL)

	sess, err := c.Login(context.Background(), "alice.example", "app-pw-123")
	require.NoError(t, err)

	agent := c.Authorize(sess)
	page, err := agent.Timeline(context.Background(), "cur", 25)
	require.NoError(t, err)

	req := pds.lastReq["app.bsky.feed.getTimeline"]
	assert.Equal(t, "Bearer A1", req.Header.Get("Authorization"))
	assert.Equal(t, "cur", req.URL.Query().Get("cursor"))
	assert.Equal(t, "25", req.URL.Query().Get("limit"))

	assert.Equal(t, "next-page", page.Cursor)
	require.Len(t, page.Feed, 1)
	post, ok := page.Feed[0].Post.Record.Val.(*bsky.FeedPost)
	require.True(t, ok)
	assert.Equal(t, "hello from the timeline", post.Text)
	assert.Equal(t, "alice.example", agent.Session().Handle)
}

func TestAgentProfiles(t *testing.T) {
	_, srv := newFakePDS(t)
	c := New(srv.URL, WithFanoutLimit(2))

	sess, err := c.Login(context.Background(), "alice.example", "app-pw-123")
	require.NoError(t, err)
	agent := c.Authorize(sess)

	actors := []string{"safety.bsky.app", "bsky.app", "alice.example"}
	profiles, err := agent.Profiles(context.Background(), actors, fanout.FailFast)
	require.NoError(t, err)
	require.Len(t, profiles, 3)
	for i, actor := range actors {
		assert.Equal(t, actor, profiles[i].Handle)
	}

	_, err = agent.Profiles(context.Background(), []string{"bsky.app", "missing.example"}, fanout.FailFast)
	assert.ErrorIs(t, err, ErrService)

	partial, err := agent.Profiles(context.Background(), []string{"bsky.app", "missing.example"}, fanout.CollectAll)
	assert.Equal(t, []int{1}, fanout.Failed(err))
	require.Len(t, partial, 2)
	assert.Equal(t, "bsky.app", partial[0].Handle)
	assert.Nil(t, partial[1])
}

func TestAgentUnauthorized(t *testing.T) {
	_, srv := newFakePDS(t)
	agent := New(srv.URL).Authorize(&session.Session{AccessJwt: "nope", Did: "did:plc:x"})

	_, err := agent.Timeline(context.Background(), "", 10)
	assert.ErrorIs(t, err, ErrAuth)
}
