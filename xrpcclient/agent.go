package xrpcclient

import (
	"context"
	"fmt"

	"github.com/bluesky-social/indigo/api/bsky"
	indigoxrpc "github.com/bluesky-social/indigo/xrpc"
	"tangled.sh/tangled.sh/skyline/fanout"
	"tangled.sh/tangled.sh/skyline/session"
)

// Agent makes read calls as an authenticated account. It is never
// mutated after Authorize, so one Agent can serve many goroutines.
type Agent struct {
	xrpcc       *indigoxrpc.Client
	session     session.Session
	fanoutLimit int
}

func (a *Agent) Session() session.Session {
	return a.session
}

type TimelinePage struct {
	Feed []*bsky.FeedDefs_FeedViewPost
	// Cursor is empty on the last page.
	Cursor string
}

func (a *Agent) Timeline(ctx context.Context, cursor string, limit int64) (*TimelinePage, error) {
	out, err := bsky.FeedGetTimeline(ctx, a.xrpcc, "", cursor, limit)
	if err != nil {
		return nil, fmt.Errorf("getTimeline: %w", HandleXrpcErr(err))
	}

	page := &TimelinePage{Feed: out.Feed}
	if out.Cursor != nil {
		page.Cursor = *out.Cursor
	}
	return page, nil
}

func (a *Agent) Profile(ctx context.Context, actor string) (*bsky.ActorDefs_ProfileViewDetailed, error) {
	out, err := bsky.ActorGetProfile(ctx, a.xrpcc, actor)
	if err != nil {
		return nil, fmt.Errorf("getProfile %s: %w", actor, HandleXrpcErr(err))
	}
	return out, nil
}

// Profiles fetches every actor in parallel. Results line up with actors.
func (a *Agent) Profiles(ctx context.Context, actors []string, policy fanout.Policy) ([]*bsky.ActorDefs_ProfileViewDetailed, error) {
	return fanout.Gather(ctx, actors, a.fanoutLimit, policy, a.Profile)
}
