// Package cursor remembers where the last timeline page ended, so the
// next run can pick up from there.
package cursor

import "context"

type Store interface {
	// Get returns "" when no cursor is stored for key.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, cursor string) error
	Delete(ctx context.Context, key string) error
}

func TimelineKey(did string) string {
	return "timeline:" + did
}
