package cursor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tangled.sh/tangled.sh/skyline/cache"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	key := TimelineKey("did:plc:x")

	got, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, s.Set(ctx, key, "page-2"))
	require.NoError(t, s.Set(ctx, TimelineKey("did:plc:y"), "other"))

	got, err = s.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "page-2", got)

	require.NoError(t, s.Set(ctx, key, "page-3"))
	got, err = s.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "page-3", got)

	require.NoError(t, s.Delete(ctx, key))
	got, err = s.Get(ctx, key)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = s.Get(ctx, TimelineKey("did:plc:y"))
	require.NoError(t, err)
	assert.Equal(t, "other", got)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, &MemoryStore{})
}

func TestSqliteStore(t *testing.T) {
	tests := []struct {
		name string
		opts []SqliteStoreOpt
	}{
		{"default table", nil},
		{"custom table", []SqliteStoreOpt{WithTableName("timeline_cursors")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSQLiteStore(":memory:", tt.opts...)
			require.NoError(t, err)
			defer s.Close()

			exerciseStore(t, s)
		})
	}
}

func TestSqliteStorePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "skyline.db")

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "k", "v"))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("SKYLINE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("SKYLINE_TEST_REDIS_ADDR not set")
	}

	c, err := cache.FromURL(context.Background(), "redis://"+addr+"/0")
	require.NoError(t, err)
	defer c.Close()

	s := NewRedisCursorStore(c)
	t.Cleanup(func() {
		_ = s.Delete(context.Background(), TimelineKey("did:plc:y"))
	})
	exerciseStore(t, s)
}
