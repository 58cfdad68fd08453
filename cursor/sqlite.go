package cursor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

type SqliteStore struct {
	db        *sql.DB
	tableName string
}

var _ Store = &SqliteStore{}

type SqliteStoreOpt func(*SqliteStore)

func WithTableName(name string) SqliteStoreOpt {
	return func(s *SqliteStore) {
		s.tableName = name
	}
}

func NewSQLiteStore(dbPath string, opts ...SqliteStoreOpt) (*SqliteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// :memory: databases are per connection
	db.SetMaxOpenConns(1)

	store := &SqliteStore{
		db:        db,
		tableName: "cursors",
	}

	for _, o := range opts {
		o(store)
	}

	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SqliteStore) init() error {
	createTable := fmt.Sprintf(`
	create table if not exists %s (
		name text primary key,
		cursor text not null,
		updated text not null default (strftime('%%Y-%%m-%%dT%%H:%%M:%%SZ', 'now'))
	);`, s.tableName)
	_, err := s.db.Exec(createTable)
	return err
}

func (s *SqliteStore) Set(ctx context.Context, key, cursor string) error {
	query := fmt.Sprintf(`
		insert into %s (name, cursor)
		values (?, ?)
		on conflict(name) do update set
			cursor = excluded.cursor,
			updated = strftime('%%Y-%%m-%%dT%%H:%%M:%%SZ', 'now');
	`, s.tableName)

	if _, err := s.db.ExecContext(ctx, query, key, cursor); err != nil {
		return fmt.Errorf("failed to save cursor: %w", err)
	}
	return nil
}

func (s *SqliteStore) Get(ctx context.Context, key string) (string, error) {
	query := fmt.Sprintf(`
		select cursor from %s where name = ?;
	`, s.tableName)

	var cursor string
	err := s.db.QueryRowContext(ctx, query, key).Scan(&cursor)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read cursor: %w", err)
	}

	return cursor, nil
}

func (s *SqliteStore) Delete(ctx context.Context, key string) error {
	query := fmt.Sprintf(`delete from %s where name = ?;`, s.tableName)
	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("failed to delete cursor: %w", err)
	}
	return nil
}

func (s *SqliteStore) Close() error {
	return s.db.Close()
}
