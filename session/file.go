package session

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
)

// FileStore keeps the session in a single file. Writes go through a
// temporary file in the same directory and a rename, so a failed save
// never leaves a truncated cookie behind.
type FileStore struct {
	path string
}

var _ Store = &FileStore{}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load(_ context.Context) (string, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", &IoError{Op: "load", Location: s.path, Err: err}
	}
	return string(b), nil
}

func (s *FileStore) Save(_ context.Context, text string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return &IoError{Op: "save", Location: s.path, Err: err}
	}

	if err := atomic.WriteFile(s.path, strings.NewReader(text)); err != nil {
		return &IoError{Op: "save", Location: s.path, Err: err}
	}

	return nil
}

func (s *FileStore) Delete(_ context.Context) error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &IoError{Op: "delete", Location: s.path, Err: err}
	}
	return nil
}
