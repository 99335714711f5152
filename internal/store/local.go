package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Ext is the file extension of stored records.
const Ext = ".json"

// LocalStore implements Store using the local filesystem.
//
// Storage layout:
//
//	dir/
//	  gen9ou-123.json
//	  gen9ou-124.json
//
// The directory is owned by the uploader; LocalStore never writes to it.
type LocalStore struct {
	dir string
}

// NewLocalStore opens a store rooted at dir. The directory must already exist.
func NewLocalStore(dir string) (*LocalStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve replays dir: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat replays dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("replays dir is not a directory: %s", abs)
	}

	return &LocalStore{dir: abs}, nil
}

// Get reads the record stored under id.
func (s *LocalStore) Get(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, ok := s.recordPath(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to read record: %w", err)
	}
	return data, nil
}

// List returns the ids of every *.json file in the store directory.
func (s *LocalStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read replays dir: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if id, ok := IDFromFilename(entry.Name()); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Ping checks that the store directory is still accessible.
func (s *LocalStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := os.Stat(s.dir); err != nil {
		return fmt.Errorf("replays dir inaccessible: %w", err)
	}
	return nil
}

// Dir returns the absolute store directory.
func (s *LocalStore) Dir() string {
	return s.dir
}

// IDFromFilename maps a file name (or path) to the id it stores.
// Only names ending in .json carry a record.
func IDFromFilename(name string) (string, bool) {
	base := filepath.Base(name)
	id, ok := strings.CutSuffix(base, Ext)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// recordPath returns the filesystem path for an id.
// Ids that would escape the store directory are rejected.
func (s *LocalStore) recordPath(id string) (string, bool) {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return "", false
	}
	return filepath.Join(s.dir, id+Ext), true
}

var _ Store = (*LocalStore)(nil)
