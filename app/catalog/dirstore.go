package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

var _ Store = (*DirStore)(nil)

// DirStore serves files laid out as <root>/<category>/<subject>/<name>.
type DirStore struct {
	root string
}

// NewDirStore returns a store rooted at root.
func NewDirStore(root string) *DirStore {
	return &DirStore{root: root}
}

// Root returns the catalog directory.
func (s *DirStore) Root() string { return s.root }

func (s *DirStore) dir(category Category, subject Subject) string {
	return filepath.Join(s.root, string(category), string(subject))
}

// List returns regular file names in directory order.
func (s *DirStore) List(ctx context.Context, category Category, subject Subject) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.dir(category, subject))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list %s/%s: %w", category, subject, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// Open opens a single file. Names containing path elements are rejected.
func (s *DirStore) Open(ctx context.Context, category Category, subject Subject, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
		return nil, ErrNotFound
	}
	f, err := os.Open(filepath.Join(s.dir(category, subject), name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open %s/%s/%s: %w", category, subject, name, err)
	}
	return f, nil
}
