package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/m3rciful/satbot/app/selection"
	"github.com/m3rciful/satbot/core/logger"
)

// DefaultExtensions lists the file types shown when none are configured.
var DefaultExtensions = []string{".pdf", ".doc", ".docx", ".zip", ".jpg", ".png"}

// File is a resolved catalog entry.
type File struct {
	Category Category
	Subject  Subject
	Name     string
}

// Navigator lists catalog files and maps selection tokens back to them.
type Navigator struct {
	store Store
	cache *selection.Cache
	exts  map[string]struct{}
}

// NewNavigator builds a navigator. Empty extensions fall back to DefaultExtensions.
func NewNavigator(store Store, cache *selection.Cache, extensions []string) *Navigator {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	exts := make(map[string]struct{}, len(extensions))
	for _, e := range extensions {
		if e = NormalizeExtension(e); e != "" {
			exts[e] = struct{}{}
		}
	}
	return &Navigator{store: store, cache: cache, exts: exts}
}

// NormalizeExtension lowercases e and adds a leading dot.
func NormalizeExtension(e string) string {
	e = strings.ToLower(strings.TrimSpace(e))
	if e == "" || e == "." {
		return ""
	}
	if !strings.HasPrefix(e, ".") {
		e = "." + e
	}
	return e
}

// Subjects returns the subjects offered for every category.
func (n *Navigator) Subjects(Category) []Subject {
	return []Subject{SubjectMath, SubjectEnglish}
}

// ListFiles reads the allowed files for (category, subject), sorted by name,
// and makes them the user's current selection.
func (n *Navigator) ListFiles(ctx context.Context, userID int64, category Category, subject Subject) (selection.Listing, error) {
	names, err := n.store.List(ctx, category, subject)
	if err != nil {
		return selection.Listing{}, err
	}
	files := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := n.exts[strings.ToLower(filepath.Ext(name))]; ok {
			files = append(files, name)
		}
	}
	sort.Strings(files)

	listing := n.cache.Replace(userID, string(category), string(subject), files)
	preview, truncated := logger.SummarizeStrings(files, 6)
	logger.Debug(ctx, logger.CompCatalog, "catalog.list",
		slog.String("category", string(category)),
		slog.String("subject", string(subject)),
		slog.Int("files_total", len(files)),
		slog.Int("skipped", len(names)-len(files)),
		slog.String("files_preview", preview),
		slog.Bool("files_truncated", truncated),
	)
	return listing, nil
}

// Resolve maps tok to a file of the user's current listing.
func (n *Navigator) Resolve(userID int64, tok selection.Token) (File, error) {
	listing, name, ok := n.cache.Lookup(userID, tok)
	if !ok {
		return File{}, fmt.Errorf("token %s: %w", tok, ErrNotFound)
	}
	return File{
		Category: Category(listing.Category),
		Subject:  Subject(listing.Subject),
		Name:     name,
	}, nil
}

// Open streams the content of f.
func (n *Navigator) Open(ctx context.Context, f File) (io.ReadCloser, error) {
	return n.store.Open(ctx, f.Category, f.Subject, f.Name)
}
