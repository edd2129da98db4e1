// Package catalog exposes the downloadable test and answer files.
package catalog

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when a file or selection token does not resolve.
var ErrNotFound = errors.New("catalog: not found")

// Category is the first menu level.
type Category string

const (
	CategoryTest   Category = "test"
	CategoryAnswer Category = "answer"
)

// Subject is the second menu level.
type Subject string

const (
	SubjectMath    Subject = "math"
	SubjectEnglish Subject = "english"
)

// ParseCategory maps a payload segment to a Category.
func ParseCategory(s string) (Category, bool) {
	switch c := Category(s); c {
	case CategoryTest, CategoryAnswer:
		return c, true
	}
	return "", false
}

// ParseSubject maps a payload segment to a Subject.
func ParseSubject(s string) (Subject, bool) {
	switch sub := Subject(s); sub {
	case SubjectMath, SubjectEnglish:
		return sub, true
	}
	return "", false
}

// Label is the user-facing name of the category.
func (c Category) Label() string {
	switch c {
	case CategoryTest:
		return "Tests"
	case CategoryAnswer:
		return "Answers"
	}
	return string(c)
}

// Label is the user-facing name of the subject.
func (s Subject) Label() string {
	switch s {
	case SubjectMath:
		return "Math"
	case SubjectEnglish:
		return "English"
	}
	return string(s)
}

// Store reads catalog files grouped by category and subject.
type Store interface {
	// List returns the filenames stored for (category, subject). A missing
	// group is an empty listing, not an error.
	List(ctx context.Context, category Category, subject Subject) ([]string, error)
	// Open returns the file content or ErrNotFound.
	Open(ctx context.Context, category Category, subject Subject, name string) (io.ReadCloser, error)
}
