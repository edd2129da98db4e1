// Package selection remembers the last file listing shown to each user so
// that short button tokens can be mapped back to filenames.
package selection

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// ErrMalformedToken is returned by ParseToken for text that is not "<serial>.<index>".
var ErrMalformedToken = errors.New("malformed selection token")

// Token points at one file of one listing.
type Token struct {
	Serial uint64
	Index  int
}

// String encodes the token as "<serial>.<index>".
func (t Token) String() string {
	return strconv.FormatUint(t.Serial, 10) + "." + strconv.Itoa(t.Index)
}

// ParseToken decodes the output of Token.String.
func ParseToken(s string) (Token, error) {
	serial, index, ok := strings.Cut(s, ".")
	if !ok || serial == "" || index == "" {
		return Token{}, fmt.Errorf("%w: %q", ErrMalformedToken, s)
	}
	ser, err := strconv.ParseUint(serial, 10, 64)
	if err != nil {
		return Token{}, fmt.Errorf("%w: %q", ErrMalformedToken, s)
	}
	idx, err := strconv.Atoi(index)
	if err != nil || idx < 0 || strings.HasPrefix(index, "+") {
		return Token{}, fmt.Errorf("%w: %q", ErrMalformedToken, s)
	}
	return Token{Serial: ser, Index: idx}, nil
}

// Listing is the ordered set of files most recently shown to a user.
type Listing struct {
	Serial   uint64
	Category string
	Subject  string
	Files    []string
}

// Empty reports whether the listing has no files.
func (l Listing) Empty() bool { return len(l.Files) == 0 }

// Tokens returns one token per file, in listing order.
func (l Listing) Tokens() []Token {
	out := make([]Token, len(l.Files))
	for i := range l.Files {
		out[i] = Token{Serial: l.Serial, Index: i}
	}
	return out
}

// Cache maps user IDs to their latest listing. The zero value is not usable.
type Cache struct {
	mu      sync.RWMutex
	entries map[int64]Listing
	serial  uint64
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{entries: make(map[int64]Listing)}
}

// Replace stores a fresh listing for userID, invalidating every token of the previous one.
func (c *Cache) Replace(userID int64, category, subject string, files []string) Listing {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.serial++
	l := Listing{
		Serial:   c.serial,
		Category: category,
		Subject:  subject,
		Files:    append([]string(nil), files...),
	}
	c.entries[userID] = l
	return l
}

// Lookup returns the filename tok points at, if tok belongs to the user's current listing.
func (c *Cache) Lookup(userID int64, tok Token) (Listing, string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	l, ok := c.entries[userID]
	if !ok || l.Serial != tok.Serial || tok.Index < 0 || tok.Index >= len(l.Files) {
		return Listing{}, "", false
	}
	return l, l.Files[tok.Index], true
}

// Len returns the number of users with a stored listing.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
