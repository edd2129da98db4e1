package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tok := Token{Serial: 12, Index: 3}
	assert.Equal(t, "12.3", tok.String())

	got, err := ParseToken("12.3")
	require.NoError(t, err)
	assert.Equal(t, tok, got)
}

func TestParseTokenRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "1", "1.", ".1", "a.1", "1.b", "1.-1", "1.+1", "-1.0", "1.2.3"} {
		_, err := ParseToken(in)
		assert.ErrorIs(t, err, ErrMalformedToken, in)
	}
}

func TestReplaceInvalidatesOldTokens(t *testing.T) {
	c := New()

	first := c.Replace(7, "test", "math", []string{"a.pdf", "b.pdf"})
	tokens := first.Tokens()
	require.Len(t, tokens, 2)

	_, name, ok := c.Lookup(7, tokens[1])
	require.True(t, ok)
	assert.Equal(t, "b.pdf", name)

	second := c.Replace(7, "test", "math", []string{"c.pdf", "d.pdf"})
	assert.NotEqual(t, first.Serial, second.Serial)

	_, _, ok = c.Lookup(7, tokens[1])
	assert.False(t, ok)

	_, name, ok = c.Lookup(7, second.Tokens()[1])
	require.True(t, ok)
	assert.Equal(t, "d.pdf", name)
}

func TestLookupIsPerUser(t *testing.T) {
	c := New()
	l := c.Replace(1, "answer", "english", []string{"x.pdf"})

	_, _, ok := c.Lookup(2, l.Tokens()[0])
	assert.False(t, ok)

	_, _, ok = c.Lookup(1, Token{Serial: l.Serial, Index: 1})
	assert.False(t, ok)

	assert.Equal(t, 1, c.Len())
}

func TestReplaceCopiesFiles(t *testing.T) {
	c := New()
	files := []string{"a.pdf"}
	l := c.Replace(1, "test", "math", files)
	files[0] = "mutated.pdf"

	_, name, ok := c.Lookup(1, l.Tokens()[0])
	require.True(t, ok)
	assert.Equal(t, "a.pdf", name)
}

func TestEmptyListing(t *testing.T) {
	c := New()
	l := c.Replace(1, "test", "english", nil)
	assert.True(t, l.Empty())
	assert.Empty(t, l.Tokens())
}
