package menu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatch(t *testing.T) {
	cases := map[string]Button{
		"📚 Download Tests":   ButtonTests,
		"Download Tests":     ButtonTests,
		"download answers":   ButtonAnswers,
		"📝 Download Answers": ButtonAnswers,
		"❓ Ask a Question":   ButtonAsk,
		"ℹ️ About Us":        ButtonAbout,
		"ℹ About Us":         ButtonAbout,
		"  About Us ":        ButtonAbout,
	}
	for text, want := range cases {
		got, ok := Match(text)
		assert.True(t, ok, text)
		assert.Equal(t, want, got, text)
	}

	for _, text := range []string{"", "Download", "Tests please", "hello"} {
		_, ok := Match(text)
		assert.False(t, ok, text)
	}
}

func TestMainKeyboard(t *testing.T) {
	kb := Main()
	require.Len(t, kb.Reply, 2)
	assert.Equal(t, []string{"📚 Download Tests", "📝 Download Answers"}, kb.Reply[0])
	assert.Equal(t, []string{"❓ Ask a Question", "ℹ️ About Us"}, kb.Reply[1])
	assert.True(t, kb.OneTime)

	for _, row := range kb.Reply {
		for _, text := range row {
			_, ok := Match(text)
			assert.True(t, ok, text)
		}
	}
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Jane Doe", Title("jane doe"))
	assert.Equal(t, "Jane Doe", Title("  JANE DOE "))
}

func TestAdminNotice(t *testing.T) {
	got := AdminNotice("jane doe", 42, 7)
	assert.Equal(t, "[Jane Doe](tg://user?id=42) registered\\.\nNow 7 users in the database\\.", got)

	got = AdminNotice("jane", 42, -1)
	assert.Equal(t, "[Jane](tg://user?id=42) registered\\.", got)
}

func TestWelcomeBack(t *testing.T) {
	assert.Equal(t, "Welcome back, Jane Doe! 👋", WelcomeBack("jane doe"))
}
