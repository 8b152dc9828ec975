package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	cases := []struct {
		url  string
		want ID
	}{
		{"https://claude.ai/chat/abc", Claude},
		{"https://gemini.google.com/app", Gemini},
		{"https://github.com/copilot", GitHubCopilot},
		{"https://copilot.cloud.microsoft/chat", MicrosoftCopilot},
		{"https://m365.cloud.microsoft/chat?auth=2", MicrosoftCopilot},
		{"https://chatgpt.com/c/123", ChatGPT},
		{"https://example.com/whatever", ChatGPT},
		{"", ChatGPT},
	}
	for _, tc := range cases {
		got := Resolve(tc.url)
		assert.Equal(t, tc.want, got.ID, "url %q", tc.url)
		assert.NotEmpty(t, got.Selector, "url %q", tc.url)
	}
}

func TestResolveOrderingWhenMultipleSubstringsMatch(t *testing.T) {
	// claude.ai appears first in the match list, so it wins even when the URL
	// also mentions a later platform.
	got := Resolve("https://claude.ai/redirect?to=gemini.google.com")
	assert.Equal(t, Claude, got.ID)
}

func TestResolveClaudeSelector(t *testing.T) {
	got := Resolve("https://claude.ai/chat/abc")
	assert.Equal(t, `div[contenteditable="true"]`, got.Selector)
}

func TestLookup(t *testing.T) {
	d, ok := Lookup(Gemini)
	require.True(t, ok)
	assert.Equal(t, Gemini, d.ID)

	_, ok = Lookup(ID("smalltalk-80"))
	assert.False(t, ok)
}

func TestAllCoversEveryPlatform(t *testing.T) {
	all := All()
	require.Len(t, all, 5)
	seen := map[ID]bool{}
	for _, d := range all {
		seen[d.ID] = true
	}
	for _, id := range []ID{ChatGPT, Claude, Gemini, GitHubCopilot, MicrosoftCopilot} {
		assert.True(t, seen[id], "missing %s", id)
	}
}
