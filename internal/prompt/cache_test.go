package prompt

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zennit/internal/store"
)

type countingSource struct {
	loads int
	text  string
	err   error
}

func (s *countingSource) Load(context.Context, string) (string, error) {
	s.loads++
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "settings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestGetFillsCacheOnceThenHits(t *testing.T) {
	st := openTestStore(t)
	src := &countingSource{text: "default prompt"}
	c := NewCache(st, src)
	ctx := context.Background()

	first, err := c.Get(ctx, "claude", false)
	require.NoError(t, err)
	assert.Equal(t, "default prompt", first)
	assert.Equal(t, 1, src.loads)
	assert.Equal(t, "default prompt", st.Prompt(ctx, "claude"), "cache fill must persist")

	second, err := c.Get(ctx, "claude", false)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, src.loads, "warm call must not touch assets")
}

func TestGetForceReloadAlwaysLoads(t *testing.T) {
	st := openTestStore(t)
	require.NoError(t, st.SetPrompt(context.Background(), "gemini", "edited by user"))

	src := &countingSource{text: "factory default"}
	c := NewCache(st, src)

	text, err := c.Get(context.Background(), "gemini", true)
	require.NoError(t, err)
	assert.Equal(t, "factory default", text)
	assert.Equal(t, 1, src.loads)
	assert.Equal(t, "factory default", st.Prompt(context.Background(), "gemini"))
}

func TestBlankStoredValueIsAMiss(t *testing.T) {
	st := openTestStore(t)
	require.NoError(t, st.SetPrompt(context.Background(), "chatgpt", "   \n\t"))

	src := &countingSource{text: "default"}
	c := NewCache(st, src)

	text, err := c.Get(context.Background(), "chatgpt", false)
	require.NoError(t, err)
	assert.Equal(t, "default", text)
	assert.Equal(t, 1, src.loads)
}

func TestGetPropagatesAssetLoadError(t *testing.T) {
	st := openTestStore(t)
	src := &countingSource{err: &AssetLoadError{Service: "claude", Status: 503}}
	c := NewCache(st, src)

	_, err := c.Get(context.Background(), "claude", false)
	var ale *AssetLoadError
	require.True(t, errors.As(err, &ale))
	assert.Equal(t, 503, ale.Status)
}

func TestEmbedSourceServesEveryBundledService(t *testing.T) {
	src := EmbedSource{}
	for _, id := range []string{"chatgpt", "claude", "gemini", "github-copilot", "microsoft-copilot"} {
		text, err := src.Load(context.Background(), id)
		require.NoError(t, err, id)
		assert.NotEmpty(t, text, id)
	}
}

func TestEmbedSourceMissingAsset(t *testing.T) {
	_, err := EmbedSource{}.Load(context.Background(), "no-such-service")
	var ale *AssetLoadError
	require.True(t, errors.As(err, &ale))
	assert.Equal(t, http.StatusNotFound, ale.Status)
}

func TestHTTPSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/assets/prompt/claude.txt":
			_, _ = w.Write([]byte("remote prompt"))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	src := &HTTPSource{BaseURL: server.URL}

	text, err := src.Load(context.Background(), "claude")
	require.NoError(t, err)
	assert.Equal(t, "remote prompt", text)

	_, err = src.Load(context.Background(), "gemini")
	var ale *AssetLoadError
	require.True(t, errors.As(err, &ale))
	assert.Equal(t, http.StatusInternalServerError, ale.Status)
}
