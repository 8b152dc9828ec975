package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zennit/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "settings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestEventPostsPayload(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &received)
	}))
	defer server.Close()

	st := openTestStore(t)
	c := New(context.Background(), st, server.URL)
	require.True(t, c.Enabled())

	c.Event(context.Background(), "command_received", map[string]string{"action": "generateSummary"})

	require.NotNil(t, received)
	assert.Equal(t, "command_received", received["name"])
	assert.NotEmpty(t, received["client_id"])
}

func TestClientIDPersistsAcrossCollectors(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	a := New(ctx, st, "http://localhost:1")
	b := New(ctx, st, "http://localhost:1")
	assert.Equal(t, a.clientID, b.clientID)
	assert.NotEmpty(t, a.clientID)
}

func TestDisabledCollectorDropsEverything(t *testing.T) {
	st := openTestStore(t)
	c := New(context.Background(), st, "")
	assert.False(t, c.Enabled())

	// must not panic or block
	c.Event(context.Background(), "anything", nil)
	c.Error(context.Background(), errors.New("boom"))
}

func TestSendFailureIsSwallowed(t *testing.T) {
	st := openTestStore(t)
	c := New(context.Background(), st, "http://127.0.0.1:1")
	c.Event(context.Background(), "unreachable", nil)
}
