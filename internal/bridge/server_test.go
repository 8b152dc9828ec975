package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
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

func postCommand(t *testing.T, h http.Handler, body string) (*httptest.ResponseRecorder, Ack) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/command", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var ack Ack
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ack))
	return rec, ack
}

func TestCommandSuccess(t *testing.T) {
	st := openTestStore(t)
	var generateCalls int
	s := NewServer(0, st, NewHub(), func(context.Context) error {
		generateCalls++
		return nil
	})

	rec, ack := postCommand(t, s.Handler(), `{"action":"generateSummary"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, ack.Success)
	assert.Empty(t, ack.Error)
	assert.Equal(t, 1, generateCalls)
}

func TestCommandFailureCarriesErrorMessage(t *testing.T) {
	st := openTestStore(t)
	s := NewServer(0, st, NewHub(), func(context.Context) error {
		return errors.New("element \"#prompt-textarea\" not found after 240 attempts")
	})

	rec, ack := postCommand(t, s.Handler(), `{"action":"generateSummary"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, ack.Success)
	assert.Contains(t, ack.Error, "not found")
}

func TestCommandUnknownAction(t *testing.T) {
	st := openTestStore(t)
	s := NewServer(0, st, NewHub(), func(context.Context) error {
		t.Fatal("generate must not run for unknown actions")
		return nil
	})

	rec, ack := postCommand(t, s.Handler(), `{"action":"selfDestruct"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, ack.Success)
	assert.Contains(t, ack.Error, "unknown action")
}

func TestCommandTogglesGeneratingFlag(t *testing.T) {
	st := openTestStore(t)
	var duringGenerate bool
	s := NewServer(0, st, NewHub(), func(ctx context.Context) error {
		duringGenerate = st.Generating(ctx)
		return nil
	})

	postCommand(t, s.Handler(), `{"action":"generateSummary"}`)
	assert.True(t, duringGenerate, "flag must be set while the sequence runs")
	assert.False(t, st.Generating(context.Background()), "flag must clear afterwards")
}

func TestStatusReflectsGeneratingFlag(t *testing.T) {
	st := openTestStore(t)
	s := NewServer(0, st, NewHub(), nil)

	get := func() string {
		req := httptest.NewRequest(http.MethodGet, "/status", nil)
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		return strings.TrimSpace(rec.Body.String())
	}

	assert.JSONEq(t, `{"generating":false}`, get())
	require.NoError(t, st.SetGenerating(context.Background(), true))
	assert.JSONEq(t, `{"generating":true}`, get())
}

func TestHealth(t *testing.T) {
	st := openTestStore(t)
	s := NewServer(0, st, NewHub(), nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestEventsFeedReceivesBroadcasts(t *testing.T) {
	st := openTestStore(t)
	hub := NewHub()
	s := NewServer(0, st, hub, nil)

	server := httptest.NewServer(s.Handler())
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/events"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	defer resp.Body.Close()

	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	hub.Broadcast(StateEvent{State: "typing", At: time.Now()})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev StateEvent
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "typing", ev.State)
}

// Overlapping commands broadcast from separate goroutines; writes to a
// subscriber must stay serialized.
func TestConcurrentBroadcastsToOneSubscriber(t *testing.T) {
	st := openTestStore(t)
	hub := NewHub()
	s := NewServer(0, st, hub, nil)

	server := httptest.NewServer(s.Handler())
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/events"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	defer resp.Body.Close()

	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	received := make(chan int, 1)
	go func() {
		n := 0
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		var ev StateEvent
		for conn.ReadJSON(&ev) == nil {
			n++
		}
		received <- n
	}()

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				hub.Broadcast(StateEvent{State: "typing", At: time.Now()})
			}
		}()
	}
	wg.Wait()

	conn.Close()
	assert.Greater(t, <-received, 0)
	require.Eventually(t, func() bool { return hub.Count() == 0 }, time.Second, 10*time.Millisecond)
}
