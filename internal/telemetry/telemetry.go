// Package telemetry posts usage and error events to a measurement endpoint.
// It is a side channel: every failure is logged and dropped, nothing here may
// affect the operation that triggered the event.
package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/zennit/internal/store"
)

// Collector sends events. A Collector with no endpoint is valid and drops
// everything, so callers never need a nil check.
type Collector struct {
	endpoint string
	client   *http.Client
	clientID string
}

type event struct {
	ClientID string            `json:"client_id"`
	Name     string            `json:"name"`
	Params   map[string]string `json:"params,omitempty"`
	SentAt   time.Time         `json:"sent_at"`
}

// New builds a collector. The client id is a random uuid persisted in the
// local tier so events from one installation correlate across runs.
func New(ctx context.Context, st *store.Store, endpoint string) *Collector {
	c := &Collector{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
	if endpoint == "" {
		return c
	}

	vals, err := st.Get(ctx, []string{store.KeyTelemetryClientID}, store.TierLocal)
	if err == nil {
		c.clientID = vals[store.KeyTelemetryClientID]
	}
	if c.clientID == "" {
		c.clientID = uuid.NewString()
		if err := st.Set(ctx, map[string]string{store.KeyTelemetryClientID: c.clientID}, store.TierLocal); err != nil {
			log.Warn().Err(err).Msg("persisting telemetry client id failed")
		}
	}
	return c
}

// Enabled reports whether events will actually be sent.
func (c *Collector) Enabled() bool { return c.endpoint != "" }

// Event posts a named event. Fire and forget.
func (c *Collector) Event(ctx context.Context, name string, params map[string]string) {
	if !c.Enabled() {
		return
	}
	payload, err := json.Marshal(event{
		ClientID: c.clientID,
		Name:     name,
		Params:   params,
		SentAt:   time.Now().UTC(),
	})
	if err != nil {
		log.Warn().Err(err).Str("event", name).Msg("encoding telemetry event failed")
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(payload))
	if err != nil {
		log.Warn().Err(err).Str("event", name).Msg("building telemetry request failed")
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("event", name).Msg("sending telemetry event failed")
		return
	}
	resp.Body.Close()
}

// Error reports an unexpected failure through the same channel.
func (c *Collector) Error(ctx context.Context, err error) {
	if err == nil {
		return
	}
	c.Event(ctx, "error", map[string]string{"message": err.Error()})
}
