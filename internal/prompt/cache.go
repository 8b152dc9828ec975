// Package prompt resolves the prompt body to inject for a service. Storage is
// checked first; on a miss the bundled default asset is loaded and written
// back, so the store becomes consistent with the bundle without a migration
// step.
package prompt

import (
	"context"
	"embed"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/zennit/internal/store"
)

//go:embed assets/prompt
var defaultAssets embed.FS

// AssetLoadError reports a failed load of a bundled default prompt. Status
// carries the HTTP status code (404 for a missing embedded asset).
type AssetLoadError struct {
	Service string
	Status  int
	Err     error
}

func (e *AssetLoadError) Error() string {
	return fmt.Sprintf("prompt: loading default asset for %s failed (status %d)", e.Service, e.Status)
}

func (e *AssetLoadError) Unwrap() error { return e.Err }

// AssetSource loads a bundled default prompt for a service id.
type AssetSource interface {
	Load(ctx context.Context, serviceID string) (string, error)
}

// EmbedSource serves defaults from the assets compiled into the binary.
type EmbedSource struct{}

func (EmbedSource) Load(_ context.Context, serviceID string) (string, error) {
	data, err := defaultAssets.ReadFile("assets/prompt/" + serviceID + ".txt")
	if err != nil {
		return "", &AssetLoadError{Service: serviceID, Status: http.StatusNotFound, Err: err}
	}
	return string(data), nil
}

// HTTPSource serves defaults from an asset base URL, for deployments that
// update prompts without shipping a new binary.
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
}

func (s *HTTPSource) Load(ctx context.Context, serviceID string) (string, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	url := strings.TrimSuffix(s.BaseURL, "/") + "/assets/prompt/" + serviceID + ".txt"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &AssetLoadError{Service: serviceID, Err: err}
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", &AssetLoadError{Service: serviceID, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &AssetLoadError{Service: serviceID, Status: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &AssetLoadError{Service: serviceID, Status: resp.StatusCode, Err: err}
	}
	return string(body), nil
}

// Cache resolves prompt bodies with a storage-first policy.
type Cache struct {
	store  *store.Store
	assets AssetSource
}

func NewCache(st *store.Store, assets AssetSource) *Cache {
	if assets == nil {
		assets = EmbedSource{}
	}
	return &Cache{store: st, assets: assets}
}

// Get returns the prompt body for a service. Unless forceReload is set, a
// stored value that is non-blank after trimming wins. Otherwise the bundled
// default is loaded and cached back into the store before returning.
func (c *Cache) Get(ctx context.Context, serviceID string, forceReload bool) (string, error) {
	if !forceReload {
		vals, err := c.store.Get(ctx, []string{serviceID}, store.TierSync)
		if err != nil {
			return "", err
		}
		if text := vals[serviceID]; strings.TrimSpace(text) != "" {
			return text, nil
		}
	}

	text, err := c.assets.Load(ctx, serviceID)
	if err != nil {
		return "", err
	}
	if text != "" {
		if err := c.store.SetPrompt(ctx, serviceID, text); err != nil {
			// the caller still gets a usable prompt; the fill retries next time
			log.Warn().Err(err).Str("service", serviceID).Msg("caching prompt to store failed")
		}
	}
	return text, nil
}
