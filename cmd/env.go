package cmd

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/zennit/internal/config"
	"github.com/zennit/internal/injector"
	"github.com/zennit/internal/prompt"
	"github.com/zennit/internal/store"
)

// env bundles the pieces every command needs.
type env struct {
	cfg   *config.Config
	store *store.Store
}

func setup(c *cli.Context) (*env, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings store: %w", err)
	}
	return &env{cfg: cfg, store: st}, nil
}

func (e *env) close() {
	e.store.Close()
}

// promptCache builds the prompt cache, preferring a configured asset URL over
// the bundled defaults.
func (e *env) promptCache() *prompt.Cache {
	var src prompt.AssetSource
	if e.cfg.Prompt.AssetBaseURL != "" {
		src = &prompt.HTTPSource{BaseURL: e.cfg.Prompt.AssetBaseURL}
	}
	return prompt.NewCache(e.store, src)
}

func (e *env) injectorConfig() injector.Config {
	return injector.Config{
		WaitInterval:    time.Duration(e.cfg.Browser.WaitIntervalMS) * time.Millisecond,
		WaitMaxAttempts: e.cfg.Browser.WaitMaxAttempts,
		SettleDelay:     50 * time.Millisecond,
	}
}
