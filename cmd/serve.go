package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/zennit/internal/bridge"
	"github.com/zennit/internal/browser"
	"github.com/zennit/internal/injector"
	"github.com/zennit/internal/services"
	"github.com/zennit/internal/telemetry"
)

// ServeCommand returns the serve command
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Run the bridge server that relays generate commands to the browser",
		Action: runServe,
	}
}

func runServe(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.close()

	collector := telemetry.New(c.Context, e.store, e.cfg.Telemetry.Endpoint)
	hub := bridge.NewHub()

	inj := injector.New(e.promptCache(), e.injectorConfig(), func(s injector.State) {
		hub.Broadcast(bridge.StateEvent{State: string(s), At: time.Now()})
	})

	// each command attaches to the browser fresh, so a restarted Chrome does
	// not leave the bridge holding a dead connection
	generate := func(ctx context.Context) error {
		b, err := browser.Connect(ctx, e.cfg.Browser.DevtoolsURL)
		if err != nil {
			collector.Error(ctx, err)
			return err
		}
		defer b.Close()

		tab, err := b.FindTab(services.KnownHosts()...)
		if err != nil {
			collector.Error(ctx, err)
			return err
		}
		defer tab.Close()

		if err := inj.Generate(ctx, tab.URL(), tab); err != nil {
			collector.Error(ctx, err)
			return err
		}
		return nil
	}

	server := bridge.NewServer(e.cfg.Bridge.Port, e.store, hub, generate)
	collector.Event(c.Context, "bridge_started", map[string]string{"port": fmt.Sprint(e.cfg.Bridge.Port)})
	fmt.Printf("Bridge listening on 127.0.0.1:%d\n", e.cfg.Bridge.Port)
	return server.Start()
}
