package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/zennit/internal/browser"
	"github.com/zennit/internal/injector"
	"github.com/zennit/internal/services"
	"github.com/zennit/internal/telemetry"
)

// GenerateCommand returns the generate command
func GenerateCommand() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Inject the summarization prompt into an open chat-assistant tab and submit it",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "url",
				Aliases: []string{"u"},
				Usage:   "Substring of the tab URL to drive (default: first tab on a supported platform)",
			},
		},
		Action: runGenerate,
	}
}

func runGenerate(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.close()

	ctx := c.Context
	collector := telemetry.New(ctx, e.store, e.cfg.Telemetry.Endpoint)
	collector.Event(ctx, "command_received", map[string]string{"action": "generateSummary"})

	b, err := browser.Connect(ctx, e.cfg.Browser.DevtoolsURL)
	if err != nil {
		collector.Error(ctx, err)
		return err
	}
	defer b.Close()

	match := services.KnownHosts()
	if u := c.String("url"); u != "" {
		match = []string{u}
	}
	tab, err := b.FindTab(match...)
	if err != nil {
		collector.Error(ctx, err)
		return err
	}
	defer tab.Close()

	inj := injector.New(e.promptCache(), e.injectorConfig(), nil)
	if err := inj.Generate(ctx, tab.URL(), tab); err != nil {
		collector.Error(ctx, err)
		return err
	}

	fmt.Printf("Prompt submitted to %s\n", tab.URL())
	return nil
}
