package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/zennit/internal/config"
)

// ConfigCommand returns the config command
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage configuration",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Write a sample configuration file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
						Value:   "zennit.toml",
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file",
					},
				},
				Action: runConfigInit,
			},
			{
				Name:   "validate",
				Usage:  "Validate the configuration and show the effective settings",
				Action: runConfigValidate,
			},
		},
	}
}

func runConfigInit(c *cli.Context) error {
	outputPath := c.String("output")

	if err := config.InitConfig(outputPath, c.Bool("force")); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	fmt.Printf("Created configuration file at %s\n", outputPath)
	return nil
}

func runConfigValidate(c *cli.Context) error {
	configPath := c.String("config")

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	fmt.Println("Configuration is valid")
	fmt.Printf("  store:     %s\n", cfg.Store.Path)
	fmt.Printf("  browser:   %s (poll %dms, max %d attempts)\n",
		cfg.Browser.DevtoolsURL, cfg.Browser.WaitIntervalMS, cfg.Browser.WaitMaxAttempts)
	fmt.Printf("  bridge:    127.0.0.1:%d\n", cfg.Bridge.Port)
	fmt.Printf("  github:    %s\n", cfg.GitHub.APIURL)
	if cfg.Prompt.AssetBaseURL != "" {
		fmt.Printf("  prompts:   %s\n", cfg.Prompt.AssetBaseURL)
	}
	if cfg.Telemetry.Endpoint == "" {
		fmt.Println("  telemetry: disabled")
	} else {
		fmt.Printf("  telemetry: %s\n", cfg.Telemetry.Endpoint)
	}
	return nil
}
