package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/zennit/cmd"
	"github.com/zennit/internal/logging"
)

const (
	version = "0.1.0"
)

func main() {
	// a .env next to the binary can carry ZENNIT_* overrides
	_ = godotenv.Load()

	app := &cli.App{
		Name:    "zennit",
		Usage:   "Generate chat-assistant summaries and publish them to GitHub",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Load configuration from `FILE`",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			logging.Setup(c.Bool("verbose"))
			return nil
		},
		Commands: []*cli.Command{
			cmd.GenerateCommand(),
			cmd.PublishCommand(),
			cmd.ServeCommand(),
			cmd.PromptCommand(),
			cmd.RepoCommand(),
			cmd.ConfigCommand(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
