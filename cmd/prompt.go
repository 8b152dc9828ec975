package cmd

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/zennit/internal/services"
)

// PromptCommand returns the prompt command
func PromptCommand() *cli.Command {
	return &cli.Command{
		Name:  "prompt",
		Usage: "Manage per-service summarization prompts",
		Subcommands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "Print the prompt that would be injected for a service",
				ArgsUsage: "SERVICE",
				Action:    runPromptShow,
			},
			{
				Name:      "reset",
				Usage:     "Replace the stored prompt with the bundled default",
				ArgsUsage: "SERVICE",
				Action:    runPromptReset,
			},
			{
				Name:      "set",
				Usage:     "Store a custom prompt for a service",
				ArgsUsage: "SERVICE",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Read the prompt body from `FILE`",
						Required: true,
					},
				},
				Action: runPromptSet,
			},
		},
	}
}

func serviceArg(c *cli.Context) (services.ID, error) {
	if c.NArg() < 1 {
		return "", fmt.Errorf("missing required argument: service (one of: chatgpt, claude, gemini, github-copilot, microsoft-copilot)")
	}
	id := services.ID(c.Args().Get(0))
	if _, ok := services.Lookup(id); !ok {
		return "", fmt.Errorf("unknown service %q", id)
	}
	return id, nil
}

func runPromptShow(c *cli.Context) error {
	id, err := serviceArg(c)
	if err != nil {
		return err
	}
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.close()

	text, err := e.promptCache().Get(c.Context, string(id), false)
	if err != nil {
		return err
	}
	fmt.Println(text)
	return nil
}

func runPromptReset(c *cli.Context) error {
	id, err := serviceArg(c)
	if err != nil {
		return err
	}
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.close()

	if _, err := e.promptCache().Get(c.Context, string(id), true); err != nil {
		return err
	}
	fmt.Printf("Prompt for %s reset to the bundled default.\n", id)
	return nil
}

func runPromptSet(c *cli.Context) error {
	id, err := serviceArg(c)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(c.String("file"))
	if err != nil {
		return fmt.Errorf("reading prompt file: %w", err)
	}
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.close()

	if err := e.store.SetPrompt(c.Context, string(id), string(data)); err != nil {
		return err
	}
	fmt.Printf("Prompt for %s saved.\n", id)
	return nil
}
