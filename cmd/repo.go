package cmd

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"
)

// RepoCommand returns the repo command
func RepoCommand() *cli.Command {
	return &cli.Command{
		Name:  "repo",
		Usage: "Manage the target GitHub repository",
		Subcommands: []*cli.Command{
			{
				Name:      "set",
				Usage:     "Set the repository articles are published to",
				ArgsUsage: "OWNER/NAME",
				Action:    runRepoSet,
			},
			{
				Name:   "show",
				Usage:  "Print the configured repository",
				Action: runRepoShow,
			},
		},
	}
}

func runRepoSet(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("missing required argument: repository (OWNER/NAME)")
	}
	repository := strings.TrimSpace(c.Args().Get(0))
	if !strings.Contains(repository, "/") {
		return fmt.Errorf("repository must be OWNER/NAME, got %q", repository)
	}

	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.close()

	if err := e.store.SetRepository(c.Context, repository); err != nil {
		return err
	}
	fmt.Printf("Publishing to %s.\n", repository)
	return nil
}

func runRepoShow(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.close()

	repository := e.store.Repository(c.Context)
	if repository == "" {
		fmt.Println("No repository configured.")
		return nil
	}
	fmt.Println(repository)
	return nil
}
