package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/zennit/internal/article"
	"github.com/zennit/internal/github"
	"github.com/zennit/internal/telemetry"
)

// PublishCommand returns the publish command
func PublishCommand() *cli.Command {
	return &cli.Command{
		Name:  "publish",
		Usage: "Publish an article to the configured GitHub repository",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "title",
				Aliases: []string{"t"},
				Usage:   "Override the article title",
			},
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Overwrite an existing file without asking",
			},
		},
		ArgsUsage: "FILE (use - for stdin)",
		Action:    runPublish,
	}
}

func runPublish(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("missing required argument: article file (use - for stdin)")
	}

	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.close()

	ctx := c.Context
	collector := telemetry.New(ctx, e.store, e.cfg.Telemetry.Endpoint)

	repository := e.store.Repository(ctx)
	if repository == "" {
		return fmt.Errorf("no repository configured; run `zennit repo set OWNER/NAME` first")
	}

	raw, err := readArticle(c.Args().Get(0))
	if err != nil {
		return err
	}
	art := article.Split(raw)
	if title := c.String("title"); title != "" {
		art.Title = title
	}
	if strings.TrimSpace(art.Title) == "" {
		return fmt.Errorf("article has no title; pass one with --title")
	}
	if strings.TrimSpace(art.Body) == "" {
		return fmt.Errorf("article body is empty")
	}

	auth := github.NewAuthenticator(e.store, e.cfg.GitHub.ClientID, os.Stdout)
	token, err := auth.Authenticate(ctx)
	if err != nil {
		collector.Error(ctx, err)
		return err
	}

	publisher := github.NewPublisher(github.WithBaseURL(e.cfg.GitHub.APIURL))
	confirm := confirmOverwrite
	if c.Bool("yes") {
		confirm = func(string) bool { return true }
	}

	result, err := publisher.Publish(ctx, github.PublishInput{
		Repository: repository,
		Title:      art.Title,
		Body:       art.Body,
	}, token, confirm)
	if err != nil {
		collector.Error(ctx, err)
		return err
	}

	switch {
	case result.Aborted:
		fmt.Printf("Left %q untouched.\n", result.FileName)
	case result.Updated:
		collector.Event(ctx, "publish", map[string]string{"kind": "update"})
		fmt.Printf("Updated %q in %s.\n", result.FileName, repository)
	default:
		collector.Event(ctx, "publish", map[string]string{"kind": "create"})
		fmt.Printf("Created %q in %s.\n", result.FileName, repository)
	}
	return nil
}

func readArticle(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading article: %w", err)
	}
	return string(data), nil
}

func confirmOverwrite(fileName string) bool {
	fmt.Printf("File %q already exists. Overwrite? [y/N] ", fileName)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
