package github

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNoRepository is returned when no target repository has been configured.
var ErrNoRepository = errors.New("github: no repository configured")

// PublishInput describes one publish action.
type PublishInput struct {
	Repository string // owner/name
	Title      string
	Body       string
}

// PublishResult reports what a publish action did.
type PublishResult struct {
	FileName string
	Updated  bool // false: created new, true: overwrote existing
	Aborted  bool // user declined the overwrite
}

// ConfirmFunc asks whether an existing file should be overwritten.
type ConfirmFunc func(fileName string) bool

// Publish runs the full publish sequence: create attempt, then on conflict an
// overwrite confirmation and update. The title is used verbatim in the file
// path under articles/; characters that are invalid in a repository path are
// passed through untouched and surface as API errors.
func (p *Publisher) Publish(ctx context.Context, in PublishInput, token string, confirm ConfirmFunc) (PublishResult, error) {
	if strings.TrimSpace(in.Repository) == "" {
		return PublishResult{}, ErrNoRepository
	}

	fileName := "articles/" + strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Body)
	message := "Publish: " + fileName

	outcome, err := p.CreateFile(ctx, in.Repository, fileName, content, message, token)
	if err != nil {
		return PublishResult{}, fmt.Errorf("creating %s: %w", fileName, err)
	}
	if outcome == OutcomeCreated {
		return PublishResult{FileName: fileName}, nil
	}

	if confirm != nil && !confirm(fileName) {
		return PublishResult{FileName: fileName, Aborted: true}, nil
	}
	if err := p.UpdateFile(ctx, in.Repository, fileName, content, message, token); err != nil {
		return PublishResult{}, fmt.Errorf("updating %s: %w", fileName, err)
	}
	return PublishResult{FileName: fileName, Updated: true}, nil
}
