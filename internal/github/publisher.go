// Package github publishes article files to a GitHub repository through the
// contents REST API.
package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.github.com"

// CreateOutcome is the tagged result of a create attempt. The contents API
// reports an existing file through a specific 422 ("sha" wasn't supplied);
// only that condition maps to OutcomeAlreadyExists, everything else is a hard
// error.
type CreateOutcome int

const (
	OutcomeCreated CreateOutcome = iota
	OutcomeAlreadyExists
)

// Publisher talks to the GitHub contents API. Requests pass through a rate
// limiter so bursts of publish actions stay inside the API budget.
type Publisher struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithBaseURL points the publisher at a different API root (tests, GHE).
func WithBaseURL(base string) Option {
	return func(p *Publisher) { p.baseURL = strings.TrimSuffix(base, "/") }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Publisher) { p.client = c }
}

func NewPublisher(opts ...Option) *Publisher {
	p := &Publisher{
		baseURL: defaultBaseURL,
		client:  http.DefaultClient,
		// the contents API allows well under 5000 req/h; one per second is plenty
		limiter: rate.NewLimiter(rate.Limit(1), 3),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type apiError struct {
	StatusCode int
	Message    string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("github: API returned %d: %s", e.StatusCode, e.Message)
}

func (p *Publisher) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return p.client.Do(req)
}

func (p *Publisher) contentsURL(repo, path string) string {
	// escape per segment; the slashes themselves are part of the route
	segs := strings.Split(path, "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	return fmt.Sprintf("%s/repos/%s/contents/%s", p.baseURL, repo, strings.Join(segs, "/"))
}

func setHeaders(req *http.Request, token string) {
	req.Header.Set("Authorization", "token "+token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
}

// CreateFile attempts to create path in repo on the default branch. The call
// doubles as the existence probe: an OutcomeAlreadyExists return means the
// caller should confirm and update instead.
func (p *Publisher) CreateFile(ctx context.Context, repo, path, content, message, token string) (CreateOutcome, error) {
	payload := map[string]string{
		"message": message,
		"content": base64.StdEncoding.EncodeToString([]byte(content)),
	}
	data, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, p.contentsURL(repo, path), bytes.NewBuffer(data))
	if err != nil {
		return 0, err
	}
	setHeaders(req, token)

	resp, err := p.do(ctx, req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		log.Debug().Str("repo", repo).Str("path", path).Msg("file created")
		return OutcomeCreated, nil
	}

	var body struct {
		Message string `json:"message"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)

	if resp.StatusCode == http.StatusUnprocessableEntity && strings.Contains(body.Message, `"sha"`) {
		log.Debug().Str("repo", repo).Str("path", path).Msg("file already exists")
		return OutcomeAlreadyExists, nil
	}
	return 0, &apiError{StatusCode: resp.StatusCode, Message: body.Message}
}

// fileSHA fetches the current blob SHA of path, required by the API before an
// update can land.
func (p *Publisher) fileSHA(ctx context.Context, repo, path, token string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.contentsURL(repo, path), nil)
	if err != nil {
		return "", err
	}
	setHeaders(req, token)

	resp, err := p.do(ctx, req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		var body struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return "", &apiError{StatusCode: resp.StatusCode, Message: body.Message}
	}
	var file struct {
		SHA string `json:"sha"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&file); err != nil {
		return "", err
	}
	return file.SHA, nil
}

// UpdateFile overwrites an existing file, supplying the current blob SHA for
// the API's optimistic-concurrency check.
func (p *Publisher) UpdateFile(ctx context.Context, repo, path, content, message, token string) error {
	sha, err := p.fileSHA(ctx, repo, path, token)
	if err != nil {
		return fmt.Errorf("fetching current file sha: %w", err)
	}

	payload := map[string]string{
		"message": message,
		"content": base64.StdEncoding.EncodeToString([]byte(content)),
		"sha":     sha,
	}
	data, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, p.contentsURL(repo, path), bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	setHeaders(req, token)

	resp, err := p.do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var body struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return &apiError{StatusCode: resp.StatusCode, Message: body.Message}
	}
	log.Debug().Str("repo", repo).Str("path", path).Msg("file updated")
	return nil
}
