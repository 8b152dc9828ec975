// Package browser attaches to a running Chrome over the DevTools protocol and
// exposes tabs as script evaluators.
package browser

import (
	"context"
	"fmt"
	"strings"

	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
)

// Browser is a connection to a Chrome instance started with
// --remote-debugging-port.
type Browser struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// Connect dials the DevTools endpoint.
func Connect(ctx context.Context, devtoolsURL string) (*Browser, error) {
	allocCtx, allocCancel := chromedp.NewRemoteAllocator(ctx, devtoolsURL)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	cancel := func() {
		browserCancel()
		allocCancel()
	}

	// force the connection so a bad endpoint fails here, not mid-run
	if err := chromedp.Run(browserCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("connecting to browser at %s: %w", devtoolsURL, err)
	}
	return &Browser{ctx: browserCtx, cancel: cancel}, nil
}

func (b *Browser) Close() {
	b.cancel()
}

// Tab is an attached page target.
type Tab struct {
	ctx    context.Context
	cancel context.CancelFunc
	url    string
}

// FindTab attaches to the first page whose URL contains any of the given
// substrings. With no substrings, the first page wins.
func (b *Browser) FindTab(substrs ...string) (*Tab, error) {
	infos, err := chromedp.Targets(b.ctx)
	if err != nil {
		return nil, fmt.Errorf("listing browser targets: %w", err)
	}
	for _, info := range infos {
		if info.Type != "page" {
			continue
		}
		if len(substrs) == 0 || matchesAny(info.URL, substrs) {
			log.Debug().Str("url", info.URL).Msg("attaching to tab")
			return b.attach(info)
		}
	}
	return nil, fmt.Errorf("no open tab matches %v", substrs)
}

func (b *Browser) attach(info *target.Info) (*Tab, error) {
	tabCtx, tabCancel := chromedp.NewContext(b.ctx, chromedp.WithTargetID(info.TargetID))
	return &Tab{ctx: tabCtx, cancel: tabCancel, url: info.URL}, nil
}

func matchesAny(url string, substrs []string) bool {
	for _, s := range substrs {
		if s != "" && strings.Contains(url, s) {
			return true
		}
	}
	return false
}

func (t *Tab) URL() string { return t.url }

func (t *Tab) Close() { t.cancel() }

// Eval runs a script in the tab and decodes the result into out (out may be
// nil). The caller's context bounds the wait even though the evaluation runs
// on the tab's own connection.
func (t *Tab) Eval(ctx context.Context, expr string, out any) error {
	done := make(chan error, 1)
	go func() {
		done <- chromedp.Run(t.ctx, chromedp.Evaluate(expr, out))
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
