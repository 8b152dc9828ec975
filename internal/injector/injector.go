// Package injector automates the prompt input of a chat-assistant page: wait
// for the input element, type the resolved prompt, press Enter.
package injector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zennit/internal/prompt"
	"github.com/zennit/internal/retry"
	"github.com/zennit/internal/services"
)

// State is one step of the injection sequence.
type State string

const (
	StateIdle       State = "idle"
	StateWaiting    State = "waiting_for_element"
	StateTyping     State = "typing"
	StateSubmitting State = "submitting"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

// ElementNotFoundError is the terminal error of the element wait.
type ElementNotFoundError struct {
	Selector string
	Attempts int
}

func (e *ElementNotFoundError) Error() string {
	return fmt.Sprintf("injector: element %q not found after %d attempts", e.Selector, e.Attempts)
}

// Evaluator runs a script in the page and decodes the result into out.
type Evaluator interface {
	Eval(ctx context.Context, expr string, out any) error
}

// Config tunes the timing of the sequence.
type Config struct {
	WaitInterval    time.Duration // poll interval for the input element
	WaitMaxAttempts int           // give up after this many polls
	SettleDelay     time.Duration // pause after typing before submitting
}

func DefaultConfig() Config {
	return Config{
		WaitInterval:    500 * time.Millisecond,
		WaitMaxAttempts: 240,
		SettleDelay:     50 * time.Millisecond,
	}
}

// Injector runs the generate sequence against a page.
type Injector struct {
	prompts *prompt.Cache
	cfg     Config
	onState func(State)
}

// New builds an injector. onState, when non-nil, observes every state
// transition.
func New(prompts *prompt.Cache, cfg Config, onState func(State)) *Injector {
	if cfg.WaitInterval <= 0 {
		cfg.WaitInterval = 500 * time.Millisecond
	}
	if cfg.WaitMaxAttempts <= 0 {
		cfg.WaitMaxAttempts = 240
	}
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = 50 * time.Millisecond
	}
	return &Injector{prompts: prompts, cfg: cfg, onState: onState}
}

func (i *Injector) setState(s State) {
	log.Debug().Str("state", string(s)).Msg("injector state")
	if i.onState != nil {
		i.onState(s)
	}
}

// Generate runs the end-to-end sequence on the page at pageURL. Text already
// typed stays in the page when a later step fails; there is no rollback.
func (i *Injector) Generate(ctx context.Context, pageURL string, eval Evaluator) error {
	i.setState(StateIdle)
	svc := services.Resolve(pageURL)
	log.Info().Str("service", string(svc.ID)).Str("url", pageURL).Msg("starting generate")

	text, err := i.prompts.Get(ctx, string(svc.ID), false)
	if err != nil {
		var ale *prompt.AssetLoadError
		if errors.As(err, &ale) {
			// missing default prompt is survivable; the user sees an empty input
			log.Warn().Err(err).Str("service", string(svc.ID)).Msg("prompt unavailable, injecting empty text")
			text = ""
		} else {
			i.setState(StateFailed)
			return err
		}
	}

	i.setState(StateWaiting)
	if err := i.waitForElement(ctx, eval, svc.Selector); err != nil {
		i.setState(StateFailed)
		return err
	}

	i.setState(StateTyping)
	if err := i.runStep(ctx, eval, typeScript(svc.Selector, text)); err != nil {
		i.setState(StateFailed)
		return err
	}
	if err := sleep(ctx, i.cfg.SettleDelay); err != nil {
		i.setState(StateFailed)
		return err
	}

	i.setState(StateSubmitting)
	if err := i.runStep(ctx, eval, submitScript(svc.Selector)); err != nil {
		i.setState(StateFailed)
		return err
	}

	i.setState(StateDone)
	return nil
}

func (i *Injector) waitForElement(ctx context.Context, eval Evaluator, selector string) error {
	result := retry.Poll(ctx, retry.PollConfig{
		Interval:    i.cfg.WaitInterval,
		MaxAttempts: i.cfg.WaitMaxAttempts,
	}, func(ctx context.Context) (bool, error) {
		var found bool
		if err := eval.Eval(ctx, waitScript(selector), &found); err != nil {
			return false, err
		}
		return found, nil
	})
	if result.Success {
		return nil
	}
	var exhausted *retry.ErrExhausted
	if errors.As(result.LastError, &exhausted) {
		return &ElementNotFoundError{Selector: selector, Attempts: result.Attempts}
	}
	return result.LastError
}

func (i *Injector) runStep(ctx context.Context, eval Evaluator, script string) error {
	var status string
	if err := eval.Eval(ctx, script, &status); err != nil {
		return err
	}
	if status != "ok" {
		return fmt.Errorf("injector: page script reported %q", status)
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
