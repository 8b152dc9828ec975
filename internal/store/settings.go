package store

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Storage keys shared across all surfaces.
const (
	KeyRepository        = "repository"
	KeyToken             = "github_token"
	KeyGenerating        = "generating"
	KeyTelemetryClientID = "telemetry_client_id"
)

// Repository returns the configured GitHub repository (owner/name). An unset
// or unreadable value comes back as "": not being configured yet is a normal
// state, so read failures are logged, not propagated.
func (s *Store) Repository(ctx context.Context) string {
	vals, err := s.Get(ctx, []string{KeyRepository}, TierSync)
	if err != nil {
		log.Warn().Err(err).Msg("reading repository setting failed")
		return ""
	}
	return vals[KeyRepository]
}

func (s *Store) SetRepository(ctx context.Context, repository string) error {
	return s.Set(ctx, map[string]string{KeyRepository: repository}, TierSync)
}

// Token returns the stored GitHub token, or "" when none is saved.
func (s *Store) Token(ctx context.Context) string {
	vals, err := s.Get(ctx, []string{KeyToken}, TierSync)
	if err != nil {
		log.Warn().Err(err).Msg("reading token setting failed")
		return ""
	}
	return vals[KeyToken]
}

func (s *Store) SetToken(ctx context.Context, token string) error {
	return s.Set(ctx, map[string]string{KeyToken: token}, TierSync)
}

// Prompt returns the stored prompt body for a service, or "" when none is
// saved. Prompts are keyed directly by service id.
func (s *Store) Prompt(ctx context.Context, serviceID string) string {
	vals, err := s.Get(ctx, []string{serviceID}, TierSync)
	if err != nil {
		log.Warn().Err(err).Str("service", serviceID).Msg("reading prompt failed")
		return ""
	}
	return vals[serviceID]
}

func (s *Store) SetPrompt(ctx context.Context, serviceID, prompt string) error {
	return s.Set(ctx, map[string]string{serviceID: prompt}, TierSync)
}

// SetPrompts writes several prompt bodies in one call.
func (s *Store) SetPrompts(ctx context.Context, prompts map[string]string) error {
	return s.Set(ctx, prompts, TierSync)
}

// Generating reports whether a generate run is currently marked in flight.
// The flag exists so other surfaces can reflect state; it is not a lock.
func (s *Store) Generating(ctx context.Context) bool {
	vals, err := s.Get(ctx, []string{KeyGenerating}, TierSession)
	if err != nil {
		log.Warn().Err(err).Msg("reading generating flag failed")
		return false
	}
	return vals[KeyGenerating] == "true"
}

func (s *Store) SetGenerating(ctx context.Context, generating bool) error {
	v := "false"
	if generating {
		v = "true"
	}
	return s.Set(ctx, map[string]string{KeyGenerating: v}, TierSession)
}
