package github

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/zennit/internal/store"
)

// AuthError wraps a failed token acquisition.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("github: authentication failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// Authenticator obtains a GitHub bearer token, reusing a stored one when
// available and otherwise walking the user through the device flow.
type Authenticator struct {
	store *store.Store
	cfg   *oauth2.Config
	out   io.Writer // where device-flow instructions are printed
}

func NewAuthenticator(st *store.Store, clientID string, out io.Writer) *Authenticator {
	return &Authenticator{
		store: st,
		out:   out,
		cfg: &oauth2.Config{
			ClientID: clientID,
			Scopes:   []string{"repo"},
			Endpoint: oauth2.Endpoint{
				AuthURL:       "https://github.com/login/oauth/authorize",
				TokenURL:      "https://github.com/login/oauth/access_token",
				DeviceAuthURL: "https://github.com/login/device/code",
			},
		},
	}
}

// Authenticate returns a usable token. A previously stored token is reused
// without validation; a fresh device-flow token is persisted before returning.
func (a *Authenticator) Authenticate(ctx context.Context) (string, error) {
	if token := a.store.Token(ctx); token != "" {
		log.Debug().Msg("reusing stored github token")
		return token, nil
	}

	if a.cfg.ClientID == "" {
		return "", &AuthError{Err: fmt.Errorf("no stored token and no OAuth client id configured")}
	}

	da, err := a.cfg.DeviceAuth(ctx)
	if err != nil {
		return "", &AuthError{Err: err}
	}
	fmt.Fprintf(a.out, "Open %s and enter the code: %s\n", da.VerificationURI, da.UserCode)

	tok, err := a.cfg.DeviceAccessToken(ctx, da)
	if err != nil {
		return "", &AuthError{Err: err}
	}

	if err := a.store.SetToken(ctx, tok.AccessToken); err != nil {
		return "", &AuthError{Err: fmt.Errorf("persisting token: %w", err)}
	}
	return tok.AccessToken, nil
}
