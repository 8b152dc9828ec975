package github

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zennit/internal/store"
)

func TestAuthenticateReusesStoredToken(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "settings.db"))
	require.NoError(t, err)
	defer st.Close()
	require.NoError(t, st.SetToken(context.Background(), "ghp_stored"))

	var out bytes.Buffer
	a := NewAuthenticator(st, "client-id", &out)

	token, err := a.Authenticate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ghp_stored", token)
	assert.Empty(t, out.String(), "no device-flow prompt for a stored token")
}

func TestAuthenticateWithoutClientID(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "settings.db"))
	require.NoError(t, err)
	defer st.Close()

	a := NewAuthenticator(st, "", &bytes.Buffer{})
	_, err = a.Authenticate(context.Background())

	var authErr *AuthError
	assert.True(t, errors.As(err, &authErr))
}
