package oauth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/queryconsole/go-query-console/oauth"
)

func TestCredentials_Valid(t *testing.T) {
	t.Run("unexpired", func(t *testing.T) {
		creds := oauth.Credentials{AccessToken: "tok", Expiry: time.Now().Add(time.Hour)}
		require.True(t, creds.Valid())
	})

	t.Run("expired", func(t *testing.T) {
		creds := oauth.Credentials{AccessToken: "tok", Expiry: time.Now().Add(-time.Minute)}
		require.False(t, creds.Valid())
	})

	t.Run("expiring within the skew window", func(t *testing.T) {
		creds := oauth.Credentials{AccessToken: "tok", Expiry: time.Now().Add(5 * time.Second)}
		require.False(t, creds.Valid())
	})

	t.Run("no access token", func(t *testing.T) {
		creds := oauth.Credentials{Expiry: time.Now().Add(time.Hour)}
		require.False(t, creds.Valid())
	})
}

func TestCredentials_Subject(t *testing.T) {
	t.Run("JWT access token", func(t *testing.T) {
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "someone@example.com",
		}).SignedString([]byte("test-key"))
		require.NoError(t, err)

		creds := oauth.Credentials{AccessToken: signed}
		require.Equal(t, "someone@example.com", creds.Subject())
	})

	t.Run("opaque access token", func(t *testing.T) {
		creds := oauth.Credentials{AccessToken: "not-a-jwt"}
		require.Empty(t, creds.Subject())
	})
}
