package session_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/queryconsole/go-query-console/oauth"
	"github.com/queryconsole/go-query-console/session"
)

func TestInMemoryRepo(t *testing.T) {
	t.Run("upsert and get", func(t *testing.T) {
		repo := session.NewInMemoryRepo()
		consent, err := oauth.NewConsent()
		require.NoError(t, err)

		require.NoError(t, repo.Upsert("s1", session.Session{ID: "s1", Consent: &consent, CreatedAt: time.Now()}))

		got, err := repo.Get("s1")
		require.NoError(t, err)
		require.Equal(t, "s1", got.ID)
		require.NotNil(t, got.Consent)
		require.Equal(t, consent.State, got.Consent.State)
	})

	t.Run("get unknown session", func(t *testing.T) {
		repo := session.NewInMemoryRepo()
		_, err := repo.Get("missing")
		require.ErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("empty session ID is rejected", func(t *testing.T) {
		repo := session.NewInMemoryRepo()
		require.Error(t, repo.Upsert("", session.Session{}))
		_, err := repo.Get("")
		require.Error(t, err)
		require.Error(t, repo.Delete(""))
	})

	t.Run("delete", func(t *testing.T) {
		repo := session.NewInMemoryRepo()
		require.NoError(t, repo.Upsert("s1", session.Session{ID: "s1"}))
		require.NoError(t, repo.Delete("s1"))
		_, err := repo.Get("s1")
		require.ErrorIs(t, err, session.ErrNotFound)

		// deleting a session that is already gone is not an error
		require.NoError(t, repo.Delete("s1"))
	})

	t.Run("stored state is isolated from caller mutations", func(t *testing.T) {
		repo := session.NewInMemoryRepo()
		creds := oauth.Credentials{AccessToken: "original", Expiry: time.Now().Add(time.Hour)}
		require.NoError(t, repo.Upsert("s1", session.Session{ID: "s1", Creds: &creds}))

		creds.AccessToken = "mutated"

		got, err := repo.Get("s1")
		require.NoError(t, err)
		require.Equal(t, "original", got.Creds.AccessToken)

		got.Creds.AccessToken = "mutated-again"
		again, err := repo.Get("s1")
		require.NoError(t, err)
		require.Equal(t, "original", again.Creds.AccessToken)
	})
}
