package session

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/queryconsole/go-query-console/oauth"
)

// TokenRefresher exchanges an expired credential set for a fresh one.
type TokenRefresher interface {
	Refresh(ctx context.Context, creds oauth.Credentials) (oauth.Credentials, error)
}

// Manager owns credential retrieval for sessions. Expired credentials are
// refreshed in place; concurrent requests for the same session share one
// refresh call so two racing refreshes cannot invalidate each other's
// tokens.
type Manager struct {
	repo      Repo
	refresher TokenRefresher
	group     singleflight.Group
}

func NewManager(repo Repo, refresher TokenRefresher) *Manager {
	return &Manager{repo: repo, refresher: refresher}
}

// Credentials returns the session's usable credentials, refreshing them
// first when expired. It returns nil when the session holds no credentials
// or the refresh failed; either way the caller must start a new login.
// A failed refresh clears the stored credentials.
func (m *Manager) Credentials(ctx context.Context, sessionID string) *oauth.Credentials {
	sess, err := m.repo.Get(sessionID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Err(err).Msg("session lookup failed")
		}
		return nil
	}
	if sess.Creds == nil {
		return nil
	}
	if sess.Creds.Valid() {
		return sess.Creds
	}
	if sess.Creds.RefreshToken == "" {
		m.clearCredentials(sessionID)
		return nil
	}

	v, err, _ := m.group.Do(sessionID, func() (any, error) {
		return m.refresh(ctx, sessionID)
	})
	if err != nil {
		log.Err(err).Str("session_id", sessionID).Msg("credential refresh failed, forcing re-login")
		return nil
	}
	return v.(*oauth.Credentials)
}

func (m *Manager) refresh(ctx context.Context, sessionID string) (*oauth.Credentials, error) {
	// Re-read under the flight: a concurrent caller may have refreshed
	// between the expiry check and this call being collapsed into it.
	sess, err := m.repo.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Creds == nil {
		return nil, ErrNotFound
	}
	if sess.Creds.Valid() {
		return sess.Creds, nil
	}

	refreshed, err := m.refresher.Refresh(ctx, *sess.Creds)
	if err != nil {
		m.clearCredentials(sessionID)
		return nil, err
	}

	sess.Creds = &refreshed
	if err := m.repo.Upsert(sessionID, sess); err != nil {
		return nil, err
	}
	return &refreshed, nil
}

func (m *Manager) clearCredentials(sessionID string) {
	sess, err := m.repo.Get(sessionID)
	if err != nil {
		return
	}
	sess.Creds = nil
	if err := m.repo.Upsert(sessionID, sess); err != nil {
		log.Err(err).Msg("failed to clear session credentials")
	}
}
