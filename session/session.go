// Package session provides the server-side browser session: a typed record
// holding the in-flight consent and the exchanged credentials, a store
// keyed by signed cookie, and expiry-aware credential retrieval.
package session

import (
	"time"

	"github.com/queryconsole/go-query-console/oauth"
)

// Session is the per-browser server-side state. At most one of Consent and
// Creds is meaningful at a time: Consent while a login is in flight, Creds
// once the exchange completed.
type Session struct {
	ID        string
	Consent   *oauth.Consent
	Creds     *oauth.Credentials
	CreatedAt time.Time
}

type Repo interface {
	Upsert(sessionID string, session Session) error
	Get(sessionID string) (Session, error)
	Delete(sessionID string) error
}
