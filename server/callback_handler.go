package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/queryconsole/go-query-console/oauth"
)

// OAuthCallbackHandler completes the authorization flow: it validates the
// provider's callback against the stored consent, exchanges the code and
// verifier for credentials and stores them in the session.
func (s *Server) OAuthCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Parse form to support both GET (query params) and POST (form_post response mode)
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid callback parameters", http.StatusBadRequest)
			return
		}
		params := oauth.CallbackParamsFromValues(r.Form)

		sessionID, ok := s.sessionID(r)
		if !ok {
			http.Error(w, "Login session not found", http.StatusBadRequest)
			return
		}

		sess, err := s.sessions.Get(sessionID)
		if err != nil || sess.Consent == nil {
			http.Error(w, "Invalid state parameter", http.StatusBadRequest)
			return
		}
		consent := *sess.Consent

		// Consume the consent before exchanging; callbacks are single-use
		// and a replay must not reach the token endpoint.
		sess.Consent = nil
		if err := s.sessions.Upsert(sessionID, sess); err != nil {
			log.Err(err).Msg("failed to consume consent")
			http.Error(w, "Failed to complete login", http.StatusInternalServerError)
			return
		}

		creds, err := s.oauth.Exchange(r.Context(), consent, params)
		if err != nil {
			switch {
			case errors.Is(err, oauth.ErrStateMismatch):
				http.Error(w, "Invalid state parameter", http.StatusBadRequest)
			case errors.Is(err, oauth.ErrAuthorizationDenied):
				log.Warn().Msg("authorization denied by provider")
				http.Error(w, fmt.Sprintf("Authorization failed: %s", params.Error), http.StatusBadRequest)
			default:
				log.Err(err).Msg("token exchange failed")
				http.Error(w, "Token exchange failed, please retry the login", http.StatusBadGateway)
			}
			return
		}

		sess.Creds = &creds
		if err := s.sessions.Upsert(sessionID, sess); err != nil {
			log.Err(err).Msg("failed to store credentials")
			http.Error(w, "Failed to complete login", http.StatusInternalServerError)
			return
		}

		http.Redirect(w, r, RouteIndex, http.StatusSeeOther)
	}
}
