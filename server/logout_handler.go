package server

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

// LogoutHandler destroys the server-side session and clears the cookie.
// The provider tokens die with the session; nothing else holds them.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sessionID, ok := s.sessionID(r); ok {
			if err := s.sessions.Delete(sessionID); err != nil {
				log.Err(err).Msg("failed to delete session")
			}
		}
		s.ClearSessionCookie(w, r)
		http.Redirect(w, r, RouteIndex, http.StatusSeeOther)
	}
}
