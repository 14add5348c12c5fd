package server

import (
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/queryconsole/go-query-console/oauth"
	"github.com/queryconsole/go-query-console/session"
	"github.com/queryconsole/go-query-console/warehouse"
)

// IndexPageData contains data for rendering the query page
type IndexPageData struct {
	AppName string
	User    string
	SQL     string
	Error   string
	Table   *warehouse.QueryResult
}

// IndexHandler shows the query form for authenticated users and sends
// everyone else through the provider's SSO flow (GET /)
func (s *Server) IndexHandler() http.HandlerFunc {
	tmpl, err := ParseTemplate("index.html")
	if err != nil {
		panic("Failed to parse index template: " + err.Error())
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if sessionID, ok := s.sessionID(r); ok {
			if creds := s.creds.Credentials(r.Context(), sessionID); creds != nil {
				s.renderIndex(w, tmpl, IndexPageData{
					AppName: s.config.GetAppName(),
					User:    creds.Subject(),
					Error:   r.URL.Query().Get("error"),
				})
				return
			}
		}
		s.startConsent(w, r)
	}
}

// QueryHandler executes the submitted statement and renders the result
// table or an error flash (POST /)
func (s *Server) QueryHandler() http.HandlerFunc {
	tmpl, err := ParseTemplate("index.html")
	if err != nil {
		panic("Failed to parse index template: " + err.Error())
	}

	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := s.sessionID(r)
		if !ok {
			http.Redirect(w, r, RouteIndex, http.StatusSeeOther)
			return
		}
		creds := s.creds.Credentials(r.Context(), sessionID)
		if creds == nil {
			http.Redirect(w, r, RouteIndex, http.StatusSeeOther)
			return
		}

		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		data := IndexPageData{
			AppName: s.config.GetAppName(),
			User:    creds.Subject(),
			SQL:     r.FormValue("sql"),
		}

		statement := strings.TrimSpace(data.SQL)
		if statement == "" {
			data.Error = "Enter a SQL statement to run"
			s.renderIndex(w, tmpl, data)
			return
		}

		result, err := s.warehouse.ExecuteStatement(r.Context(), creds.Token(), statement)
		if err != nil {
			log.Err(err).Msg("statement execution failed")
			data.Error = err.Error()
			s.renderIndex(w, tmpl, data)
			return
		}

		data.Table = result
		s.renderIndex(w, tmpl, data)
	}
}

// startConsent begins a new login attempt: generates a consent, stores it
// in a fresh session and redirects the browser to the provider.
func (s *Server) startConsent(w http.ResponseWriter, r *http.Request) {
	consent, err := oauth.NewConsent()
	if err != nil {
		log.Err(err).Msg("failed to generate consent")
		http.Error(w, "Failed to start login", http.StatusInternalServerError)
		return
	}

	// Reuse the browser's session when it has one, so abandoned login
	// attempts do not pile up fresh sessions in the store.
	sessionID, ok := s.sessionID(r)
	if !ok {
		sessionID = uuid.NewString()
	}
	sess := session.Session{
		ID:        sessionID,
		Consent:   &consent,
		CreatedAt: time.Now(),
	}
	if err := s.sessions.Upsert(sessionID, sess); err != nil {
		log.Err(err).Msg("failed to store session")
		http.Error(w, "Failed to start login", http.StatusInternalServerError)
		return
	}

	s.SetSessionCookie(w, r, sessionID, int(s.config.GetMaxSessionAge().Seconds()))
	http.Redirect(w, r, s.oauth.AuthCodeURL(consent), http.StatusSeeOther)
}

func (s *Server) renderIndex(w http.ResponseWriter, tmpl *template.Template, data IndexPageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		log.Err(err).Msg("failed to render index template")
	}
}
