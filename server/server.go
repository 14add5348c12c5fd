package server

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/queryconsole/go-query-console/internal/config"
	"github.com/queryconsole/go-query-console/oauth"
	"github.com/queryconsole/go-query-console/session"
	"github.com/queryconsole/go-query-console/warehouse"
)

type Server struct {
	env       string
	mux       *http.ServeMux
	routes    []string
	config    config.Config
	oauth     *oauth.Client
	sessions  session.Repo
	creds     *session.Manager
	signer    *session.Signer
	warehouse *warehouse.Client
}

func New(cfg config.Config, oauthClient *oauth.Client, sessionRepo session.Repo, signer *session.Signer, warehouseClient *warehouse.Client) (*Server, error) {
	if oauthClient == nil {
		return nil, fmt.Errorf("[Server New] oauth client is required")
	}
	if sessionRepo == nil {
		return nil, fmt.Errorf("[Server New] session repo is required")
	}
	if signer == nil {
		return nil, fmt.Errorf("[Server New] cookie signer is required")
	}

	s := &Server{
		mux:       http.NewServeMux(),
		config:    cfg,
		oauth:     oauthClient,
		sessions:  sessionRepo,
		creds:     session.NewManager(sessionRepo, oauthClient),
		signer:    signer,
		warehouse: warehouseClient,
	}
	s.env = cfg.GetEnv()

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Printf("[%-19s] %s\n", displayMethod, path)
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
