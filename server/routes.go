package server

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET "+RouteIndex, ChainMiddleware(s.IndexHandler(), s.HTMLMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteIndex, ChainMiddleware(s.QueryHandler(), s.HTMLMiddleware()...))

	s.RegisterRouteFunc("GET "+RouteCallback, ChainMiddleware(s.OAuthCallbackHandler(), s.HTMLMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteCallback, ChainMiddleware(s.OAuthCallbackHandler(), s.HTMLMiddleware()...)) // For form_post response mode

	s.RegisterRouteFunc("GET "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleware()...))
}
