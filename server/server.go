package server

import (
	"fmt"
	"net/http"

	"github.com/jrsteele09/go-admin-console/internal/config"
	"github.com/jrsteele09/go-admin-console/session"
	"github.com/pkg/errors"
)

// Server is the local admin console: login pages plus a dashboard gated on the
// session, and in development a proxy that serves the relative API base.
type Server struct {
	env     string // Environment (e.g., "DEV", "PROD")
	mux     *http.ServeMux
	routes  []string
	config  config.Config
	session *session.Service
	apiBase string
}

func New(cfg config.Config, svc *session.Service) (*Server, error) {
	if svc == nil {
		return nil, errors.New("[server.New] session service is required")
	}

	s := &Server{
		env:     cfg.GetEnv(),
		mux:     http.NewServeMux(),
		config:  cfg,
		session: svc,
		apiBase: cfg.GetAPIBaseURL(),
	}
	if err := s.initRoutes(); err != nil {
		return nil, fmt.Errorf("[server.New] failed to register routes: %w", err)
	}
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}
