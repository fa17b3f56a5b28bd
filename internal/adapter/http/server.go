package adapthttp

import (
	"log/slog"
	"net/http"

	"journal/internal/app"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/oauth2"
)

// Services are the application services the HTTP adapter drives.
type Services struct {
	Auth       *app.AuthService
	Entries    *app.EntryService
	Progress   *app.ProgressService
	Motivation *app.MotivationService
	Messages   *app.MessageService
}

// OIDCConfig enables single sign-on through an OpenID Connect provider.
type OIDCConfig struct {
	Enabled      bool
	Provider     *oidc.Provider
	OAuth2Config oauth2.Config
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	auth       *app.AuthService
	entries    *app.EntryService
	progress   *app.ProgressService
	motivation *app.MotivationService
	messages   *app.MessageService

	oidcConfig       OIDCConfig
	trustForwardAuth bool
	gatherer         prometheus.Gatherer
	logger           *slog.Logger
	webDir           string
	disableAuth      bool
}

// New creates a Server wired to the given application services.
func New(svc Services, webDir string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		auth:       svc.Auth,
		entries:    svc.Entries,
		progress:   svc.Progress,
		motivation: svc.Motivation,
		messages:   svc.Messages,
		logger:     logger,
		webDir:     webDir,
	}
}

// WithOIDC enables the SSO login routes.
func (s *Server) WithOIDC(cfg OIDCConfig) *Server {
	s.oidcConfig = cfg
	return s
}

// WithForwardAuth trusts the Remote-User header set by a reverse proxy.
func (s *Server) WithForwardAuth() *Server {
	s.trustForwardAuth = true
	return s
}

// WithMetrics serves the collectors of g at /metrics.
func (s *Server) WithMetrics(g prometheus.Gatherer) *Server {
	s.gatherer = g
	return s
}

// WithoutAuth treats every request as coming from the local admin user.
// It is meant for tests and single-user development.
func (s *Server) WithoutAuth() *Server {
	s.disableAuth = true
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	api.HandleFunc("GET /config", s.handleConfig)
	api.HandleFunc("POST /register", s.handleRegister)
	api.HandleFunc("POST /login", s.handleLogin)
	api.HandleFunc("POST /logout", s.handleLogout)
	api.HandleFunc("POST /setup", s.handleSetupUser)
	api.HandleFunc("GET /auth/sso/login", s.handleSSOLogin)
	api.HandleFunc("GET /auth/sso/callback", s.handleSSOCallback)
	api.Handle("GET /me", s.authed(s.handleMe))

	api.Handle("POST /entries", s.authed(s.handleEntrySave))
	api.Handle("GET /entries/{date}", s.authed(s.handleEntryGet))
	api.Handle("DELETE /entries/{date}", s.authed(s.handleEntryDelete))
	api.Handle("GET /entries/range/{start}/{end}", s.authed(s.handleEntryRange))
	api.Handle("GET /entries/day/{month}/{day}", s.authed(s.handleEntryOnThisDay))

	api.Handle("GET /progress/stats", s.authed(s.handleProgressStats))
	api.Handle("GET /progress/message", s.authed(s.handleProgressMessage))

	api.HandleFunc("GET /messages/random", s.handleRandomMessage)
	api.HandleFunc("POST /messages/track", s.handleTrackMessage)
	api.Handle("GET /messages/user-state", s.authed(s.handleUserState))

	api.Handle("GET /admin/messages", s.admin(s.handleAdminListMessages))
	api.Handle("POST /admin/messages", s.admin(s.handleAdminCreateMessage))
	api.Handle("PUT /admin/messages/{id}", s.admin(s.handleAdminUpdateMessage))
	api.Handle("DELETE /admin/messages/{id}", s.admin(s.handleAdminDeleteMessage))
	api.Handle("GET /admin/messages/{id}/stats", s.admin(s.handleAdminMessageStats))
	api.Handle("GET /admin/stats", s.admin(s.handleAdminSiteStats))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))
	if s.gatherer != nil {
		root.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	root.Handle("/", spaFromDisk(s.webDir))

	return s.loggingMiddleware(withNoCache(root))
}

func (s *Server) authed(h http.HandlerFunc) http.Handler {
	return s.authMiddleware(h)
}

func (s *Server) admin(h http.HandlerFunc) http.Handler {
	return s.authMiddleware(requireAdmin(h))
}
