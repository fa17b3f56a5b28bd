package adapthttp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"journal/internal/app"
	"journal/internal/domain"
)

type contextKey string

const userContextKey contextKey = "user"

const sessionCookie = "session"

// localUser stands in for the signed-in user when auth is disabled.
var localUser = &domain.User{ID: 1, Username: "local", Role: domain.RoleAdmin}

func withUser(r *http.Request, user *domain.User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), userContextKey, user))
}

// userFrom returns the user set by authMiddleware.
func userFrom(r *http.Request) *domain.User {
	u, _ := r.Context().Value(userContextKey).(*domain.User)
	return u
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(h, "Bearer ")
	token = strings.TrimSpace(token)
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

// authMiddleware resolves the user from forward auth headers, the session
// cookie or a bearer token, in that order.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip auth if disabled (for tests)
		if s.disableAuth {
			next.ServeHTTP(w, withUser(r, localUser))
			return
		}

		if remoteUser := r.Header.Get("Remote-User"); s.trustForwardAuth && remoteUser != "" {
			user, err := s.auth.ValidateForwardAuth(r.Context(), remoteUser)
			if err == nil && user != nil {
				next.ServeHTTP(w, withUser(r, user))
				return
			}
		}

		if cookie, err := r.Cookie(sessionCookie); err == nil {
			user, err := s.auth.ValidateSession(r.Context(), cookie.Value, r.UserAgent())
			switch {
			case err == nil:
				next.ServeHTTP(w, withUser(r, user))
				return
			case !errors.Is(err, app.ErrSessionNotFound) && !errors.Is(err, app.ErrSessionExpired) && !errors.Is(err, app.ErrUserNotFound):
				s.writeAppError(w, r, err)
				return
			}
		}

		if token, ok := bearerToken(r); ok {
			user, err := s.auth.ValidateAPIToken(r.Context(), token)
			if err == nil {
				next.ServeHTTP(w, withUser(r, user))
				return
			}
		}

		writeError(w, http.StatusUnauthorized, errors.New("unauthorized"))
	})
}

func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !userFrom(r).IsAdmin() {
			writeError(w, http.StatusForbidden, app.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// loggingMiddleware logs one line per request.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	logger := s.logger
	if logger == nil {
		logger = slog.Default()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.InfoContext(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
