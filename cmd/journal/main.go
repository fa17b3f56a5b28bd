package main

import (
	"context"
	"crypto/rand"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	adapthttp "journal/internal/adapter/http"
	"journal/internal/adapter/memory"
	"journal/internal/adapter/postgres"
	"journal/internal/app"
	"journal/internal/domain"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"
)

const sessionCleanupInterval = time.Hour

// store is everything the services need from a storage adapter.
type store interface {
	domain.UserRepository
	domain.EntryRepository
	domain.ProgressRepository
	domain.MessageRepository
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("journal exited", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	addr := env("ADDR", ":8080")
	webDir := env("WEB_DIR", "web")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		repo     store
		sessions domain.SessionRepository
	)
	if connStr := os.Getenv("DATABASE_URL"); connStr != "" {
		db, err := postgres.Open(connStr)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
		repo, sessions = db, postgres.NewSessionRepo(db)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory storage")
		db := memory.New()
		repo, sessions = db, db.NewSessionRepo()
	}

	secret := []byte(os.Getenv("JWT_SECRET"))
	if len(secret) == 0 {
		logger.Warn("JWT_SECRET not set, bearer tokens will not survive a restart")
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return err
		}
	}

	metrics := app.MustNewMetrics(prometheus.DefaultRegisterer)
	bg := app.NewBackground(logger, metrics)
	progress := app.NewProgressService(repo, bg, nil)

	svc := adapthttp.Services{
		Auth:       app.NewAuthService(repo, sessions, app.NewTokenIssuer(secret, app.SessionTTL)),
		Entries:    app.NewEntryService(repo, progress),
		Progress:   progress,
		Motivation: app.NewMotivationService(nil),
		Messages:   app.NewMessageService(repo, repo, nil),
	}
	srv := adapthttp.New(svc, webDir, logger).WithMetrics(prometheus.DefaultGatherer)

	if issuer := os.Getenv("OIDC_ISSUER"); issuer != "" {
		provider, err := oidc.NewProvider(ctx, issuer)
		if err != nil {
			return err
		}
		srv = srv.WithOIDC(adapthttp.OIDCConfig{
			Enabled:  true,
			Provider: provider,
			OAuth2Config: oauth2.Config{
				ClientID:     os.Getenv("OIDC_CLIENT_ID"),
				ClientSecret: os.Getenv("OIDC_CLIENT_SECRET"),
				RedirectURL:  os.Getenv("OIDC_REDIRECT_URL"),
				Endpoint:     provider.Endpoint(),
				Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
			},
		})
		logger.Info("sso enabled", "issuer", issuer)
	}
	if env("FORWARD_AUTH", "false") == "true" {
		srv = srv.WithForwardAuth()
	}

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := httpServer.Shutdown(shutdownCtx)
		bg.Wait()
		return err
	})
	g.Go(func() error {
		cleanupSessions(gctx, logger, sessions)
		return nil
	})
	return g.Wait()
}

func cleanupSessions(ctx context.Context, logger *slog.Logger, sessions domain.SessionRepository) {
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := sessions.DeleteExpired(ctx); err != nil {
				logger.WarnContext(ctx, "session cleanup failed", "err", err)
			}
		}
	}
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
