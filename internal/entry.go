// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"

	"github.com/epropulse/epropulse/internal/api"
	"github.com/epropulse/epropulse/internal/auth"
	"github.com/epropulse/epropulse/internal/catalog"
	"github.com/epropulse/epropulse/internal/contact"
	"github.com/epropulse/epropulse/internal/content"
	"github.com/epropulse/epropulse/internal/editor"
	"github.com/epropulse/epropulse/internal/mcpserver"
	"github.com/epropulse/epropulse/internal/media"
	"github.com/epropulse/epropulse/internal/metrics"
	"github.com/epropulse/epropulse/internal/ratelimit"
	"github.com/epropulse/epropulse/internal/seo"
	"github.com/epropulse/epropulse/internal/sse"
	"github.com/epropulse/epropulse/internal/storage"
	"github.com/epropulse/epropulse/internal/store"
)

var errConfigRequired = errors.New("config is required")

// Login attempts allowed per client IP.
const (
	loginPerMinute = 5
	loginBurst     = 5
)

func (a *application) newLogger() *slog.Logger {
	out := a.logOutput
	if out == nil {
		out = os.Stdout
	}
	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: a.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// core holds the components shared by the server, MCP and import modes.
type core struct {
	store   *store.SQL
	metrics *metrics.Metrics
	seo     *seo.Analyzer
	catalog *catalog.Service
	media   *media.Library
}

func openCore(ctx context.Context, cfg *Config, logger *slog.Logger) (*core, error) {
	st, err := store.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	m := metrics.New()
	analyzer := seo.NewAnalyzer(cfg.Editor.CacheEntries, seo.WithObserver(m.ObserveSEO))

	cat := catalog.NewService(st, analyzer, catalog.Config{
		Site:            cfg.App.Site,
		Thresholds:      cfg.SEO,
		SearchFields:    cfg.Search.Fields,
		Suggestions:     cfg.Search.Suggestions,
		SuggestionLimit: cfg.Search.SuggestionLimit,
	},
		catalog.WithLogger(logger),
		catalog.WithObserver(func(event string) {
			if event == catalog.EventSuggest {
				m.Suggestions.Inc()
				return
			}
			m.Searches.WithLabelValues(event).Inc()
		}),
	)

	// Ensure media directory exists.
	if err := os.MkdirAll(cfg.Media.Dir, 0o755); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	files, err := storage.NewFS(cfg.Media.Dir)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("init media storage: %w", err)
	}

	return &core{
		store:   st,
		metrics: m,
		seo:     analyzer,
		catalog: cat,
		media:   media.NewLibrary(files, cfg.Media.MaxBytes),
	}, nil
}

func (c *core) Close() error {
	return c.store.Close()
}

// syncContent imports the content directory once. The returned provider is
// nil when no directory is configured.
func syncContent(ctx context.Context, cfg *Config, c *core, logger *slog.Logger, cb content.EventCallback) (storage.Provider, error) {
	if cfg.Content.Dir == "" {
		return nil, nil
	}
	files, err := storage.NewFS(cfg.Content.Dir)
	if err != nil {
		return nil, fmt.Errorf("init content storage: %w", err)
	}
	rep, err := content.Sync(ctx, c.store, files, logger, cb)
	if err != nil {
		return nil, fmt.Errorf("content sync: %w", err)
	}
	c.metrics.ContentSync.WithLabelValues("unchanged").Add(float64(rep.Unchanged))
	c.metrics.ContentSync.WithLabelValues("failed").Add(float64(rep.Failed))
	logger.Info("Content synced",
		slog.String("dir", cfg.Content.Dir),
		slog.Int("imported", rep.Imported),
		slog.Int("unchanged", rep.Unchanged),
		slog.Int("removed", rep.Removed),
		slog.Int("failed", rep.Failed))
	return files, nil
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, logger, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("database_driver", cfg.Database.Driver),
		slog.String("content_dir", cfg.Content.Dir),
		slog.String("media_dir", cfg.Media.Dir),
		slog.String("auth_mode", cfg.Auth.Mode),
		slog.String("log_level", cfg.App.LogLevel.String()))

	c, err := openCore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	if cfg.Auth.AdminEmail != "" {
		created, err := auth.EnsureAdmin(ctx, c.store, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword)
		if err != nil {
			return fmt.Errorf("ensure admin: %w", err)
		}
		if created {
			logger.Info("Admin account created", slog.String("email", cfg.Auth.AdminEmail))
		}
	}

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	onContent := func(kind, path string) {
		c.metrics.ContentSync.WithLabelValues(kind).Inc()
		broker.PublishContentEvent(kind, path)
	}
	contentFiles, err := syncContent(ctx, cfg, c, logger, onContent)
	if err != nil {
		logger.Warn("initial content sync failed", slog.String("error", err.Error()))
	}

	contactSvc := contact.NewService(cfg.Contact, c.store, contact.WithObserver(func(o contact.Outcome) {
		c.metrics.ContactSubmissions.WithLabelValues(string(o)).Inc()
	}))
	defer contactSvc.Close()

	editors := editor.NewManager(editor.ManagerConfig{
		TTL:         cfg.Editor.SessionTTL,
		SEODelay:    cfg.Editor.SEODelay,
		ChangeDelay: cfg.Editor.ChangeDelay,
		Analyzer:    c.seo,
		Logger:      logger,
		Hooks: editor.Hooks{
			Save: c.store.UpdatePostContent,
			Stats: func(sessionID string, st seo.Stats) {
				broker.PublishSEO(sessionID, st)
			},
			Saved: func(sessionID, postID string, err error) {
				c.metrics.ObserveSave(err)
				broker.PublishSave(sessionID, postID, err)
			},
			Sessions: func(open int) {
				c.metrics.EditorSessions.Set(float64(open))
			},
		},
	})

	loginLimiter := ratelimit.New(loginPerMinute, loginBurst)
	defer loginLimiter.Stop()

	provider := auth.NewProvider(c.store,
		auth.NewSessions(cfg.Auth.Secret, cfg.Auth.SessionTTL),
		cfg.Auth.AuthEnabled(), cfg.Auth.SecureCookie)

	apiRouter := api.NewRouter(api.Deps{
		Catalog:      c.catalog,
		Contact:      contactSvc,
		Auth:         provider,
		Messages:     c.store,
		Editor:       editors,
		Media:        c.media,
		Events:       broker,
		LoginLimiter: loginLimiter,
		SessionTTL:   cfg.Auth.SessionTTL,
	})

	// Build chi router.
	r := chi.NewRouter()
	if len(cfg.App.HTTP.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.App.HTTP.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Accept-Language", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(c.metrics.Middleware)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := c.store.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", c.metrics.Handler())
	r.Handle(media.URLPrefix+"*", c.media)

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Editor session sweeper.
	g.Go(func() error {
		return editors.Run(gCtx)
	})

	// Content directory watcher.
	if contentFiles != nil && cfg.Content.Watch {
		g.Go(func() error {
			if err := content.Watch(gCtx, c.store, contentFiles, cfg.Content.Dir, logger, onContent); err != nil {
				logger.Error("content watcher failed", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group context so long-running workers stop once
// the HTTP server has shut down.
var errShutdown = errors.New("shutdown")

// RunMCP serves the MCP tools over stdio until stdin closes.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, logger, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}

	c, err := openCore(ctx, app.config, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	logger.Info("MCP server starting", slog.String("version", app.version))
	return mcpserver.New(c.catalog, c.media, app.version).ServeStdio()
}

// RunImport imports the configured content directory once and returns the
// counts.
func RunImport(ctx context.Context, opts ...Option) (content.Report, error) {
	app, logger, err := newApplication(opts)
	if err != nil {
		return content.Report{}, err
	}
	cfg := app.config
	if cfg.Content.Dir == "" {
		return content.Report{}, errors.New("content.dir is not set")
	}

	c, err := openCore(ctx, cfg, logger)
	if err != nil {
		return content.Report{}, err
	}
	defer c.Close()

	files, err := storage.NewFS(cfg.Content.Dir)
	if err != nil {
		return content.Report{}, fmt.Errorf("init content storage: %w", err)
	}
	return content.Sync(ctx, c.store, files, logger, nil)
}
