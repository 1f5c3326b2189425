// Package server exposes the screening engine over HTTP: entity and
// sanction management, fuzzy match lookups, and list refresh.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/kesiliance/screening-cli/internal/store"
)

// Options configures the HTTP server.
type Options struct {
	Port        int
	APIKey      string
	CORSOrigins []string

	// Defaults applied to /match requests that omit the parameters.
	DefaultThreshold int
	DefaultLimit     int

	// Workers shards match scoring; zero means serial.
	Workers int

	// RefreshTimeout bounds a single sanctions refresh download.
	RefreshTimeout time.Duration
	// UserAgent identifies us to list publishers.
	UserAgent string
}

// Server wires the store and screening pipeline into an HTTP handler.
type Server struct {
	store store.Store
	opts  Options
}

// New creates a Server over the given store.
func New(st store.Store, opts Options) *Server {
	if opts.DefaultThreshold == 0 {
		opts.DefaultThreshold = 80
	}
	if opts.DefaultLimit == 0 {
		opts.DefaultLimit = 5
	}
	if opts.RefreshTimeout == 0 {
		opts.RefreshTimeout = 2 * time.Minute
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	return &Server{store: st, opts: opts}
}

// Router builds the chi router with middleware and all routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "x-api-key"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/", s.handleInfo)

	r.Group(func(r chi.Router) {
		r.Use(apiKeyAuth(s.opts.APIKey))

		r.Post("/entities", s.handleCreateEntity)
		r.Get("/entities", s.handleListEntities)
		r.Post("/entities/import", s.handleImportEntities)

		r.Get("/sanctions", s.handleListSanctions)
		r.Post("/sanctions/import", s.handleImportSanctions)

		r.Get("/match/{entityID}", s.handleMatch)
		r.Get("/match/{entityID}/csv", s.handleMatchCSV)

		r.Post("/admin/refresh_sanctions", s.handleRefreshSanctions)
	})

	return r
}

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.opts.Port),
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		zap.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	zap.L().Info("starting server", zap.Int("port", s.opts.Port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return eris.Wrap(err, "server: listen")
	}
	return nil
}
