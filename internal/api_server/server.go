package apiserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/contentgrid/content-search/internal/auth"
	"github.com/contentgrid/content-search/internal/config"
	handlers "github.com/contentgrid/content-search/internal/handlers/v1"
	"github.com/contentgrid/content-search/internal/index"
	"github.com/contentgrid/content-search/internal/service"
	"github.com/contentgrid/content-search/internal/store"
	"github.com/contentgrid/content-search/pkg/metrics"
	"github.com/contentgrid/content-search/pkg/middleware"
	"go.uber.org/zap"
)

const (
	gracefulShutdownTimeout = 5 * time.Second
)

type Server struct {
	cfg      *config.Config
	store    store.Store
	tracker  *index.Tracker
	listener net.Listener
}

// New returns a new instance of a content-search API server.
func New(
	cfg *config.Config,
	store store.Store,
	tracker *index.Tracker,
	listener net.Listener,
) *Server {
	return &Server{
		cfg:      cfg,
		store:    store,
		tracker:  tracker,
		listener: listener,
	}
}

func (s *Server) Run(ctx context.Context) error {
	zap.S().Named("api_server").Info("Initializing API server")

	authenticator, err := auth.NewAuthenticator(s.cfg.Service.Auth)
	if err != nil {
		return fmt.Errorf("failed to create authenticator: %w", err)
	}

	router := chi.NewRouter()

	metricMiddleware := metrics.NewMiddleware("api_server")
	metricMiddleware.MustRegisterDefault()

	router.Use(
		metricMiddleware.Handler,
		cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "HEAD", "OPTIONS"},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: false,
			MaxAge:           300,
		}),
		authenticator.Authenticator,
		middleware.RequestID,
		middleware.Logger(),
		chiMiddleware.Recoverer,
	)

	h := handlers.NewServiceHandler(
		service.NewSearchService(s.store, s.tracker),
	)
	router.Post("/api/v1/search", h.Search)
	router.Get("/api/v1/index/status", h.IndexStatus)
	router.Get("/health", h.Health)

	srv := http.Server{Addr: s.cfg.Service.Address, Handler: router}

	go func() {
		<-ctx.Done()
		zap.S().Named("api_server").Infof("Shutdown signal received: %s", ctx.Err())
		ctxTimeout, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
		defer cancel()

		srv.SetKeepAlivesEnabled(false)
		_ = srv.Shutdown(ctxTimeout)
		zap.S().Named("api_server").Info("api server terminated")
	}()

	zap.S().Named("api_server").Infof("Listening on %s...", s.listener.Addr().String())
	if err := srv.Serve(s.listener); err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}

	return nil
}
