package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yigit/studentrecords/internal/bootstrap"
	"github.com/yigit/studentrecords/internal/config"
	"github.com/yigit/studentrecords/internal/docstore"
	"github.com/yigit/studentrecords/internal/pkg/helpers"
	"github.com/yigit/studentrecords/internal/pkg/logger"
)

// Server holds the state for the HTTP server.
type Server struct {
	config *config.Config
	router *gin.Engine
	store  docstore.Store
	http   *http.Server
}

// NewServer creates and initializes a new server instance by calling bootstrap functions.
func NewServer() (*Server, error) {
	cfg, err := bootstrap.LoadConfigAndSetupLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to load config or setup logger: %w", err)
	}

	m := bootstrap.SetupMetrics(cfg)

	store, err := bootstrap.SetupStore(context.Background(), cfg, m)
	if err != nil {
		return nil, fmt.Errorf("failed to setup document store: %w", err)
	}

	deps := bootstrap.BuildDependencies(cfg, store, m)

	router, err := bootstrap.SetupRouter(cfg, deps)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to setup router: %w", err)
	}

	return New(cfg, router, store), nil
}

// New wraps an already configured router and store.
func New(cfg *config.Config, router *gin.Engine, store docstore.Store) *Server {
	return &Server{
		config: cfg,
		router: router,
		store:  store,
		http: &http.Server{
			Addr:         ":" + cfg.Server.Port,
			Handler:      router,
			ReadTimeout:  helpers.ParseDuration(cfg.Server.ReadTimeout, 10*time.Second),
			WriteTimeout: helpers.ParseDuration(cfg.Server.WriteTimeout, 15*time.Second),
			IdleTimeout:  120 * time.Second,
		},
	}
}

// Handler returns the HTTP handler served by the server
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run starts the HTTP server and handles graceful shutdown.
func (s *Server) Run() error {
	logger.Info().Str("port", s.config.Server.Port).Msg("Starting server...")

	serverErrors := make(chan error, 1)

	go func() {
		logger.Info().Str("addr", s.http.Addr).Msg("HTTP server listening")
		serverErrors <- s.http.ListenAndServe()
	}()

	osSignals := make(chan os.Signal, 1)
	signal.Notify(osSignals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(osSignals)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			s.closeStore()
			return fmt.Errorf("error starting server: %w", err)
		}
	case sig := <-osSignals:
		logger.Info().Str("signal", sig.String()).Msg("Received OS signal, initiating shutdown...")
	}

	return s.Shutdown(context.Background())
}

// Shutdown gracefully stops the server and closes the document store.
func (s *Server) Shutdown(ctx context.Context) error {
	timeout := helpers.ParseDuration(s.config.Server.ShutdownTimeout, 5*time.Second)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	shutdownError := false

	logger.Info().Msg("Shutting down HTTP server...")
	if err := s.http.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
		shutdownError = true
	} else {
		logger.Info().Msg("HTTP server gracefully stopped.")
	}

	if err := s.closeStore(); err != nil {
		shutdownError = true
	}

	logger.Info().Msg("Server shutdown process complete.")
	if shutdownError {
		return errors.New("server shutdown completed with errors")
	}
	return nil
}

func (s *Server) closeStore() error {
	if s.store == nil {
		return nil
	}
	logger.Info().Msg("Closing document store...")
	if err := s.store.Close(); err != nil {
		logger.Error().Err(err).Msg("Document store close error")
		return err
	}
	s.store = nil
	logger.Info().Msg("Document store closed.")
	return nil
}
