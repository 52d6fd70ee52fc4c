// Package server is the HTTP boundary: gin routing, request decoding and the
// mapping of the core failure taxonomy onto transport status codes.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/text/currency"

	"github.com/Omarkam3l/Kathir-final/internal/config"
	"github.com/Omarkam3l/Kathir-final/internal/service"
)

type Server struct {
	cfg       config.Config
	logger    *zap.Logger
	allocator *service.Allocator
	ledger    *service.Ledger
	search    *service.Search
	currency  currency.Unit

	http *http.Server
}

func New(cfg config.Config, logger *zap.Logger, allocator *service.Allocator, ledger *service.Ledger, search *service.Search) (*Server, error) {
	unit, err := currency.ParseISO(cfg.Cart.Currency)
	if err != nil {
		return nil, fmt.Errorf("currency.ParseISO(%q): %w", cfg.Cart.Currency, err)
	}

	s := &Server{
		cfg:       cfg,
		logger:    logger,
		allocator: allocator,
		ledger:    ledger,
		search:    search,
		currency:  unit,
	}

	if cfg.App.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	router.GET("/health", s.handleHealth)
	router.GET("/meals/search", s.handleSearchMeals)
	router.GET("/favorites/search", s.handleSearchFavorites)
	router.GET("/cart", s.handleGetCart)
	router.POST("/cart/add", s.handleAddToCart)
	router.POST("/cart/build", s.handleBuildCart)

	s.http = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return s, nil
}

// Handler exposes the routed handler, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run serves until ctx is cancelled, then drains within the configured
// shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("http server listening", zap.String("addr", s.http.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http.ListenAndServe: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http.Shutdown: %w", err)
	}

	return nil
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": s.cfg.App.Name})
}
