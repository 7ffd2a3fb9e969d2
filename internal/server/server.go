// Package server exposes the remote task store and the webhook endpoint over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dori/sweet/internal/model"
)

// Store is the persistence the handlers need
type Store interface {
	FetchTasks(ctx context.Context, address string) ([]model.Task, error)
	ReplaceTasks(ctx context.Context, address string, tasks []model.Task) error
	GetPreferences(ctx context.Context, address string) (*model.Preferences, error)
	PutPreferences(ctx context.Context, address string, prefs model.Preferences) error
	UpsertProfile(ctx context.Context, p model.Profile) error
	InsertNotification(ctx context.Context, n model.Notification) (model.Notification, error)
	ListNotifications(ctx context.Context, userID string, limit int) ([]model.Notification, error)
	Ping(ctx context.Context) error
}

// Server is the sweet sync server
type Server struct {
	store  Store
	router *gin.Engine
	logger *zap.Logger
}

// New creates a server with all routes registered
func New(store Store, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(requestID(), requestLogger(logger), gin.Recovery())

	s := &Server{
		store:  store,
		router: router,
		logger: logger,
	}

	router.GET("/healthz", s.handleHealth)

	api := router.Group("/api")
	{
		api.GET("/tasks", s.handleGetTasks)
		api.POST("/tasks/bulk", s.handleBulkTasks)
		api.GET("/preferences", s.handleGetPreferences)
		api.PUT("/preferences", s.handlePutPreferences)
		api.GET("/notifications", s.handleListNotifications)
		api.POST("/webhook", s.handleWebhook)
	}

	return s
}

// Handler returns the router for embedding or tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}
