// Package server exposes the album library over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pders01/crate/internal/catalog"
	"github.com/pders01/crate/internal/debuglog"
	"github.com/pders01/crate/internal/library"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	lib            *library.Service
	engine         *gin.Engine
	maxUploadBytes int64
}

// New wires the routes onto a fresh gin engine. maxUploadBytes caps the
// multipart body of a cover upload.
func New(lib *library.Service, maxUploadBytes int64) *Server {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 16 * 1024 * 1024
	}
	s := &Server{
		lib:            lib,
		engine:         gin.New(),
		maxUploadBytes: maxUploadBytes,
	}
	s.engine.Use(requestID(), gin.CustomRecovery(recovered))
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.engine.Group("/api")
	api.GET("/albums", s.listAlbums)
	api.GET("/stats", s.stats)
	api.POST("/albums/:id/toggle_shared", s.toggleShared)
	api.POST("/albums/:id/update_cover", s.updateCover)
	api.POST("/rescan", s.rescan)

	s.engine.GET("/cover/*path", s.cover)
	s.engine.GET(catalog.PlaceholderCover, func(c *gin.Context) {
		c.Data(http.StatusOK, "image/svg+xml", library.PlaceholderSVG)
	})
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		debuglog.Infof("listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving %s: %w", addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return nil
	}
}

func recovered(c *gin.Context, err any) {
	debuglog.Errorf("[%s] panic: %v", c.GetString(requestIDKey), err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error":   "Internal server error",
	})
}
