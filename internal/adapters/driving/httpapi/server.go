// Package httpapi exposes the question answering pipeline over HTTP.
// The surface mirrors the CLI: build and inspect the index, ask single
// questions, run bounded batches, and search passages directly.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// ShutdownTimeout bounds graceful shutdown once the context is
// cancelled.
const ShutdownTimeout = 10 * time.Second

// Server serves the docqa HTTP API.
type Server struct {
	index   driving.IndexService
	answers driving.AnswerService
	addr    string
	engine  *gin.Engine
}

// New creates a server listening on addr.
func New(addr string, index driving.IndexService, answers driving.AnswerService) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		index:   index,
		answers: answers,
		addr:    addr,
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger())

	engine.GET("/", s.handleRoot)
	engine.GET("/health", s.handleHealth)
	engine.GET("/database/status", s.handleStatus)
	engine.POST("/database/build", s.handleBuild)
	engine.POST("/ask", s.handleAsk)
	engine.POST("/ask/batch", s.handleAskBatch)
	engine.POST("/search", s.handleSearch)

	s.engine = engine
	return s
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.engine,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("HTTP API listening on %s", s.addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// requestLogger logs each request through the verbose logger.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("%s %s -> %d (%s)",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
