package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/ragchat/internal/logger"
)

// DefaultHeartbeat is the interval between SSE keep-alive comments.
const DefaultHeartbeat = 15 * time.Second

// Server serves the HTTP API.
type Server struct {
	ports     *Ports
	engine    *gin.Engine
	heartbeat time.Duration
	origins   []string

	// baseCtx bounds background work such as streaming answers.
	baseCtx context.Context

	// closing is closed when Run begins shutting down, releasing SSE clients.
	closing   chan struct{}
	closeOnce sync.Once

	wg sync.WaitGroup
}

// Option configures a Server.
type Option func(*Server)

// WithHeartbeat sets the SSE heartbeat interval.
func WithHeartbeat(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.heartbeat = d
		}
	}
}

// WithAllowedOrigins sets the CORS origins allowed to call the API.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		s.origins = origins
	}
}

// WithBaseContext sets the context background answers run under.
func WithBaseContext(ctx context.Context) Option {
	return func(s *Server) {
		s.baseCtx = ctx
	}
}

// NewServer creates the API server.
func NewServer(ports *Ports, opts ...Option) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{
		ports:     ports,
		heartbeat: DefaultHeartbeat,
		origins: []string{
			"http://localhost:3000",
			"http://localhost:5173",
			"http://127.0.0.1:3000",
			"http://127.0.0.1:5173",
		},
		baseCtx: context.Background(),
		closing: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = s.newRouter()
	return s, nil
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then waits for background answers.
func (s *Server) Run(ctx context.Context, addr string) error {
	s.baseCtx = ctx

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown when context is cancelled
	go func() {
		<-ctx.Done()
		s.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http shutdown: %v", err)
		}
	}()

	logger.Info("HTTP API listening on %s", addr)
	err := httpServer.ListenAndServe()
	s.wg.Wait()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Close disconnects SSE clients.
func (s *Server) Close() {
	s.closeOnce.Do(func() { close(s.closing) })
}

func (s *Server) newRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins:     s.origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Last-Event-ID"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", healthCheck)

	api := router.Group("/api")
	{
		api.GET("/state", s.getState)
		api.GET("/events", s.streamEvents)

		api.GET("/sessions", s.listSessions)
		api.POST("/sessions", s.createSession)
		api.DELETE("/sessions/:name", s.deleteSession)
		api.POST("/sessions/:name/select", s.selectSession)
		api.GET("/sessions/:name/messages", s.listMessages)
		api.DELETE("/sessions/:name/messages/:index", s.deleteMessage)
		api.POST("/sessions/:name/questions", s.submitQuestion)
		api.POST("/sessions/:name/stop", s.stopAnswer)

		api.GET("/models", s.listModels)

		api.GET("/settings", s.getSettings)
		api.PUT("/settings/model", s.setModel)
		api.PUT("/settings/params", s.setParams)

		api.GET("/indexes", s.listIndexes)
		api.POST("/indexes/:name/build", s.buildIndex)
		api.GET("/indexes/:name/search", s.searchIndex)
	}

	return router
}

func healthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// requestLogger traces requests through the debug log.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Slog().Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}
