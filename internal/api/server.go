// Package api is the HTTP service backing remote comment persistence and
// scene-config collection: the player's fire-and-forget writes land here.
package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"

	"github.com/scenecast/internal/bus"
	"github.com/scenecast/internal/comments"
)

// ThreadStore is the persistence surface the handlers need; the postgres
// repository satisfies it.
type ThreadStore interface {
	ListThreads(ctx context.Context, sceneFilter string) ([]comments.Thread, error)
	InsertThread(ctx context.Context, t comments.Thread) error
	InsertReply(ctx context.Context, r comments.Reply) error
	UpdateThreadStatus(ctx context.Context, id string, status comments.Status) error
	UpdateThreadMessage(ctx context.Context, id, text string) error
	UpdateReplyMessage(ctx context.Context, id, text string) error
	DeleteThread(ctx context.Context, id string) error
	DeleteReply(ctx context.Context, id string) error
}

// Server hosts the comment API and the scene-config sink.
type Server struct {
	echo      *echo.Echo
	port      int
	store     ThreadStore
	scenes    *sceneConfigStore
	events    *bus.Bus
	jwtSecret string
}

// NewServer wires routes and middleware. An empty jwtSecret disables
// auth on mutating routes (local development). events may be nil.
func NewServer(port int, store ThreadStore, events *bus.Bus, jwtSecret string) *Server {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	server := &Server{
		echo:      e,
		port:      port,
		store:     store,
		scenes:    newSceneConfigStore(),
		events:    events,
		jwtSecret: jwtSecret,
	}

	// Setup routes
	server.setupRoutes()

	return server
}

// setupRoutes configures all API endpoints
func (s *Server) setupRoutes() {
	// Health check endpoint
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status": "healthy",
		})
	})

	// API v1 group
	v1 := s.echo.Group("/api/v1")
	v1.GET("/threads", s.listThreads)
	v1.GET("/scene-config/:language", s.getSceneConfig)

	// Mutating routes carry a Bearer token when a secret is configured.
	mut := s.echo.Group("/api/v1", s.requireToken)
	mut.POST("/threads", s.createThread)
	mut.POST("/replies", s.createReply)
	mut.PATCH("/threads/:id/status", s.updateThreadStatus)
	mut.PATCH("/threads/:id/message", s.updateThreadMessage)
	mut.PATCH("/replies/:id/message", s.updateReplyMessage)
	mut.DELETE("/threads/:id", s.deleteThread)
	mut.DELETE("/replies/:id", s.deleteReply)
	mut.PATCH("/scene-config/:language", s.patchSceneConfig)

	// The player's persistence client assembles its URL as
	// {base}/{language}/scene-config, so that shape is served too.
	s.echo.PATCH("/:language/scene-config", s.patchSceneConfig, s.requireToken)
}

// Start runs the server until SIGINT/SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	go func() {
		addr := fmt.Sprintf(":%d", s.port)
		if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("api server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.echo.Shutdown(ctx)
}
