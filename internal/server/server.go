// Package server exposes the journal and analytics over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/julianstephens/habitlens/internal/analytics"
	"github.com/julianstephens/habitlens/internal/constants"
	"github.com/julianstephens/habitlens/internal/journal"
	"github.com/julianstephens/habitlens/internal/logger"
	"github.com/julianstephens/habitlens/internal/streak"
)

const userKey = "user"

// Options configures the request defaults of a Server
type Options struct {
	// DefaultUser acts when a request carries no X-User header.
	DefaultUser string
	Controls    analytics.Controls
}

type Server struct {
	journal *journal.Service
	engine  *analytics.Engine
	streaks *streak.Calculator
	opts    Options
	log     *log.Logger
}

func New(j *journal.Service, engine *analytics.Engine, streaks *streak.Calculator, opts Options) *Server {
	if opts.DefaultUser == "" {
		opts.DefaultUser = constants.DefaultUser
	}
	if opts.Controls == (analytics.Controls{}) {
		opts.Controls = analytics.DefaultControls()
	}
	return &Server{
		journal: j,
		engine:  engine,
		streaks: streaks,
		opts:    opts,
		log:     logger.With("component", "server"),
	}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLog())

	r.GET("/healthz", func(c *gin.Context) {
		ok(c, http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api", s.actingUser())
	{
		api.GET("/habits", s.listHabits)
		api.POST("/habits", s.createHabit)
		api.GET("/habits/:id", s.getHabit)
		api.PUT("/habits/:id", s.updateHabit)
		api.DELETE("/habits/:id", s.deleteHabit)
		api.GET("/habits/:id/streak", s.habitStreak)

		api.GET("/entries", s.listEntries)
		api.POST("/entries", s.createEntry)
		api.PUT("/entries/:id", s.updateEntry)
		api.DELETE("/entries/:id", s.deleteEntry)

		api.POST("/logs", s.logHabit)

		api.GET("/analytics", s.analytics)
	}
	return r
}

// Run serves on addr until ctx is canceled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.log.Info("Shutting down HTTP server")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// actingUser resolves the X-User header, creating the user on first sight.
func (s *Server) actingUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.GetHeader(constants.UserHeader)
		if name == "" {
			name = s.opts.DefaultUser
		}
		user, err := s.journal.ResolveUser(c.Request.Context(), name)
		if err != nil {
			fail(c, err)
			return
		}
		c.Set(userKey, user.ID)
		c.Next()
	}
}

func userID(c *gin.Context) string {
	return c.GetString(userKey)
}
