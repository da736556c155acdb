// Package server exposes schedules, alarms and methods as a JSON API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/smokyabdulrahman/athan/internal/alarm"
	"github.com/smokyabdulrahman/athan/internal/method"
	"github.com/smokyabdulrahman/athan/internal/scheduler"
)

// Error is returned by handlers and rendered as {"error": Message}.
type Error struct {
	Code    int
	Message string
}

// HandlerFunc returns a value to render as JSON, or an Error.
type HandlerFunc func(ctx *gin.Context) (any, *Error)

// ResolveEndpoint adapts a HandlerFunc to gin.
func ResolveEndpoint(h HandlerFunc) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		result, apiErr := h(ctx)
		if apiErr != nil {
			ctx.JSON(apiErr.Code, gin.H{"error": apiErr.Message})
			return
		}
		ctx.JSON(http.StatusOK, result)
	}
}

// AlarmLister lists the alarms waiting in a registry.
type AlarmLister interface {
	Pending(ctx context.Context) ([]alarm.Event, error)
}

// Server serves the HTTP API.
type Server struct {
	Scheduler *scheduler.Scheduler
	// Alarms may be nil, in which case /api/alarms is empty.
	Alarms   AlarmLister
	Resolver *method.Resolver
}

// New creates a Server.
func New(s *scheduler.Scheduler, alarms AlarmLister, resolver *method.Resolver) *Server {
	return &Server{Scheduler: s, Alarms: alarms, Resolver: resolver}
}

// Router builds the gin engine with every route mounted.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods:    []string{"GET", "OPTIONS", "HEAD"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:   []string{"Content-Length"},
	}))

	api := r.Group("/api")
	api.GET("/schedule", ResolveEndpoint(s.schedule))
	api.GET("/next", ResolveEndpoint(s.next))
	api.GET("/alarms", ResolveEndpoint(s.alarms))
	api.GET("/methods", ResolveEndpoint(s.methods))
	api.GET("/methods/resolve", ResolveEndpoint(s.resolve))
	return r
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Router()}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("address", addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func requestLogger() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()
		log.Debug().
			Str("method", ctx.Request.Method).
			Str("path", ctx.Request.URL.Path).
			Int("status", ctx.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	}
}
