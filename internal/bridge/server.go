// Package bridge is the control surface: it accepts generate commands over
// HTTP, relays them to the page automation, and reports the result back once
// the sequence finishes.
package bridge

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"

	"github.com/zennit/internal/store"
)

// ActionGenerateSummary is the single inbound command the bridge understands.
const ActionGenerateSummary = "generateSummary"

// GenerateFunc runs the end-to-end injection sequence.
type GenerateFunc func(ctx context.Context) error

// Command is the inbound message shape.
type Command struct {
	Action string `json:"action"`
}

// Ack is the response shape.
type Ack struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Server relays commands to the injector and streams state events.
type Server struct {
	echo     *echo.Echo
	port     int
	generate GenerateFunc
	store    *store.Store
	hub      *Hub
	upgrader websocket.Upgrader
}

// NewServer wires the control endpoints. generate is invoked once per
// accepted command; the HTTP response is held until it returns.
func NewServer(port int, st *store.Store, hub *Hub, generate GenerateFunc) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:     e,
		port:     port,
		generate: generate,
		store:    st,
		hub:      hub,
		upgrader: websocket.Upgrader{
			// the bridge binds to loopback; the page origin is irrelevant
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}

	e.GET("/health", s.health)
	e.GET("/status", s.status)
	e.POST("/command", s.command)
	e.GET("/events", s.events)
	return s
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}

// status lets other surfaces reflect whether a generate run is in flight.
func (s *Server) status(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]bool{
		"generating": s.store.Generating(c.Request().Context()),
	})
}

// command accepts {"action":"generateSummary"} and acknowledges with
// {"success":true} or {"success":false,"error":...} once the sequence is
// over. A second command while one is running is not rejected; the generating
// flag only informs other surfaces.
func (s *Server) command(c echo.Context) error {
	var cmd Command
	if err := c.Bind(&cmd); err != nil {
		return c.JSON(http.StatusBadRequest, Ack{Success: false, Error: "malformed command"})
	}
	if cmd.Action != ActionGenerateSummary {
		return c.JSON(http.StatusBadRequest, Ack{Success: false, Error: fmt.Sprintf("unknown action %q", cmd.Action)})
	}

	ctx := c.Request().Context()
	if err := s.store.SetGenerating(ctx, true); err != nil {
		log.Warn().Err(err).Msg("setting generating flag failed")
	}
	defer func() {
		if err := s.store.SetGenerating(context.Background(), false); err != nil {
			log.Warn().Err(err).Msg("clearing generating flag failed")
		}
	}()

	if err := s.generate(ctx); err != nil {
		log.Error().Err(err).Msg("generate command failed")
		return c.JSON(http.StatusOK, Ack{Success: false, Error: err.Error()})
	}
	return c.JSON(http.StatusOK, Ack{Success: true})
}

func (s *Server) events(c echo.Context) error {
	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	s.hub.add(conn)
	// drain control frames; the feed is one-way
	go func() {
		defer s.hub.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	return nil
}

// Handler exposes the routes for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves until interrupted, then shuts down gracefully.
func (s *Server) Start() error {
	go func() {
		if err := s.echo.Start(fmt.Sprintf("127.0.0.1:%d", s.port)); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("bridge server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.echo.Shutdown(ctx)
}
