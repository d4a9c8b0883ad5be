// Package web serves the browser front-end: a websocket that plays a session
// from tracking samples sent by the page, plus a small leaderboard API.
package web

import (
	"errors"
	"net"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tomz197/nosecatch/internal/game"
	"github.com/tomz197/nosecatch/internal/leaderboard"
	"github.com/tomz197/nosecatch/internal/skin"
)

// DefaultFPS is the frame rate of browser sessions.
const DefaultFPS = 30

// Options configure a Server.
type Options struct {
	Config      game.Config
	FPS         int
	Leaderboard leaderboard.Store
	Registry    *skin.Registry
	Logger      *zap.Logger
	Index       []byte // Page served at /
}

// Server is the HTTP and websocket front-end.
type Server struct {
	app   *fiber.App
	opts  Options
	log   *zap.Logger
	store leaderboard.Store

	mu       sync.RWMutex
	sessions map[uuid.UUID]*playSession
}

// NewServer creates the fiber app and registers every route.
func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Leaderboard == nil {
		opts.Leaderboard = leaderboard.NewMemoryStore()
	}
	if opts.Registry == nil {
		opts.Registry = skin.DefaultRegistry()
	}
	if opts.FPS <= 0 {
		opts.FPS = DefaultFPS
	}

	s := &Server{
		opts:     opts,
		log:      opts.Logger,
		store:    opts.Leaderboard,
		sessions: make(map[uuid.UUID]*playSession),
	}

	app := fiber.New(fiber.Config{
		AppName:               "nosecatch",
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	app.Use(cors.New())

	app.Get("/", s.handleIndex)

	api := app.Group("/api")
	api.Get("/health", s.handleHealth)
	api.Get("/leaderboard", s.handleLeaderboard)
	api.Post("/scores", s.handleSubmitScore)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/play", websocket.New(s.handlePlay))

	s.app = app
	return s
}

// App exposes the fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	s.log.Info("web server listening", zap.String("addr", addr))
	return s.app.Listen(addr)
}

// Serve serves on an existing listener.
func (s *Server) Serve(ln net.Listener) error {
	return s.app.Listener(ln)
}

// Shutdown closes every play session and stops the server.
func (s *Server) Shutdown(timeout time.Duration) error {
	s.mu.RLock()
	for _, ps := range s.sessions {
		ps.close()
	}
	s.mu.RUnlock()
	return s.app.ShutdownWithTimeout(timeout)
}

// SessionCount returns the number of open play sessions.
func (s *Server) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Server) register(ps *playSession) {
	s.mu.Lock()
	s.sessions[ps.id] = ps
	n := len(s.sessions)
	s.mu.Unlock()
	s.log.Info("play session opened", zap.String("session", ps.id.String()), zap.Int("sessions", n))
}

func (s *Server) unregister(ps *playSession) {
	s.mu.Lock()
	delete(s.sessions, ps.id)
	n := len(s.sessions)
	s.mu.Unlock()
	s.log.Info("play session closed", zap.String("session", ps.id.String()), zap.Int("sessions", n))
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		s.log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
