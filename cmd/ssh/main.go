package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"
	"go.uber.org/zap"

	"github.com/tomz197/nosecatch/internal/config"
	"github.com/tomz197/nosecatch/internal/draw"
	"github.com/tomz197/nosecatch/internal/leaderboard"
	applog "github.com/tomz197/nosecatch/internal/logging"
	"github.com/tomz197/nosecatch/internal/loop"
)

const (
	playerShutdownWait = 15 * time.Second
	serverShutdownWait = 5 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ssh server error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	loader, err := config.Load(wd, nil)
	if err != nil {
		return err
	}
	cfg := loader.Current()

	log, err := applog.New(cfg.Logging, os.Stderr)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	loader.Watch(func(config.Config) {
		log.Info("new sessions will use the reloaded configuration")
	})

	store, closeStore, err := leaderboard.OpenStore(cfg.Database.Enabled, cfg.Database.DSN, log)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	hub := loop.NewHub(log)
	g := &gameHandler{loader: loader, store: store, hub: hub, log: log}

	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(cfg.Server.SSHHost, cfg.Server.SSHPort)),
		wish.WithMiddleware(
			g.middleware,
			activeterm.Middleware(),
			logging.Middleware(),
		),
		// Set TCP_NODELAY to reduce latency for game input
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}
	if cfg.Server.HostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(cfg.Server.HostKeyPath))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	log.Info("starting SSH server",
		zap.String("host", cfg.Server.SSHHost),
		zap.String("port", cfg.Server.SSHPort),
		zap.String("host_key", cfg.Server.HostKeyPath))
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-done:
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}
	log.Info("shutting down server", zap.Int("sessions", hub.Count()))

	// Players get a notice and a few seconds before the connections drop.
	hub.Shutdown(playerShutdownWait)

	ctx, cancel := context.WithTimeout(context.Background(), serverShutdownWait)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	return nil
}

type gameHandler struct {
	loader *config.Loader
	store  leaderboard.Store
	hub    *loop.Hub
	log    *zap.Logger
}

// middleware runs one game per SSH session.
func (g *gameHandler) middleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		pty, winCh, ok := sess.Pty()
		if !ok {
			fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
			return
		}

		handle := g.hub.Register(sess.User())
		defer g.hub.Unregister(handle)
		log := g.log.With(zap.String("session", handle.ID.String()), zap.String("user", sess.User()))
		log.Info("new game session",
			zap.String("terminal", pty.Term),
			zap.Int("width", pty.Window.Width),
			zap.Int("height", pty.Window.Height))

		sizeTracker := newSizeTracker(pty.Window.Width, pty.Window.Height)
		go func() {
			for win := range winCh {
				sizeTracker.update(win.Width, win.Height)
			}
		}()

		cfg := g.loader.Current()
		err := loop.Run(sess.Context(), bufio.NewReader(sess), sess, loop.Options{
			Config:      cfg.GameConfig(),
			FPS:         cfg.Server.FPS,
			Leaderboard: g.store,
			Logger:      log,
			Size:        sizeTracker.getSize,
			Username:    sess.User(),
			IdleTimeout: true,
			Shutdown:    handle.ShuttingDown(),
		})
		if err != nil {
			log.Warn("game error", zap.Error(err))
		}
		log.Info("session ended")
		next(sess)
	}
}

// sizeTracker tracks terminal size from SSH window change events.
type sizeTracker struct {
	mu     sync.RWMutex
	width  int
	height int
}

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *sizeTracker) getSize() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}

var _ draw.TermSizeFunc = (*sizeTracker)(nil).getSize
