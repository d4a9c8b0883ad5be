package main

import (
	_ "embed"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/tomz197/nosecatch/internal/config"
	"github.com/tomz197/nosecatch/internal/leaderboard"
	"github.com/tomz197/nosecatch/internal/logging"
	"github.com/tomz197/nosecatch/internal/web"
)

const shutdownWait = 5 * time.Second

//go:embed index.html
var htmlPage string

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "web server error: %v\n", err)
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

	log, err := logging.New(cfg.Logging, os.Stderr)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	store, closeStore, err := leaderboard.OpenStore(cfg.Database.Enabled, cfg.Database.DSN, log)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	page := strings.ReplaceAll(htmlPage, "{{.SSHHost}}", cfg.Server.SSHDisplayHost)
	page = strings.ReplaceAll(page, "{{.SSHPort}}", cfg.Server.SSHPort)
	srv := web.NewServer(web.Options{
		Config:      cfg.GameConfig(),
		Leaderboard: store,
		Logger:      log,
		Index:       []byte(page),
	})

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	addr := net.JoinHostPort(cfg.Server.WebHost, cfg.Server.WebPort)
	go func() {
		if err := srv.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-done:
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}
	log.Info("shutting down web server", zap.Int("sessions", srv.SessionCount()))
	return srv.Shutdown(shutdownWait)
}
