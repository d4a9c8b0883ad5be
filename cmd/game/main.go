package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/tomz197/nosecatch/internal/audio"
	"github.com/tomz197/nosecatch/internal/config"
	"github.com/tomz197/nosecatch/internal/leaderboard"
	"github.com/tomz197/nosecatch/internal/logging"
	"github.com/tomz197/nosecatch/internal/loop"
	"github.com/tomz197/nosecatch/internal/profile"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "game error: %v\n", err)
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

	// The terminal belongs to the game, so only the log file is written.
	logCfg := cfg.Logging
	logCfg.Console = false
	log, err := logging.New(logCfg, nil)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	prof, err := profile.Open(cfg.Profile.Path)
	if err != nil {
		return err
	}

	store, closeStore, err := leaderboard.OpenStore(cfg.Database.Enabled, cfg.Database.DSN, log)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	var sink *audio.Player
	if cfg.Audio.Enabled {
		sink = audio.NewPlayer(log)
		if err := sink.Init(); err != nil {
			log.Warn("audio unavailable, playing silently", zap.Error(err))
		}
		sink.SetVolume(cfg.Audio.Volume)
		defer sink.Close()
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("failed to enable raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	log.Info("local game started", zap.String("profile", cfg.Profile.Path))
	opts := loop.Options{
		Config:      cfg.GameConfig(),
		FPS:         cfg.Server.FPS,
		Profile:     prof,
		Leaderboard: store,
		Logger:      log,
	}
	if sink != nil {
		opts.Audio = sink
	}
	return loop.Run(ctx, bufio.NewReader(os.Stdin), os.Stdout, opts)
}
