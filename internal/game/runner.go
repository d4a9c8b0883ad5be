package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tomz197/nosecatch/internal/tracking"
)

// DefaultFPS is the frame rate of the runner.
const DefaultFPS = 60

// Controller is polled at the top of every frame, before pending tracking
// samples are drained. Front-ends use it to read keys and drive phase changes.
type Controller interface {
	Poll(now time.Duration) (quit bool)
}

// ControllerFunc adapts a function to Controller.
type ControllerFunc func(now time.Duration) bool

func (f ControllerFunc) Poll(now time.Duration) bool { return f(now) }

// RunnerConfig tunes a Runner.
type RunnerConfig struct {
	FPS       int
	ExitOnEnd bool // Return from Run once the game has ended
}

// Runner drives an Engine at a fixed frame rate: tracking callback first, then
// the frame callback.
type Runner struct {
	engine *Engine
	source tracking.Source
	ctrl   Controller
	cfg    RunnerConfig
	log    *zap.Logger
}

// NewRunner creates a runner. ctrl and log may be nil.
func NewRunner(e *Engine, src tracking.Source, ctrl Controller, cfg RunnerConfig, log *zap.Logger) *Runner {
	if cfg.FPS <= 0 {
		cfg.FPS = DefaultFPS
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{engine: e, source: src, ctrl: ctrl, cfg: cfg, log: log}
}

// Run blocks until ctx is cancelled, the controller quits, the game ends with
// ExitOnEnd set, or the tracking source fails before the session went live.
func (r *Runner) Run(ctx context.Context) error {
	frameTime := time.Second / time.Duration(r.cfg.FPS)
	ticker := time.NewTicker(frameTime)
	defer ticker.Stop()
	defer r.engine.Stop()

	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		done, err := r.Tick(time.Since(start))
		if err != nil || done {
			return err
		}
	}
}

// Tick runs one frame at clock time now. It reports whether the runner should
// stop.
func (r *Runner) Tick(now time.Duration) (bool, error) {
	if r.ctrl != nil && r.ctrl.Poll(now) {
		return true, nil
	}

	if r.source != nil {
		err := tracking.Drain(r.source, func(s tracking.Sample) {
			r.engine.Track(s, now)
		})
		if errors.Is(err, tracking.ErrSourceClosed) {
			switch r.engine.Phase() {
			case PhaseActive, PhaseEnded:
				// The pose stays where it was last seen.
				r.log.Warn("tracking source closed during session")
				r.source = nil
			default:
				return true, fmt.Errorf("tracking: %w", err)
			}
		}
	}

	running := r.engine.Step(now)
	return !running && r.cfg.ExitOnEnd, nil
}
