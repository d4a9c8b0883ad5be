package game

import (
	"fmt"
	"time"

	"github.com/tomz197/nosecatch/internal/distance"
)

// Phase is the session phase.
type Phase int

const (
	PhaseIdle             Phase = iota // Menu, no session
	PhaseTutorial                      // First-run instructions showing
	PhaseAwaitingDistance              // Waiting for an ideal pose
	PhaseHolding                       // Ideal pose held, filling the progress ring
	PhaseCountdown                     // 3, 2, 1, GO
	PhaseActive                        // Objects falling
	PhaseEnded                         // Out of lives, state frozen
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "IDLE"
	case PhaseTutorial:
		return "AWAITING_TUTORIAL"
	case PhaseAwaitingDistance:
		return "AWAITING_IDEAL_DISTANCE"
	case PhaseHolding:
		return "HOLDING"
	case PhaseCountdown:
		return "COUNTDOWN"
	case PhaseActive:
		return "ACTIVE"
	case PhaseEnded:
		return "ENDED"
	default:
		return "UNKNOWN"
	}
}

// PreGame reports whether the phase waits for the player's pose.
func (p Phase) PreGame() bool {
	return p == PhaseAwaitingDistance || p == PhaseHolding
}

// State is the session state owned by the Engine. Only the loop goroutine
// writes it.
type State struct {
	Phase Phase

	Score           int
	Lives           int
	Combo           int
	Fever           bool
	SpeedMultiplier float64
	SpeedTier       int

	StartedAt time.Duration // Clock time the session went active
	EndedAt   time.Duration
	LastSpawn time.Duration

	Zone         distance.Zone
	HoldProgress float64
	Countdown    int // Remaining countdown value, 0 shows GO
	Warning      bool
	Penalty      bool
	WarningTime  time.Duration

	// Control point in logical pixels, and the face scale it was observed at.
	ControlX, ControlY float64
	FaceScale          float64
	Detected           bool
	Misses             int // Samples in a row without a face

	FlashUntil time.Duration
}

// reset prepares the state for a new session.
func (s *State) reset(lives int) {
	phase := s.Phase
	x, y, scale, detected, misses := s.ControlX, s.ControlY, s.FaceScale, s.Detected, s.Misses
	*s = State{
		Phase:           phase,
		Lives:           lives,
		SpeedMultiplier: 1,
		ControlX:        x,
		ControlY:        y,
		FaceScale:       scale,
		Detected:        detected,
		Misses:          misses,
	}
	s.SpeedTier = speedTier(s.SpeedMultiplier)
}

// Elapsed returns the active session time at now.
func (s *State) Elapsed(now time.Duration) time.Duration {
	switch s.Phase {
	case PhaseActive:
		return now - s.StartedAt
	case PhaseEnded:
		return s.EndedAt - s.StartedAt
	default:
		return 0
	}
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name written by MarshalText.
func (p *Phase) UnmarshalText(b []byte) error {
	for q := PhaseIdle; q <= PhaseEnded; q++ {
		if q.String() == string(b) {
			*p = q
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", b)
}
