package game

import (
	"time"

	"github.com/tomz197/nosecatch/internal/object"
	"github.com/tomz197/nosecatch/internal/skin"
)

// HUD is the per-frame snapshot of values shown around the play field.
type HUD struct {
	Phase           Phase
	Score           int
	Lives           int
	Combo           int
	Fever           bool
	Penalty         bool
	Warning         bool
	Guidance        string
	HoldProgress    float64
	Countdown       int
	SpeedMultiplier float64
	Flash           bool // Damage flash
	FaceLost        bool // No face for FaceLostAfter samples
	Elapsed         time.Duration
}

// Frame is everything a renderer needs for one frame. The slices are owned by
// the engine and are only valid for the duration of the Render call.
type Frame struct {
	Now         time.Duration
	Width       float64
	Height      float64
	Area        object.PlayArea
	ControlX    float64
	ControlY    float64
	Detected    bool
	Skin        skin.Skin
	CatchRadius float64
	Objects     []*object.FallingObject
	Particles   []*object.Particle
	Texts       []*object.FloatingText
	HUD         HUD
}

// RenderSink draws frames.
type RenderSink interface {
	Render(f Frame)
}

// RenderFunc adapts a function to RenderSink.
type RenderFunc func(f Frame)

func (fn RenderFunc) Render(f Frame) { fn(f) }

// Cue is a sound effect.
type Cue int

const (
	CueGem Cue = iota
	CueGold
	CueBomb
	CueCountdownTick
	CueGo
	CueGameOver
)

func (c Cue) String() string {
	switch c {
	case CueGem:
		return "gem"
	case CueGold:
		return "gold"
	case CueBomb:
		return "bomb"
	case CueCountdownTick:
		return "countdown_tick"
	case CueGo:
		return "go"
	case CueGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// AudioSink plays cues. Play must return immediately.
type AudioSink interface {
	Play(c Cue)
}

// NewAudioListener maps engine events to cues on sink.
func NewAudioListener(sink AudioSink) Listener {
	if sink == nil {
		return nil
	}
	return ListenerFunc(func(ev Event) {
		if c, ok := CueFor(ev); ok {
			sink.Play(c)
		}
	})
}

// CueFor returns the cue an event should trigger.
func CueFor(ev Event) (Cue, bool) {
	switch e := ev.(type) {
	case ObjectCaught:
		if e.Kind == object.KindGold {
			return CueGold, true
		}
		return CueGem, true
	case BombShielded:
		return CueGem, true
	case LifeLost:
		return CueBomb, true
	case CountdownTick:
		if e.Remaining == 0 {
			return CueGo, true
		}
		return CueCountdownTick, true
	case GameEnded:
		return CueGameOver, true
	default:
		return 0, false
	}
}
