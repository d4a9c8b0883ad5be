package game

import (
	"time"

	"github.com/tomz197/nosecatch/internal/distance"
	"github.com/tomz197/nosecatch/internal/object"
)

// Event is a typed notification for HUD, audio and persistence collaborators.
// Events are only emitted when the underlying value changes.
type Event interface {
	EventName() string
}

// ObjectCaught is emitted when a gem or gold gem is caught.
type ObjectCaught struct {
	Kind   object.Kind `json:"kind"`
	Points int         `json:"points"`
	X      float64     `json:"x"`
	Y      float64     `json:"y"`
}

// BombShielded is emitted when the shield ability negates a bomb.
type BombShielded struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LifeCause explains a lost life.
type LifeCause string

const (
	CauseBomb LifeCause = "bomb"
	CauseMiss LifeCause = "miss"
)

// LifeLost is emitted when a bomb hits or a collectible escapes.
type LifeLost struct {
	Cause LifeCause `json:"cause"`
	Lives int       `json:"lives"`
}

// ComboMilestone is emitted at combo 5, 10 and 15.
type ComboMilestone struct {
	Combo int    `json:"combo"`
	Text  string `json:"text"`
}

// FeverChanged is emitted when fever mode turns on or off.
type FeverChanged struct {
	Fever bool `json:"fever"`
}

// SpeedUp is emitted when the difficulty reaches a new tier.
type SpeedUp struct {
	Tier       int     `json:"tier"`
	Multiplier float64 `json:"multiplier"`
}

// ScoreChanged carries the score and combo after a change to either.
type ScoreChanged struct {
	Score int `json:"score"`
	Combo int `json:"combo"`
}

// PhaseChanged is emitted on every phase transition.
type PhaseChanged struct {
	From Phase `json:"from"`
	To   Phase `json:"to"`
}

// ZoneChanged is emitted when the classified pose zone changes.
type ZoneChanged struct {
	Zone     distance.Zone `json:"zone"`
	Guidance string        `json:"guidance"`
}

// HoldProgress reports the hold-to-start progress in [0, 1].
type HoldProgress struct {
	Progress float64 `json:"progress"`
}

// CountdownTick is emitted once per countdown step. Remaining 0 means GO.
type CountdownTick struct {
	Remaining int `json:"remaining"`
}

// WarningChanged is emitted when the distance warning turns on or off.
type WarningChanged struct {
	Warning bool          `json:"warning"`
	Zone    distance.Zone `json:"zone"`
}

// PenaltyChanged is emitted when penalty mode turns on or off.
type PenaltyChanged struct {
	Penalty bool `json:"penalty"`
}

// GameEnded is emitted once when the last life is lost.
type GameEnded struct {
	Score    int           `json:"score"`
	Duration time.Duration `json:"duration"`
}

func (ObjectCaught) EventName() string   { return "object_caught" }
func (BombShielded) EventName() string   { return "bomb_shielded" }
func (LifeLost) EventName() string       { return "life_lost" }
func (ComboMilestone) EventName() string { return "combo_milestone" }
func (FeverChanged) EventName() string   { return "fever_changed" }
func (SpeedUp) EventName() string        { return "speed_up" }
func (ScoreChanged) EventName() string   { return "score_changed" }
func (PhaseChanged) EventName() string   { return "phase_changed" }
func (ZoneChanged) EventName() string    { return "zone_changed" }
func (HoldProgress) EventName() string   { return "hold_progress" }
func (CountdownTick) EventName() string  { return "countdown_tick" }
func (WarningChanged) EventName() string { return "warning_changed" }
func (PenaltyChanged) EventName() string { return "penalty_changed" }
func (GameEnded) EventName() string      { return "game_ended" }

// Listener receives engine events on the loop goroutine. Implementations must
// not block.
type Listener interface {
	OnEvent(ev Event)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(ev Event)

func (f ListenerFunc) OnEvent(ev Event) { f(ev) }

// Dispatcher fans events out to listeners in subscription order.
type Dispatcher struct {
	listeners []Listener
}

// Subscribe adds a listener. Nil listeners are ignored.
func (d *Dispatcher) Subscribe(l Listener) {
	if l != nil {
		d.listeners = append(d.listeners, l)
	}
}

// Emit delivers ev to every listener.
func (d *Dispatcher) Emit(ev Event) {
	for _, l := range d.listeners {
		l.OnEvent(ev)
	}
}

// milestoneText returns the floating text for a combo milestone.
func milestoneText(combo int) (string, bool) {
	switch combo {
	case 5:
		return "+25 COMBO!", true
	case 10:
		return "+50 COMBO!", true
	case 15:
		return "+100 EPIC!", true
	default:
		return "", false
	}
}
