package game

import (
	"time"

	"github.com/tomz197/nosecatch/internal/distance"
	"github.com/tomz197/nosecatch/internal/tracking"
)

// Scoring
const (
	GemPoints       = 10
	FeverGemPoints  = 20
	GoldPoints      = 50
	MultiplierBonus = 1.2
	FeverCombo      = 10
)

// Spawning
const (
	GoldChance           = 0.05
	BombChance           = 0.35
	BombChanceHighScore  = 0.45
	BombChancePenalty    = 0.70
	HighScoreBombs       = 100
	PenaltySpawnDivisor  = 3
	ShieldChance         = 0.1
	SpeedPerMinute       = 0.5
	SpeedPerPoint        = 0.002
	DefaultHitboxBase    = 12.0 // Catch radius of the control point at hitbox multiplier 1
	DefaultSpawnInterval = 1200 * time.Millisecond
)

// Session
const (
	InitialLives         = 3
	DefaultCountdownFrom = 3
	DefaultCountdownStep = time.Second
	DamageFlashDuration  = 300 * time.Millisecond
	FaceLostAfter        = 15 // Missed samples before the HUD says the face is gone
)

// Config tunes an Engine. Zero fields take their defaults.
type Config struct {
	Width         float64       `mapstructure:"width"`  // Logical canvas width
	Height        float64       `mapstructure:"height"` // Logical canvas height
	MaxPlayWidth  float64       `mapstructure:"max_play_width"`
	MinRadius     float64       `mapstructure:"min_radius"`
	HitboxBase    float64       `mapstructure:"hitbox_base"`
	SpawnInterval time.Duration `mapstructure:"spawn_interval"`
	Lives         int           `mapstructure:"lives"`
	CountdownFrom int           `mapstructure:"countdown_from"`
	CountdownStep time.Duration `mapstructure:"countdown_step"`
	HoldDuration  time.Duration `mapstructure:"hold_duration"`

	Monitor  distance.MonitorConfig `mapstructure:"-"`
	Tracking tracking.Config        `mapstructure:"-"`
}

// DefaultConfig returns the settings used by the terminal front-ends.
func DefaultConfig() Config {
	return Config{
		Width:         320,
		Height:        240,
		MaxPlayWidth:  600,
		MinRadius:     20,
		HitboxBase:    DefaultHitboxBase,
		SpawnInterval: DefaultSpawnInterval,
		Lives:         InitialLives,
		CountdownFrom: DefaultCountdownFrom,
		CountdownStep: DefaultCountdownStep,
		HoldDuration:  distance.DefaultHoldDuration,
		Monitor:       distance.DefaultMonitorConfig(),
		Tracking:      tracking.DefaultConfig(),
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Width <= 0 {
		c.Width = d.Width
	}
	if c.Height <= 0 {
		c.Height = d.Height
	}
	if c.MaxPlayWidth <= 0 {
		c.MaxPlayWidth = d.MaxPlayWidth
	}
	if c.MinRadius <= 0 {
		c.MinRadius = d.MinRadius
	}
	if c.HitboxBase <= 0 {
		c.HitboxBase = d.HitboxBase
	}
	if c.SpawnInterval <= 0 {
		c.SpawnInterval = d.SpawnInterval
	}
	if c.Lives <= 0 {
		c.Lives = d.Lives
	}
	if c.CountdownFrom <= 0 {
		c.CountdownFrom = d.CountdownFrom
	}
	if c.CountdownStep <= 0 {
		c.CountdownStep = d.CountdownStep
	}
	if c.HoldDuration <= 0 {
		c.HoldDuration = d.HoldDuration
	}
	if c.Monitor == (distance.MonitorConfig{}) {
		c.Monitor = d.Monitor
	}
	if c.Tracking == (tracking.Config{}) {
		c.Tracking = d.Tracking
	}
	return c
}
