package input

import (
	"time"

	"github.com/tomz197/nosecatch/internal/physics"
	"github.com/tomz197/nosecatch/internal/tracking"
)

// Rand is the jitter source of a VirtualFace.
type Rand interface {
	Float64() float64
}

// VirtualFaceConfig tunes the keyboard face.
type VirtualFaceConfig struct {
	Speed      float64 `mapstructure:"speed"`       // Normalized units per second
	ScaleSpeed float64 `mapstructure:"scale_speed"` // Face width change per second
	Jitter     float64 `mapstructure:"jitter"`      // Peak noise added to each axis
}

// DefaultVirtualFaceConfig returns comfortable keyboard settings.
func DefaultVirtualFaceConfig() VirtualFaceConfig {
	return VirtualFaceConfig{Speed: 0.9, ScaleSpeed: 0.25, Jitter: 0.004}
}

// VirtualFace emulates a tracked face from key presses so the game can be played
// without a camera. Arrows or WASD move the nose, +/- lean in and out and X
// toggles the face out of view.
type VirtualFace struct {
	cfg      VirtualFaceConfig
	rng      Rand
	x, y     float64
	scale    float64
	hidden   bool
	lastHide bool
}

// NewVirtualFace starts centred at an ideal distance. rng may be nil for no jitter.
func NewVirtualFace(cfg VirtualFaceConfig, rng Rand) *VirtualFace {
	return &VirtualFace{cfg: cfg, rng: rng, x: 0.5, y: 0.5, scale: 0.3}
}

// Apply moves the face by one frame of input and returns the sample seen at t
// (seconds).
func (v *VirtualFace) Apply(in Input, dt time.Duration, t float64) tracking.Sample {
	if in.Hide != v.lastHide {
		v.hidden = in.Hide
		v.lastHide = in.Hide
	}

	step := v.cfg.Speed * dt.Seconds()
	if in.Left {
		v.x -= step
	}
	if in.Right {
		v.x += step
	}
	if in.Up {
		v.y -= step
	}
	if in.Down {
		v.y += step
	}
	zoom := v.cfg.ScaleSpeed * dt.Seconds()
	if in.Closer {
		v.scale += zoom
	}
	if in.Farther {
		v.scale -= zoom
	}
	v.x = physics.Clamp(v.x, 0, 1)
	v.y = physics.Clamp(v.y, 0, 1)
	v.scale = physics.Clamp(v.scale, 0.02, 0.9)

	if v.hidden {
		return tracking.Lost(t)
	}
	return tracking.Sample{
		X:        physics.Clamp(v.x+v.noise(), 0, 1),
		Y:        physics.Clamp(v.y+v.noise(), 0, 1),
		Scale:    v.scale,
		Time:     t,
		Detected: true,
	}
}

// Position returns the noiseless face state.
func (v *VirtualFace) Position() (x, y, scale float64) {
	return v.x, v.y, v.scale
}

func (v *VirtualFace) noise() float64 {
	if v.rng == nil || v.cfg.Jitter == 0 {
		return 0
	}
	return (v.rng.Float64()*2 - 1) * v.cfg.Jitter
}
