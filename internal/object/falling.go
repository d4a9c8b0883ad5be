package object

import (
	"fmt"
	"time"

	"github.com/tomz197/nosecatch/internal/draw"
	"github.com/tomz197/nosecatch/internal/physics"
)

// Kind is the type of a falling object.
type Kind int

const (
	KindGem Kind = iota
	KindGold
	KindBomb
)

func (k Kind) String() string {
	switch k {
	case KindGem:
		return "gem"
	case KindGold:
		return "gold"
	case KindBomb:
		return "bomb"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(b []byte) error {
	for _, c := range []Kind{KindGem, KindGold, KindBomb} {
		if c.String() == string(b) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("unknown object kind %q", b)
}

// Color returns the burst and sprite colour of the kind.
func (k Kind) Color() draw.Color {
	switch k {
	case KindGold:
		return draw.Gold
	case KindBomb:
		return draw.Red
	default:
		return draw.Cyan
	}
}

// Collectible reports whether catching the kind scores and missing it costs a life.
func (k Kind) Collectible() bool {
	return k == KindGem || k == KindGold
}

// Spawn tuning.
const (
	DefaultMinRadius  = 20.0
	RadiusWidthFactor = 0.12
	BaseSpeedFactor   = 0.004 // Fraction of play height per frame
	SpeedRampBase     = 0.6
	SpeedRampPerSec   = 0.02
	OffScreenMargin   = 100.0
	MinWidthRatio     = 0.4
	MaxWidthRatio     = 0.95
)

// SpawnParams describes a new falling object.
type SpawnParams struct {
	Area            PlayArea
	Kind            Kind
	SpeedMultiplier float64
	WidthRatio      float64       // Fraction of the play width objects may spawn in
	Elapsed         time.Duration // Session time, drives the speed ramp
}

// FallingObject is a gem, gold gem or bomb moving straight down.
type FallingObject struct {
	X, Y      float64
	Radius    float64
	Kind      Kind
	Speed     float64 // Logical pixels per frame
	SpawnTime time.Duration
}

// NewFallingObject creates an object just above the play area.
func NewFallingObject(p SpawnParams, rng Rand) *FallingObject {
	minR := p.Area.MinRadius
	if minR <= 0 {
		minR = DefaultMinRadius
	}
	radius := max(minR, p.Area.Width*RadiusWidthFactor)

	ratio := physics.Clamp(p.WidthRatio, 0, 1)
	band := p.Area.Width * ratio
	minX := p.Area.X + (p.Area.Width-band)/2

	base := p.Area.Height * BaseSpeedFactor
	ramp := SpeedRampBase + p.Elapsed.Seconds()*SpeedRampPerSec
	mult := p.SpeedMultiplier
	if mult <= 0 {
		mult = 1
	}

	return &FallingObject{
		X:         minX + rng.Float64()*band,
		Y:         -radius * 2,
		Radius:    radius,
		Kind:      p.Kind,
		Speed:     (rng.Float64()*base + base) * mult * ramp,
		SpawnTime: p.Elapsed,
	}
}

// SpawnWidthRatio maps the face scale to the spawn band: the closer the player,
// the narrower the band.
func SpawnWidthRatio(faceScale float64) float64 {
	return physics.Clamp(1-faceScale, MinWidthRatio, MaxWidthRatio)
}

// Update advances the object and reports whether it has left the play area.
func (o *FallingObject) Update(ctx UpdateContext) bool {
	o.Y += o.Speed
	return o.OffScreen(ctx.Area)
}

// OffScreen reports whether the object fell past the bottom margin.
func (o *FallingObject) OffScreen(area PlayArea) bool {
	return o.Y > area.Height+o.Radius+OffScreenMargin
}

// Hit reports whether a control point with the given catch radius touches the object.
func (o *FallingObject) Hit(x, y, catchRadius float64) bool {
	return physics.CirclesOverlap(x, y, catchRadius, o.X, o.Y, o.Radius)
}

func (o *FallingObject) Draw(ctx DrawContext) {
	c := ctx.Canvas
	switch o.Kind {
	case KindBomb:
		c.FillCircle(o.X, o.Y, o.Radius, draw.Red)
		c.FillCircle(o.X, o.Y, o.Radius*0.35, draw.Grey)
		c.DrawLine(draw.Point{X: o.X, Y: o.Y - o.Radius}, draw.Point{X: o.X + o.Radius*0.4, Y: o.Y - o.Radius*1.4}, draw.Orange)
	default:
		// Diamond outline with a bright core.
		top := draw.Point{X: o.X, Y: o.Y - o.Radius}
		right := draw.Point{X: o.X + o.Radius, Y: o.Y}
		bottom := draw.Point{X: o.X, Y: o.Y + o.Radius}
		left := draw.Point{X: o.X - o.Radius, Y: o.Y}
		col := o.Kind.Color()
		c.DrawLine(top, right, col)
		c.DrawLine(right, bottom, col)
		c.DrawLine(bottom, left, col)
		c.DrawLine(left, top, col)
		c.FillCircle(o.X, o.Y, o.Radius*0.4, col)
	}
}
