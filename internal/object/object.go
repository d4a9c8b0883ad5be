package object

import (
	"time"

	"github.com/tomz197/nosecatch/internal/draw"
)

// Rand is the random source used for spawning and particle bursts.
// *rand.Rand satisfies it; tests inject scripted values.
type Rand interface {
	Float64() float64
}

// PlayArea is the logical play field. X is the left edge of the playable band.
type PlayArea struct {
	X         float64 `mapstructure:"x"`
	Width     float64 `mapstructure:"width"`
	Height    float64 `mapstructure:"height"`
	MinRadius float64 `mapstructure:"min_radius"` // Lower bound for falling object radius
}

// UpdateContext is passed to every object once per frame.
type UpdateContext struct {
	Delta time.Duration
	Area  PlayArea
}

// DrawContext provides drawing resources for objects.
type DrawContext struct {
	Canvas *draw.Canvas
}

// Object is a drawable and updatable game entity.
type Object interface {
	// Update advances the object by one frame. Returns true if it should be removed.
	Update(ctx UpdateContext) (remove bool)

	Draw(ctx DrawContext)
}

// Spawner accepts objects created during an update.
type Spawner interface {
	Spawn(obj Object)
}

// Releasable is implemented by pooled objects.
type Releasable interface {
	Release()
}

// ReleaseObject returns obj to its pool if it is pooled.
func ReleaseObject(obj Object) {
	if r, ok := obj.(Releasable); ok {
		r.Release()
	}
}
