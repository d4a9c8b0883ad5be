package object

import (
	"sync"

	"github.com/tomz197/nosecatch/internal/draw"
)

var particlePool = sync.Pool{
	New: func() any {
		return &Particle{}
	},
}

// Burst tuning.
const (
	BurstSize      = 8
	particleShrink = 0.95
)

// Particle is a short-lived spark. Life starts at 1 and the particle is removed
// once it reaches zero.
type Particle struct {
	X, Y   float64
	VX, VY float64 // Logical pixels per frame
	Size   float64
	Color  draw.Color
	Life   float64
	Decay  float64 // Life lost per frame
}

// NewParticle takes a particle from the pool and randomizes it around (x, y).
func NewParticle(x, y float64, col draw.Color, rng Rand) *Particle {
	p := particlePool.Get().(*Particle)
	p.X = x
	p.Y = y
	p.Color = col
	p.Size = rng.Float64()*5 + 2
	p.VX = (rng.Float64() - 0.5) * 10
	p.VY = (rng.Float64() - 0.5) * 10
	p.Life = 1
	p.Decay = rng.Float64()*0.05 + 0.02
	return p
}

// Release returns the particle to the pool.
func (p *Particle) Release() {
	particlePool.Put(p)
}

// SpawnBurst emits BurstSize particles at (x, y).
func SpawnBurst(x, y float64, col draw.Color, rng Rand, spawner Spawner) {
	if spawner == nil {
		return
	}
	for i := 0; i < BurstSize; i++ {
		spawner.Spawn(NewParticle(x, y, col, rng))
	}
}

// Update moves the particle, shrinks it and decays its life.
func (p *Particle) Update(_ UpdateContext) bool {
	p.X += p.VX
	p.Y += p.VY
	p.Life -= p.Decay
	p.Size *= particleShrink
	return p.Life <= 0
}

// Draw renders the particle. Nearly dead sparks are skipped to fake a fade.
func (p *Particle) Draw(ctx DrawContext) {
	if p.Life < 0.2 {
		return
	}
	ctx.Canvas.FillCircle(p.X, p.Y, p.Size, p.Color)
}
