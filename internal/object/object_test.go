package object

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/nosecatch/internal/draw"
)

// fixedRand returns the same value forever.
type fixedRand float64

func (r fixedRand) Float64() float64 { return float64(r) }

type collector struct {
	objs []Object
}

func (c *collector) Spawn(obj Object) { c.objs = append(c.objs, obj) }

var area = PlayArea{Width: 400, Height: 300, MinRadius: 20}

func TestNewFallingObject(t *testing.T) {
	o := NewFallingObject(SpawnParams{
		Area:            area,
		Kind:            KindGem,
		SpeedMultiplier: 2,
		WidthRatio:      0.5,
		Elapsed:         10 * time.Second,
	}, fixedRand(0.5))

	assert.InDelta(t, 48.0, o.Radius, 1e-9)
	assert.InDelta(t, -96.0, o.Y, 1e-9)
	// Band is [100, 300], rand 0.5 puts it in the middle.
	assert.InDelta(t, 200.0, o.X, 1e-9)
	// base = 1.2, (0.5*1.2 + 1.2) * 2 * (0.6 + 0.2)
	assert.InDelta(t, 2.88, o.Speed, 1e-9)
	assert.Equal(t, 10*time.Second, o.SpawnTime)
}

func TestNewFallingObject_MinRadius(t *testing.T) {
	small := PlayArea{Width: 100, Height: 100}
	o := NewFallingObject(SpawnParams{Area: small, Kind: KindBomb, SpeedMultiplier: 1, WidthRatio: 1}, fixedRand(0))
	assert.Equal(t, DefaultMinRadius, o.Radius)
	assert.Equal(t, 0.0, o.X)

	small.MinRadius = 5
	o = NewFallingObject(SpawnParams{Area: small, Kind: KindBomb, SpeedMultiplier: 1, WidthRatio: 1}, fixedRand(0))
	assert.InDelta(t, 12.0, o.Radius, 1e-9)
}

func TestSpawnWidthRatio(t *testing.T) {
	assert.Equal(t, 0.95, SpawnWidthRatio(0.01))
	assert.Equal(t, 0.4, SpawnWidthRatio(0.8))
	assert.InDelta(t, 0.7, SpawnWidthRatio(0.3), 1e-9)
}

func TestFallingObject_UpdateUntilOffScreen(t *testing.T) {
	o := &FallingObject{X: 10, Y: 0, Radius: 20, Speed: 50}
	ctx := UpdateContext{Area: area}

	frames := 0
	for !o.Update(ctx) {
		frames++
		require.Less(t, frames, 100)
	}
	// Removed once y > 300 + 20 + 100.
	assert.Equal(t, 450.0, o.Y)
	assert.Equal(t, 8, frames)
}

func TestFallingObject_HitIsStrict(t *testing.T) {
	o := &FallingObject{X: 100, Y: 100, Radius: 20}
	const eps = 1e-6

	assert.True(t, o.Hit(100+32-eps, 100, 12))
	assert.False(t, o.Hit(100+32, 100, 12))
	assert.False(t, o.Hit(100+32+eps, 100, 12))
}

func TestKind(t *testing.T) {
	assert.True(t, KindGem.Collectible())
	assert.True(t, KindGold.Collectible())
	assert.False(t, KindBomb.Collectible())
	assert.Equal(t, "bomb", KindBomb.String())
	assert.Equal(t, draw.Gold, KindGold.Color())
}

func TestSpawnBurst(t *testing.T) {
	c := &collector{}
	SpawnBurst(50, 60, draw.Cyan, fixedRand(1), c)
	require.Len(t, c.objs, BurstSize)

	p := c.objs[0].(*Particle)
	assert.Equal(t, 50.0, p.X)
	assert.Equal(t, 7.0, p.Size)
	assert.Equal(t, 5.0, p.VX)
	assert.Equal(t, 1.0, p.Life)
	assert.InDelta(t, 0.07, p.Decay, 1e-12)

	SpawnBurst(0, 0, draw.Cyan, fixedRand(1), nil)
}

func TestParticle_LifeDecays(t *testing.T) {
	p := NewParticle(0, 0, draw.Red, fixedRand(0))
	defer p.Release()
	assert.InDelta(t, 0.02, p.Decay, 1e-12)

	frames := 0
	for !p.Update(UpdateContext{}) {
		frames++
		require.Less(t, frames, 100)
	}
	assert.LessOrEqual(t, p.Life, 0.0)
	assert.InDelta(t, 49, frames, 1)
	assert.Less(t, p.Size, 2.0)
}

func TestFloatingText_Expires(t *testing.T) {
	ft := NewFloatingText(10, 100, "+25 COMBO!", false)
	ctx := UpdateContext{Delta: 500 * time.Millisecond}

	assert.False(t, ft.Update(ctx))
	assert.Less(t, ft.Y, 100.0)
	assert.False(t, ft.Update(ctx))
	assert.True(t, ft.Update(ctx))
}
