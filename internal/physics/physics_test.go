package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceSquared(t *testing.T) {
	assert.InDelta(t, 25.0, DistanceSquared(0, 0, 3, 4), 1e-12)
}

func TestCirclesOverlap_Boundary(t *testing.T) {
	const eps = 1e-6
	// Radii 20 and 12 reach exactly 32.
	assert.True(t, CirclesOverlap(0, 0, 20, 32-eps, 0, 12))
	assert.False(t, CirclesOverlap(0, 0, 20, 32+eps, 0, 12))
	assert.False(t, CirclesOverlap(0, 0, 20, 32, 0, 12), "touching is not a hit")
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.4, Clamp(0.1, 0.4, 0.95))
	assert.Equal(t, 0.95, Clamp(1.0, 0.4, 0.95))
	assert.Equal(t, 0.5, Clamp(0.5, 0.4, 0.95))
}
