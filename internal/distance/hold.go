package distance

import "time"

// DefaultHoldDuration is how long an ideal pose must be held before a session starts.
const DefaultHoldDuration = 1500 * time.Millisecond

// HoldGate accumulates time spent in the ideal zone before a session may start.
// Any non-ideal frame drops the accumulated time back to zero.
type HoldGate struct {
	duration time.Duration
	held     time.Duration
}

// NewHoldGate creates a gate that opens after d of continuous ideal pose.
func NewHoldGate(d time.Duration) *HoldGate {
	if d <= 0 {
		d = DefaultHoldDuration
	}
	return &HoldGate{duration: d}
}

// Update advances the gate by one tracking frame of length dt in zone z.
// It returns the progress in [0, 1] and whether the gate has opened.
func (g *HoldGate) Update(z Zone, dt time.Duration) (progress float64, open bool) {
	if z != ZoneIdeal {
		g.held = 0
		return 0, false
	}
	if dt > 0 {
		g.held += dt
	}
	return g.Progress(), g.held >= g.duration
}

// Progress returns the fraction of the hold completed, capped at 1.
func (g *HoldGate) Progress() float64 {
	p := float64(g.held) / float64(g.duration)
	if p > 1 {
		return 1
	}
	return p
}

// Held returns the accumulated ideal time.
func (g *HoldGate) Held() time.Duration {
	return g.held
}

// Reset clears the accumulated time.
func (g *HoldGate) Reset() {
	g.held = 0
}
