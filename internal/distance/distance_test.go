package distance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		name  string
		scale float64
		y     float64
		want  Zone
	}{
		{"ideal", 0.3, 0.5, ZoneIdeal},
		{"too far", 0.10, 0.5, ZoneTooFar},
		{"too close", 0.5, 0.5, ZoneTooClose},
		{"too high beats ideal distance", 0.3, 0.2, ZoneTooHigh},
		{"too low beats ideal distance", 0.3, 0.8, ZoneTooLow},
		{"too high beats too far", 0.05, 0.1, ZoneTooHigh},
		{"far boundary is ideal", 0.15, 0.5, ZoneIdeal},
		{"close boundary is ideal", 0.45, 0.5, ZoneIdeal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, th.Classify(tt.scale, tt.y))
		})
	}
}

func TestClassifyWarning_NarrowsIdealBand(t *testing.T) {
	th := DefaultThresholds()

	assert.Equal(t, ZoneIdeal, th.Classify(0.2, 0.5))
	assert.Equal(t, ZoneTooFar, th.ClassifyWarning(0.2, 0.5))
	assert.Equal(t, ZoneTooClose, th.ClassifyWarning(0.4, 0.5))
	assert.Equal(t, ZoneIdeal, th.ClassifyWarning(0.3, 0.5))
}

func TestZoneGuidance(t *testing.T) {
	assert.Equal(t, "Move Closer", ZoneTooFar.Guidance())
	assert.Equal(t, "Move Back", ZoneTooClose.Guidance())
	assert.Equal(t, "TOO_LOW", ZoneTooLow.String())
}

func TestHoldGate_ProgressMonotonic(t *testing.T) {
	g := NewHoldGate(DefaultHoldDuration)
	step := 100 * time.Millisecond

	prev := 0.0
	var open bool
	for i := 1; i <= 15; i++ {
		var p float64
		p, open = g.Update(ZoneIdeal, step)
		require.GreaterOrEqual(t, p, prev)
		prev = p
		if i < 15 {
			assert.False(t, open, "opened early at frame %d", i)
		}
	}
	assert.True(t, open)
	assert.Equal(t, 1.0, g.Progress())
	assert.Equal(t, 1500*time.Millisecond, g.Held())
}

func TestHoldGate_NonIdealResets(t *testing.T) {
	g := NewHoldGate(DefaultHoldDuration)
	g.Update(ZoneIdeal, time.Second)
	require.InDelta(t, 2.0/3.0, g.Progress(), 1e-9)

	p, open := g.Update(ZoneTooClose, 16*time.Millisecond)
	assert.Zero(t, p)
	assert.False(t, open)
	assert.Zero(t, g.Held())
}

func TestHoldGate_ProgressCapped(t *testing.T) {
	g := NewHoldGate(DefaultHoldDuration)
	p, open := g.Update(ZoneIdeal, 3*time.Second)
	assert.Equal(t, 1.0, p)
	assert.True(t, open)
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func TestMonitor_DebounceCollapsesFlips(t *testing.T) {
	m := NewMonitor(DefaultMonitorConfig())
	m.Start(0)

	st := m.Update(0.3, 0.5, ms(500))
	assert.False(t, st.Warning)

	st = m.Update(0.10, 0.5, ms(1000))
	assert.True(t, st.WarningChanged)
	assert.True(t, st.Warning)

	// Back to ideal within the debounce window: ignored.
	st = m.Update(0.3, 0.5, ms(1100))
	assert.False(t, st.WarningChanged)
	assert.True(t, st.Warning)

	// Outside the window the flip is accepted.
	st = m.Update(0.3, 0.5, ms(1250))
	assert.True(t, st.WarningChanged)
	assert.False(t, st.Warning)
	assert.Zero(t, st.WarningTime)
}

func TestMonitor_HysteresisKeepsWarning(t *testing.T) {
	m := NewMonitor(DefaultMonitorConfig())
	m.Start(0)

	m.Update(0.10, 0.5, ms(100))
	require.True(t, m.Warning())

	// 0.2 is ideal on entry but not clear of the widened boundary.
	st := m.Update(0.2, 0.5, ms(600))
	assert.Equal(t, ZoneTooFar, st.Zone)
	assert.True(t, st.Warning)

	st = m.Update(0.3, 0.5, ms(700))
	assert.Equal(t, ZoneIdeal, st.Zone)
	assert.False(t, st.Warning)
}

func TestMonitor_PenaltyEscalation(t *testing.T) {
	m := NewMonitor(DefaultMonitorConfig())
	m.Start(0)

	var st Status
	for now := 100; now <= 1900; now += 100 {
		st = m.Update(0.6, 0.5, ms(now))
	}
	assert.Equal(t, ms(1900), st.WarningTime)
	assert.False(t, st.Penalty)

	st = m.Update(0.6, 0.5, ms(2000))
	assert.True(t, st.Penalty)
	assert.True(t, st.PenaltyChanged)

	st = m.Update(0.6, 0.5, ms(2100))
	assert.True(t, st.Penalty)
	assert.False(t, st.PenaltyChanged)

	st = m.Update(0.3, 0.5, ms(2300))
	assert.False(t, st.Warning)
	assert.False(t, st.Penalty)
	assert.True(t, st.PenaltyChanged)
	assert.Zero(t, m.WarningTime())
}
