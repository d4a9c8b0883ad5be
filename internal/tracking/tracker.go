package tracking

import (
	"github.com/tomz197/nosecatch/internal/filter"
)

// Config selects the filter tuning for the tracker.
type Config struct {
	Position filter.Params `mapstructure:"position"`
	Scale    filter.Params `mapstructure:"scale"`
}

// DefaultConfig returns the production tuning.
func DefaultConfig() Config {
	return Config{Position: filter.Position, Scale: filter.Scale}
}

// Pose is the smoothed control state.
type Pose struct {
	X, Y     float64
	Scale    float64
	Detected bool
}

// Tracker smooths samples with one filter per axis. While the face is lost it
// keeps reporting the last known pose and resets its filters, so reacquiring the
// face never blends in stale motion.
type Tracker struct {
	x, y, scale *filter.OneEuro

	last   Pose
	seeded bool
	misses int
}

// NewTracker creates a tracker. The initial pose is the centre of the frame.
func NewTracker(cfg Config) *Tracker {
	return &Tracker{
		x:     filter.New(cfg.Position),
		y:     filter.New(cfg.Position),
		scale: filter.New(cfg.Scale),
		last:  Pose{X: 0.5, Y: 0.5, Scale: 0.1},
	}
}

// Update feeds one sample and returns the resulting pose.
func (t *Tracker) Update(s Sample) Pose {
	s = s.Sanitize()
	if !s.Detected {
		t.misses++
		if t.seeded {
			t.x.Reset()
			t.y.Reset()
			t.scale.Reset()
			t.seeded = false
		}
		p := t.last
		p.Detected = false
		return p
	}

	if !t.seeded {
		t.x.ResetAt(s.X, s.Time)
		t.y.ResetAt(s.Y, s.Time)
		t.scale.ResetAt(s.Scale, s.Time)
		t.seeded = true
	}
	t.misses = 0
	t.last = Pose{
		X:        t.x.Filter(s.X, s.Time),
		Y:        t.y.Filter(s.Y, s.Time),
		Scale:    t.scale.Filter(s.Scale, s.Time),
		Detected: true,
	}
	return t.last
}

// ConsecutiveMisses returns how many samples in a row had no face.
func (t *Tracker) ConsecutiveMisses() int {
	return t.misses
}
