package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tomz197/nosecatch/internal/object"
	"github.com/tomz197/nosecatch/internal/skin"
	"github.com/tomz197/nosecatch/internal/tracking"
)

// scriptRand replays vals, then returns fallback forever.
type scriptRand struct {
	vals     []float64
	fallback float64
}

func (r *scriptRand) Float64() float64 {
	if len(r.vals) == 0 {
		return r.fallback
	}
	v := r.vals[0]
	r.vals = r.vals[1:]
	return v
}

type recorder struct {
	events []Event
}

func (r *recorder) OnEvent(ev Event) { r.events = append(r.events, ev) }

func eventsOf[T Event](r *recorder) []T {
	var out []T
	for _, ev := range r.events {
		if e, ok := ev.(T); ok {
			out = append(out, e)
		}
	}
	return out
}

type harness struct {
	t     *testing.T
	e     *Engine
	rec   *recorder
	rng   *scriptRand
	clock time.Duration
}

func newHarness(t *testing.T, s skin.Skin) *harness {
	t.Helper()
	rng := &scriptRand{fallback: 0.5}
	e := NewEngine(DefaultConfig(), Options{
		Rand:         rng,
		EffectsRand:  &scriptRand{fallback: 0.5},
		Equipment:    skin.Static(s),
		TutorialSeen: true,
	})
	rec := &recorder{}
	e.Subscribe(rec)
	return &harness{t: t, e: e, rec: rec, rng: rng}
}

func skinByID(t *testing.T, id string) skin.Skin {
	t.Helper()
	s, err := skin.DefaultRegistry().Lookup(id)
	require.NoError(t, err)
	return s
}

func pose(scale, y float64, at time.Duration) tracking.Sample {
	return tracking.Sample{X: 0.5, Y: y, Scale: scale, Time: at.Seconds(), Detected: true}
}

// track feeds one sample at clock+dt.
func (h *harness) track(s tracking.Sample, dt time.Duration) {
	h.clock += dt
	s.Time = h.clock.Seconds()
	h.e.Track(s, h.clock)
}

func (h *harness) step(dt time.Duration) bool {
	h.clock += dt
	return h.e.Step(h.clock)
}

// activate runs the hold and countdown and leaves the session live.
func (h *harness) activate() {
	h.t.Helper()
	require.NoError(h.t, h.e.Begin())
	for i := 0; i < 15; i++ {
		h.track(pose(0.3, 0.5, 0), 100*time.Millisecond)
	}
	require.Equal(h.t, PhaseCountdown, h.e.Phase())
	for i := 0; i < 4; i++ {
		h.step(time.Second)
	}
	require.Equal(h.t, PhaseActive, h.e.Phase())
	h.rec.events = nil
}

// drop places an object so that it sits on the control point after Update.
func (h *harness) drop(kind object.Kind, dx float64) *object.FallingObject {
	s := h.e.State()
	o := &object.FallingObject{X: s.ControlX + dx, Y: s.ControlY, Radius: 20, Kind: kind}
	h.e.objects = append(h.e.objects, o)
	return o
}

// escape places an object that leaves the play area on the next frame.
func (h *harness) escape(kind object.Kind) {
	h.e.objects = append(h.e.objects, &object.FallingObject{X: 5, Y: 1000, Radius: 20, Kind: kind})
}
