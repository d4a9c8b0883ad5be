package filter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frame = 1.0 / 30.0

func TestOneEuro_FirstSampleIsSeed(t *testing.T) {
	f := New(Position)
	assert.Equal(t, 0.42, f.Filter(0.42, 10.0))
	assert.Equal(t, 0.42, f.Filter(0.9, 10.0), "same timestamp keeps the seed")
}

func TestOneEuro_ConstantInputStaysPut(t *testing.T) {
	f := New(Position)
	ts := 0.0
	for i := 0; i < 50; i++ {
		got := f.Filter(0.5, ts)
		assert.InDelta(t, 0.5, got, 1e-12)
		ts += frame
	}
}

func TestOneEuro_ConvergesAfterStep(t *testing.T) {
	for _, tc := range []struct {
		name   string
		params Params
	}{
		{"position", Position},
		{"scale", Scale},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f := New(tc.params)
			ts := 0.0
			f.Filter(0, ts)

			prev := 0.0
			converged := -1
			for i := 0; i < 60; i++ {
				ts += frame
				got := f.Filter(1, ts)
				require.GreaterOrEqual(t, got, prev, "step response must be monotonic")
				require.LessOrEqual(t, got, 1.0)
				if i == 0 {
					assert.Less(t, got, 1.0, "first sample after a step should lag")
				}
				if converged < 0 && math.Abs(1-got) < 0.01 {
					converged = i
				}
				prev = got
			}
			assert.GreaterOrEqual(t, converged, 0, "did not converge within 60 samples")
		})
	}
}

func TestOneEuro_NonIncreasingTimestampReturnsLast(t *testing.T) {
	f := New(Position)
	f.Filter(0.2, 1.0)
	smoothed := f.Filter(0.8, 1.1)

	assert.Equal(t, smoothed, f.Filter(0.9, 1.1), "duplicate timestamp")
	assert.Equal(t, smoothed, f.Filter(0.9, 0.5), "out-of-order timestamp")
	assert.False(t, math.IsNaN(f.Filter(0.9, 1.2)))
}

func TestOneEuro_ResetAtIsIdempotent(t *testing.T) {
	f := New(Scale)
	for i := 0; i < 10; i++ {
		f.Filter(float64(i)/10, float64(i)*frame)
	}

	f.ResetAt(0.3, 5.0)
	assert.Equal(t, 0.3, f.Filter(0.3, 5.0))
}

func TestOneEuro_ResetClearsDerivative(t *testing.T) {
	moving := New(Position)
	fresh := New(Position)

	ts := 0.0
	for i := 0; i < 20; i++ {
		moving.Filter(float64(i)*0.05, ts)
		ts += frame
	}
	moving.Reset()

	assert.Equal(t, fresh.Filter(0.5, ts), moving.Filter(0.5, ts))
	ts += frame
	assert.Equal(t, fresh.Filter(0.6, ts), moving.Filter(0.6, ts))
}

func TestOneEuro_FastMotionLagsLess(t *testing.T) {
	responsive := New(Params{MinCutoff: 1.0, Beta: 5.0, DerivativeCutoff: 1.0})
	stiff := New(Params{MinCutoff: 1.0, Beta: 0.0, DerivativeCutoff: 1.0})

	ts := 0.0
	var r, s float64
	for i := 0; i < 10; i++ {
		v := float64(i) * 0.1
		r = responsive.Filter(v, ts)
		s = stiff.Filter(v, ts)
		ts += frame
	}
	assert.Greater(t, r, s)
}
