// Package tracking turns raw face landmark samples into a smoothed control pose.
package tracking

import "math"

// Sample is one landmark reading. X and Y are normalized to [0, 1] with Y = 0 at
// the top; Scale is the normalized face width; Time is in seconds.
type Sample struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Scale    float64 `json:"scale"`
	Time     float64 `json:"t"`
	Detected bool    `json:"detected"`
}

// Lost returns an undetected sample at t.
func Lost(t float64) Sample {
	return Sample{Time: t}
}

// Sanitize clamps coordinates into range. A NaN coordinate marks the sample as
// not detected; infinities are clamped like any other out-of-range value.
func (s Sample) Sanitize() Sample {
	if math.IsNaN(s.X) || math.IsNaN(s.Y) || math.IsNaN(s.Scale) {
		return Sample{Time: finiteOr(s.Time, 0)}
	}
	s.X = clamp01(s.X)
	s.Y = clamp01(s.Y)
	s.Scale = clamp01(s.Scale)
	s.Time = finiteOr(s.Time, 0)
	return s
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

func finiteOr(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}
