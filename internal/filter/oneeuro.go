// Package filter provides the adaptive low-pass filter used to smooth tracking signals.
//
// The filter follows the One Euro design (Casiez et al. 2012): a first-order low-pass
// whose cutoff frequency rises with the estimated speed of the signal. Slow movement
// is smoothed heavily to kill jitter, fast movement passes through with little lag.
package filter

import "math"

// Params tunes a OneEuro filter.
type Params struct {
	MinCutoff        float64 `mapstructure:"min_cutoff"`        // Hz, cutoff when the signal is still
	Beta             float64 `mapstructure:"beta"`              // Cutoff gain per unit of speed
	DerivativeCutoff float64 `mapstructure:"derivative_cutoff"` // Hz, fixed cutoff for the speed estimate
}

// Position favours responsiveness: it drives collision precision.
var Position = Params{MinCutoff: 1.2, Beta: 0.8, DerivativeCutoff: 1.0}

// Scale favours stability: it only drives zone and spawn-width decisions.
var Scale = Params{MinCutoff: 1.0, Beta: 0.3, DerivativeCutoff: 1.0}

// lowPass is a single exponential smoothing stage.
type lowPass struct {
	value  float64
	primed bool
}

func (l *lowPass) reset() {
	l.value = 0
	l.primed = false
}

func (l *lowPass) apply(v, alpha float64) float64 {
	if !l.primed {
		l.value = v
		l.primed = true
		return v
	}
	l.value = alpha*v + (1-alpha)*l.value
	return l.value
}

// OneEuro smooths a single scalar signal sampled at irregular timestamps.
// The zero value is not usable; construct with New.
type OneEuro struct {
	params   Params
	x        lowPass // filtered value
	dx       lowPass // filtered derivative
	lastTime float64
	timed    bool
}

// New creates a filter with the given parameters.
func New(p Params) *OneEuro {
	if p.DerivativeCutoff <= 0 {
		p.DerivativeCutoff = 1.0
	}
	return &OneEuro{params: p}
}

// Filter feeds a raw sample taken at t (seconds) and returns the smoothed value.
//
// The first sample after construction or Reset is returned unchanged. A sample whose
// timestamp is not after the previous one returns the last smoothed value and does
// not move the filter's clock.
func (f *OneEuro) Filter(value, t float64) float64 {
	if !f.timed {
		f.lastTime = t
		f.timed = true
		return f.x.apply(value, 1)
	}

	dt := t - f.lastTime
	if dt <= 0 {
		if f.x.primed {
			return f.x.value
		}
		return value
	}
	f.lastTime = t
	freq := 1 / dt

	var rawDerivative float64
	if f.x.primed {
		rawDerivative = (value - f.x.value) * freq
	}
	derivative := f.dx.apply(rawDerivative, alpha(f.params.DerivativeCutoff, freq))

	cutoff := f.params.MinCutoff + f.params.Beta*math.Abs(derivative)
	return f.x.apply(value, alpha(cutoff, freq))
}

// Reset drops all history. The next sample seeds the filter.
func (f *OneEuro) Reset() {
	f.x.reset()
	f.dx.reset()
	f.lastTime = 0
	f.timed = false
}

// ResetAt drops all history and seeds the filter with value at t, so that an
// immediate Filter(value, t) returns exactly value.
func (f *OneEuro) ResetAt(value, t float64) {
	f.Reset()
	f.lastTime = t
	f.timed = true
	f.x.apply(value, 1)
}

// alpha converts a cutoff frequency into a blend coefficient for a sampling frequency.
func alpha(cutoff, freq float64) float64 {
	if cutoff <= 0 {
		return 0
	}
	tau := 1 / (2 * math.Pi * cutoff)
	return 1 / (1 + tau*freq)
}
