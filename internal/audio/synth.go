// Package audio synthesizes the game's sound cues and plays them through the
// system speaker.
package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// WaveType defines oscillator wave shapes.
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSaw
)

// sweep is an oscillator whose frequency moves exponentially from `from` to
// `to` over ramp samples and then holds.
type sweep struct {
	from, to float64
	ramp     int
	duration int
	position int
	phase    float64
	wave     WaveType
	rate     beep.SampleRate
}

// NewSweep creates an oscillator gliding from one frequency to another.
// from == to gives a plain tone.
func NewSweep(from, to float64, ramp, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return &sweep{
		from:     from,
		to:       to,
		ramp:     rate.N(ramp),
		duration: rate.N(duration),
		wave:     wave,
		rate:     rate,
	}
}

func (s *sweep) freq() float64 {
	if s.ramp <= 0 || s.position >= s.ramp || s.from <= 0 || s.to <= 0 {
		return s.to
	}
	t := float64(s.position) / float64(s.ramp)
	return s.from * math.Pow(s.to/s.from, t)
}

func (s *sweep) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if s.position >= s.duration {
			return i, i > 0
		}

		var val float64
		switch s.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * s.phase)
		case WaveSaw:
			val = 2.0 * (s.phase - 0.5)
		}
		samples[i][0] = val
		samples[i][1] = val

		s.phase += s.freq() / float64(s.rate)
		s.phase -= math.Floor(s.phase)
		s.position++
	}
	return len(samples), true
}

func (s *sweep) Err() error { return nil }

// decay scales a stream from gain `from` down to `to` exponentially over
// length samples, then holds `to`.
type decay struct {
	streamer beep.Streamer
	from, to float64
	length   int
	position int
}

// NewDecay applies an exponential gain ramp to s.
func NewDecay(s beep.Streamer, from, to float64, length time.Duration, rate beep.SampleRate) beep.Streamer {
	return &decay{streamer: s, from: from, to: to, length: rate.N(length)}
}

func (d *decay) gain() float64 {
	if d.length <= 0 || d.position >= d.length {
		return d.to
	}
	t := float64(d.position) / float64(d.length)
	return d.from * math.Pow(d.to/d.from, t)
}

func (d *decay) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = d.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		g := d.gain()
		samples[i][0] *= g
		samples[i][1] *= g
		d.position++
	}
	return n, ok
}

func (d *decay) Err() error { return d.streamer.Err() }

// newVolume wraps s in a linear volume control. Zero or less is silent.
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

// delayed prefixes s with d of silence.
func delayed(s beep.Streamer, d time.Duration, rate beep.SampleRate) beep.Streamer {
	if d <= 0 {
		return s
	}
	return beep.Seq(beep.Silence(rate.N(d)), s)
}
