package audio

import (
	"time"

	"github.com/gopxl/beep"

	"github.com/tomz197/nosecatch/internal/game"
)

// Gold arpeggio: C5, E5, G5.
var goldNotes = []float64{523.25, 659.25, 783.99}

const goldNoteSpacing = 50 * time.Millisecond

// NewCue returns a fresh streamer for c at master volume vol, or nil for an
// unknown cue.
func NewCue(c game.Cue, vol float64, rate beep.SampleRate) beep.Streamer {
	var s beep.Streamer
	switch c {
	case game.CueGem:
		s = gemSound(rate)
	case game.CueGold:
		s = goldSound(rate)
	case game.CueBomb:
		s = bombSound(rate)
	case game.CueCountdownTick:
		s = tone(660, 0.12, 120*time.Millisecond, rate)
	case game.CueGo:
		s = tone(990, 0.15, 250*time.Millisecond, rate)
	case game.CueGameOver:
		s = gameOverSound(rate)
	default:
		return nil
	}
	return newVolume(s, vol)
}

// gemSound is a short bright chirp rising from 1200 to 1600 Hz.
func gemSound(rate beep.SampleRate) beep.Streamer {
	osc := NewSweep(1200, 1600, 50*time.Millisecond, 200*time.Millisecond, WaveSine, rate)
	return NewDecay(osc, 0.15, 0.01, 150*time.Millisecond, rate)
}

// bombSound is a low sawtooth drop from 120 to 50 Hz.
func bombSound(rate beep.SampleRate) beep.Streamer {
	osc := NewSweep(120, 50, 200*time.Millisecond, 350*time.Millisecond, WaveSaw, rate)
	return NewDecay(osc, 0.2, 0.01, 300*time.Millisecond, rate)
}

// goldSound overlaps three notes started goldNoteSpacing apart.
func goldSound(rate beep.SampleRate) beep.Streamer {
	const noteLength = 350 * time.Millisecond
	notes := make([]beep.Streamer, 0, len(goldNotes))
	for i, f := range goldNotes {
		n := tone(f, 0.12, noteLength, rate)
		notes = append(notes, delayed(n, time.Duration(i)*goldNoteSpacing, rate))
	}
	total := time.Duration(len(goldNotes)-1)*goldNoteSpacing + noteLength
	return beep.Take(rate.N(total), beep.Mix(notes...))
}

// gameOverSound walks the gold arpeggio backwards, slower.
func gameOverSound(rate beep.SampleRate) beep.Streamer {
	notes := make([]beep.Streamer, 0, len(goldNotes))
	for i := len(goldNotes) - 1; i >= 0; i-- {
		notes = append(notes, tone(goldNotes[i]/2, 0.15, 180*time.Millisecond, rate))
	}
	return beep.Seq(notes...)
}

func tone(freq, gain float64, d time.Duration, rate beep.SampleRate) beep.Streamer {
	osc := NewSweep(freq, freq, 0, d, WaveSine, rate)
	return NewDecay(osc, gain, 0.01, d-d/8, rate)
}
