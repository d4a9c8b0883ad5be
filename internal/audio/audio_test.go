package audio

import (
	"math"
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/nosecatch/internal/game"
)

const testRate = beep.SampleRate(8000)

func drain(t *testing.T, s beep.Streamer) [][2]float64 {
	t.Helper()
	var out [][2]float64
	buf := make([][2]float64, 256)
	for {
		n, ok := s.Stream(buf)
		out = append(out, buf[:n]...)
		if !ok {
			break
		}
		require.Less(t, len(out), int(testRate)*10, "stream never ended")
	}
	return out
}

func TestSweep_LengthAndRange(t *testing.T) {
	s := NewSweep(1200, 1600, 50*time.Millisecond, 200*time.Millisecond, WaveSine, testRate)
	out := drain(t, s)

	assert.Len(t, out, testRate.N(200*time.Millisecond))
	for _, v := range out {
		assert.LessOrEqual(t, math.Abs(v[0]), 1.0)
		assert.Equal(t, v[0], v[1])
	}
}

func TestSweep_FrequencyRamp(t *testing.T) {
	s := NewSweep(100, 400, 100*time.Millisecond, 200*time.Millisecond, WaveSaw, testRate).(*sweep)

	assert.InDelta(t, 100, s.freq(), 1e-9)
	s.position = s.ramp / 2
	assert.InDelta(t, 200, s.freq(), 1e-6, "exponential midpoint")
	s.position = s.ramp
	assert.InDelta(t, 400, s.freq(), 1e-9)
}

func TestDecay_Envelope(t *testing.T) {
	ones := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			samples[i] = [2]float64{1, 1}
		}
		return len(samples), true
	})
	d := NewDecay(beep.Take(testRate.N(200*time.Millisecond), ones), 0.2, 0.01, 100*time.Millisecond, testRate)
	out := drain(t, d)

	assert.InDelta(t, 0.2, out[0][0], 1e-9)
	assert.InDelta(t, 0.01, out[len(out)-1][0], 1e-9)
	for i := 1; i < len(out); i++ {
		assert.LessOrEqual(t, out[i][0], out[i-1][0])
	}
}

func TestNewCue_AllCuesTerminate(t *testing.T) {
	for _, c := range []game.Cue{game.CueGem, game.CueGold, game.CueBomb, game.CueCountdownTick, game.CueGo, game.CueGameOver} {
		t.Run(c.String(), func(t *testing.T) {
			s := NewCue(c, 1, testRate)
			require.NotNil(t, s)
			out := drain(t, s)
			assert.NotEmpty(t, out)
			assert.Less(t, len(out), testRate.N(time.Second))
		})
	}
	assert.Nil(t, NewCue(game.Cue(99), 1, testRate))
}

func TestGoldSound_NotesOverlap(t *testing.T) {
	out := drain(t, goldSound(testRate))
	want := testRate.N(2*goldNoteSpacing + 350*time.Millisecond)
	assert.Len(t, out, want)
}

func TestPlayer_SilentBeforeInit(t *testing.T) {
	p := NewPlayer(nil)
	p.SetVolume(3)
	assert.Equal(t, 1.0, p.volume)

	// Must not touch the speaker.
	p.Play(game.CueGem)
	p.Close()
}
