package screen

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/nosecatch/internal/draw"
	"github.com/tomz197/nosecatch/internal/game"
	"github.com/tomz197/nosecatch/internal/leaderboard"
	"github.com/tomz197/nosecatch/internal/object"
	"github.com/tomz197/nosecatch/internal/skin"
)

func fixedSize(w, h int) draw.TermSizeFunc {
	return func() (int, int, error) { return w, h, nil }
}

func frame(phase game.Phase) game.Frame {
	return game.Frame{
		Width:       320,
		Height:      240,
		Area:        object.PlayArea{Width: 320, Height: 240, MinRadius: 20},
		ControlX:    160,
		ControlY:    120,
		Detected:    true,
		Skin:        skin.DefaultRegistry().Default(),
		CatchRadius: 12,
		HUD: game.HUD{
			Phase:           phase,
			Score:           42,
			Lives:           2,
			SpeedMultiplier: 1,
			Guidance:        "Move Closer",
		},
	}
}

func render(t *testing.T, s *Screen, buf *bytes.Buffer, f game.Frame) string {
	t.Helper()
	buf.Reset()
	s.Render(f)
	require.NoError(t, s.Err())
	return buf.String()
}

func TestScreen_PhasePanels(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf, fixedSize(100, 40), 320, 240)

	tests := []struct {
		phase game.Phase
		want  string
	}{
		{game.PhaseIdle, "N O S E C A T C H"},
		{game.PhaseTutorial, "HOW TO PLAY"},
		{game.PhaseAwaitingDistance, "Move Closer"},
		{game.PhaseActive, "Score: 42"},
		{game.PhaseEnded, "GAME OVER"},
	}
	for _, tt := range tests {
		t.Run(tt.phase.String(), func(t *testing.T) {
			out := render(t, s, &buf, frame(tt.phase))
			assert.Contains(t, out, draw.SeqClear)
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestScreen_CountdownShowsGo(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf, fixedSize(100, 40), 320, 240)

	f := frame(game.PhaseCountdown)
	f.HUD.Countdown = 2
	assert.Contains(t, render(t, s, &buf, f), "2")

	f.HUD.Countdown = 0
	assert.Contains(t, render(t, s, &buf, f), "GO!")
}

func TestScreen_ActiveBanners(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf, fixedSize(100, 40), 320, 240)

	f := frame(game.PhaseActive)
	f.HUD.Fever = true
	f.HUD.Penalty = true
	f.HUD.Warning = true
	f.HUD.Combo = 12
	out := render(t, s, &buf, f)

	assert.Contains(t, out, "FEVER MODE! 2x")
	assert.Contains(t, out, "PENALTY")
	assert.Contains(t, out, "Move Closer")
	assert.Contains(t, out, "Combo x12")
	assert.Contains(t, out, "♥ ♥ ♡")
}

func TestScreen_FloatingTextsAndObjects(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf, fixedSize(100, 40), 320, 240)

	f := frame(game.PhaseActive)
	f.Objects = []*object.FallingObject{{X: 100, Y: 100, Radius: 20, Kind: object.KindGem}}
	f.Texts = []*object.FloatingText{object.NewFloatingText(160, 120, "+25 COMBO!", true)}
	out := render(t, s, &buf, f)

	assert.Contains(t, out, "+25 COMBO!")
	assert.Contains(t, out, string(draw.BlockFull))
}

func TestScreen_Ending(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf, fixedSize(100, 40), 320, 240)

	s.SetEnding(Ending{Name: "ada", Coins: 1234, Status: leaderboard.StatusError})
	out := render(t, s, &buf, frame(game.PhaseEnded))
	assert.Contains(t, out, "Name: ada_")
	assert.Contains(t, out, "Save failed")
	assert.Contains(t, out, "Coins: 1234")

	s.SetEnding(Ending{
		Status: leaderboard.StatusSuccess,
		Top:    []leaderboard.Entry{{Username: "ada", Score: 42}},
	})
	out = render(t, s, &buf, frame(game.PhaseEnded))
	assert.Contains(t, out, "Saved!")
	assert.Contains(t, out, "LEADERBOARD")
	assert.Contains(t, out, "ENTER restarts")
}

func TestScreen_MenuListsSkins(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf, fixedSize(120, 50), 320, 240)

	reg := skin.DefaultRegistry()
	var entries []SkinEntry
	for i, sk := range reg.All() {
		entries = append(entries, SkinEntry{Key: i + 1, Skin: sk, Owned: i == 0, Equipped: i == 0})
	}
	s.SetMenu(Menu{Coins: 700, Skins: entries})
	out := render(t, s, &buf, frame(game.PhaseIdle))

	assert.Contains(t, out, "Coins: 700")
	assert.Contains(t, out, "Neon Dot")
	assert.Contains(t, out, "EQUIPPED")
	assert.Contains(t, out, "10% bomb shield")
	assert.Contains(t, out, "2000 coins")
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestScreen_WriteErrorStops(t *testing.T) {
	s := New(failWriter{}, fixedSize(80, 24), 320, 240)
	s.Render(frame(game.PhaseActive))
	require.Error(t, s.Err())
	s.Render(frame(game.PhaseActive))
	assert.EqualError(t, s.Err(), "broken pipe")
}

func TestHearts(t *testing.T) {
	assert.Equal(t, "♥ ♥ ♥ ", hearts(3, 3))
	assert.Equal(t, "♡ ♡ ♡", hearts(0, 3))
	assert.Equal(t, "♡ ♡ ♡", hearts(-1, 3))
}

func TestScreen_NoticeCoversPhase(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf, fixedSize(100, 40), 320, 240)

	s.SetNotice("SERVER SHUTTING DOWN", "Disconnecting in 9 seconds...")
	out := render(t, s, &buf, frame(game.PhaseIdle))
	assert.Contains(t, out, "SERVER SHUTTING DOWN")
	assert.Contains(t, out, "Disconnecting in 9 seconds...")
	assert.NotContains(t, out, "N O S E C A T C H")

	s.SetNotice()
	assert.Contains(t, render(t, s, &buf, frame(game.PhaseIdle)), "N O S E C A T C H")
}

func TestScreen_FaceLostHint(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf, fixedSize(100, 40), 320, 240)

	for _, phase := range []game.Phase{game.PhaseActive, game.PhaseAwaitingDistance} {
		f := frame(phase)
		assert.NotContains(t, render(t, s, &buf, f), faceLostText)
		f.HUD.FaceLost = true
		assert.Contains(t, render(t, s, &buf, f), faceLostText)
	}
}
