package loop

import (
	"bufio"
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/nosecatch/internal/draw"
	"github.com/tomz197/nosecatch/internal/game"
	"github.com/tomz197/nosecatch/internal/input"
	"github.com/tomz197/nosecatch/internal/leaderboard"
	"github.com/tomz197/nosecatch/internal/profile"
	"github.com/tomz197/nosecatch/internal/skin"
)

func fixedSize() (int, int, error) { return 100, 40, nil }

type harness struct {
	s   *Session
	in  *input.Stream
	out *bytes.Buffer
	now time.Duration
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	opts.Config = game.DefaultConfig()
	opts.Size = fixedSize
	in := input.NewStream()
	var out bytes.Buffer
	return &harness{s: newSession(in, &out, opts), in: in, out: &out}
}

// press feeds keys and runs one frame, returning what was drawn.
func (h *harness) press(t *testing.T, keys string) (string, bool) {
	t.Helper()
	h.in.Feed([]byte(keys))
	return h.tick(t, 16*time.Millisecond)
}

func (h *harness) tick(t *testing.T, dt time.Duration) (string, bool) {
	t.Helper()
	h.now += dt
	h.out.Reset()
	done, err := h.s.runner.Tick(h.now)
	require.NoError(t, err)
	return h.out.String(), done
}

func TestSession_MenuFlow(t *testing.T) {
	h := newHarness(t, Options{})

	out, done := h.press(t, "")
	assert.False(t, done)
	assert.Contains(t, out, "N O S E C A T C H")

	out, _ = h.press(t, "\r")
	assert.Equal(t, game.PhaseTutorial, h.s.engine.Phase())
	assert.Contains(t, out, "HOW TO PLAY")

	out, _ = h.press(t, " ")
	assert.Equal(t, game.PhaseAwaitingDistance, h.s.engine.Phase())
	assert.Contains(t, out, "GET IN POSITION")

	h.press(t, "\x1b")
	assert.Equal(t, game.PhaseIdle, h.s.engine.Phase())

	_, done = h.press(t, "q")
	assert.True(t, done)
}

func TestSession_InterruptQuitsAnywhere(t *testing.T) {
	h := newHarness(t, Options{})
	h.press(t, "\r")
	_, done := h.press(t, "\x03")
	assert.True(t, done)
}

func TestSession_EquipNeedsOwnership(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	store, err := profile.Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Update(func(p *profile.Profile) {
		p.Inventory = append(p.Inventory, "cyborg")
	}))

	h := newHarness(t, Options{Profile: store})

	h.press(t, "2") // Clown Nose, not owned
	assert.Equal(t, skin.DefaultID, h.s.wardrobe.Equipped().ID)

	out, _ := h.press(t, "3")
	assert.Equal(t, "cyborg", h.s.wardrobe.Equipped().ID)
	assert.Contains(t, out, "Cyborg")
	h.s.wg.Wait()

	reopened, err := profile.Open(path)
	require.NoError(t, err)
	assert.Equal(t, "cyborg", reopened.Get().Equipped)
}

func TestSession_BuySkinWithCoins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	store, err := profile.Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Update(func(p *profile.Profile) { p.Coins = 1200 }))

	h := newHarness(t, Options{Profile: store})

	out, _ := h.press(t, "2") // Clown Nose, 500 coins
	assert.Equal(t, "clown", h.s.wardrobe.Equipped().ID)
	assert.Equal(t, 700, h.s.coins)
	assert.Contains(t, out, "Coins: 700")

	h.press(t, "3") // Cyborg, 1000 coins
	assert.Equal(t, "clown", h.s.wardrobe.Equipped().ID)
	assert.Equal(t, 700, h.s.coins)
	assert.NotContains(t, h.s.wardrobe.Owned(), "cyborg")

	h.press(t, "1")
	h.press(t, "2") // owned now, equipping is free
	assert.Equal(t, "clown", h.s.wardrobe.Equipped().ID)
	assert.Equal(t, 700, h.s.coins)
	h.s.wg.Wait()

	reopened, err := profile.Open(path)
	require.NoError(t, err)
	p := reopened.Get()
	assert.Equal(t, 700, p.Coins)
	assert.Contains(t, p.Inventory, "clown")
	assert.Equal(t, "clown", p.Equipped)
}

func TestSession_TutorialSeenIsRemembered(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	store, err := profile.Open(path)
	require.NoError(t, err)

	h := newHarness(t, Options{Profile: store})
	h.press(t, "\r")
	h.press(t, "\r")
	h.s.wg.Wait()
	assert.True(t, store.Get().TutorialSeen)

	h = newHarness(t, Options{Profile: store})
	h.press(t, "\r")
	assert.Equal(t, game.PhaseAwaitingDistance, h.s.engine.Phase())
}

func TestSession_GameOverNameEntryAndSave(t *testing.T) {
	board := leaderboard.NewMemoryStore()
	require.NoError(t, board.Save(context.Background(), leaderboard.NewEntry("bob", 300, time.Now())))

	h := newHarness(t, Options{Leaderboard: board, Username: "ad"})
	h.s.onEvent(game.GameEnded{Score: 120})
	h.s.wg.Wait()
	assert.Equal(t, 120, h.s.coins)

	for _, k := range input.Keys([]byte("x\x7fa")) {
		assert.False(t, h.s.endedKey(k))
	}
	assert.Equal(t, "ada", h.s.name)

	h.s.endedKey(input.Key{Code: input.KeyEnter})
	h.s.submitter.Wait()
	st, err := h.s.submitter.Status()
	require.NoError(t, err)
	assert.Equal(t, leaderboard.StatusSuccess, st)

	// Typing is locked once saved.
	h.s.endedKey(input.Key{Code: input.KeyRune, Rune: 'z'})
	assert.Equal(t, "ada", h.s.name)

	h.tick(t, time.Millisecond)
	h.s.wg.Wait()
	h.tick(t, time.Millisecond)
	require.Len(t, h.s.top, 2)
	assert.Equal(t, "bob", h.s.top[0].Username)
	assert.Equal(t, "ada", h.s.top[1].Username)
	assert.Equal(t, 120, h.s.top[1].Score)
}

func TestSession_ShutdownNotice(t *testing.T) {
	shutdown := make(chan struct{})
	h := newHarness(t, Options{Shutdown: shutdown})

	out, done := h.tick(t, time.Millisecond)
	assert.False(t, done)
	assert.NotContains(t, out, "SERVER SHUTTING DOWN")

	close(shutdown)
	out, done = h.tick(t, time.Millisecond)
	assert.False(t, done)
	assert.Contains(t, out, "SERVER SHUTTING DOWN")
	assert.Contains(t, out, "Disconnecting in 10 seconds...")

	_, done = h.tick(t, ShutdownDisplay)
	assert.True(t, done)
}

func TestSession_Inactivity(t *testing.T) {
	h := newHarness(t, Options{IdleTimeout: true})

	out, done := h.tick(t, InactivityWarnAfter)
	assert.False(t, done)
	assert.Contains(t, out, "ARE YOU STILL THERE?")

	out, done = h.press(t, "1")
	assert.False(t, done)
	assert.NotContains(t, out, "ARE YOU STILL THERE?")

	_, done = h.tick(t, InactivityTimeout)
	assert.True(t, done)
}

func TestRun_EndsWhenInputCloses(t *testing.T) {
	var out bytes.Buffer
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := Run(ctx, bufio.NewReader(strings.NewReader("")), &out, Options{
		Config: game.DefaultConfig(),
		Size:   fixedSize,
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out.String(), draw.SeqAltScreen))
	assert.True(t, strings.HasSuffix(out.String(), draw.SeqMainScreen))
}

func TestHub_ShutdownWaitsForSessions(t *testing.T) {
	hub := NewHub(nil)
	a := hub.Register("ada")
	b := hub.Register("bob")
	assert.Equal(t, 2, hub.Count())

	go func() {
		<-a.ShuttingDown()
		hub.Unregister(a)
		<-b.ShuttingDown()
		hub.Unregister(b)
	}()

	hub.Shutdown(5 * time.Second)
	assert.Zero(t, hub.Count())
}

func TestHub_ShutdownTimesOut(t *testing.T) {
	hub := NewHub(nil)
	hd := hub.Register("ada")

	start := time.Now()
	hub.Shutdown(300 * time.Millisecond)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, 1, hub.Count())

	select {
	case <-hd.ShuttingDown():
	default:
		t.Fatal("session was not notified")
	}
}
