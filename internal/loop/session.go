// Package loop runs one terminal play session: it reads keys, feeds the
// keyboard face into the engine and draws every frame to the terminal.
package loop

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/tomz197/nosecatch/internal/draw"
	"github.com/tomz197/nosecatch/internal/game"
	"github.com/tomz197/nosecatch/internal/input"
	"github.com/tomz197/nosecatch/internal/leaderboard"
	"github.com/tomz197/nosecatch/internal/object"
	"github.com/tomz197/nosecatch/internal/profile"
	"github.com/tomz197/nosecatch/internal/screen"
	"github.com/tomz197/nosecatch/internal/skin"
	"github.com/tomz197/nosecatch/internal/tracking"
)

// Options configure a session. Only Config is required.
type Options struct {
	Config      game.Config
	FPS         int
	Registry    *skin.Registry
	Profile     *profile.Store // Local progress; nil keeps coins and skins in memory
	Leaderboard leaderboard.Store
	Audio       game.AudioSink
	Logger      *zap.Logger
	Size        draw.TermSizeFunc
	Face        input.VirtualFaceConfig
	Rand        object.Rand

	Username    string
	IdleTimeout bool            // Disconnect inactive players
	Shutdown    <-chan struct{} // Closed when the server is going down
}

// Session is the controller polled by the runner at the top of every frame.
type Session struct {
	opts      Options
	log       *zap.Logger
	in        *input.Stream
	out       io.Writer
	face      *input.VirtualFace
	samples   *tracking.Stream
	engine    *game.Engine
	runner    *game.Runner
	screen    *screen.Screen
	wardrobe  *skin.Wardrobe
	registry  *skin.Registry
	submitter *leaderboard.Submitter

	coins      int
	name       string
	lastScore  int
	top        []leaderboard.Entry
	topCh      chan []leaderboard.Entry
	lastStatus leaderboard.Status
	lastWrite  chan struct{} // Closed when the latest profile write is done

	last         time.Duration
	lastInput    time.Duration
	shutdownAt   time.Duration
	shuttingDown bool

	wg sync.WaitGroup
}

// Run plays on the terminal behind r and w until the player quits, ctx is
// cancelled or the connection drops.
func Run(ctx context.Context, r *bufio.Reader, w io.Writer, opts Options) error {
	return newSession(input.StartStream(r), w, opts).run(ctx)
}

func newSession(in *input.Stream, w io.Writer, opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Registry == nil {
		opts.Registry = skin.DefaultRegistry()
	}
	if opts.Leaderboard == nil {
		opts.Leaderboard = leaderboard.NewMemoryStore()
	}
	if opts.Size == nil {
		opts.Size = draw.DefaultTermSizeFunc
	}
	if opts.Face == (input.VirtualFaceConfig{}) {
		opts.Face = input.DefaultVirtualFaceConfig()
	}

	s := &Session{
		opts:      opts,
		log:       opts.Logger,
		in:        in,
		out:       w,
		face:      input.NewVirtualFace(opts.Face, opts.Rand),
		samples:   tracking.NewStream(tracking.DefaultBuffer),
		registry:  opts.Registry,
		submitter: leaderboard.NewSubmitter(opts.Leaderboard, opts.Logger),
		topCh:     make(chan []leaderboard.Entry, 1),
		name:      opts.Username,
	}

	tutorialSeen := false
	if opts.Profile != nil {
		p := opts.Profile.Get()
		s.wardrobe = opts.Profile.Wardrobe(opts.Registry)
		s.coins = p.Coins
		tutorialSeen = p.TutorialSeen
		if p.LastUsername != "" {
			s.name = p.LastUsername
		}
	} else {
		s.wardrobe = skin.NewWardrobe(opts.Registry, nil, skin.DefaultID)
	}
	s.name = truncateRunes(s.name, maxNameInputRunes)

	width, height := opts.Config.Width, opts.Config.Height
	if width <= 0 || height <= 0 {
		d := game.DefaultConfig()
		width, height = d.Width, d.Height
	}
	s.screen = screen.New(w, opts.Size, width, height)

	s.engine = game.NewEngine(opts.Config, game.Options{
		Logger:       opts.Logger,
		Rand:         opts.Rand,
		Equipment:    s.wardrobe,
		Render:       s.screen,
		TutorialSeen: tutorialSeen,
	})
	if l := game.NewAudioListener(opts.Audio); l != nil {
		s.engine.Subscribe(l)
	}
	s.engine.Subscribe(game.ListenerFunc(s.onEvent))

	s.runner = game.NewRunner(s.engine, s.samples, s, game.RunnerConfig{FPS: opts.FPS}, opts.Logger)
	s.refresh()
	return s
}

func (s *Session) run(ctx context.Context) error {
	if _, err := io.WriteString(s.out, draw.SeqAltScreen+draw.SeqHideCursor+draw.SeqClear); err != nil {
		return fmt.Errorf("failed to prepare terminal: %w", err)
	}
	defer func() {
		_, _ = io.WriteString(s.out, draw.SeqShowCursor+draw.SeqMainScreen)
	}()

	err := s.runner.Run(ctx)
	s.samples.Close()
	s.submitter.Wait()
	s.wg.Wait()
	if err != nil {
		return err
	}
	return s.screen.Err()
}

// Poll implements game.Controller.
func (s *Session) Poll(now time.Duration) bool {
	in := input.ReadInput(s.in)
	if s.in.Closed() || s.screen.Err() != nil {
		return true
	}
	dt := now - s.last
	s.last = now

	if len(in.Pressed) > 0 {
		s.lastInput = now
	}
	for _, k := range input.Keys(in.Pressed) {
		if s.handleKey(k) {
			return true
		}
	}

	if s.engine.Phase() != game.PhaseEnded {
		_ = s.samples.Push(s.face.Apply(in, dt, now.Seconds()))
	}

	select {
	case top := <-s.topCh:
		s.top = top
	default:
	}
	if st, _ := s.submitter.Status(); st != s.lastStatus {
		if st == leaderboard.StatusSuccess {
			s.saveUsername()
			s.fetchTop()
		}
		s.lastStatus = st
	}

	quit := s.updateNotice(now)
	s.refresh()
	return quit
}

func (s *Session) handleKey(k input.Key) (quit bool) {
	if k.Code == input.KeyInterrupt {
		return true
	}

	switch s.engine.Phase() {
	case game.PhaseEnded:
		return s.endedKey(k)

	case game.PhaseIdle:
		switch {
		case k.Code == input.KeyEnter || k.Rune == ' ':
			if err := s.engine.Begin(); err != nil {
				s.log.Debug("begin ignored", zap.Error(err))
			}
		case k.Code == input.KeyEscape || k.Rune == 'q' || k.Rune == 'Q':
			return true
		case k.Rune >= '1' && k.Rune <= '9':
			s.equip(int(k.Rune - '1'))
		}

	case game.PhaseTutorial:
		switch {
		case k.Code == input.KeyEnter || k.Rune == ' ':
			if err := s.engine.DismissTutorial(); err == nil {
				s.persist(func(p *profile.Profile) { p.TutorialSeen = true })
			}
		case k.Code == input.KeyEscape:
			s.engine.Stop()
		case k.Rune == 'q' || k.Rune == 'Q':
			return true
		}

	default:
		switch {
		case k.Code == input.KeyEscape:
			s.engine.Stop()
		case k.Rune == 'q' || k.Rune == 'Q':
			return true
		}
	}
	return false
}

func (s *Session) endedKey(k input.Key) bool {
	st, _ := s.submitter.Status()
	switch k.Code {
	case input.KeyEscape:
		return true
	case input.KeyTab:
		s.restart()
	case input.KeyEnter:
		if st == leaderboard.StatusSuccess {
			s.restart()
			return false
		}
		if err := s.submitter.Submit(s.name, s.lastScore); err != nil {
			s.log.Debug("submit ignored", zap.Error(err))
		}
	case input.KeyBackspace:
		if st != leaderboard.StatusPending && st != leaderboard.StatusSuccess && s.name != "" {
			_, size := utf8.DecodeLastRuneInString(s.name)
			s.name = s.name[:len(s.name)-size]
		}
	case input.KeyRune:
		if st != leaderboard.StatusPending && st != leaderboard.StatusSuccess &&
			utf8.RuneCountInString(s.name) < maxNameInputRunes {
			s.name += string(k.Rune)
		}
	}
	return false
}

func (s *Session) restart() {
	s.submitter.Reset()
	s.lastStatus = leaderboard.StatusIdle
	s.engine.Restart()
}

// equip switches to the i-th skin of the registry, buying it first when it is
// not owned yet and the coins cover its price.
func (s *Session) equip(i int) {
	all := s.registry.All()
	if i < 0 || i >= len(all) {
		return
	}
	sk := all[i]
	bought := false
	if !slices.Contains(s.wardrobe.Owned(), sk.ID) {
		if s.coins < sk.Price {
			s.log.Debug("not enough coins", zap.String("skin", sk.ID), zap.Int("coins", s.coins), zap.Int("price", sk.Price))
			return
		}
		if err := s.wardrobe.Grant(sk.ID); err != nil {
			s.log.Warn("failed to grant skin", zap.String("skin", sk.ID), zap.Error(err))
			return
		}
		s.coins -= sk.Price
		bought = true
		s.log.Info("skin bought", zap.String("skin", sk.ID), zap.Int("price", sk.Price), zap.Int("coins", s.coins))
	}
	if err := s.wardrobe.Equip(sk.ID); err != nil {
		s.log.Debug("equip refused", zap.String("skin", sk.ID), zap.Error(err))
		return
	}
	s.persist(func(p *profile.Profile) {
		if bought {
			p.Coins = max(p.Coins-sk.Price, 0)
			if !slices.Contains(p.Inventory, sk.ID) {
				p.Inventory = append(p.Inventory, sk.ID)
			}
		}
		p.Equipped = sk.ID
	})
}

func (s *Session) onEvent(ev game.Event) {
	end, ok := ev.(game.GameEnded)
	if !ok {
		return
	}
	s.lastScore = end.Score
	if end.Score > 0 {
		s.coins += end.Score
	}
	s.persistWith(func(store *profile.Store) error { return store.AddCoins(end.Score) })
	s.fetchTop()
}

// fetchTop loads the leaderboard off the loop goroutine.
func (s *Session) fetchTop() {
	store := s.opts.Leaderboard
	s.background(func() {
		ctx, cancel := context.WithTimeout(context.Background(), TopListTimeout)
		defer cancel()
		top, err := store.Top(ctx, TopListSize)
		if err != nil {
			s.log.Warn("failed to load leaderboard", zap.Error(err))
			return
		}
		for {
			select {
			case s.topCh <- top:
				return
			default:
			}
			select {
			case <-s.topCh:
			default:
			}
		}
	})
}

func (s *Session) saveUsername() {
	name := leaderboard.SanitizeName(s.name)
	s.persist(func(p *profile.Profile) { p.LastUsername = name })
}

// persist applies fn to the profile off the loop goroutine.
func (s *Session) persist(fn func(p *profile.Profile)) {
	s.persistWith(func(store *profile.Store) error { return store.Update(fn) })
}

// persistWith runs write in the background, after every earlier write.
func (s *Session) persistWith(write func(store *profile.Store) error) {
	if s.opts.Profile == nil {
		return
	}
	store := s.opts.Profile
	prev := s.lastWrite
	done := make(chan struct{})
	s.lastWrite = done
	s.background(func() {
		defer close(done)
		if prev != nil {
			<-prev
		}
		if err := write(store); err != nil {
			s.log.Warn("failed to save profile", zap.Error(err))
		}
	})
}

func (s *Session) background(fn func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn()
	}()
}

// updateNotice shows shutdown and inactivity warnings and reports when the
// session has to close.
func (s *Session) updateNotice(now time.Duration) bool {
	if !s.shuttingDown && s.opts.Shutdown != nil {
		select {
		case <-s.opts.Shutdown:
			s.shuttingDown = true
			s.shutdownAt = now
			s.log.Info("closing session for server shutdown")
		default:
		}
	}

	if s.shuttingDown {
		left := ShutdownDisplay - (now - s.shutdownAt)
		if left <= 0 {
			return true
		}
		s.screen.SetNotice("SERVER SHUTTING DOWN", countdownLine(left), "Thanks for playing!")
		return false
	}

	if s.opts.IdleTimeout {
		idle := now - s.lastInput
		switch {
		case idle >= InactivityTimeout:
			s.log.Info("closing inactive session", zap.Duration("idle", idle))
			return true
		case idle >= InactivityWarnAfter:
			s.screen.SetNotice("ARE YOU STILL THERE?", countdownLine(InactivityTimeout-idle), "Press any key to stay")
			return false
		}
	}
	s.screen.SetNotice()
	return false
}

func countdownLine(left time.Duration) string {
	secs := int((left + time.Second - 1) / time.Second)
	return fmt.Sprintf("Disconnecting in %d seconds...", secs)
}

// refresh pushes menu and game-over state to the screen before the frame is drawn.
func (s *Session) refresh() {
	owned := s.wardrobe.Owned()
	equipped := s.wardrobe.Equipped().ID
	all := s.registry.All()
	entries := make([]screen.SkinEntry, 0, len(all))
	for i, sk := range all {
		entries = append(entries, screen.SkinEntry{
			Key:      i + 1,
			Skin:     sk,
			Owned:    slices.Contains(owned, sk.ID),
			Equipped: sk.ID == equipped,
		})
	}
	s.screen.SetMenu(screen.Menu{Coins: s.coins, Skins: entries})

	st, err := s.submitter.Status()
	s.screen.SetEnding(screen.Ending{
		Name:   s.name,
		Status: st,
		Err:    err,
		Top:    s.top,
		Coins:  s.coins,
	})
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
