// Package game runs a catch session: it turns tracked poses into the pre-game
// distance check, the countdown and the falling-object loop, and reports what
// happened through typed events and per-frame render snapshots.
package game

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/tomz197/nosecatch/internal/distance"
	"github.com/tomz197/nosecatch/internal/draw"
	"github.com/tomz197/nosecatch/internal/object"
	"github.com/tomz197/nosecatch/internal/skin"
	"github.com/tomz197/nosecatch/internal/tracking"
)

// Options are the optional collaborators of an Engine.
type Options struct {
	Logger       *zap.Logger
	Rand         object.Rand // Spawn and shield rolls
	EffectsRand  object.Rand // Particle bursts
	Equipment    skin.Equipment
	Render       RenderSink
	TutorialSeen bool
}

// Engine owns one player's session. All methods must be called from the loop
// goroutine.
type Engine struct {
	cfg    Config
	area   object.PlayArea
	log    *zap.Logger
	rng    object.Rand
	fx     object.Rand
	equip  skin.Equipment
	render RenderSink
	events Dispatcher
	sched  Scheduler

	tracker    *tracking.Tracker
	hold       *distance.HoldGate
	monitor    *distance.Monitor
	thresholds distance.Thresholds

	state     State
	objects   []*object.FallingObject
	particles []*object.Particle
	texts     []*object.FloatingText
	countdown *Task

	tutorialSeen bool
	zoneKnown    bool
	now          time.Duration
	lastTrack    time.Duration
	lastStep     time.Duration
}

// NewEngine creates an idle engine.
func NewEngine(cfg Config, opts Options) *Engine {
	cfg = cfg.withDefaults()

	playWidth := math.Min(cfg.Width, cfg.MaxPlayWidth)
	e := &Engine{
		cfg: cfg,
		area: object.PlayArea{
			X:         (cfg.Width - playWidth) / 2,
			Width:     playWidth,
			Height:    cfg.Height,
			MinRadius: cfg.MinRadius,
		},
		log:          opts.Logger,
		rng:          opts.Rand,
		fx:           opts.EffectsRand,
		equip:        opts.Equipment,
		render:       opts.Render,
		tracker:      tracking.NewTracker(cfg.Tracking),
		hold:         distance.NewHoldGate(cfg.HoldDuration),
		monitor:      distance.NewMonitor(cfg.Monitor),
		thresholds:   cfg.Monitor.Thresholds,
		tutorialSeen: opts.TutorialSeen,
	}
	if e.log == nil {
		e.log = zap.NewNop()
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if e.fx == nil {
		e.fx = rand.New(rand.NewSource(time.Now().UnixNano() + 1))
	}
	if e.equip == nil {
		e.equip = skin.Static(skin.DefaultRegistry().Default())
	}

	e.state.Phase = PhaseIdle
	e.state.reset(cfg.Lives)
	e.state.ControlX = cfg.Width / 2
	e.state.ControlY = cfg.Height / 2
	return e
}

// Subscribe registers an event listener.
func (e *Engine) Subscribe(l Listener) {
	e.events.Subscribe(l)
}

// State returns a copy of the session state.
func (e *Engine) State() State {
	return e.state
}

// Phase returns the current phase.
func (e *Engine) Phase() Phase {
	return e.state.Phase
}

// Area returns the playable band.
func (e *Engine) Area() object.PlayArea {
	return e.area
}

// TutorialSeen reports whether the tutorial has been dismissed.
func (e *Engine) TutorialSeen() bool {
	return e.tutorialSeen
}

// Begin leaves the menu. It shows the tutorial once, then waits for an ideal pose.
func (e *Engine) Begin() error {
	if e.state.Phase != PhaseIdle {
		return fmt.Errorf("begin: session already in phase %s", e.state.Phase)
	}
	if !e.tutorialSeen {
		e.setPhase(PhaseTutorial)
		return nil
	}
	e.awaitDistance()
	return nil
}

// DismissTutorial closes the tutorial and starts the distance check.
func (e *Engine) DismissTutorial() error {
	if e.state.Phase != PhaseTutorial {
		return fmt.Errorf("dismiss tutorial: not showing (phase %s)", e.state.Phase)
	}
	e.tutorialSeen = true
	e.awaitDistance()
	return nil
}

// Restart abandons the current session and starts a new one.
func (e *Engine) Restart() {
	e.Stop()
	_ = e.Begin()
}

// Stop cancels all pending work and returns to the menu.
func (e *Engine) Stop() {
	if n := e.sched.Pending(); n > 0 {
		e.log.Debug("cancelling scheduled tasks", zap.Int("pending", n))
	}
	e.sched.CancelAll()
	e.countdown = nil
	e.clearObjects()
	e.setPhase(PhaseIdle)
}

// Spawn implements object.Spawner for particles and floating texts.
func (e *Engine) Spawn(obj object.Object) {
	switch o := obj.(type) {
	case *object.Particle:
		e.particles = append(e.particles, o)
	case *object.FloatingText:
		e.texts = append(e.texts, o)
	case *object.FallingObject:
		e.objects = append(e.objects, o)
	}
}

// Track consumes one tracking sample observed at clock time now.
func (e *Engine) Track(s tracking.Sample, now time.Duration) {
	e.advance(now)
	pose := e.tracker.Update(s)
	if pose.Detected {
		e.state.ControlX = pose.X * e.cfg.Width
		e.state.ControlY = pose.Y * e.cfg.Height
		e.state.FaceScale = pose.Scale
	}
	e.state.Detected = pose.Detected
	e.state.Misses = e.tracker.ConsecutiveMisses()

	dt := now - e.lastTrack
	if dt < 0 {
		dt = 0
	}
	e.lastTrack = now

	switch {
	case e.state.Phase.PreGame():
		e.trackPreGame(pose, dt)
	case e.state.Phase == PhaseActive:
		e.trackActive(pose, now)
	}
}

func (e *Engine) trackPreGame(pose tracking.Pose, dt time.Duration) {
	if !pose.Detected {
		e.hold.Reset()
		e.setHold(0)
		e.setPhase(PhaseAwaitingDistance)
		return
	}

	zone := e.thresholds.Classify(pose.Scale, pose.Y)
	e.setZone(zone)
	progress, open := e.hold.Update(zone, dt)
	e.setHold(progress)

	if zone == distance.ZoneIdeal {
		e.setPhase(PhaseHolding)
	} else {
		e.setPhase(PhaseAwaitingDistance)
	}
	if open {
		e.startCountdown()
	}
}

func (e *Engine) trackActive(pose tracking.Pose, now time.Duration) {
	// A lost face keeps the last position and leaves the warning state alone.
	if !pose.Detected {
		return
	}
	st := e.monitor.Update(pose.Scale, pose.Y, now)
	// The zone follows the debounced warning; a raw flip back to ideal inside
	// the debounce window is not reported.
	if st.WarningChanged || (st.Warning && st.Zone != distance.ZoneIdeal) {
		e.setZone(st.Zone)
	}
	e.state.WarningTime = st.WarningTime

	if st.WarningChanged {
		e.state.Warning = st.Warning
		e.events.Emit(WarningChanged{Warning: st.Warning, Zone: st.Zone})
	}
	if st.PenaltyChanged {
		e.state.Penalty = st.Penalty
		e.log.Info("penalty mode changed", zap.Bool("penalty", st.Penalty), zap.Int("score", e.state.Score))
		e.events.Emit(PenaltyChanged{Penalty: st.Penalty})
	}
}

// Step runs one frame at clock time now and renders it. It reports whether the
// session is still running; it returns false once the game has ended.
func (e *Engine) Step(now time.Duration) bool {
	e.advance(now)
	dt := now - e.lastStep
	if dt < 0 {
		dt = 0
	}
	e.lastStep = now

	if e.state.Phase == PhaseActive {
		e.frame(now)
	}
	e.updateEffects(dt)
	e.emitFrame(now)
	return e.state.Phase != PhaseEnded
}

func (e *Engine) advance(now time.Duration) {
	if now > e.now {
		e.now = now
	}
	e.sched.Advance(e.now)
}

func (e *Engine) frame(now time.Duration) {
	s := &e.state
	elapsed := now - s.StartedAt

	s.SpeedMultiplier = 1 + SpeedPerMinute*elapsed.Minutes() + SpeedPerPoint*float64(s.Score)
	if tier := speedTier(s.SpeedMultiplier); tier > s.SpeedTier {
		s.SpeedTier = tier
		e.Spawn(object.NewFloatingText(e.cfg.Width/2, e.cfg.Height*0.2, "SPEED UP!", false))
		e.events.Emit(SpeedUp{Tier: tier, Multiplier: s.SpeedMultiplier})
	}

	interval := time.Duration(float64(e.cfg.SpawnInterval) / s.SpeedMultiplier)
	if s.Penalty {
		interval /= PenaltySpawnDivisor
	}
	if now-s.LastSpawn > interval {
		e.spawnObject(elapsed)
		s.LastSpawn = now
	}

	sk := e.equip.Equipped()
	catchRadius := e.cfg.HitboxBase * sk.HitboxMultiplier
	ctx := object.UpdateContext{Area: e.area}

	kept := e.objects[:0]
	for i, o := range e.objects {
		off := o.Update(ctx)
		switch {
		case o.Hit(s.ControlX, s.ControlY, catchRadius):
			e.catch(o, sk, now)
		case off:
			e.miss(o, now)
		default:
			kept = append(kept, o)
		}
		if s.Phase == PhaseEnded {
			kept = append(kept, e.objects[i+1:]...)
			break
		}
	}
	clear(e.objects[len(kept):])
	e.objects = kept
}

// BombThreshold returns the cumulative spawn roll below which an object is a
// bomb (rolls below GoldChance are gold).
func BombThreshold(score int, penalty bool) float64 {
	switch {
	case penalty:
		return BombChancePenalty
	case score >= HighScoreBombs:
		return BombChanceHighScore
	default:
		return BombChance
	}
}

func (e *Engine) spawnObject(elapsed time.Duration) {
	kind := object.KindGem
	r := e.rng.Float64()
	switch {
	case r < GoldChance:
		kind = object.KindGold
	case r < BombThreshold(e.state.Score, e.state.Penalty):
		kind = object.KindBomb
	}
	e.objects = append(e.objects, object.NewFallingObject(object.SpawnParams{
		Area:            e.area,
		Kind:            kind,
		SpeedMultiplier: e.state.SpeedMultiplier,
		WidthRatio:      object.SpawnWidthRatio(e.state.FaceScale),
		Elapsed:         elapsed,
	}, e.rng))
}

// Points returns the score for catching kind.
func Points(kind object.Kind, fever bool, ability skin.Ability) int {
	var points int
	switch kind {
	case object.KindGem:
		points = GemPoints
		if fever {
			points = FeverGemPoints
		}
	case object.KindGold:
		points = GoldPoints
	default:
		return 0
	}
	if ability == skin.AbilityMultiplier {
		points = int(math.Floor(float64(points) * MultiplierBonus))
	}
	return points
}

func (e *Engine) catch(o *object.FallingObject, sk skin.Skin, now time.Duration) {
	s := &e.state
	if o.Kind == object.KindBomb {
		if sk.Ability == skin.AbilityShield && e.rng.Float64() < ShieldChance {
			e.Spawn(object.NewFloatingText(o.X, o.Y, "SHIELDED!", false))
			object.SpawnBurst(o.X, o.Y, draw.Cyan, e.fx, e)
			e.events.Emit(BombShielded{X: o.X, Y: o.Y})
			return
		}
		object.SpawnBurst(o.X, o.Y, o.Kind.Color(), e.fx, e)
		e.loseLife(CauseBomb, now)
		return
	}

	points := Points(o.Kind, s.Fever, sk.Ability)
	s.Score += points
	s.Combo++
	object.SpawnBurst(o.X, o.Y, o.Kind.Color(), e.fx, e)
	e.events.Emit(ObjectCaught{Kind: o.Kind, Points: points, X: o.X, Y: o.Y})
	e.events.Emit(ScoreChanged{Score: s.Score, Combo: s.Combo})
	e.updateFever()

	if o.Kind == object.KindGold {
		e.Spawn(object.NewFloatingText(o.X, o.Y, fmt.Sprintf("JACKPOT! +%d", points), true))
		return
	}
	// Milestones are only announced on gems.
	if text, ok := milestoneText(s.Combo); ok {
		e.Spawn(object.NewFloatingText(o.X, o.Y, text, false))
		e.events.Emit(ComboMilestone{Combo: s.Combo, Text: text})
	}
}

func (e *Engine) miss(o *object.FallingObject, now time.Duration) {
	if o.Kind.Collectible() {
		e.loseLife(CauseMiss, now)
	}
}

func (e *Engine) loseLife(cause LifeCause, now time.Duration) {
	s := &e.state
	s.Lives--
	s.Combo = 0
	s.FlashUntil = now + DamageFlashDuration
	e.updateFever()
	e.events.Emit(LifeLost{Cause: cause, Lives: s.Lives})
	e.events.Emit(ScoreChanged{Score: s.Score, Combo: s.Combo})
	if s.Lives <= 0 {
		e.end(now)
	}
}

func (e *Engine) updateFever() {
	s := &e.state
	on := s.Combo >= FeverCombo
	if on == s.Fever {
		return
	}
	s.Fever = on
	if on {
		e.Spawn(object.NewFloatingText(e.cfg.Width/2, e.cfg.Height/2, "FEVER MODE! 2x", true))
	}
	e.events.Emit(FeverChanged{Fever: on})
}

func (e *Engine) end(now time.Duration) {
	s := &e.state
	s.Lives = 0
	s.EndedAt = now
	e.sched.CancelAll()
	e.countdown = nil
	e.setPhase(PhaseEnded)
	e.log.Info("game ended",
		zap.Int("score", s.Score),
		zap.Duration("duration", s.EndedAt-s.StartedAt),
	)
	e.events.Emit(GameEnded{Score: s.Score, Duration: s.EndedAt - s.StartedAt})
}

func (e *Engine) awaitDistance() {
	e.clearObjects()
	e.state.reset(e.cfg.Lives)
	e.hold.Reset()
	e.zoneKnown = false
	e.lastTrack = e.now
	e.setPhase(PhaseAwaitingDistance)
}

func (e *Engine) startCountdown() {
	e.log.Debug("ideal distance held", zap.Duration("held", e.hold.Held()))
	e.setPhase(PhaseCountdown)
	remaining := e.cfg.CountdownFrom
	e.state.Countdown = remaining
	e.events.Emit(CountdownTick{Remaining: remaining})

	e.countdown = e.sched.Every(e.cfg.CountdownStep, func(at time.Duration) {
		remaining--
		if remaining >= 0 {
			e.state.Countdown = remaining
			e.events.Emit(CountdownTick{Remaining: remaining})
			return
		}
		e.countdown.Cancel()
		e.countdown = nil
		e.startActive(at)
	})
}

func (e *Engine) startActive(now time.Duration) {
	e.clearObjects()
	e.state.reset(e.cfg.Lives)
	e.state.StartedAt = now
	e.state.LastSpawn = now
	e.monitor.Start(now)
	e.zoneKnown = false
	e.setPhase(PhaseActive)
	e.events.Emit(ScoreChanged{})
}

func (e *Engine) setPhase(p Phase) {
	if e.state.Phase == p {
		return
	}
	from := e.state.Phase
	e.state.Phase = p
	e.log.Info("phase changed", zap.Stringer("from", from), zap.Stringer("to", p))
	e.events.Emit(PhaseChanged{From: from, To: p})
}

func (e *Engine) setZone(z distance.Zone) {
	if e.zoneKnown && e.state.Zone == z {
		return
	}
	e.zoneKnown = true
	e.state.Zone = z
	e.events.Emit(ZoneChanged{Zone: z, Guidance: z.Guidance()})
}

func (e *Engine) setHold(progress float64) {
	if progress == e.state.HoldProgress {
		return
	}
	e.state.HoldProgress = progress
	e.events.Emit(HoldProgress{Progress: progress})
}

func (e *Engine) updateEffects(dt time.Duration) {
	ctx := object.UpdateContext{Delta: dt, Area: e.area}

	particles := e.particles[:0]
	for _, p := range e.particles {
		if p.Update(ctx) {
			object.ReleaseObject(p)
			continue
		}
		particles = append(particles, p)
	}
	clear(e.particles[len(particles):])
	e.particles = particles

	texts := e.texts[:0]
	for _, t := range e.texts {
		if !t.Update(ctx) {
			texts = append(texts, t)
		}
	}
	clear(e.texts[len(texts):])
	e.texts = texts
}

func (e *Engine) clearObjects() {
	clear(e.objects)
	e.objects = e.objects[:0]
}

func (e *Engine) emitFrame(now time.Duration) {
	if e.render == nil {
		return
	}
	s := &e.state
	guidance := ""
	if s.Phase.PreGame() || (s.Phase == PhaseActive && s.Warning) {
		guidance = s.Zone.Guidance()
	}
	sk := e.equip.Equipped()
	e.render.Render(Frame{
		Now:         now,
		Width:       e.cfg.Width,
		Height:      e.cfg.Height,
		Area:        e.area,
		ControlX:    s.ControlX,
		ControlY:    s.ControlY,
		Detected:    s.Detected,
		Skin:        sk,
		CatchRadius: e.cfg.HitboxBase * sk.HitboxMultiplier,
		Objects:     e.objects,
		Particles:   e.particles,
		Texts:       e.texts,
		HUD: HUD{
			Phase:           s.Phase,
			Score:           s.Score,
			Lives:           s.Lives,
			Combo:           s.Combo,
			Fever:           s.Fever,
			Penalty:         s.Penalty,
			Warning:         s.Warning,
			Guidance:        guidance,
			HoldProgress:    s.HoldProgress,
			Countdown:       s.Countdown,
			SpeedMultiplier: s.SpeedMultiplier,
			Flash:           now < s.FlashUntil,
			FaceLost:        s.Phase != PhaseIdle && s.Phase != PhaseEnded && s.Misses >= FaceLostAfter,
			Elapsed:         s.Elapsed(now),
		},
	})
}

func speedTier(multiplier float64) int {
	return int(math.Floor(multiplier * 2))
}
