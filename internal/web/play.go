package web

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tomz197/nosecatch/internal/game"
	"github.com/tomz197/nosecatch/internal/leaderboard"
	"github.com/tomz197/nosecatch/internal/skin"
	"github.com/tomz197/nosecatch/internal/tracking"
)

const (
	writeWait      = 2 * time.Second
	pingPeriod     = 30 * time.Second
	commandBacklog = 16
)

// playSession is one browser game. The runner goroutine owns the engine;
// the handler goroutine only reads the socket and queues work for it, and the
// writer goroutine is the only one writing to it.
type playSession struct {
	id        uuid.UUID
	conn      *websocket.Conn
	log       *zap.Logger
	samples   *tracking.Stream
	cmds      chan *Message
	engine    *game.Engine
	runner    *game.Runner
	submitter *leaderboard.Submitter
	lastScore int
	out       *outbox

	ctx    context.Context
	cancel context.CancelFunc

	writerDone chan struct{}
	closeOnce  sync.Once
}

func newPlaySession(conn *websocket.Conn, opts Options) *playSession {
	id := uuid.New()
	log := opts.Logger.With(zap.String("session", id.String()))
	ctx, cancel := context.WithCancel(context.Background())

	ps := &playSession{
		id:        id,
		conn:      conn,
		log:       log,
		samples:   tracking.NewStream(tracking.DefaultBuffer),
		cmds:      make(chan *Message, commandBacklog),
		submitter:  leaderboard.NewSubmitter(opts.Leaderboard, log),
		out:        newOutbox(),
		ctx:        ctx,
		cancel:     cancel,
		writerDone: make(chan struct{}),
	}
	ps.engine = game.NewEngine(opts.Config, game.Options{
		Logger:    log,
		Equipment: skin.Static(opts.Registry.Default()),
		Render:    game.RenderFunc(ps.render),
	})
	ps.engine.Subscribe(game.ListenerFunc(ps.onEvent))
	ps.submitter.OnChange(ps.onStatus)
	ps.runner = game.NewRunner(ps.engine, ps.samples, game.ControllerFunc(ps.poll),
		game.RunnerConfig{FPS: opts.FPS}, log)
	return ps
}

// handlePlay runs a session for the lifetime of the socket.
func (s *Server) handlePlay(c *websocket.Conn) {
	ps := newPlaySession(c, s.opts)
	s.register(ps)
	defer s.unregister(ps)

	ps.send(TypeHello, HelloData{Session: ps.id.String(), Width: s.width(), Height: s.height()})
	go ps.writePump()

	done := make(chan error, 1)
	go func() { done <- ps.runner.Run(ps.ctx) }()

	ps.readLoop()

	ps.stop()
	if err := <-done; err != nil {
		ps.log.Warn("play session ended with error", zap.Error(err))
	}
	ps.samples.Close()
	ps.submitter.Wait()
	// The connection is recycled once the handler returns.
	<-ps.writerDone
}

func (s *Server) width() float64 {
	if s.opts.Config.Width > 0 {
		return s.opts.Config.Width
	}
	return game.DefaultConfig().Width
}

func (s *Server) height() float64 {
	if s.opts.Config.Height > 0 {
		return s.opts.Config.Height
	}
	return game.DefaultConfig().Height
}

func (ps *playSession) readLoop() {
	for {
		_, data, err := ps.conn.ReadMessage()
		if err != nil {
			ps.log.Debug("socket read ended", zap.Error(err))
			return
		}
		msg, err := ParseMessage(data)
		if err != nil {
			ps.sendError(err.Error())
			continue
		}

		switch msg.Type {
		case TypeSample:
			var sample tracking.Sample
			if err := msg.ParseData(&sample); err != nil {
				ps.sendError("invalid sample")
				continue
			}
			if err := ps.samples.Push(sample.Sanitize()); err != nil {
				return
			}
		case TypeStart, TypeRestart, TypeStop, TypeSave:
			select {
			case ps.cmds <- msg:
			default:
				ps.log.Warn("dropping command, backlog full", zap.String("type", string(msg.Type)))
			}
		default:
			ps.sendError("unknown message type " + string(msg.Type))
		}
	}
}

// poll runs on the runner goroutine before samples are drained.
func (ps *playSession) poll(time.Duration) bool {
	if ps.ctx.Err() != nil {
		return true
	}
	for {
		select {
		case msg := <-ps.cmds:
			ps.command(msg)
		default:
			return false
		}
	}
}

func (ps *playSession) command(msg *Message) {
	switch msg.Type {
	case TypeStart:
		switch ps.engine.Phase() {
		case game.PhaseIdle:
			_ = ps.engine.Begin()
		case game.PhaseTutorial:
			_ = ps.engine.DismissTutorial()
		}
	case TypeRestart:
		ps.submitter.Reset()
		ps.engine.Restart()
	case TypeStop:
		ps.engine.Stop()
	case TypeSave:
		if ps.engine.Phase() != game.PhaseEnded {
			ps.sendError("no finished game to save")
			return
		}
		var data SaveData
		if err := msg.ParseData(&data); err != nil || strings.TrimSpace(data.Name) == "" {
			ps.sendError("name is required")
			return
		}
		if err := ps.submitter.Submit(data.Name, ps.lastScore); err != nil {
			ps.sendError(err.Error())
		}
	}
}

func (ps *playSession) render(f game.Frame) {
	ps.send(TypeFrame, NewFrameData(f))
}

func (ps *playSession) onEvent(ev game.Event) {
	if end, ok := ev.(game.GameEnded); ok {
		ps.lastScore = end.Score
	}
	ps.send(TypeEvent, EventData{Name: ev.EventName(), Payload: ev})
}

func (ps *playSession) onStatus(st leaderboard.Status, err error) {
	data := StatusData{Status: st.String()}
	if err != nil {
		data.Error = err.Error()
	}
	ps.send(TypeStatus, data)
}

func (ps *playSession) sendError(text string) {
	ps.send(TypeError, ErrorData{Error: text})
}

// send queues one message for the writer. It never blocks, so it is safe on
// the runner goroutine and under the submitter's lock.
func (ps *playSession) send(t MessageType, data any) {
	if ps.ctx.Err() != nil {
		return
	}
	msg, err := NewMessage(t, data)
	if err != nil {
		ps.log.Error("failed to encode message", zap.String("type", string(t)), zap.Error(err))
		return
	}
	b, err := msg.Bytes()
	if err != nil {
		return
	}
	if err := ps.out.push(b, t == TypeFrame); err != nil {
		ps.log.Warn("closing slow client", zap.Error(err))
		ps.close()
	}
}

// writePump drains the outbox until the session stops.
func (ps *playSession) writePump() {
	defer close(ps.writerDone)
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-ps.ctx.Done():
			return
		case <-ping.C:
			if err := ps.write(websocket.PingMessage, nil); err != nil {
				ps.writeFailed(err)
				return
			}
		case <-ps.out.wake:
			queue, frame, dropped := ps.out.take()
			if dropped > 0 {
				ps.log.Debug("skipped frames for slow client", zap.Int("frames", dropped))
			}
			if frame != nil {
				queue = append(queue, frame)
			}
			for _, b := range queue {
				if err := ps.write(websocket.TextMessage, b); err != nil {
					ps.writeFailed(err)
					return
				}
			}
		}
	}
}

func (ps *playSession) write(messageType int, b []byte) error {
	_ = ps.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return ps.conn.WriteMessage(messageType, b)
}

func (ps *playSession) writeFailed(err error) {
	ps.log.Debug("socket write failed", zap.Error(err))
	ps.close()
}

func (ps *playSession) stop() {
	ps.cancel()
}

// close stops the session and unblocks its reader.
func (ps *playSession) close() {
	ps.closeOnce.Do(func() {
		ps.cancel()
		_ = ps.conn.Close()
	})
}
