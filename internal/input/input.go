// Package input reads raw terminal keystrokes and turns them into frame input and
// a keyboard-driven virtual face.
package input

import (
	"bufio"
	"time"
)

// keyHoldDuration is how long a key is considered held after its last press.
const keyHoldDuration = 30 * time.Millisecond

// Input is the current frame's key state.
type Input struct {
	Quit      bool
	Left      bool
	Right     bool
	Up        bool
	Down      bool
	Closer    bool
	Farther   bool
	Hide      bool
	Enter     bool
	Space     bool
	Tab       bool
	Escape    bool
	Interrupt bool // Ctrl-C
	Backspace bool
	Number    int // Last digit pressed, -1 if none
	Pressed   []byte
}

// Confirm reports whether the player pressed a key that advances a screen.
func (in Input) Confirm() bool {
	return in.Enter || in.Space
}

type keyState struct {
	quit      time.Time
	left      time.Time
	right     time.Time
	up        time.Time
	down      time.Time
	closer    time.Time
	farther   time.Time
	space     time.Time
	enter     time.Time
	tab       time.Time
	escape    time.Time
	interrupt time.Time
	backspace time.Time
	number    time.Time
	numberVal int
	hide      bool // toggled, not held
	hideEdge  bool
}

// Stream delivers input bytes via a channel and tracks key state.
type Stream struct {
	ch     chan byte
	state  keyState
	closed bool
}

// StartStream spawns a goroutine that reads from r until it fails.
func StartStream(r *bufio.Reader) *Stream {
	s := NewStream()
	go func() {
		for {
			b, err := r.ReadByte()
			if err != nil {
				close(s.ch)
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// NewStream creates a stream fed through Feed.
func NewStream() *Stream {
	return &Stream{
		ch:    make(chan byte, 128),
		state: keyState{numberVal: -1},
	}
}

// Feed queues bytes without blocking; bytes beyond the buffer are dropped.
func (s *Stream) Feed(p []byte) {
	for _, b := range p {
		select {
		case s.ch <- b:
		default:
			return
		}
	}
}

// Closed reports whether the underlying reader has ended.
func (s *Stream) Closed() bool {
	return s.closed
}

// ReadInput drains all available bytes from the stream without blocking.
func ReadInput(s *Stream) Input {
	return readInputAt(s, time.Now())
}

func readInputAt(s *Stream, now time.Time) Input {
	var buf []byte

drain:
	for {
		select {
		case b, ok := <-s.ch:
			if !ok {
				s.closed = true
				break drain
			}
			buf = append(buf, b)
		default:
			break drain
		}
	}

	s.state.hideEdge = false
	for i := 0; i < len(buf); i++ {
		b := buf[i]
		if b == '\x1b' && i+2 < len(buf) && buf[i+1] == '[' {
			handled := true
			switch buf[i+2] {
			case 'A':
				s.state.up = now
			case 'B':
				s.state.down = now
			case 'C':
				s.state.right = now
			case 'D':
				s.state.left = now
			default:
				handled = false
			}
			if handled {
				i += 2
				continue
			}
		}
		applyByteToState(&s.state, b, now)
	}

	held := func(t time.Time) bool { return now.Sub(t) < keyHoldDuration }
	in := Input{
		Quit:      held(s.state.quit),
		Left:      held(s.state.left),
		Right:     held(s.state.right),
		Up:        held(s.state.up),
		Down:      held(s.state.down),
		Closer:    held(s.state.closer),
		Farther:   held(s.state.farther),
		Hide:      s.state.hide,
		Enter:     held(s.state.enter),
		Space:     held(s.state.space),
		Tab:       held(s.state.tab),
		Escape:    held(s.state.escape),
		Interrupt: held(s.state.interrupt),
		Backspace: held(s.state.backspace),
		Number:    -1,
		Pressed:   buf,
	}
	if held(s.state.number) {
		in.Number = s.state.numberVal
	}
	// A closed reader ends the session.
	if s.closed {
		in.Quit = true
		in.Interrupt = true
	}
	return in
}

func applyByteToState(state *keyState, b byte, now time.Time) {
	switch b {
	case 'q', 'Q':
		state.quit = now
	case '\x03':
		state.interrupt = now
	case '\b', '\x7f':
		state.backspace = now
	case 'a', 'A', 'h', 'H':
		state.left = now
	case 'd', 'D', 'l', 'L':
		state.right = now
	case 'w', 'W', 'k', 'K':
		state.up = now
	case 's', 'S', 'j', 'J':
		state.down = now
	case '+', '=':
		state.closer = now
	case '-', '_':
		state.farther = now
	case 'x', 'X':
		if !state.hideEdge {
			state.hide = !state.hide
			state.hideEdge = true
		}
	case ' ':
		state.space = now
	case '\n', '\r':
		state.enter = now
	case '\t':
		state.tab = now
	case '\x1b':
		state.escape = now
	case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		state.number = now
		state.numberVal = int(b - '0')
	}
}
