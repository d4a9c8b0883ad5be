package tracking

import (
	"errors"
	"sync"
)

// ErrSourceClosed is returned once a source has no more samples.
var ErrSourceClosed = errors.New("tracking source closed")

// Source delivers samples. The channel is closed when the source ends.
type Source interface {
	Samples() <-chan Sample
}

// DefaultBuffer is the sample backlog of a Stream.
const DefaultBuffer = 64

// Stream is a Source fed by Push. Producers never block: when the buffer is full
// the oldest pending sample is dropped.
type Stream struct {
	mu     sync.Mutex
	ch     chan Sample
	closed bool
}

// NewStream creates a stream with the given backlog.
func NewStream(buffer int) *Stream {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Stream{ch: make(chan Sample, buffer)}
}

func (s *Stream) Samples() <-chan Sample {
	return s.ch
}

// Push enqueues a sample.
func (s *Stream) Push(sample Sample) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSourceClosed
	}
	for {
		select {
		case s.ch <- sample:
			return nil
		default:
		}
		select {
		case <-s.ch:
		default:
		}
	}
}

// Close ends the stream. It is safe to call more than once.
func (s *Stream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// Drain hands every pending sample to fn without blocking. It returns
// ErrSourceClosed once the source is exhausted.
func Drain(src Source, fn func(Sample)) error {
	ch := src.Samples()
	for {
		select {
		case sample, ok := <-ch:
			if !ok {
				return ErrSourceClosed
			}
			fn(sample)
		default:
			return nil
		}
	}
}
