package web

import (
	"errors"
	"sync"
)

// maxQueuedMessages bounds the non-frame backlog of one client.
const maxQueuedMessages = 1024

var errOutboxFull = errors.New("outgoing queue full")

// outbox holds messages waiting for the writer goroutine. Pushing never blocks.
// Events, status and errors are delivered in order; frames replace each other,
// so a slow client skips frames but never loses an event.
type outbox struct {
	mu      sync.Mutex
	queue   [][]byte
	frame   []byte
	dropped int
	wake    chan struct{}
}

func newOutbox() *outbox {
	return &outbox{wake: make(chan struct{}, 1)}
}

// push queues b. It fails only when the ordered backlog is full.
func (o *outbox) push(b []byte, frame bool) error {
	o.mu.Lock()
	switch {
	case frame:
		if o.frame != nil {
			o.dropped++
		}
		o.frame = b
	case len(o.queue) >= maxQueuedMessages:
		o.mu.Unlock()
		return errOutboxFull
	default:
		o.queue = append(o.queue, b)
	}
	o.mu.Unlock()

	select {
	case o.wake <- struct{}{}:
	default:
	}
	return nil
}

// take empties the outbox: queued messages in order, then the newest frame and
// the number of frames it replaced.
func (o *outbox) take() (queue [][]byte, frame []byte, dropped int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	queue, frame, dropped = o.queue, o.frame, o.dropped
	o.queue, o.frame, o.dropped = nil, nil, 0
	return queue, frame, dropped
}
