package loop

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handle is one registered session.
type Handle struct {
	ID       uuid.UUID
	User     string
	Started  time.Time
	shutdown chan struct{}
	once     sync.Once
}

// ShuttingDown is closed when the server asks the session to wrap up.
func (h *Handle) ShuttingDown() <-chan struct{} {
	return h.shutdown
}

func (h *Handle) notify() {
	h.once.Do(func() { close(h.shutdown) })
}

// Hub tracks the live sessions of a multi-user server so they can be told
// about a shutdown.
type Hub struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Handle
	log      *zap.Logger
}

// NewHub creates an empty hub.
func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{sessions: make(map[uuid.UUID]*Handle), log: log}
}

// Register adds a session for user.
func (h *Hub) Register(user string) *Handle {
	hd := &Handle{
		ID:       uuid.New(),
		User:     user,
		Started:  time.Now(),
		shutdown: make(chan struct{}),
	}
	h.mu.Lock()
	h.sessions[hd.ID] = hd
	n := len(h.sessions)
	h.mu.Unlock()
	h.log.Info("session registered", zap.String("session", hd.ID.String()), zap.String("user", user), zap.Int("sessions", n))
	return hd
}

// Unregister removes a session.
func (h *Hub) Unregister(hd *Handle) {
	h.mu.Lock()
	delete(h.sessions, hd.ID)
	n := len(h.sessions)
	h.mu.Unlock()
	h.log.Info("session unregistered",
		zap.String("session", hd.ID.String()),
		zap.Duration("duration", time.Since(hd.Started)),
		zap.Int("sessions", n))
}

// Count returns the number of live sessions.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Shutdown notifies every session and waits until they have all unregistered
// or timeout elapses.
func (h *Hub) Shutdown(timeout time.Duration) {
	h.mu.RLock()
	for _, hd := range h.sessions {
		hd.notify()
	}
	h.mu.RUnlock()

	deadline := time.After(timeout)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		if h.Count() == 0 {
			return
		}
		select {
		case <-deadline:
			h.log.Warn("sessions still open at shutdown", zap.Int("sessions", h.Count()))
			return
		case <-ticker.C:
		}
	}
}
