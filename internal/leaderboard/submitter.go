package leaderboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrAlreadySubmitted is returned when the session's score was already saved.
	ErrAlreadySubmitted = errors.New("score already submitted")
	// ErrSubmitInFlight is returned while a previous submission is pending.
	ErrSubmitInFlight = errors.New("score submission in flight")
)

// DefaultSubmitTimeout bounds a single save.
const DefaultSubmitTimeout = 5 * time.Second

// Status is the state of a session's score submission.
type Status int

const (
	StatusIdle Status = iota
	StatusPending
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPending:
		return "pending"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Submitter saves one score per session in the background. A failed save can
// be retried; a successful one cannot be repeated until Reset.
type Submitter struct {
	store   Store
	log     *zap.Logger
	timeout time.Duration
	now     func() time.Time

	mu       sync.Mutex
	status   Status
	err      error
	gen      int
	onChange func(Status, error)
	wg       sync.WaitGroup
}

// NewSubmitter creates a submitter saving to store.
func NewSubmitter(store Store, log *zap.Logger) *Submitter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Submitter{
		store:   store,
		log:     log,
		timeout: DefaultSubmitTimeout,
		now:     time.Now,
	}
}

// OnChange registers fn to be called after every status transition. fn runs
// on the submitting goroutine and must not call back into the submitter.
func (s *Submitter) OnChange(fn func(Status, error)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Status returns the current status and the error of the last failed save.
func (s *Submitter) Status() (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status, s.err
}

// Submit starts saving score under name. It returns immediately.
func (s *Submitter) Submit(name string, score int) error {
	s.mu.Lock()
	switch s.status {
	case StatusPending:
		s.mu.Unlock()
		return ErrSubmitInFlight
	case StatusSuccess:
		s.mu.Unlock()
		return ErrAlreadySubmitted
	}
	entry := NewEntry(name, score, s.now())
	gen := s.gen
	s.setLocked(StatusPending, nil)
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		err := s.store.Save(ctx, entry)

		s.mu.Lock()
		defer s.mu.Unlock()
		if gen != s.gen {
			return
		}
		if err != nil {
			s.log.Warn("failed to submit score",
				zap.String("username", entry.Username),
				zap.Int("score", entry.Score),
				zap.Error(err))
			s.setLocked(StatusError, err)
			return
		}
		s.log.Info("score submitted",
			zap.String("id", entry.ID.String()),
			zap.String("username", entry.Username),
			zap.Int("score", entry.Score))
		s.setLocked(StatusSuccess, nil)
	}()
	return nil
}

// Reset prepares the submitter for a new session. A save still in flight
// completes but no longer changes the status.
func (s *Submitter) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.setLocked(StatusIdle, nil)
}

// Wait blocks until every started save has returned.
func (s *Submitter) Wait() {
	s.wg.Wait()
}

func (s *Submitter) setLocked(st Status, err error) {
	if s.status == st && s.err == err {
		return
	}
	s.status = st
	s.err = err
	if s.onChange != nil {
		s.onChange(st, err)
	}
}
