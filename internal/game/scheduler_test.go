package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduler_After(t *testing.T) {
	var s Scheduler
	var fired []time.Duration
	s.After(100*time.Millisecond, func(now time.Duration) { fired = append(fired, now) })

	s.Advance(99 * time.Millisecond)
	assert.Empty(t, fired)
	s.Advance(150 * time.Millisecond)
	assert.Equal(t, []time.Duration{100 * time.Millisecond}, fired)
	s.Advance(time.Second)
	assert.Len(t, fired, 1)
	assert.Zero(t, s.Pending())
}

func TestScheduler_EveryCatchesUpAndCancels(t *testing.T) {
	var s Scheduler
	var fired []time.Duration
	var task *Task
	task = s.Every(time.Second, func(now time.Duration) {
		fired = append(fired, now)
		if len(fired) == 4 {
			task.Cancel()
		}
	})

	s.Advance(2500 * time.Millisecond)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, fired)

	s.Advance(10 * time.Second)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 3 * time.Second, 4 * time.Second}, fired)
	assert.Zero(t, s.Pending())
}

func TestScheduler_CancelAll(t *testing.T) {
	var s Scheduler
	calls := 0
	s.After(time.Second, func(time.Duration) { calls++ })
	s.Every(time.Second, func(time.Duration) { calls++ })
	assert.Equal(t, 2, s.Pending())

	s.CancelAll()
	s.Advance(5 * time.Second)
	assert.Zero(t, calls)
}

func TestScheduler_ClockNeverMovesBack(t *testing.T) {
	var s Scheduler
	s.Advance(time.Second)
	s.Advance(500 * time.Millisecond)
	assert.Equal(t, time.Second, s.Now())

	fired := false
	s.After(0, func(time.Duration) { fired = true })
	s.Advance(time.Second)
	assert.True(t, fired)
}
