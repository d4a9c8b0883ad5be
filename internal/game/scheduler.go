package game

import "time"

// Task is a scheduled callback.
type Task struct {
	due       time.Duration
	interval  time.Duration // 0 for one-shot tasks
	fn        func(now time.Duration)
	cancelled bool
}

// Cancel stops the task. Cancelling twice is harmless.
func (t *Task) Cancel() {
	if t != nil {
		t.cancelled = true
	}
}

// Scheduler runs callbacks against the session clock. It is driven by Advance
// from the loop goroutine, so callbacks run on that goroutine too.
type Scheduler struct {
	now   time.Duration
	tasks []*Task
}

// Now returns the clock time of the last Advance.
func (s *Scheduler) Now() time.Duration {
	return s.now
}

// After runs fn once, d after the current clock time.
func (s *Scheduler) After(d time.Duration, fn func(now time.Duration)) *Task {
	t := &Task{due: s.now + d, fn: fn}
	s.tasks = append(s.tasks, t)
	return t
}

// Every runs fn each interval, first at now+interval, until cancelled.
func (s *Scheduler) Every(interval time.Duration, fn func(now time.Duration)) *Task {
	if interval <= 0 {
		interval = time.Millisecond
	}
	t := &Task{due: s.now + interval, interval: interval, fn: fn}
	s.tasks = append(s.tasks, t)
	return t
}

// Advance moves the clock to now and fires due tasks in due order. A repeating
// task that fell behind fires once per missed interval.
func (s *Scheduler) Advance(now time.Duration) {
	if now > s.now {
		s.now = now
	}
	for {
		next := s.nextDue()
		if next == nil {
			break
		}
		if next.interval > 0 {
			next.due += next.interval
		} else {
			next.cancelled = true
		}
		next.fn(next.due - next.interval)
	}
	s.compact()
}

func (s *Scheduler) nextDue() *Task {
	var next *Task
	for _, t := range s.tasks {
		if t.cancelled || t.due > s.now {
			continue
		}
		if next == nil || t.due < next.due {
			next = t
		}
	}
	return next
}

func (s *Scheduler) compact() {
	live := s.tasks[:0]
	for _, t := range s.tasks {
		if !t.cancelled {
			live = append(live, t)
		}
	}
	clear(s.tasks[len(live):])
	s.tasks = live
}

// CancelAll cancels every pending task.
func (s *Scheduler) CancelAll() {
	for _, t := range s.tasks {
		t.cancelled = true
	}
	s.tasks = s.tasks[:0]
}

// Pending returns the number of live tasks.
func (s *Scheduler) Pending() int {
	n := 0
	for _, t := range s.tasks {
		if !t.cancelled {
			n++
		}
	}
	return n
}
