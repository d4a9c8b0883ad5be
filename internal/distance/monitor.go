package distance

import "time"

// Monitor timing defaults.
const (
	DefaultDebounce     = 200 * time.Millisecond
	DefaultPenaltyAfter = 2000 * time.Millisecond
)

// MonitorConfig tunes the in-game warning monitor.
type MonitorConfig struct {
	Thresholds   Thresholds
	Debounce     time.Duration // Minimum time between two accepted warning flips
	PenaltyAfter time.Duration // Continuous warning time that triggers penalty mode
}

// DefaultMonitorConfig returns production settings.
func DefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		Thresholds:   DefaultThresholds(),
		Debounce:     DefaultDebounce,
		PenaltyAfter: DefaultPenaltyAfter,
	}
}

// Status is the monitor output for one tracking frame.
type Status struct {
	Zone           Zone
	Warning        bool
	Penalty        bool
	WarningChanged bool
	PenaltyChanged bool
	WarningTime    time.Duration
}

// Monitor watches the pose during an active session. It applies hysteresis to the
// zone boundary, debounces warning flips and escalates a sustained warning into
// penalty mode.
type Monitor struct {
	cfg         MonitorConfig
	warning     bool
	penalty     bool
	warningTime time.Duration
	lastFlip    time.Duration
	hasFlipped  bool
	lastCheck   time.Duration
}

// NewMonitor creates a monitor. Call Start when the session goes live.
func NewMonitor(cfg MonitorConfig) *Monitor {
	if cfg.Debounce < 0 {
		cfg.Debounce = 0
	}
	if cfg.PenaltyAfter <= 0 {
		cfg.PenaltyAfter = DefaultPenaltyAfter
	}
	return &Monitor{cfg: cfg}
}

// Start clears all state and anchors elapsed-time accounting at now.
func (m *Monitor) Start(now time.Duration) {
	m.warning = false
	m.penalty = false
	m.warningTime = 0
	m.hasFlipped = false
	m.lastFlip = 0
	m.lastCheck = now
}

// Update classifies a pose observed at now and advances the warning state.
func (m *Monitor) Update(scale, y float64, now time.Duration) Status {
	var zone Zone
	if m.warning {
		zone = m.cfg.Thresholds.ClassifyWarning(scale, y)
	} else {
		zone = m.cfg.Thresholds.Classify(scale, y)
	}

	st := Status{Zone: zone}
	wasPenalty := m.penalty

	want := zone != ZoneIdeal
	if want != m.warning && (!m.hasFlipped || now-m.lastFlip >= m.cfg.Debounce) {
		m.warning = want
		m.lastFlip = now
		m.hasFlipped = true
		st.WarningChanged = true
	}

	if m.warning {
		if elapsed := now - m.lastCheck; elapsed > 0 {
			m.warningTime += elapsed
		}
		if m.warningTime >= m.cfg.PenaltyAfter && !m.penalty {
			m.penalty = true
		}
	} else {
		m.warningTime = 0
		m.penalty = false
	}
	m.lastCheck = now

	st.Warning = m.warning
	st.Penalty = m.penalty
	st.PenaltyChanged = m.penalty != wasPenalty
	st.WarningTime = m.warningTime
	return st
}

// Warning reports whether the warning condition is showing.
func (m *Monitor) Warning() bool { return m.warning }

// Penalty reports whether penalty mode is active.
func (m *Monitor) Penalty() bool { return m.penalty }

// WarningTime returns the accumulated continuous warning time.
func (m *Monitor) WarningTime() time.Duration { return m.warningTime }
