package loop

import "time"

// Shutdown
const (
	ShutdownDisplay = 10 * time.Second // Notice shown before a session is closed
)

// Inactivity, applied only when Options.IdleTimeout is set.
const (
	InactivityWarnAfter = 90 * time.Second
	InactivityTimeout   = 120 * time.Second
)

// Leaderboard
const (
	TopListSize       = 5
	TopListTimeout    = 3 * time.Second
	maxNameInputRunes = 24
)
