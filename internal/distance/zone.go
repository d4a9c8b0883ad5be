// Package distance classifies the player's pose relative to the camera and drives the
// hold-to-start gate and the in-game warning/penalty escalation.
package distance

// Zone is the classification of a face pose.
type Zone int

const (
	ZoneIdeal Zone = iota
	ZoneTooFar
	ZoneTooClose
	ZoneTooHigh
	ZoneTooLow
)

func (z Zone) String() string {
	switch z {
	case ZoneIdeal:
		return "IDEAL"
	case ZoneTooFar:
		return "TOO_FAR"
	case ZoneTooClose:
		return "TOO_CLOSE"
	case ZoneTooHigh:
		return "TOO_HIGH"
	case ZoneTooLow:
		return "TOO_LOW"
	default:
		return "UNKNOWN"
	}
}

// MarshalText encodes the zone by name.
func (z Zone) MarshalText() ([]byte, error) {
	return []byte(z.String()), nil
}

// Guidance returns the player-facing hint for the zone.
func (z Zone) Guidance() string {
	switch z {
	case ZoneIdeal:
		return "Perfect Distance"
	case ZoneTooFar:
		return "Move Closer"
	case ZoneTooClose:
		return "Move Back"
	case ZoneTooHigh:
		return "Move Down"
	case ZoneTooLow:
		return "Move Up"
	default:
		return ""
	}
}

// Thresholds are the fixed zone boundaries. Scale is the normalized face width,
// Y the normalized vertical position of the control point (0 = top).
type Thresholds struct {
	TooFar           float64 `mapstructure:"too_far"`
	TooClose         float64 `mapstructure:"too_close"`
	TooHigh          float64 `mapstructure:"too_high"`
	TooLow           float64 `mapstructure:"too_low"`
	HysteresisBuffer float64 `mapstructure:"hysteresis_buffer"`
}

// DefaultThresholds returns the tuned production boundaries.
func DefaultThresholds() Thresholds {
	return Thresholds{
		TooFar:           0.15,
		TooClose:         0.45,
		TooHigh:          0.3,
		TooLow:           0.7,
		HysteresisBuffer: 0.1,
	}
}

// Classify returns the zone for a pose. Vertical checks win over distance checks.
func (t Thresholds) Classify(scale, y float64) Zone {
	return t.classify(scale, y, 0)
}

// ClassifyWarning classifies with the ideal band narrowed by the hysteresis buffer,
// for use while a warning is already showing: clearing it takes a clearly ideal pose.
func (t Thresholds) ClassifyWarning(scale, y float64) Zone {
	return t.classify(scale, y, t.HysteresisBuffer)
}

func (t Thresholds) classify(scale, y, buffer float64) Zone {
	if y < t.TooHigh {
		return ZoneTooHigh
	}
	if y > t.TooLow {
		return ZoneTooLow
	}
	if scale < t.TooFar+buffer {
		return ZoneTooFar
	}
	if scale > t.TooClose-buffer {
		return ZoneTooClose
	}
	return ZoneIdeal
}
