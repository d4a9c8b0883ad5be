package object

import "time"

// FloatingTextLifetime is how long a floating text stays on screen.
const FloatingTextLifetime = 1500 * time.Millisecond

// floatSpeed is the upward drift in logical pixels per second.
const floatSpeed = 20.0

// FloatingText is a short message anchored at a logical position, such as a
// combo milestone or a jackpot. It has no canvas representation: renderers place
// it with Canvas.LogicalToTerminal or their own coordinate system.
type FloatingText struct {
	X, Y      float64
	Value     string
	Highlight bool
	Remaining time.Duration
}

// NewFloatingText creates a text with the default lifetime.
func NewFloatingText(x, y float64, value string, highlight bool) *FloatingText {
	return &FloatingText{X: x, Y: y, Value: value, Highlight: highlight, Remaining: FloatingTextLifetime}
}

// Update drifts the text upwards and counts down its lifetime.
func (t *FloatingText) Update(ctx UpdateContext) bool {
	t.Remaining -= ctx.Delta
	t.Y -= floatSpeed * ctx.Delta.Seconds()
	return t.Remaining <= 0 || t.Value == ""
}

func (t *FloatingText) Draw(DrawContext) {}
