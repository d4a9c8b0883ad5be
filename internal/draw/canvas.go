// Package draw renders the play field into an ANSI terminal using half-block cells.
package draw

import (
	"io"
	"math"
	"strconv"
)

// Point is a 2D coordinate in logical space.
type Point struct {
	X, Y float64
}

// Color is an xterm-256 palette index. None leaves the sub-pixel empty.
type Color uint8

const None Color = 0

// Palette used by the game renderers.
const (
	White   Color = 15
	Red     Color = 196
	Orange  Color = 208
	Yellow  Color = 220
	Gold    Color = 178
	Cyan    Color = 51
	Magenta Color = 201
	Green   Color = 46
	Grey    Color = 244
)

// Block characters.
const (
	BlockFull      = '█'
	BlockUpperHalf = '▀'
	BlockLowerHalf = '▄'
)

// maxChunkSize keeps single writes below a typical MTU for smooth SSH output.
const maxChunkSize = 1400

// Canvas is a colour buffer with 2x vertical resolution. Objects draw in logical
// coordinates which are scaled to terminal sub-pixels.
type Canvas struct {
	termWidth      int
	termHeight     int
	subPixelHeight int
	pixels         []Color // [y*termWidth + x]

	logicalWidth  float64
	logicalHeight float64
	scaleX        float64
	scaleY        float64

	offsetCol int
	offsetRow int

	out    []byte
	numBuf [20]byte
}

// NewScaledCanvas creates a canvas of termWidth x termHeight cells mapping a
// logicalWidth x logicalHeight play area onto it.
func NewScaledCanvas(termWidth, termHeight int, logicalWidth, logicalHeight float64) *Canvas {
	c := &Canvas{logicalWidth: logicalWidth, logicalHeight: logicalHeight}
	c.Resize(termWidth, termHeight)
	return c
}

// Resize updates the terminal dimensions while keeping the logical size.
func (c *Canvas) Resize(termWidth, termHeight int) {
	if termWidth < 1 {
		termWidth = 1
	}
	if termHeight < 1 {
		termHeight = 1
	}
	if termWidth != c.termWidth || termHeight != c.termHeight || c.pixels == nil {
		c.termWidth = termWidth
		c.termHeight = termHeight
		c.subPixelHeight = termHeight * 2
		c.pixels = make([]Color, c.subPixelHeight*termWidth)
	}
	c.scaleX = float64(c.termWidth) / c.logicalWidth
	c.scaleY = float64(c.subPixelHeight) / c.logicalHeight
}

// SetOffset sets the 0-based column and row the canvas starts at.
func (c *Canvas) SetOffset(col, row int) {
	c.offsetCol = col
	c.offsetRow = row
}

func (c *Canvas) Clear() {
	clear(c.pixels)
}

func (c *Canvas) setPixel(x, y int, col Color) {
	if x >= 0 && x < c.termWidth && y >= 0 && y < c.subPixelHeight {
		c.pixels[y*c.termWidth+x] = col
	}
}

// At returns the colour of the sub-pixel at terminal coordinates.
func (c *Canvas) At(x, y int) Color {
	if x < 0 || x >= c.termWidth || y < 0 || y >= c.subPixelHeight {
		return None
	}
	return c.pixels[y*c.termWidth+x]
}

func (c *Canvas) toPixel(x, y float64) (int, int) {
	return int(math.Round(x * c.scaleX)), int(math.Round(y * c.scaleY))
}

// SetFloat sets the sub-pixel under a logical coordinate.
func (c *Canvas) SetFloat(x, y float64, col Color) {
	px, py := c.toPixel(x, y)
	c.setPixel(px, py, col)
}

// DrawLine draws a line between two logical points (Bresenham).
func (c *Canvas) DrawLine(p1, p2 Point, col Color) {
	x1, y1 := c.toPixel(p1.X, p1.Y)
	x2, y2 := c.toPixel(p2.X, p2.Y)

	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy

	for {
		c.setPixel(x1, y1, col)
		if x1 == x2 && y1 == y2 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// FillCircle fills every sub-pixel whose centre lies inside the logical circle.
// The circle is always at least one sub-pixel so tiny objects stay visible.
func (c *Canvas) FillCircle(cx, cy, r float64, col Color) {
	c.circle(cx, cy, r, col, false)
}

// DrawCircle draws a one sub-pixel ring.
func (c *Canvas) DrawCircle(cx, cy, r float64, col Color) {
	c.circle(cx, cy, r, col, true)
}

func (c *Canvas) circle(cx, cy, r float64, col Color, ring bool) {
	pcx, pcy := cx*c.scaleX, cy*c.scaleY
	rx, ry := r*c.scaleX, r*c.scaleY
	if rx < 0.5 || ry < 0.5 {
		c.SetFloat(cx, cy, col)
		return
	}

	x0, x1 := int(math.Floor(pcx-rx)), int(math.Ceil(pcx+rx))
	y0, y1 := int(math.Floor(pcy-ry)), int(math.Ceil(pcy+ry))
	inner := 0.0
	if ring {
		// Normalised inner radius for a ring one pixel thick.
		inner = math.Max(0, 1-1.5/math.Min(rx, ry))
	}
	for y := y0; y <= y1; y++ {
		ny := (float64(y) + 0.5 - pcy) / ry
		for x := x0; x <= x1; x++ {
			nx := (float64(x) + 0.5 - pcx) / rx
			d := nx*nx + ny*ny
			if d > 1 || (ring && d < inner*inner) {
				continue
			}
			c.setPixel(x, y, col)
		}
	}
}

// Render writes all non-empty cells to w. A cell whose halves differ in colour is
// drawn as an upper half block with the lower colour as background.
func (c *Canvas) Render(w io.Writer) error {
	out := c.out[:0]
	for row := 0; row < c.termHeight; row++ {
		top := row * 2 * c.termWidth
		bottom := top + c.termWidth
		for col := 0; col < c.termWidth; col++ {
			t, b := c.pixels[top+col], c.pixels[bottom+col]
			if t == None && b == None {
				continue
			}
			out = c.appendMove(out, col+1+c.offsetCol, row+1+c.offsetRow)
			switch {
			case t == b:
				out = c.appendFg(out, t)
				out = append(out, string(BlockFull)...)
			case b == None:
				out = c.appendFg(out, t)
				out = append(out, string(BlockUpperHalf)...)
			case t == None:
				out = c.appendFg(out, b)
				out = append(out, string(BlockLowerHalf)...)
			default:
				out = c.appendFg(out, t)
				out = append(out, "\033[48;5;"...)
				out = strconv.AppendInt(out, int64(b), 10)
				out = append(out, 'm')
				out = append(out, string(BlockUpperHalf)...)
			}
			out = append(out, "\033[0m"...)
		}
	}
	c.out = out
	return writeChunked(w, out)
}

func (c *Canvas) appendMove(out []byte, col, row int) []byte {
	out = append(out, "\033["...)
	out = append(out, strconv.AppendInt(c.numBuf[:0], int64(row), 10)...)
	out = append(out, ';')
	out = append(out, strconv.AppendInt(c.numBuf[:0], int64(col), 10)...)
	return append(out, 'H')
}

func (c *Canvas) appendFg(out []byte, col Color) []byte {
	out = append(out, "\033[38;5;"...)
	out = strconv.AppendInt(out, int64(col), 10)
	return append(out, 'm')
}

func writeChunked(w io.Writer, data []byte) error {
	for len(data) > 0 {
		chunk := data
		if len(chunk) > maxChunkSize {
			chunk = data[:maxChunkSize]
		}
		if _, err := w.Write(chunk); err != nil {
			return err
		}
		data = data[len(chunk):]
	}
	return nil
}

// TerminalWidth returns the canvas width in columns.
func (c *Canvas) TerminalWidth() int { return c.termWidth }

// TerminalHeight returns the canvas height in rows.
func (c *Canvas) TerminalHeight() int { return c.termHeight }

// LogicalToTerminal converts a logical coordinate to a 1-based (col, row) inside
// the canvas, for placing text over drawn objects.
func (c *Canvas) LogicalToTerminal(x, y float64) (col, row int) {
	px, py := c.toPixel(x, y)
	return px + 1, py/2 + 1
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Hex returns the CSS colour of a palette entry for non-terminal renderers.
func (c Color) Hex() string {
	switch c {
	case White:
		return "#ffffff"
	case Red:
		return "#ff0050"
	case Orange:
		return "#ff8800"
	case Yellow:
		return "#ffee00"
	case Gold:
		return "#ffd700"
	case Cyan:
		return "#00f2ea"
	case Magenta:
		return "#ff00ff"
	case Green:
		return "#39ff14"
	case Grey:
		return "#888888"
	default:
		return ""
	}
}
