package draw

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanvas_SetFloatScales(t *testing.T) {
	c := NewScaledCanvas(10, 5, 100, 100)

	c.SetFloat(50, 50, Red)
	assert.Equal(t, Red, c.At(5, 5))

	c.SetFloat(-10, 500, Red) // clipped
	c.Clear()
	assert.Equal(t, None, c.At(5, 5))
}

func TestCanvas_DrawLineEndpoints(t *testing.T) {
	c := NewScaledCanvas(20, 10, 20, 20)
	c.DrawLine(Point{0, 0}, Point{19, 19}, Green)

	assert.Equal(t, Green, c.At(0, 0))
	assert.Equal(t, Green, c.At(19, 19))
	assert.Equal(t, Green, c.At(10, 10))
	assert.Equal(t, None, c.At(19, 0))
}

func TestCanvas_FillCircle(t *testing.T) {
	c := NewScaledCanvas(40, 20, 40, 40)
	c.FillCircle(20, 20, 5, Cyan)

	assert.Equal(t, Cyan, c.At(20, 20))
	assert.Equal(t, Cyan, c.At(23, 20))
	assert.Equal(t, None, c.At(27, 20))
	assert.Equal(t, None, c.At(24, 24), "corner of the bounding box")
}

func TestCanvas_DrawCircleIsHollow(t *testing.T) {
	c := NewScaledCanvas(40, 20, 40, 40)
	c.DrawCircle(20, 20, 10, Yellow)

	assert.Equal(t, None, c.At(20, 20))
	assert.Equal(t, Yellow, c.At(29, 20))
}

func TestCanvas_TinyCircleStillVisible(t *testing.T) {
	c := NewScaledCanvas(10, 5, 1000, 1000)
	c.FillCircle(500, 500, 1, Magenta)
	assert.Equal(t, Magenta, c.At(5, 5))
}

func TestCanvas_Render(t *testing.T) {
	c := NewScaledCanvas(4, 2, 4, 4)
	c.SetOffset(2, 1)
	c.SetFloat(0, 0, Red)   // top half of row 1
	c.SetFloat(1, 1, Green) // bottom half of row 1, col 2
	c.SetFloat(2, 2, White)
	c.SetFloat(2, 3, White)

	var buf bytes.Buffer
	require.NoError(t, c.Render(&buf))
	out := buf.String()

	assert.Contains(t, out, "\033[2;3H\033[38;5;196m▀")
	assert.Contains(t, out, "\033[2;4H\033[38;5;46m▄")
	assert.Contains(t, out, "\033[3;5H\033[38;5;15m█")
	assert.Equal(t, 3, strings.Count(out, "\033[0m"))
}

func TestCanvas_LogicalToTerminal(t *testing.T) {
	c := NewScaledCanvas(80, 24, 320, 240)
	col, row := c.LogicalToTerminal(160, 120)
	assert.Equal(t, 41, col)
	assert.Equal(t, 13, row)
}

func TestChunkWriter_Flush(t *testing.T) {
	var buf bytes.Buffer
	cw := NewChunkWriter(&buf, 3, 2)
	cw.WriteAt(1, 1, "hi")
	cw.WriteLines(5, 4, "a\nb")
	require.NoError(t, cw.Flush())

	assert.Equal(t, "\033[3;4Hhi\033[6;8Ha\033[7;8Hb", buf.String())

	buf.Reset()
	cw.WriteString(strings.Repeat("x", 3*maxChunkSize))
	require.NoError(t, cw.Flush())
	assert.Equal(t, 3*maxChunkSize, buf.Len())
}

func TestClampSize(t *testing.T) {
	w, h, oc, or := ClampSize(200, 60, 120, 40)
	assert.Equal(t, []int{120, 40, 40, 10}, []int{w, h, oc, or})

	w, h, oc, or = ClampSize(80, 24, 120, 40)
	assert.Equal(t, []int{80, 24, 0, 0}, []int{w, h, oc, or})
}
