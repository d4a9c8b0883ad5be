// Package screen renders engine frames into an ANSI terminal: the play field on a
// half-block canvas and the HUD as lipgloss-styled text on top.
package screen

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/tomz197/nosecatch/internal/draw"
	"github.com/tomz197/nosecatch/internal/game"
	"github.com/tomz197/nosecatch/internal/leaderboard"
	"github.com/tomz197/nosecatch/internal/object"
	"github.com/tomz197/nosecatch/internal/skin"
)

// Render area limits; larger terminals get a centred box.
const (
	MaxWidth  = 160
	MaxHeight = 60
)

// SkinEntry is one row of the skin picker.
type SkinEntry struct {
	Key      int // Number key that equips it
	Skin     skin.Skin
	Owned    bool
	Equipped bool
}

// Menu is shown while no session is running.
type Menu struct {
	Coins int
	Skins []SkinEntry
}

// Ending is shown once the game is over.
type Ending struct {
	Name   string
	Status leaderboard.Status
	Err    error
	Top    []leaderboard.Entry
	Coins  int
}

// Screen implements game.RenderSink for a terminal. It is driven from the
// runner goroutine only.
type Screen struct {
	canvas *draw.Canvas
	cw     *draw.ChunkWriter
	size   draw.TermSizeFunc
	styles styles

	termW, termH int

	menu   Menu
	ending Ending
	notice []string
	err    error
}

// New creates a screen writing to w. size reports the terminal dimensions
// each frame; logical is the engine's canvas size.
func New(w io.Writer, size draw.TermSizeFunc, logicalW, logicalH float64) *Screen {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(termenv.ANSI256)
	return &Screen{
		canvas: draw.NewScaledCanvas(1, 1, logicalW, logicalH),
		cw:     draw.NewChunkWriter(w, 0, 0),
		size:   size,
		styles: newStyles(r),
	}
}

// SetMenu updates the idle screen contents.
func (s *Screen) SetMenu(m Menu) { s.menu = m }

// SetEnding updates the game-over panel.
func (s *Screen) SetEnding(e Ending) { s.ending = e }

// SetNotice shows a message panel above everything else until cleared with
// no lines.
func (s *Screen) SetNotice(lines ...string) { s.notice = lines }

// Err returns the first write error. Rendering stops after it.
func (s *Screen) Err() error { return s.err }

// Render draws one frame.
func (s *Screen) Render(f game.Frame) {
	if s.err != nil {
		return
	}
	s.resize()
	// The canvas only emits lit cells, so every frame starts from a blank
	// terminal. The whole frame goes out in one flush.
	s.cw.WriteString(draw.SeqClear)

	s.drawField(f)
	if err := s.canvas.Render(s.cw); err != nil {
		s.err = err
		return
	}
	s.drawTexts(f.Texts)
	s.drawHUD(f)

	if err := s.cw.Flush(); err != nil {
		s.err = err
	}
}

func (s *Screen) resize() {
	tw, th, err := s.size()
	if err != nil || tw <= 0 || th <= 0 {
		return
	}
	if tw == s.termW && th == s.termH {
		return
	}
	s.termW, s.termH = tw, th
	w, h, offCol, offRow := draw.ClampSize(tw, th, MaxWidth, MaxHeight)
	s.canvas.Resize(w, h)
	s.canvas.SetOffset(offCol, offRow)
	s.cw.SetOffset(offCol, offRow)
}

func (s *Screen) drawField(f game.Frame) {
	c := s.canvas
	c.Clear()

	// Play band edges when the canvas is wider than the playable area.
	a := f.Area
	if a.X > 0 {
		c.DrawLine(draw.Point{X: a.X, Y: 0}, draw.Point{X: a.X, Y: f.Height}, draw.Grey)
		c.DrawLine(draw.Point{X: a.X + a.Width, Y: 0}, draw.Point{X: a.X + a.Width, Y: f.Height}, draw.Grey)
	}
	if f.HUD.Flash || f.HUD.Penalty {
		col := draw.Red
		if !f.HUD.Flash {
			col = draw.Orange
		}
		drawBorder(c, f.Width, f.Height, col)
	}

	ctx := object.DrawContext{Canvas: c}
	for _, o := range f.Objects {
		o.Draw(ctx)
	}
	for _, p := range f.Particles {
		p.Draw(ctx)
	}
	if f.HUD.Phase != game.PhaseIdle && f.HUD.Phase != game.PhaseTutorial {
		drawCursor(c, f)
	}
}

func drawBorder(c *draw.Canvas, w, h float64, col draw.Color) {
	corners := []draw.Point{{X: 0, Y: 0}, {X: w - 1, Y: 0}, {X: w - 1, Y: h - 1}, {X: 0, Y: h - 1}}
	for i := range corners {
		c.DrawLine(corners[i], corners[(i+1)%len(corners)], col)
	}
}

// drawCursor draws the control point in the equipped skin's shape. A lost
// face is drawn hollow and grey at the held position.
func drawCursor(c *draw.Canvas, f game.Frame) {
	r := f.CatchRadius
	if r <= 0 {
		r = game.DefaultHitboxBase
	}
	col := f.Skin.Color
	if col == draw.None {
		col = draw.Cyan
	}
	x, y := f.ControlX, f.ControlY
	if !f.Detected {
		c.DrawCircle(x, y, r, draw.Grey)
		return
	}
	switch f.Skin.Shape {
	case skin.ShapeSquare:
		tl := draw.Point{X: x - r, Y: y - r}
		tr := draw.Point{X: x + r, Y: y - r}
		br := draw.Point{X: x + r, Y: y + r}
		bl := draw.Point{X: x - r, Y: y + r}
		c.DrawLine(tl, tr, col)
		c.DrawLine(tr, br, col)
		c.DrawLine(br, bl, col)
		c.DrawLine(bl, tl, col)
		c.FillCircle(x, y, r*0.4, col)
	default:
		c.DrawCircle(x, y, r, col)
		c.FillCircle(x, y, r*0.4, col)
	}
}

func (s *Screen) drawTexts(texts []*object.FloatingText) {
	w, h := s.canvas.TerminalWidth(), s.canvas.TerminalHeight()
	for _, t := range texts {
		col, row := s.canvas.LogicalToTerminal(t.X, t.Y)
		n := lipgloss.Width(t.Value)
		col -= n / 2
		if row < 2 || row > h || col < 1 || col+n > w {
			continue
		}
		st := s.styles.text
		if t.Highlight {
			st = s.styles.highlight
		}
		s.cw.WriteAt(col, row, st.Render(t.Value))
	}
}
