package screen

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tomz197/nosecatch/internal/game"
	"github.com/tomz197/nosecatch/internal/leaderboard"
	"github.com/tomz197/nosecatch/internal/skin"
)

type styles struct {
	hud       lipgloss.Style
	dim       lipgloss.Style
	text      lipgloss.Style
	highlight lipgloss.Style
	fever     lipgloss.Style
	warning   lipgloss.Style
	penalty   lipgloss.Style
	ideal     lipgloss.Style
	panel     lipgloss.Style
	title     lipgloss.Style
	countdown lipgloss.Style
	bar       lipgloss.Style
	barEmpty  lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	banner := r.NewStyle().Bold(true).Padding(0, 1)
	return styles{
		hud:       r.NewStyle().Foreground(lipgloss.Color("15")).Bold(true),
		dim:       r.NewStyle().Foreground(lipgloss.Color("244")),
		text:      r.NewStyle().Foreground(lipgloss.Color("15")),
		highlight: r.NewStyle().Foreground(lipgloss.Color("220")).Bold(true),
		fever:     banner.Foreground(lipgloss.Color("16")).Background(lipgloss.Color("201")),
		warning:   banner.Foreground(lipgloss.Color("16")).Background(lipgloss.Color("220")),
		penalty:   banner.Foreground(lipgloss.Color("15")).Background(lipgloss.Color("196")).Blink(true),
		ideal:     banner.Foreground(lipgloss.Color("16")).Background(lipgloss.Color("46")),
		panel: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("51")).
			Padding(0, 2).
			Align(lipgloss.Center),
		title:     r.NewStyle().Foreground(lipgloss.Color("51")).Bold(true),
		countdown: r.NewStyle().Foreground(lipgloss.Color("220")).Bold(true),
		bar:       r.NewStyle().Foreground(lipgloss.Color("46")),
		barEmpty:  r.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

const (
	holdBarWidth = 20
	faceLostText = "FACE LOST: look at the camera"
)

func (s *Screen) drawHUD(f game.Frame) {
	w, h := s.canvas.TerminalWidth(), s.canvas.TerminalHeight()
	hud := f.HUD

	if len(s.notice) > 0 {
		lines := append([]string{s.styles.title.Render(s.notice[0]), ""}, s.notice[1:]...)
		s.centre(w, h, s.styles.panel.Render(strings.Join(lines, "\n")))
		return
	}

	switch hud.Phase {
	case game.PhaseIdle:
		s.centre(w, h, s.menuPanel())
		return
	case game.PhaseTutorial:
		s.centre(w, h, s.tutorialPanel())
		return
	case game.PhaseAwaitingDistance, game.PhaseHolding:
		s.centre(w, h, s.distancePanel(hud))
		return
	case game.PhaseCountdown:
		label := "GO!"
		if hud.Countdown > 0 {
			label = fmt.Sprint(hud.Countdown)
		}
		s.centre(w, h, s.styles.panel.Render(s.styles.countdown.Render(label)))
		return
	}

	score := s.styles.hud.Render(fmt.Sprintf("Score: %-6d", hud.Score))
	s.cw.WriteAt(2, 1, score)
	if hud.Combo > 1 {
		s.cw.WriteAt(2, 2, s.styles.highlight.Render(fmt.Sprintf("Combo x%d", hud.Combo)))
	}
	lives := hearts(hud.Lives, game.InitialLives)
	s.cw.WriteAt(w-lipgloss.Width(lives)-1, 1, s.styles.hud.Render(lives))
	speed := fmt.Sprintf("Speed %.1fx", hud.SpeedMultiplier)
	s.cw.WriteAt(w-len(speed)-1, 2, s.styles.dim.Render(speed))

	row := 3
	banner := func(st lipgloss.Style, text string) {
		out := st.Render(text)
		s.cw.WriteAt(max(1, (w-lipgloss.Width(out))/2+1), row, out)
		row++
	}
	if hud.FaceLost {
		banner(s.styles.warning, faceLostText)
	}
	if hud.Penalty {
		banner(s.styles.penalty, "PENALTY: spawns x3, bombs everywhere")
	}
	if hud.Warning && hud.Guidance != "" {
		banner(s.styles.warning, hud.Guidance)
	}
	if hud.Fever {
		banner(s.styles.fever, "FEVER MODE! 2x")
	}

	if hud.Phase == game.PhaseEnded {
		s.centre(w, h, s.endingPanel(hud))
	}
}

// centre writes a rendered block in the middle of the canvas.
func (s *Screen) centre(w, h int, block string) {
	bw, bh := lipgloss.Width(block), lipgloss.Height(block)
	col := max(1, (w-bw)/2+1)
	row := max(1, (h-bh)/2+1)
	s.cw.WriteLines(col, row, block)
}

func hearts(lives, total int) string {
	lives = min(max(lives, 0), total)
	return strings.Repeat("♥ ", lives) + strings.TrimSpace(strings.Repeat("♡ ", total-lives))
}

func (s *Screen) menuPanel() string {
	lines := []string{
		s.styles.title.Render("N O S E C A T C H"),
		"",
		"Catch gems with your nose. Dodge the bombs.",
		"",
		s.styles.highlight.Render(">>  Press ENTER to start  <<"),
		"",
		fmt.Sprintf("Coins: %d", s.menu.Coins),
	}
	for _, e := range s.menu.Skins {
		lines = append(lines, skinLine(e))
	}
	lines = append(lines, "", s.styles.dim.Render("Number keys buy or equip a skin. Q quits"))
	return s.styles.panel.Render(strings.Join(lines, "\n"))
}

func skinLine(e SkinEntry) string {
	state := fmt.Sprintf("%d coins", e.Skin.Price)
	switch {
	case e.Equipped:
		state = "EQUIPPED"
	case e.Owned:
		state = "owned"
	}
	bonus := fmt.Sprintf("%.1fx reach", e.Skin.HitboxMultiplier)
	if e.Skin.Ability != skin.AbilityNone {
		bonus = e.Skin.Description
	}
	return fmt.Sprintf("[%d] %-13s %-17s %s", e.Key, e.Skin.Name, bonus, state)
}

func (s *Screen) tutorialPanel() string {
	lines := []string{
		s.styles.title.Render("HOW TO PLAY"),
		"",
		"Move your nose to steer the cursor.",
		"Arrows / WASD move, + and - change distance.",
		"Gems: +10 points (+20 in fever).",
		"Gold: +50 jackpot.",
		"Bombs cost a life. So does every gem you let fall.",
		"10 catches in a row start FEVER mode.",
		"Stay at the ideal distance or the bombs take over.",
		"",
		s.styles.highlight.Render("Press ENTER to continue"),
	}
	return s.styles.panel.Render(strings.Join(lines, "\n"))
}

func (s *Screen) distancePanel(hud game.HUD) string {
	guidance := s.styles.warning.Render(hud.Guidance)
	switch {
	case hud.FaceLost:
		guidance = s.styles.warning.Render(faceLostText)
	case hud.Phase == game.PhaseHolding:
		guidance = s.styles.ideal.Render(hud.Guidance)
	}
	filled := int(hud.HoldProgress * holdBarWidth)
	filled = min(max(filled, 0), holdBarWidth)
	bar := s.styles.bar.Render(strings.Repeat("█", filled)) +
		s.styles.barEmpty.Render(strings.Repeat("░", holdBarWidth-filled))

	lines := []string{
		s.styles.title.Render("GET IN POSITION"),
		"",
		guidance,
		"",
		bar,
		s.styles.dim.Render("Hold still to start"),
	}
	return s.styles.panel.Render(strings.Join(lines, "\n"))
}

func (s *Screen) endingPanel(hud game.HUD) string {
	e := s.ending
	lines := []string{
		s.styles.title.Render("GAME OVER"),
		"",
		fmt.Sprintf("Score: %d", hud.Score),
		fmt.Sprintf("Coins: %d", e.Coins),
		"",
	}

	switch e.Status {
	case leaderboard.StatusPending:
		lines = append(lines, "Saving...")
	case leaderboard.StatusSuccess:
		lines = append(lines, s.styles.ideal.Render("Saved!"))
	default:
		lines = append(lines, fmt.Sprintf("Name: %s_", e.Name))
		if e.Status == leaderboard.StatusError {
			lines = append(lines, s.styles.warning.Render("Save failed, ENTER to retry"))
		} else {
			lines = append(lines, s.styles.dim.Render("ENTER saves your score"))
		}
	}

	if len(e.Top) > 0 {
		lines = append(lines, "", s.styles.highlight.Render("LEADERBOARD"))
		for i, entry := range e.Top {
			lines = append(lines, fmt.Sprintf("%2d. %-24s %6d", i+1, entry.Username, entry.Score))
		}
	}

	hint := "ENTER restarts, ESC quits"
	if e.Status != leaderboard.StatusSuccess {
		hint = "TAB restarts, ESC quits"
	}
	lines = append(lines, "", s.styles.dim.Render(hint))
	return s.styles.panel.Render(strings.Join(lines, "\n"))
}
