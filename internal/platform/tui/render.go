package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/gym2048/internal/engine"
)

// Observer is the read-only view of a game the renderer needs. Both
// *engine.Engine and every env.Environment satisfy it.
type Observer interface {
	Board() engine.Board
	Score() int
	Outcome() engine.Outcome
}

const tileWidth = 7 // cell width in columns, borders excluded

// tileColors maps tile values to ANSI 256-color background codes.
var tileColors = map[int]string{
	2:    "255",
	4:    "230",
	8:    "216",
	16:   "209",
	32:   "203",
	64:   "196",
	128:  "229",
	256:  "228",
	512:  "227",
	1024: "220",
	2048: "214",
}

var (
	emptyTileStyle = lipgloss.NewStyle().
			Width(tileWidth).
			Align(lipgloss.Center).
			Foreground(lipgloss.Color("240"))

	boardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229"))

	hudStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	winBannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("214")).
			Padding(0, 2)

	loseBannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("124")).
			Padding(0, 2)
)

// tileStyle returns the style for a non-empty tile.
func tileStyle(v int) lipgloss.Style {
	bg, ok := tileColors[v]
	if !ok {
		bg = "214"
	}
	fg := "0"
	if v >= 8 {
		fg = "15"
	}
	if v >= 128 {
		fg = "0"
	}
	return lipgloss.NewStyle().
		Width(tileWidth).
		Align(lipgloss.Center).
		Bold(true).
		Foreground(lipgloss.Color(fg)).
		Background(lipgloss.Color(bg))
}

// RenderBoard draws the grid. Empty cells show a dot.
func RenderBoard(b engine.Board) string {
	rows := make([]string, 0, engine.Size*2-1)
	for r := range engine.Size {
		cells := make([]string, engine.Size)
		for c := range engine.Size {
			v := b[r][c]
			if v == 0 {
				cells[c] = emptyTileStyle.Render("·")
				continue
			}
			cells[c] = tileStyle(v).Render(strconv.Itoa(v))
		}
		if r > 0 {
			rows = append(rows, "")
		}
		rows = append(rows, strings.Join(cells, " "))
	}
	return boardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// Banner returns the end-of-game banner, or "" while the game is running.
func Banner(o engine.Outcome) string {
	switch o {
	case engine.Won:
		return winBannerStyle.Render("You win!")
	case engine.Lost:
		return loseBannerStyle.Render("Game over!")
	}
	return ""
}

// RenderGame composes title, score, board and banner. It only reads from o.
func RenderGame(o Observer) string {
	b := o.Board()
	hud := hudStyle.Render(fmt.Sprintf("Score: %-8d Max: %d", o.Score(), b.MaxTile()))

	parts := []string{titleStyle.Render("2048"), hud, RenderBoard(b)}
	if banner := Banner(o.Outcome()); banner != "" {
		parts = append(parts, "", banner)
	}
	return lipgloss.JoinVertical(lipgloss.Center, parts...)
}

// centerText pads text so it appears centered within width.
func centerText(text string, width int) string {
	w := lipgloss.Width(text)
	if w >= width {
		return text
	}
	return strings.Repeat(" ", (width-w)/2) + text
}
