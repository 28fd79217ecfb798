package main

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Color palette
var (
	lightPrimary = lipgloss.Color("#101F38")
	lightMuted   = lipgloss.Color("#6b7280")
	darkPrimary  = lipgloss.Color("#8BC34A")
	darkMuted    = lipgloss.Color("#9ca3af")

	colorSuccess = lipgloss.Color("#8BC34A")
	colorError   = lipgloss.Color("#e53935")
	colorWarning = lipgloss.Color("#FFC107")
	colorInfo    = lipgloss.Color("#2196F3")
)

// theme holds the current color scheme.
type theme struct {
	Primary lipgloss.Color
	Muted   lipgloss.Color
	IsDark  bool
}

// detectTheme picks dark mode from COLORFGBG or SHAPESHIFT_DARK_MODE and
// defaults to light.
func detectTheme() theme {
	if parts := strings.Split(os.Getenv("COLORFGBG"), ";"); len(parts) == 2 {
		if bg, err := strconv.Atoi(parts[1]); err == nil && ((bg >= 0 && bg <= 6) || bg == 8) {
			return theme{Primary: darkPrimary, Muted: darkMuted, IsDark: true}
		}
	}
	if os.Getenv("SHAPESHIFT_DARK_MODE") == "1" {
		return theme{Primary: darkPrimary, Muted: darkMuted, IsDark: true}
	}
	return theme{Primary: lightPrimary, Muted: lightMuted}
}

// styles holds the styled components used by text output.
type styles struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style
	Insert  lipgloss.Style
	Delete  lipgloss.Style
	Block   lipgloss.Style
}

func newStyles(t theme) styles {
	return styles{
		Title: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),
		Label: lipgloss.NewStyle().
			Foreground(t.Primary).
			Width(18),
		Muted: lipgloss.NewStyle().
			Foreground(t.Muted),
		Success: lipgloss.NewStyle().
			Foreground(colorSuccess).
			Bold(true),
		Error: lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true),
		Info: lipgloss.NewStyle().
			Foreground(colorInfo),
		Insert: lipgloss.NewStyle().
			Foreground(colorSuccess).
			Underline(true),
		Delete: lipgloss.NewStyle().
			Foreground(colorError).
			Strikethrough(true),
		Block: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(colorWarning).
			PaddingLeft(1),
	}
}

// renderDiff renders the character diff from before to after.
func (s styles) renderDiff(before, after string) string {
	dmp := diffmatchpatch.New()
	multiLine := strings.Contains(before, "\n") && strings.Contains(after, "\n")
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(before, after, multiLine))

	var b strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			b.WriteString(s.Insert.Render(d.Text))
		case diffmatchpatch.DiffDelete:
			b.WriteString(s.Delete.Render(d.Text))
		case diffmatchpatch.DiffEqual:
			b.WriteString(d.Text)
		}
	}
	return b.String()
}

// diffStats counts inserted and deleted runes between before and after.
func diffStats(before, after string) (inserted, deleted int) {
	dmp := diffmatchpatch.New()
	for _, d := range dmp.DiffMain(before, after, false) {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			inserted += len([]rune(d.Text))
		case diffmatchpatch.DiffDelete:
			deleted += len([]rune(d.Text))
		}
	}
	return inserted, deleted
}
