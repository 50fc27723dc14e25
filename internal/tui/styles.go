// Package tui is the interactive frontend. It renders bridge events with
// bubbletea and answers with bridge commands; all package state stays on
// the bridge side.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/hbacelar8/tecarius/internal/config"
)

// Fixed accents not worth a theme knob.
var (
	colorSuccess = lipgloss.Color("#a6e3a1")
	colorWarning = lipgloss.Color("#f9e2af")
	colorError   = lipgloss.Color("#f38ba8")
	colorMuted   = lipgloss.Color("#6c7086")
	colorVersion = lipgloss.Color("#89b4fa")
)

// Styles holds every lipgloss style the TUI renders with. Built once from
// the theme section of the user config.
type Styles struct {
	// Frame
	Header    lipgloss.Style
	StatusBar lipgloss.Style
	Footer    lipgloss.Style

	// Listing
	Title            lipgloss.Style
	ListItem         lipgloss.Style
	ListItemSelected lipgloss.Style
	Cursor           lipgloss.Style

	// Package fields
	PackageName    lipgloss.Style
	PackageVersion lipgloss.Style
	PackageRepo    lipgloss.Style
	PackageDesc    lipgloss.Style
	Installed      lipgloss.Style
	Upgrade        lipgloss.Style

	// Staging marks
	MarkInstall lipgloss.Style
	MarkRemove  lipgloss.Style
	MarkKeep    lipgloss.Style

	// Status
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style

	// Detail pane
	DetailBorder lipgloss.Style
	DetailLabel  lipgloss.Style
	TabActive    lipgloss.Style
	TabInactive  lipgloss.Style

	// Search input
	InputPrompt lipgloss.Style

	// Plan and progress dialogs
	Dialog      lipgloss.Style
	DialogTitle lipgloss.Style

	// Help
	HelpKey  lipgloss.Style
	HelpDesc lipgloss.Style

	Spinner lipgloss.Style
}

func themeColor(value, fallback string) lipgloss.Color {
	if value == "" {
		value = fallback
	}
	return lipgloss.Color(value)
}

// NewStyles builds the style set from the theme config, filling missing
// values from the default palette.
func NewStyles(theme config.ThemeConfig) *Styles {
	def := config.Default().Theme

	base := themeColor(theme.Base, def.Base)
	border := themeColor(theme.Border, def.Border)
	key := themeColor(theme.Key, def.Key)
	title := themeColor(theme.Title, def.Title)
	text := themeColor(theme.Text, def.Text)

	s := &Styles{}

	s.Header = lipgloss.NewStyle().
		Foreground(title).
		Background(base).
		Padding(0, 1).
		Bold(true)

	s.StatusBar = lipgloss.NewStyle().
		Foreground(text).
		Background(base).
		Padding(0, 1)

	s.Footer = lipgloss.NewStyle().
		Foreground(colorMuted).
		Padding(0, 1)

	s.Title = lipgloss.NewStyle().
		Foreground(title).
		Bold(true)

	s.ListItem = lipgloss.NewStyle().
		PaddingLeft(2)

	s.ListItemSelected = lipgloss.NewStyle().
		Foreground(title).
		Bold(true)

	s.Cursor = lipgloss.NewStyle().
		Foreground(key).
		Bold(true)

	s.PackageName = lipgloss.NewStyle().
		Foreground(text).
		Bold(true)

	s.PackageVersion = lipgloss.NewStyle().
		Foreground(colorVersion)

	s.PackageRepo = lipgloss.NewStyle().
		Foreground(key)

	s.PackageDesc = lipgloss.NewStyle().
		Foreground(colorMuted)

	s.Installed = lipgloss.NewStyle().
		Foreground(colorSuccess)

	s.Upgrade = lipgloss.NewStyle().
		Foreground(colorWarning).
		Bold(true)

	s.MarkInstall = lipgloss.NewStyle().
		Foreground(colorSuccess).
		Bold(true)

	s.MarkRemove = lipgloss.NewStyle().
		Foreground(colorError).
		Bold(true)

	s.MarkKeep = lipgloss.NewStyle().
		Foreground(key).
		Bold(true)

	s.Success = lipgloss.NewStyle().
		Foreground(colorSuccess).
		Bold(true)

	s.Warning = lipgloss.NewStyle().
		Foreground(colorWarning)

	s.Error = lipgloss.NewStyle().
		Foreground(colorError).
		Bold(true)

	s.Info = lipgloss.NewStyle().
		Foreground(key)

	s.DetailBorder = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)

	s.DetailLabel = lipgloss.NewStyle().
		Foreground(key).
		Bold(true)

	s.TabActive = lipgloss.NewStyle().
		Foreground(title).
		Bold(true).
		Underline(true).
		Padding(0, 1)

	s.TabInactive = lipgloss.NewStyle().
		Foreground(colorMuted).
		Padding(0, 1)

	s.InputPrompt = lipgloss.NewStyle().
		Foreground(key).
		Bold(true)

	s.Dialog = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(1, 2)

	s.DialogTitle = lipgloss.NewStyle().
		Foreground(title).
		Bold(true)

	s.HelpKey = lipgloss.NewStyle().
		Foreground(key).
		Bold(true)

	s.HelpDesc = lipgloss.NewStyle().
		Foreground(colorMuted)

	s.Spinner = lipgloss.NewStyle().
		Foreground(key)

	return s
}
