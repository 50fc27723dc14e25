package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// jumpDistance is how far ctrl+u / ctrl+d move the cursor.
const jumpDistance = 25

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	// Navigation
	Up       key.Binding
	Down     key.Binding
	Top      key.Binding
	Bottom   key.Binding
	JumpUp   key.Binding
	JumpDown key.Binding

	// Listing
	Search           key.Binding
	FilterUpgradable key.Binding
	Toggle           key.Binding
	Remove           key.Binding
	MarkExplicit     key.Binding
	StageUpgrades    key.Binding

	// Transactions
	Plan    key.Binding
	Refresh key.Binding
	Sync    key.Binding

	// Detail pane
	Details key.Binding
	NextTab key.Binding
	PrevTab key.Binding

	// General
	Confirm key.Binding
	Back    key.Binding
	Help    key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("k/up", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("j/down", "move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "first"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "last"),
		),
		JumpUp: key.NewBinding(
			key.WithKeys("ctrl+u", "pgup"),
			key.WithHelp("ctrl+u", "jump up"),
		),
		JumpDown: key.NewBinding(
			key.WithKeys("ctrl+d", "pgdown"),
			key.WithHelp("ctrl+d", "jump down"),
		),

		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		FilterUpgradable: key.NewBinding(
			key.WithKeys("alt+u"),
			key.WithHelp("alt+u", "upgradable only"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("x", " "),
			key.WithHelp("x", "stage/unstage"),
		),
		Remove: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "stage removal"),
		),
		MarkExplicit: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mark explicit"),
		),
		StageUpgrades: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "stage all upgrades"),
		),

		Plan: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "plan staged"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Sync: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "sync databases"),
		),

		Details: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "details"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next tab"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous tab"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns the condensed footer bindings.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Search, k.Toggle, k.Plan, k.Details, k.Help, k.Quit,
	}
}

// FullHelp returns the bindings for the help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom, k.JumpUp, k.JumpDown},
		{k.Search, k.FilterUpgradable, k.Toggle, k.Remove, k.MarkExplicit, k.StageUpgrades},
		{k.Plan, k.Refresh, k.Sync},
		{k.Details, k.NextTab, k.PrevTab},
		{k.Confirm, k.Back, k.Help, k.Quit},
	}
}
