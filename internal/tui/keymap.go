package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/pders01/crate/internal/config"
)

// KeyMap holds the list-view bindings built from configuration. Every
// letter binding answers to both the plain key and modifier+key so that it
// still works while the search field has focus.
type KeyMap struct {
	Quit         key.Binding
	Search       key.Binding
	Filter       key.Binding
	ToggleShared key.Binding
	Cover        key.Binding
	OpenCover    key.Binding
	Rescan       key.Binding
	Refresh      key.Binding
	NextPage     key.Binding
	PrevPage     key.Binding
	Back         key.Binding
	Help         key.Binding

	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding

	modifier string
}

func NewKeyMap(cfg config.KeyConfig) KeyMap {
	mod := strings.TrimSpace(cfg.Modifier)
	if mod == "" {
		mod = "ctrl"
	}
	b := cfg.Bindings
	bind := func(k, desc string, extra ...string) key.Binding {
		return newBinding(mod, k, desc, extra...)
	}

	return KeyMap{
		Quit:         bind(orDefault(b.Quit, "q"), "quit", "ctrl+c"),
		Search:       bind(orDefault(b.Search, "s"), "search", "/"),
		Filter:       bind(orDefault(b.Filter, "f"), "shared filter"),
		ToggleShared: bind(orDefault(b.ToggleShared, "t"), "toggle shared", " "),
		Cover:        bind(orDefault(b.Cover, "u"), "replace cover"),
		OpenCover:    bind(orDefault(b.OpenCover, "o"), "open cover"),
		Rescan:       bind(orDefault(b.Rescan, "r"), "rescan library"),
		Refresh:      bind(orDefault(b.Refresh, "l"), "reload page"),
		NextPage:     bind(orDefault(b.NextPage, "n"), "next page", "right"),
		PrevPage:     bind(orDefault(b.PrevPage, "p"), "previous page", "left"),
		Back:         bind(orDefault(b.Back, "esc"), "back"),
		Help:         bind(orDefault(b.Help, "?"), "help"),

		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "scroll up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "scroll down"),
		),
		Home: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("g", "first"),
		),
		End: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("G", "last"),
		),

		modifier: mod,
	}
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}

// newBinding binds k, and modifier+k when k is a single letter. Help text
// shows the modified form, which works in every mode.
func newBinding(mod, k, desc string, extra ...string) key.Binding {
	keys := []string{k}
	label := k
	if isLetter(k) {
		modified := mod + "+" + k
		keys = append(keys, modified)
		label = modified
	}
	keys = append(keys, extra...)
	return key.NewBinding(
		key.WithKeys(keys...),
		key.WithHelp(label, desc),
	)
}

func isLetter(k string) bool {
	if len(k) != 1 {
		return false
	}
	c := k[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// Modified reports whether s carries the configured modifier prefix.
func (k KeyMap) Modified(s string) bool {
	return strings.HasPrefix(s, k.modifier+"+")
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.Filter, k.ToggleShared, k.Cover, k.NextPage, k.PrevPage, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Home, k.End},
		{k.Search, k.Filter, k.NextPage, k.PrevPage, k.Refresh},
		{k.ToggleShared, k.Cover, k.OpenCover, k.Rescan},
		{k.Back, k.Help, k.Quit},
	}
}

// ModalKeys are the bindings active while the cover dialog is open.
type ModalKeys struct {
	NextTab key.Binding
	PrevTab key.Binding
	Submit  key.Binding
	Cancel  key.Binding
}

func NewModalKeys() ModalKeys {
	return ModalKeys{
		NextTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next source"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous source"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "update cover"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

func (k ModalKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.NextTab, k.PrevTab, k.Submit, k.Cancel}
}

func (k ModalKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
