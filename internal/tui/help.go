package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// helpMarkdown lists every binding as markdown for the help screen.
func (a *App) helpMarkdown() string {
	var b strings.Builder
	b.WriteString("# Keys\n\n")

	sections := []struct {
		title    string
		bindings []key.Binding
	}{
		{"Navigation", a.keys.FullHelp()[0]},
		{"Search and pages", a.keys.FullHelp()[1]},
		{"Albums", a.keys.FullHelp()[2]},
		{"Cover dialog", a.modalKeys.ShortHelp()},
		{"General", a.keys.FullHelp()[3]},
	}
	for _, s := range sections {
		fmt.Fprintf(&b, "## %s\n\n| key | action |\n|---|---|\n", s.title)
		for _, kb := range s.bindings {
			h := kb.Help()
			fmt.Fprintf(&b, "| `%s` | %s |\n", h.Key, h.Desc)
		}
		b.WriteString("\n")
	}

	b.WriteString("Shared albums are hidden unless the shared filter is on. ")
	b.WriteString("Toggling an album moves it to the other view.\n")
	return b.String()
}

func (a *App) renderHelp() {
	md := a.helpMarkdown()
	r, err := a.getRenderer()
	if err != nil {
		a.viewport.SetContent(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		a.viewport.SetContent(md)
		return
	}
	a.viewport.SetContent(out)
	a.viewport.GotoTop()
}
