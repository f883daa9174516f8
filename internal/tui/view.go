package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/pders01/crate/internal/catalog"
)

func (a *App) View() string {
	if a.width == 0 {
		return MsgLoading
	}
	if a.showHelp {
		return lipgloss.JoinVertical(lipgloss.Left,
			a.renderHeader(),
			a.viewport.View(),
			HelpStyle.Render("esc close help • ↑/↓ scroll"),
		)
	}

	body := a.renderList()
	if a.state.Modal.Open {
		body = lipgloss.Place(a.width, a.listHeight(), lipgloss.Center, lipgloss.Center, a.renderModal())
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		a.renderHeader(),
		a.renderSearchBar(),
		SeparatorStyle.Render(strings.Repeat("─", max(a.width, 1))),
		body,
		a.renderPagination(),
		a.renderStatusBar(),
		a.renderHelpLine(),
	)
}

func (a *App) renderHeader() string {
	title := TitleStyle.Render(CompactLogo + " albums")
	sv := a.state.Stats
	var stats string
	switch {
	case sv.Loaded:
		s := sv.Stats
		stats = fmt.Sprintf("%d albums • %d artists • %d shared • %d with covers",
			s.Total, s.DistinctAuthors, s.Shared, s.WithCovers)
	case sv.Loading:
		stats = "loading stats…"
	}
	stats = StatusBarStyle.Render(stats)
	gap := a.width - ansi.StringWidth(title) - ansi.StringWidth(stats)
	if gap < 1 {
		return truncateEnd(title+" "+stats, a.width)
	}
	return title + spaces(gap) + stats
}

func (a *App) renderSearchBar() string {
	filter := TabStyle.Render("[" + a.state.Query.Filter.String() + "]")
	if a.state.Query.Filter == catalog.FilterShared {
		filter = ActiveTabStyle.Render("shared only")
	}
	input := a.searchInput.View()
	if !a.searchInput.Focused() && a.state.Draft == "" {
		input = HelpStyle.Render("/ press " + a.keys.Search.Help().Key + " to search")
	}
	return truncateEnd(input, max(a.width-ansi.StringWidth(filter)-1, 10)) + " " + filter
}

func (a *App) renderList() string {
	h := a.listHeight()
	page := a.state.Page
	lines := make([]string, 0, h)

	switch {
	case !page.Loaded && page.Loading:
		lines = append(lines, a.spinner.View()+" "+MsgLoading)
	case page.Loaded && len(page.Items) == 0:
		if page.Query == catalog.DefaultQuery() && page.Total == 0 {
			return lipgloss.Place(a.width, h, lipgloss.Center, lipgloss.Center, GetWelcomeMessage())
		}
		lines = append(lines, HelpStyle.Render(MsgNoAlbums))
	default:
		start, end := a.visibleRange()
		for i := start; i < end; i++ {
			lines = append(lines, a.renderRow(i, page.Items[i]))
		}
	}

	for len(lines) < h {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderRow(i int, album catalog.Album) string {
	check := "[ ]"
	if album.Shared {
		check = "[x]"
	}
	if a.state.Toggling(album.ID) {
		check = "[~]"
	}
	cover := "◻"
	if a.state.CoverRef(album) != "" {
		cover = "◼"
	}

	label := album.Artist + " — " + album.Title
	if album.Genre != "" {
		label += " (" + album.Genre + ")"
	}
	if album.ReleaseDate != "" {
		label += " " + album.ReleaseDate
	}
	line := fmt.Sprintf("%s %s %s", check, cover, label)
	line = padRight(truncateEnd(line, max(a.width-2, 10)), max(a.width-2, 10))

	switch {
	case i == a.cursor:
		return SelectedItemStyle.Render("› " + line)
	case a.state.Page.Loading:
		return StaleItemStyle.Render("  " + line)
	case album.Shared:
		return SharedItemStyle.Render("  " + line)
	default:
		return ItemStyle.Render("  " + line)
	}
}

func (a *App) renderPagination() string {
	page := a.state.Page
	var parts []string

	prev := "‹ prev"
	if page.CanPrev() {
		parts = append(parts, ItemStyle.Render(prev))
	} else {
		parts = append(parts, StaleItemStyle.Render(prev))
	}
	for _, n := range page.Window() {
		if n == page.Number {
			parts = append(parts, ActiveTabStyle.Render(fmt.Sprint(n)))
		} else {
			parts = append(parts, TabStyle.Render(fmt.Sprint(n)))
		}
	}
	next := "next ›"
	if page.CanNext() {
		parts = append(parts, ItemStyle.Render(next))
	} else {
		parts = append(parts, StaleItemStyle.Render(next))
	}

	line := strings.Join(parts, " ")
	if page.Loaded {
		line += "  " + StatusBarStyle.Render(MsgPageSummary(page.Number, page.TotalPages, page.Total))
	}
	return truncateEnd(line, a.width)
}

func (a *App) renderStatusBar() string {
	var prefix string
	switch {
	case a.state.Rescanning:
		prefix = a.spinner.View() + " " + MsgRescanning + "  "
	case a.state.Page.Loading && a.state.Page.Loaded:
		prefix = a.spinner.View() + " " + MsgLoading + "  "
	}

	msg := a.status
	if msg != "" {
		msg = statusStyle(a.statusKind)(statusIcon(a.statusKind) + msg)
	}
	return truncateEnd(StatusBarStyle.Render(prefix+msg), a.width)
}

func (a *App) renderHelpLine() string {
	if a.state.Modal.Open {
		return a.help.View(a.modalKeys)
	}
	return a.help.View(a.keys)
}

func (a *App) renderModal() string {
	m := a.state.Modal
	var b strings.Builder

	title := "Replace cover"
	if album, ok := a.state.ModalAlbum(); ok {
		title += ": " + album.Artist + " — " + album.Title
	}
	b.WriteString(HeaderStyle.Render(truncateEnd(title, 60)))
	b.WriteString("\n\n")

	tabs := make([]string, 0, len(catalog.Strategies))
	for _, s := range catalog.Strategies {
		if s == m.Tab {
			tabs = append(tabs, ActiveTabStyle.Render(s.Label()))
		} else {
			tabs = append(tabs, TabStyle.Render(s.Label()))
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n\n")

	switch m.Tab {
	case catalog.StrategyFile:
		b.WriteString(a.fileInput.View())
		b.WriteString("\n")
		b.WriteString(HelpStyle.Render("Image file on this machine (jpg, png, gif, webp, bmp)"))
	case catalog.StrategyURL:
		b.WriteString(a.urlInput.View())
		b.WriteString("\n")
		b.WriteString(HelpStyle.Render("Direct link to an image"))
	case catalog.StrategyAPI:
		b.WriteString(ItemStyle.Render("Look the album up in the iTunes catalog."))
		b.WriteString("\n")
		b.WriteString(HelpStyle.Render("Uses the album's artist and title"))
	}

	b.WriteString("\n\n")
	switch {
	case m.Submitting:
		b.WriteString(a.spinner.View() + " " + MsgUploading)
	case m.Err != "":
		b.WriteString(StatusErrorStyle.Render("✗ " + m.Err))
	default:
		b.WriteString(HelpStyle.Render("enter to update • esc to cancel"))
	}

	return ModalStyle.Render(b.String())
}
