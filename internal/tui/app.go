package tui

import (
	"net/http"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/pders01/crate/internal/catalog"
	"github.com/pders01/crate/internal/config"
	"github.com/pders01/crate/internal/debuglog"
	"github.com/pders01/crate/internal/media"
	"github.com/pders01/crate/internal/state"
)

// chrome is the number of lines around the album rows: header, search bar,
// separator, pagination, status bar and help line.
const chrome = 7

// opener launches a cover in an external viewer.
type opener interface {
	Open(target string) error
}

type App struct {
	config     *config.Config
	service    catalog.Service
	resolver   catalog.CoverResolver
	launcher   opener
	probe      *http.Client
	keys       KeyMap
	modalKeys  ModalKeys
	keyHandler *KeyHandler

	state  state.State
	cursor int

	shown      bool
	shownPage  int
	shownQuery catalog.Query

	searchInput textinput.Model
	fileInput   textinput.Model
	urlInput    textinput.Model
	viewport    viewport.Model
	spinner     spinner.Model
	help        help.Model
	showHelp    bool

	status     string
	statusKind StatusKind

	width  int
	height int

	glamourRenderer *glamour.TermRenderer
	rendererWidth   int
}

// NewApp builds the TUI around svc. When svc also implements
// catalog.CoverResolver it is used to turn cover references into something
// the viewer can open.
func NewApp(svc catalog.Service, cfg *config.Config) *App {
	si := textinput.New()
	si.Placeholder = "Search artist, album or genre…"
	si.Prompt = "/ "

	fi := textinput.New()
	fi.Placeholder = "~/Pictures/cover.jpg"
	fi.Prompt = "file › "

	ui := textinput.New()
	ui.Placeholder = "https://example.com/cover.jpg"
	ui.Prompt = "url › "

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = HeaderStyle

	app := &App{
		config:      cfg,
		service:     svc,
		launcher:    media.NewLauncher(cfg),
		probe:       &http.Client{Timeout: cfg.Server.HTTPTimeout},
		keys:        NewKeyMap(cfg.Keys),
		modalKeys:   NewModalKeys(),
		state:       state.New(),
		searchInput: si,
		fileInput:   fi,
		urlInput:    ui,
		viewport:    viewport.New(0, 0),
		spinner:     sp,
		help:        help.New(),
	}
	if r, ok := svc.(catalog.CoverResolver); ok {
		app.resolver = r
	}
	app.keyHandler = NewKeyHandler(app)

	return app
}

// State returns the current application state.
func (a *App) State() state.State { return a.state }

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.dispatch(state.Mount{}),
		tea.EnterAltScreen,
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.viewport.Width = msg.Width
		a.viewport.Height = max(msg.Height-3, 3)
		a.help.Width = msg.Width

		inputWidth := msg.Width - 12
		if inputWidth < 20 {
			inputWidth = msg.Width
		}
		a.searchInput.Width = inputWidth
		a.fileInput.Width = min(inputWidth, 60)
		a.urlInput.Width = min(inputWidth, 60)
		if a.showHelp {
			a.renderHelp()
		}
		return a, a.followCursor()

	case tea.KeyMsg:
		return a.keyHandler.HandleKey(msg)

	case spinner.TickMsg:
		if !a.busy() {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case coverOpenedMsg:
		return a, a.coverOpened(msg)

	case state.Action:
		return a, a.dispatch(msg)
	}

	return a, nil
}

// dispatch runs action through the reducer, adopts the new state and turns
// the returned effects into commands.
func (a *App) dispatch(action state.Action) tea.Cmd {
	prev := a.state
	wasBusy := a.busy()

	next, effects := state.Reduce(a.state, action)
	a.state = next

	if next.Notice.Seq != prev.Notice.Seq {
		a.setStatus(next.Notice.Text, noticeKind(next.Notice.Kind))
	}
	if a.landed(prev) {
		a.cursor = 0
	}
	a.syncModal(prev.Modal)
	a.clampCursor()

	cmds := make([]tea.Cmd, 0, len(effects)+1)
	for _, e := range effects {
		cmds = append(cmds, a.effectCmd(e))
	}
	if !wasBusy && a.busy() {
		cmds = append(cmds, a.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

// landed reports whether a different page of results arrived, as opposed
// to the shown page being reloaded.
func (a *App) landed(prev state.State) bool {
	p := a.state.Page
	if !prev.Page.Loading || p.Loading || !p.Loaded {
		return false
	}
	changed := !a.shown || a.shownPage != p.Number || a.shownQuery != p.Query
	a.shown, a.shownPage, a.shownQuery = true, p.Number, p.Query
	return changed
}

// syncModal moves focus between the modal inputs to follow the reducer.
func (a *App) syncModal(prev state.Modal) {
	m := a.state.Modal
	if !m.Open {
		if prev.Open {
			a.fileInput.Blur()
			a.urlInput.Blur()
		}
		return
	}
	if !prev.Open || prev.Target != m.Target {
		a.fileInput.Reset()
		a.urlInput.Reset()
		a.searchInput.Blur()
	}
	switch m.Tab {
	case catalog.StrategyFile:
		a.urlInput.Blur()
		a.fileInput.Focus()
	case catalog.StrategyURL:
		a.fileInput.Blur()
		a.urlInput.Focus()
	default:
		a.fileInput.Blur()
		a.urlInput.Blur()
	}
}

func (a *App) busy() bool {
	return a.state.Page.Loading || a.state.Stats.Loading || a.state.Rescanning || a.state.Modal.Submitting
}

func (a *App) setStatus(msg string, kind StatusKind) {
	a.status = msg
	a.statusKind = kind
	if kind == StatusError {
		debuglog.Warnf("status: %s", msg)
	}
}

func (a *App) listHeight() int {
	return max(a.height-chrome, 3)
}

// selected returns the album under the cursor.
func (a *App) selected() (catalog.Album, bool) {
	items := a.state.Page.Items
	if a.cursor < 0 || a.cursor >= len(items) {
		return catalog.Album{}, false
	}
	return items[a.cursor], true
}

func (a *App) clampCursor() {
	n := len(a.state.Page.Items)
	switch {
	case n == 0:
		a.cursor = 0
	case a.cursor >= n:
		a.cursor = n - 1
	case a.cursor < 0:
		a.cursor = 0
	}
}

// moveCursor shifts the selection by delta rows and keeps it visible.
func (a *App) moveCursor(delta int) tea.Cmd {
	a.cursor += delta
	a.clampCursor()
	return a.followCursor()
}

// followCursor adjusts the scroll offset so the cursor row is on screen.
func (a *App) followCursor() tea.Cmd {
	h := a.listHeight()
	scroll := a.state.Scroll
	switch {
	case a.cursor < scroll:
		scroll = a.cursor
	case a.cursor >= scroll+h:
		scroll = a.cursor - h + 1
	}
	if scroll == a.state.Scroll {
		return nil
	}
	return a.dispatch(state.ScrollTo{Offset: scroll})
}

// visibleRange returns the half-open row range currently on screen.
func (a *App) visibleRange() (int, int) {
	n := len(a.state.Page.Items)
	start := min(a.state.Scroll, max(n-1, 0))
	return start, min(start+a.listHeight(), n)
}

// resolveCover turns a stored reference into a viewer target.
func (a *App) resolveCover(ref string) string {
	if a.resolver == nil {
		return ref
	}
	return a.resolver.CoverURL(ref)
}

func (a *App) getRenderer() (*glamour.TermRenderer, error) {
	wordWrapWidth := (a.width * 9) / 10
	if wordWrapWidth > 100 {
		wordWrapWidth = 100
	}
	if wordWrapWidth < 40 {
		wordWrapWidth = 40
	}

	if a.glamourRenderer == nil || abs(a.rendererWidth-wordWrapWidth) > 10 {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wordWrapWidth),
		)
		if err != nil {
			return nil, err
		}
		a.glamourRenderer = r
		a.rendererWidth = wordWrapWidth
	}

	return a.glamourRenderer, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
