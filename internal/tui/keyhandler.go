package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/crate/internal/catalog"
	"github.com/pders01/crate/internal/state"
)

type KeyHandler struct {
	app *App
}

func NewKeyHandler(app *App) *KeyHandler {
	return &KeyHandler{app: app}
}

func (kh *KeyHandler) HandleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return kh.app, tea.Quit
	}

	switch {
	case kh.app.showHelp:
		return kh.handleHelpMode(msg)
	case kh.app.state.Modal.Open:
		return kh.handleModalMode(msg)
	case kh.app.searchInput.Focused():
		return kh.handleSearchMode(msg)
	default:
		return kh.handleListMode(msg)
	}
}

func (kh *KeyHandler) handleHelpMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := kh.app
	switch {
	case key.Matches(msg, a.keys.Back), key.Matches(msg, a.keys.Help), key.Matches(msg, a.keys.Quit):
		a.showHelp = false
		return a, nil
	}
	var cmd tea.Cmd
	a.viewport, cmd = a.viewport.Update(msg)
	return a, cmd
}

func (kh *KeyHandler) handleModalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := kh.app
	m := a.state.Modal

	if key.Matches(msg, a.modalKeys.Cancel) {
		return a, a.dispatch(state.CloseCover{})
	}
	if m.Submitting {
		return a, nil
	}

	switch {
	case key.Matches(msg, a.modalKeys.NextTab):
		return a, a.dispatch(state.SwitchTab{Tab: m.Tab.Next()})
	case key.Matches(msg, a.modalKeys.PrevTab):
		return a, a.dispatch(state.SwitchTab{Tab: m.Tab.Prev()})
	case key.Matches(msg, a.modalKeys.Submit):
		return a, a.submitCover()
	}

	var cmd tea.Cmd
	switch m.Tab {
	case catalog.StrategyFile:
		a.fileInput, cmd = a.fileInput.Update(msg)
	case catalog.StrategyURL:
		a.urlInput, cmd = a.urlInput.Update(msg)
	}
	return a, cmd
}

func (kh *KeyHandler) handleSearchMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := kh.app

	switch msg.String() {
	case "esc":
		a.searchInput.Blur()
		return a, nil
	case "enter":
		a.searchInput.Blur()
		return a, a.dispatch(state.CommitSearch{})
	case "down", "tab":
		a.searchInput.Blur()
		return a, nil
	}

	// Modified bindings stay live while typing.
	if a.keys.Modified(msg.String()) {
		if model, cmd, handled := kh.handleCustomKeys(msg); handled {
			return model, cmd
		}
	}

	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	if a.searchInput.Value() != a.state.Draft {
		return a, tea.Batch(cmd, a.dispatch(state.SetDraft{Text: a.searchInput.Value()}))
	}
	return a, cmd
}

func (kh *KeyHandler) handleListMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := kh.app
	if model, cmd, handled := kh.handleCustomKeys(msg); handled {
		return model, cmd
	}

	switch {
	case key.Matches(msg, a.keys.Up):
		return a, a.moveCursor(-1)
	case key.Matches(msg, a.keys.Down):
		return a, a.moveCursor(1)
	case key.Matches(msg, a.keys.PageUp):
		return a, a.moveCursor(-a.listHeight())
	case key.Matches(msg, a.keys.PageDown):
		return a, a.moveCursor(a.listHeight())
	case key.Matches(msg, a.keys.Home):
		return a, a.moveCursor(-len(a.state.Page.Items))
	case key.Matches(msg, a.keys.End):
		return a, a.moveCursor(len(a.state.Page.Items))
	case key.Matches(msg, a.keys.Back):
		if a.state.Query.Search != "" {
			a.searchInput.Reset()
			cleared := a.dispatch(state.SetDraft{})
			return a, tea.Batch(cleared, a.dispatch(state.CommitSearch{}))
		}
	}
	return a, nil
}

// handleCustomKeys handles the configured application bindings.
func (kh *KeyHandler) handleCustomKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	a := kh.app
	k := a.keys

	switch {
	case key.Matches(msg, k.Quit):
		return a, tea.Quit, true

	case key.Matches(msg, k.Search):
		a.searchInput.SetValue(a.state.Draft)
		a.searchInput.CursorEnd()
		return a, a.searchInput.Focus(), true

	case key.Matches(msg, k.Filter):
		return a, a.dispatch(state.SetFilter{Filter: a.state.Query.Filter.Toggle()}), true

	case key.Matches(msg, k.ToggleShared):
		album, ok := a.selected()
		if !ok {
			return a, nil, true
		}
		if a.state.Toggling(album.ID) {
			a.setStatus("Already updating "+album.Title, StatusWarn)
			return a, nil, true
		}
		return a, a.dispatch(state.ToggleShared{ID: album.ID}), true

	case key.Matches(msg, k.Cover):
		album, ok := a.selected()
		if !ok {
			return a, nil, true
		}
		a.searchInput.Blur()
		return a, a.dispatch(state.OpenCover{ID: album.ID}), true

	case key.Matches(msg, k.OpenCover):
		album, ok := a.selected()
		if !ok {
			return a, nil, true
		}
		return a, a.openCoverCmd(album), true

	case key.Matches(msg, k.Rescan):
		if a.state.Rescanning {
			a.setStatus("Rescan already running", StatusWarn)
			return a, nil, true
		}
		return a, a.dispatch(state.TriggerRescan{}), true

	case key.Matches(msg, k.Refresh):
		return a, tea.Batch(a.dispatch(state.Reload{}), a.dispatch(state.RefreshStats{})), true

	case key.Matches(msg, k.NextPage):
		if !a.state.Page.CanNext() {
			return a, nil, true
		}
		return a, a.dispatch(state.NextPage{}), true

	case key.Matches(msg, k.PrevPage):
		if !a.state.Page.CanPrev() {
			return a, nil, true
		}
		return a, a.dispatch(state.PrevPage{}), true

	case key.Matches(msg, k.Help):
		a.showHelp = true
		a.renderHelp()
		return a, nil, true
	}

	return a, nil, false
}
