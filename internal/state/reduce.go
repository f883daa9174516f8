package state

// Reduce applies a to s and returns the next state plus the remote calls
// that must be made. Unknown actions leave s untouched.
func Reduce(s State, a Action) (State, []Effect) {
	switch a := a.(type) {
	case Mount:
		return s.mount()
	case SetDraft:
		s.Draft = a.Text
		return s, nil
	case CommitSearch:
		return s.commitSearch()
	case SetFilter:
		return s.setFilter(a)
	case LoadPage:
		return s.loadPage(a.Page)
	case NextPage:
		return s.loadPage(s.Page.Number + 1)
	case PrevPage:
		return s.loadPage(s.Page.Number - 1)
	case Reload:
		return s.reload()
	case PageLoaded:
		return s.pageLoaded(a)
	case ScrollTo:
		s.Scroll = max(a.Offset, 0)
		return s, nil

	case RefreshStats:
		return s.refreshStats()
	case StatsLoaded:
		return s.statsLoaded(a), nil

	case ToggleShared:
		return s.toggleShared(a.ID)
	case SharedToggled:
		return s.sharedToggled(a)

	case OpenCover:
		return s.openCover(a.ID), nil
	case SwitchTab:
		return s.switchTab(a.Tab), nil
	case CloseCover:
		s.Modal = Modal{}
		return s, nil
	case SubmitCover:
		return s.submitCover(a.Upload)
	case InputInvalid:
		return s.inputInvalid(a.Err), nil
	case CoverUpdated:
		return s.coverUpdated(a)
	case CoverFailed:
		return s.coverFailed(a.Ref), nil

	case TriggerRescan:
		return s.triggerRescan()
	case RescanCompleted:
		return s.rescanCompleted(a)
	}
	return s, nil
}

func (s State) mount() (State, []Effect) {
	s, stats := s.refreshStats()
	s, page := s.fetch(s.Page.Query, 1)
	return s, append(stats, page...)
}
