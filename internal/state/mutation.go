package state

import (
	"fmt"
	"maps"
	"slices"

	"github.com/pders01/crate/internal/catalog"
)

func (s State) toggleShared(id catalog.AlbumID) (State, []Effect) {
	album, ok := s.Page.Album(id)
	if !ok || s.Toggling(id) {
		return s, nil
	}
	toggling := maps.Clone(s.toggling)
	if toggling == nil {
		toggling = make(map[catalog.AlbumID]pendingToggle)
	}
	toggling[id] = pendingToggle{scroll: s.Scroll, prior: album.Shared}
	s.toggling = toggling
	return s, []Effect{RequestToggle{ID: id}}
}

func (s State) sharedToggled(a SharedToggled) (State, []Effect) {
	pending, ok := s.toggling[a.ID]
	if !ok {
		return s, nil
	}
	toggling := maps.Clone(s.toggling)
	delete(toggling, a.ID)
	s.toggling = toggling

	if a.Err != nil {
		return s.notify(NoticeError, fmt.Sprintf("Error toggling shared status: %s", catalog.Message(a.Err))), nil
	}

	if i := s.Page.Index(a.ID); i >= 0 {
		items := slices.Clone(s.Page.Items)
		// A reload that landed after the server flipped the flag already
		// carries the new value.
		if items[i].Shared == pending.prior {
			items[i].Shared = !pending.prior
		}
		if !s.Page.Query.Filter.Matches(items[i]) {
			items = slices.Delete(items, i, i+1)
			s.Page.Total = max(s.Page.Total-1, 0)
		}
		s.Page.Items = items
	}
	s.Scroll = pending.scroll
	return s.refreshStats()
}
