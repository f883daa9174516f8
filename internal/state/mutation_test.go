package state

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/crate/internal/catalog"
)

func TestToggleInSharedOnlyView(t *testing.T) {
	q := catalog.Query{Filter: catalog.FilterShared}
	s := loaded(t, q, []catalog.Album{album(1, true), album(2, true)}, 1, 1)
	s, _ = Reduce(s, ScrollTo{Offset: 7})

	s, effs := Reduce(s, ToggleShared{ID: 1})
	require.Equal(t, []Effect{RequestToggle{ID: 1}}, effs)
	assert.True(t, s.Toggling(1))
	assert.Len(t, s.Page.Items, 2, "nothing changes before the server confirms")

	// The user keeps scrolling while the request is in flight.
	s, _ = Reduce(s, ScrollTo{Offset: 40})

	s, effs = Reduce(s, SharedToggled{ID: 1})
	require.Len(t, s.Page.Items, 1)
	assert.Equal(t, catalog.AlbumID(2), s.Page.Items[0].ID)
	assert.Equal(t, 7, s.Scroll)
	assert.False(t, s.Toggling(1))
	assert.Equal(t, 1, s.Page.Total)

	stats := findEffect[FetchStats](t, effs)
	assert.Len(t, effs, 1, "a confirmed toggle must not re-fetch the page")
	s, _ = Reduce(s, StatsLoaded{Token: stats.Token, Stats: catalog.Stats{Total: 10, Shared: 1, NotShared: 9}})
	assert.Equal(t, 1, s.Stats.Stats.Shared)
}

func TestToggleInDefaultViewRemovesItem(t *testing.T) {
	s := loaded(t, catalog.DefaultQuery(), []catalog.Album{album(1, false), album(2, false), album(3, false)}, 1, 1)

	s, _ = Reduce(s, ToggleShared{ID: 2})
	s, _ = Reduce(s, SharedToggled{ID: 2})

	ids := make([]catalog.AlbumID, 0, len(s.Page.Items))
	for _, a := range s.Page.Items {
		assert.True(t, s.Page.Query.Filter.Matches(a))
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []catalog.AlbumID{1, 3}, ids)
}

func TestToggleDoesNotMutatePreviousState(t *testing.T) {
	s := loaded(t, catalog.DefaultQuery(), []catalog.Album{album(1, false), album(2, false)}, 1, 1)
	s, _ = Reduce(s, ToggleShared{ID: 1})
	before := s

	after, _ := Reduce(s, SharedToggled{ID: 1})

	assert.Len(t, after.Page.Items, 1)
	assert.Len(t, before.Page.Items, 2)
	assert.Equal(t, catalog.AlbumID(1), before.Page.Items[0].ID)
	assert.True(t, before.Toggling(1))
	assert.False(t, after.Toggling(1))
}

func TestToggleFailureLeavesPageUntouched(t *testing.T) {
	s := loaded(t, catalog.DefaultQuery(), []catalog.Album{album(1, false), album(2, false)}, 1, 1)
	s, _ = Reduce(s, ScrollTo{Offset: 3})
	s, _ = Reduce(s, ToggleShared{ID: 1})
	s, _ = Reduce(s, ScrollTo{Offset: 9})
	seq := s.Notice.Seq

	s, effs := Reduce(s, SharedToggled{ID: 1, Err: errors.New("connection refused")})

	assert.Empty(t, effs)
	assert.Len(t, s.Page.Items, 2)
	assert.False(t, s.Page.Items[0].Shared)
	assert.Equal(t, 9, s.Scroll)
	assert.False(t, s.Toggling(1))
	assert.Equal(t, NoticeError, s.Notice.Kind)
	assert.Equal(t, "Error toggling shared status: connection refused", s.Notice.Text)
	assert.Equal(t, seq+1, s.Notice.Seq)

	_, effs = Reduce(s, ToggleShared{ID: 1})
	assert.Equal(t, []Effect{RequestToggle{ID: 1}}, effs, "a failed toggle can be retried by the user")
}

func TestToggleRejections(t *testing.T) {
	s := loaded(t, catalog.DefaultQuery(), []catalog.Album{album(1, false), album(2, false)}, 1, 1)

	_, effs := Reduce(s, ToggleShared{ID: 99})
	assert.Empty(t, effs, "unknown album")

	s, _ = Reduce(s, ToggleShared{ID: 1})
	_, effs = Reduce(s, ToggleShared{ID: 1})
	assert.Empty(t, effs, "same album while in flight")

	_, effs = Reduce(s, ToggleShared{ID: 2})
	assert.Equal(t, []Effect{RequestToggle{ID: 2}}, effs, "other albums are independent")
}

func TestUnexpectedToggleCompletionIsIgnored(t *testing.T) {
	s := loaded(t, catalog.DefaultQuery(), []catalog.Album{album(1, false)}, 1, 1)

	next, effs := Reduce(s, SharedToggled{ID: 1})
	assert.Empty(t, effs)
	assert.Len(t, next.Page.Items, 1)
}

func TestToggleConfirmedAfterViewChanged(t *testing.T) {
	s := loaded(t, catalog.DefaultQuery(), []catalog.Album{album(1, false), album(2, false)}, 1, 1)
	s, _ = Reduce(s, ToggleShared{ID: 1})

	// Switch to shared-only before the toggle confirms; the server already
	// reports the album as shared.
	s, effs := Reduce(s, SetFilter{Filter: catalog.FilterShared})
	s = complete(t, s, effs, catalog.Page{Albums: []catalog.Album{album(1, true)}, TotalPages: 1})

	s, _ = Reduce(s, SharedToggled{ID: 1})
	require.Len(t, s.Page.Items, 1)
	assert.True(t, s.Page.Items[0].Shared)
}
