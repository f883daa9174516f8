// Package state holds the client-side synchronization core: an explicit
// application state value and the reducers that move it forward.
//
// Reduce is pure. It never performs I/O; anything that needs the remote
// service is returned as an Effect, and the outcome is fed back in as an
// Action. Callers own the only copy of State and replace it with whatever
// Reduce returns.
package state

import "github.com/pders01/crate/internal/catalog"

// PageCache is the currently materialized page.
type PageCache struct {
	Items      []catalog.Album
	Query      catalog.Query // query the displayed Items were loaded with
	Number     int
	TotalPages int
	Total      int
	Loading    bool
	Loaded     bool
	Token      uint64 // latest issued fetch; older results are dropped

	keepScroll bool
	pending    catalog.Query // query of the fetch in flight
}

// Index returns the position of id in Items, or -1.
func (p PageCache) Index(id catalog.AlbumID) int {
	for i, a := range p.Items {
		if a.ID == id {
			return i
		}
	}
	return -1
}

// Album returns the item with id, if it is on the page.
func (p PageCache) Album(id catalog.AlbumID) (catalog.Album, bool) {
	if i := p.Index(id); i >= 0 {
		return p.Items[i], true
	}
	return catalog.Album{}, false
}

func (p PageCache) CanPrev() bool { return p.Number > 1 }

func (p PageCache) CanNext() bool { return p.Number < p.TotalPages }

// Window returns the page buttons to display for the current page.
func (p PageCache) Window() []int {
	return PageWindow(p.Number, p.TotalPages)
}

type StatsView struct {
	Stats   catalog.Stats
	Loading bool
	Loaded  bool
	Token   uint64
}

// Modal is the cover replacement dialog. The zero value is closed.
type Modal struct {
	Open       bool
	Target     catalog.AlbumID
	Tab        catalog.Strategy
	Submitting bool
	Err        string
}

type NoticeKind int

const (
	NoticeInfo NoticeKind = iota
	NoticeSuccess
	NoticeError
)

// Notice is the latest user-facing message. Seq increases by one per notice,
// so a renderer can tell a repeated message from a new one.
type Notice struct {
	Kind NoticeKind
	Text string
	Seq  uint64
}

type pendingToggle struct {
	scroll int
	prior  bool
}

type State struct {
	Query catalog.Query // committed search text and the selected filter
	Draft string        // search text as typed, not yet committed

	Page  PageCache
	Stats StatsView
	Modal Modal

	Rescanning bool
	Scroll     int
	Notice     Notice

	toggling map[catalog.AlbumID]pendingToggle
	broken   map[string]bool
	tokens   uint64
}

// New returns the initial state: default query, nothing loaded.
func New() State {
	return State{
		Query: catalog.DefaultQuery(),
		Page: PageCache{
			Query:      catalog.DefaultQuery(),
			Number:     1,
			TotalPages: 1,
		},
	}
}

// Toggling reports whether a shared-flag change for id is in flight.
func (s State) Toggling(id catalog.AlbumID) bool {
	_, ok := s.toggling[id]
	return ok
}

// CoverRef returns the cover reference to display for a, or "" when the
// placeholder should be shown instead.
func (s State) CoverRef(a catalog.Album) string {
	if a.CoverPath == "" || s.broken[a.CoverPath] {
		return ""
	}
	return a.CoverPath
}

// ModalAlbum returns the album the open modal targets, if it is still on the
// page. A reload may have dropped it since the modal opened.
func (s State) ModalAlbum() (catalog.Album, bool) {
	if !s.Modal.Open {
		return catalog.Album{}, false
	}
	return s.Page.Album(s.Modal.Target)
}

func (s State) nextToken() (State, uint64) {
	s.tokens++
	return s, s.tokens
}

func (s State) notify(kind NoticeKind, text string) State {
	s.Notice = Notice{Kind: kind, Text: text, Seq: s.Notice.Seq + 1}
	return s
}
