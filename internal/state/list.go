package state

import (
	"fmt"

	"github.com/pders01/crate/internal/catalog"
)

const windowSize = 5

// PageWindow returns up to five contiguous page numbers around current,
// always containing current when it lies in [1, total].
func PageWindow(current, total int) []int {
	if total < 1 {
		return nil
	}
	var start, end int
	switch {
	case total <= windowSize:
		start, end = 1, total
	case current <= 3:
		start, end = 1, windowSize
	case current >= total-2:
		start, end = total-windowSize+1, total
	default:
		start, end = current-2, current+2
	}
	pages := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return pages
}

func (s State) commitSearch() (State, []Effect) {
	s.Query.Search = s.Draft
	return s.fetch(s.Query, 1)
}

func (s State) setFilter(a SetFilter) (State, []Effect) {
	s.Query.Filter = a.Filter
	return s.fetch(s.Query, 1)
}

func (s State) loadPage(n int) (State, []Effect) {
	if n < 1 || n > max(s.Page.TotalPages, 1) {
		return s, nil
	}
	return s.fetch(s.Page.Query, n)
}

// reload re-fetches the page on screen, keeping the scroll position.
func (s State) reload() (State, []Effect) {
	return s.fetch(s.Page.Query, s.Page.Number)
}

func (s State) fetch(q catalog.Query, n int) (State, []Effect) {
	s.Page.keepScroll = q == s.Page.Query && n == s.Page.Number && s.Page.Loaded
	s.Page.pending = q
	s.Page.Loading = true
	s, token := s.nextToken()
	s.Page.Token = token
	return s, []Effect{FetchPage{Token: token, Request: q.Request(n)}}
}

func (s State) pageLoaded(a PageLoaded) (State, []Effect) {
	if a.Token != s.Page.Token {
		return s, nil
	}
	s.Page.Loading = false
	if a.Err != nil {
		return s.notify(NoticeError, fmt.Sprintf("Error loading albums: %s", catalog.Message(a.Err))), nil
	}

	total := max(a.Page.TotalPages, 1)
	if a.Page.Number > total {
		// The library shrank under us; land on the last page instead.
		return s.fetch(s.Page.pending, total)
	}

	s.Page.Query = s.Page.pending
	s.Page.Items = a.Page.Albums
	s.Page.Number = max(a.Page.Number, 1)
	s.Page.TotalPages = total
	s.Page.Total = a.Page.Total
	s.Page.Loaded = true
	if !s.Page.keepScroll {
		s.Scroll = 0
	}
	return s, nil
}
