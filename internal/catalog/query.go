package catalog

import "strings"

// SharedFilter selects which side of the shared flag a page shows. There is
// no "both" mode: the default view excludes shared albums.
type SharedFilter int

const (
	FilterNotShared SharedFilter = iota
	FilterShared
)

func (f SharedFilter) String() string {
	if f == FilterShared {
		return "shared"
	}
	return "not shared"
}

// Param is the value sent as filter_shared on the wire.
func (f SharedFilter) Param() string {
	if f == FilterShared {
		return "shared"
	}
	return ""
}

// ParseSharedFilter maps the filter_shared wire value back to a filter.
// Anything other than "shared" means the default view.
func ParseSharedFilter(s string) SharedFilter {
	if strings.EqualFold(strings.TrimSpace(s), "shared") {
		return FilterShared
	}
	return FilterNotShared
}

// Toggle returns the other filter.
func (f SharedFilter) Toggle() SharedFilter {
	if f == FilterShared {
		return FilterNotShared
	}
	return FilterShared
}

// Matches reports whether an album belongs in a page using this filter.
func (f SharedFilter) Matches(a Album) bool {
	return a.Shared == (f == FilterShared)
}

// Query holds the search and filter parameters that drive server-side
// pagination.
type Query struct {
	Search string
	Filter SharedFilter
}

// DefaultQuery is the unfiltered-excluding-shared view with no search text.
func DefaultQuery() Query {
	return Query{Filter: FilterNotShared}
}

// Request builds the page request for this query.
func (q Query) Request(page int) PageRequest {
	return PageRequest{
		Page:    page,
		PerPage: PageSize,
		Search:  q.Search,
		Filter:  q.Filter,
	}
}

// MatchesSearch applies the case-insensitive substring rule over artist,
// title and genre.
func MatchesSearch(a Album, search string) bool {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(a.Artist), search) ||
		strings.Contains(strings.ToLower(a.Title), search) ||
		(a.Genre != "" && strings.Contains(strings.ToLower(a.Genre), search))
}
