package state

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pders01/crate/internal/catalog"
)

func album(id int, shared bool) catalog.Album {
	return catalog.Album{
		ID:     catalog.AlbumID(id),
		Artist: "Artist",
		Title:  "Album",
		Shared: shared,
	}
}

func findEffect[T Effect](t *testing.T, effs []Effect) T {
	t.Helper()
	for _, e := range effs {
		if v, ok := e.(T); ok {
			return v
		}
	}
	var zero T
	require.Failf(t, "effect not found", "want %T in %#v", zero, effs)
	return zero
}

// complete feeds a successful response to the FetchPage in effs.
func complete(t *testing.T, s State, effs []Effect, page catalog.Page) State {
	t.Helper()
	fp := findEffect[FetchPage](t, effs)
	if page.Number == 0 {
		page.Number = fp.Request.Page
	}
	s, _ = Reduce(s, PageLoaded{Token: fp.Token, Page: page})
	return s
}

// loaded returns a state showing items as page number of total under q.
func loaded(t *testing.T, q catalog.Query, items []catalog.Album, number, total int) State {
	t.Helper()
	s := New()
	s.Draft = q.Search
	s, effs := Reduce(s, CommitSearch{})
	if q.Filter != s.Query.Filter {
		s, effs = Reduce(s, SetFilter{Filter: q.Filter})
	}
	s = complete(t, s, effs, catalog.Page{
		Albums:     items,
		Total:      len(items),
		Number:     number,
		PerPage:    catalog.PageSize,
		TotalPages: total,
	})
	require.False(t, s.Page.Loading)
	require.Equal(t, number, s.Page.Number)
	return s
}
