package catalog

// PageSize is the number of albums requested per page.
const PageSize = 100

// PlaceholderCover is shown for albums without a usable cover reference.
const PlaceholderCover = "/static/placeholder.svg"

type AlbumID int64

type Album struct {
	ID          AlbumID `json:"id"`
	Artist      string  `json:"artist"`
	Title       string  `json:"album"`
	Genre       string  `json:"genre,omitempty"`
	ReleaseDate string  `json:"release_date,omitempty"`
	CoverPath   string  `json:"cover_path,omitempty"`
	Shared      bool    `json:"shared"`
}

type Stats struct {
	Total           int `json:"total_albums"`
	DistinctAuthors int `json:"unique_artists"`
	Shared          int `json:"shared_albums"`
	NotShared       int `json:"not_shared_albums"`
	WithCovers      int `json:"albums_with_covers"`
	WithoutCovers   int `json:"albums_without_covers"`
}

type PageRequest struct {
	Page    int
	PerPage int
	Search  string
	Filter  SharedFilter
}

type Page struct {
	Albums     []Album `json:"albums"`
	Total      int     `json:"total"`
	Number     int     `json:"page"`
	PerPage    int     `json:"per_page"`
	TotalPages int     `json:"total_pages"`
}

type RescanSummary struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}
