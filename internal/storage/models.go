package storage

import (
	"time"

	"github.com/pders01/crate/internal/catalog"
)

// Album is the persisted record for one album folder on disk.
type Album struct {
	ID           catalog.AlbumID `json:"id"`
	Artist       string          `json:"artist"`
	Title        string          `json:"album"`
	Genre        string          `json:"genre,omitempty"`
	ReleaseDate  string          `json:"release_date,omitempty"`
	CoverPath    string          `json:"cover_path,omitempty"`
	FolderPath   string          `json:"folder_path"`
	Shared       bool            `json:"shared"`
	DisplayOrder int             `json:"display_order"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Summary is the client-facing view of the album.
func (a *Album) Summary() catalog.Album {
	return catalog.Album{
		ID:          a.ID,
		Artist:      a.Artist,
		Title:       a.Title,
		Genre:       a.Genre,
		ReleaseDate: a.ReleaseDate,
		CoverPath:   a.CoverPath,
		Shared:      a.Shared,
	}
}
