package state

import (
	"fmt"
	"maps"

	"github.com/pders01/crate/internal/catalog"
)

func (s State) openCover(id catalog.AlbumID) State {
	if s.Page.Index(id) < 0 {
		return s
	}
	s.Modal = Modal{Open: true, Target: id, Tab: catalog.StrategyFile}
	return s
}

func (s State) switchTab(tab catalog.Strategy) State {
	if !s.Modal.Open || s.Modal.Submitting {
		return s
	}
	s.Modal.Tab = tab
	s.Modal.Err = ""
	return s
}

func (s State) submitCover(req catalog.UploadRequest) (State, []Effect) {
	if !s.Modal.Open || s.Modal.Submitting {
		return s, nil
	}
	if req.Strategy != s.Modal.Tab {
		s.Modal.Err = "Invalid source"
		return s, nil
	}
	if err := req.Validate(); err != nil {
		s.Modal.Err = catalog.Message(err)
		return s, nil
	}
	s.Modal.Submitting = true
	s.Modal.Err = ""
	return s, []Effect{RequestCoverUpdate{ID: s.Modal.Target, Upload: req}}
}

func (s State) inputInvalid(err error) State {
	if !s.Modal.Open || err == nil {
		return s
	}
	s.Modal.Err = catalog.Message(err)
	return s
}

func (s State) coverUpdated(a CoverUpdated) (State, []Effect) {
	current := s.Modal.Open && s.Modal.Target == a.ID
	if current {
		s.Modal.Submitting = false
	}

	if a.Err != nil {
		if current {
			s.Modal.Err = catalog.Message(a.Err)
			return s, nil
		}
		return s.notify(NoticeError, fmt.Sprintf("Failed to upload cover: %s", catalog.Message(a.Err))), nil
	}

	if current {
		s.Modal = Modal{}
	}
	// The new file may reuse the old name.
	if album, ok := s.Page.Album(a.ID); ok && s.broken[album.CoverPath] {
		broken := maps.Clone(s.broken)
		delete(broken, album.CoverPath)
		s.broken = broken
	}
	s = s.notify(NoticeSuccess, "Cover updated successfully!")
	return s.reload()
}

// coverFailed marks ref broken so it falls back to the placeholder and is
// never fetched again.
func (s State) coverFailed(ref string) State {
	if ref == "" || s.broken[ref] {
		return s
	}
	broken := maps.Clone(s.broken)
	if broken == nil {
		broken = make(map[string]bool)
	}
	broken[ref] = true
	s.broken = broken
	return s
}
