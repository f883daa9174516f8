package state

import (
	"fmt"

	"github.com/pders01/crate/internal/catalog"
)

func (s State) triggerRescan() (State, []Effect) {
	if s.Rescanning {
		return s, nil
	}
	s.Rescanning = true
	return s, []Effect{RequestRescan{}}
}

func (s State) rescanCompleted(a RescanCompleted) (State, []Effect) {
	if !s.Rescanning {
		return s, nil
	}
	s.Rescanning = false
	if a.Err != nil {
		return s.notify(NoticeError, "Rescan failed"), nil
	}

	s = s.notify(NoticeSuccess, fmt.Sprintf("Rescan complete. Added: %d, Skipped: %d", a.Summary.Added, a.Summary.Skipped))
	s, stats := s.refreshStats()
	s, page := s.fetch(catalog.DefaultQuery(), 1)
	return s, append(stats, page...)
}
