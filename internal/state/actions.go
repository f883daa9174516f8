package state

import "github.com/pders01/crate/internal/catalog"

// Action is anything Reduce understands: user intents and the completions
// of effects.
type Action interface {
	action()
}

type (
	Mount        struct{}
	SetDraft     struct{ Text string }
	CommitSearch struct{}
	SetFilter    struct{ Filter catalog.SharedFilter }
	LoadPage     struct{ Page int }
	NextPage     struct{}
	PrevPage     struct{}
	Reload       struct{}
	RefreshStats struct{}
	ScrollTo     struct{ Offset int }

	ToggleShared struct{ ID catalog.AlbumID }

	OpenCover   struct{ ID catalog.AlbumID }
	SwitchTab   struct{ Tab catalog.Strategy }
	CloseCover  struct{}
	SubmitCover struct{ Upload catalog.UploadRequest }
	CoverFailed struct{ Ref string }
	// InputInvalid reports a local validation failure found while building
	// an upload (for example an unreadable file).
	InputInvalid struct{ Err error }

	TriggerRescan struct{}
)

type (
	PageLoaded struct {
		Token uint64
		Page  catalog.Page
		Err   error
	}
	StatsLoaded struct {
		Token uint64
		Stats catalog.Stats
		Err   error
	}
	SharedToggled struct {
		ID  catalog.AlbumID
		Err error
	}
	CoverUpdated struct {
		ID  catalog.AlbumID
		Err error
	}
	RescanCompleted struct {
		Summary catalog.RescanSummary
		Err     error
	}
)

func (Mount) action()           {}
func (SetDraft) action()        {}
func (CommitSearch) action()    {}
func (SetFilter) action()       {}
func (LoadPage) action()        {}
func (NextPage) action()        {}
func (PrevPage) action()        {}
func (Reload) action()          {}
func (RefreshStats) action()    {}
func (ScrollTo) action()        {}
func (ToggleShared) action()    {}
func (OpenCover) action()       {}
func (SwitchTab) action()       {}
func (CloseCover) action()      {}
func (SubmitCover) action()     {}
func (CoverFailed) action()     {}
func (InputInvalid) action()    {}
func (TriggerRescan) action()   {}
func (PageLoaded) action()      {}
func (StatsLoaded) action()     {}
func (SharedToggled) action()   {}
func (CoverUpdated) action()    {}
func (RescanCompleted) action() {}
