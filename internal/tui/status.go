package tui

import (
	"fmt"

	"github.com/pders01/crate/internal/state"
)

// StatusKind indicates severity for status messages.
type StatusKind int

const (
	StatusInfo StatusKind = iota
	StatusSuccess
	StatusWarn
	StatusError
)

const (
	MsgLoading    = "Loading albums…"
	MsgRescanning = "Rescanning library…"
	MsgUploading  = "Uploading cover…"
	MsgNoAlbums   = "No albums match"
	MsgNoCover    = "Album has no cover; showing placeholder"
)

func MsgPageSummary(number, totalPages, total int) string {
	noun := "albums"
	if total == 1 {
		noun = "album"
	}
	return fmt.Sprintf("page %d/%d • %d %s", number, max(totalPages, 1), total, noun)
}

func noticeKind(k state.NoticeKind) StatusKind {
	switch k {
	case state.NoticeSuccess:
		return StatusSuccess
	case state.NoticeError:
		return StatusError
	default:
		return StatusInfo
	}
}

func statusStyle(k StatusKind) func(...string) string {
	switch k {
	case StatusSuccess:
		return StatusSuccessStyle.Render
	case StatusWarn:
		return StatusWarnStyle.Render
	case StatusError:
		return StatusErrorStyle.Render
	default:
		return StatusInfoStyle.Render
	}
}

func statusIcon(k StatusKind) string {
	switch k {
	case StatusSuccess:
		return "✓ "
	case StatusWarn:
		return "! "
	case StatusError:
		return "✗ "
	default:
		return ""
	}
}
