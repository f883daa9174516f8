package tui

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/crate/internal/catalog"
	"github.com/pders01/crate/internal/debuglog"
	"github.com/pders01/crate/internal/state"
	"github.com/pders01/crate/internal/validation"
)

// coverOpenedMsg reports the outcome of launching the viewer. FailedRef is
// set when the album's own cover could not be reached and the placeholder
// was opened instead.
type coverOpenedMsg struct {
	Target    string
	FailedRef string
	Err       error
}

func (a *App) requestContext() (context.Context, context.CancelFunc) {
	timeout := a.config.Server.HTTPTimeout
	if timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), timeout)
}

// effectCmd runs one reducer effect against the service and reports back
// with the matching completion action.
func (a *App) effectCmd(e state.Effect) tea.Cmd {
	svc := a.service
	switch e := e.(type) {
	case state.FetchPage:
		req := e.Request
		if ps := a.config.Server.PageSize; ps > 0 {
			req.PerPage = ps
		}
		return func() tea.Msg {
			ctx, cancel := a.requestContext()
			defer cancel()
			page, err := svc.FetchPage(ctx, req)
			if err != nil {
				debuglog.WithFields(map[string]any{"page": req.Page, "search": req.Search}).
					Errorf("fetch page: %v", err)
				err = fmt.Errorf("fetch page %d: %w", req.Page, err)
			}
			return state.PageLoaded{Token: e.Token, Page: page, Err: err}
		}

	case state.FetchStats:
		return func() tea.Msg {
			ctx, cancel := a.requestContext()
			defer cancel()
			stats, err := svc.FetchStats(ctx)
			if err != nil {
				debuglog.Errorf("fetch stats: %v", err)
				err = fmt.Errorf("fetch stats: %w", err)
			}
			return state.StatsLoaded{Token: e.Token, Stats: stats, Err: err}
		}

	case state.RequestToggle:
		return func() tea.Msg {
			ctx, cancel := a.requestContext()
			defer cancel()
			err := svc.ToggleShared(ctx, e.ID)
			if err != nil {
				debuglog.WithFields(map[string]any{"album": e.ID}).Errorf("toggle shared: %v", err)
				err = fmt.Errorf("toggle album %d: %w", e.ID, err)
			}
			return state.SharedToggled{ID: e.ID, Err: err}
		}

	case state.RequestCoverUpdate:
		return func() tea.Msg {
			ctx, cancel := a.requestContext()
			defer cancel()
			err := svc.UpdateCover(ctx, e.ID, e.Upload)
			if err != nil {
				debuglog.WithFields(map[string]any{"album": e.ID, "source": e.Upload.Strategy.String()}).
					Errorf("update cover: %v", err)
				err = fmt.Errorf("update cover for album %d: %w", e.ID, err)
			}
			return state.CoverUpdated{ID: e.ID, Err: err}
		}

	case state.RequestRescan:
		// A full library walk can take far longer than one request timeout.
		return func() tea.Msg {
			summary, err := svc.Rescan(context.Background())
			if err != nil {
				debuglog.Errorf("rescan: %v", err)
			} else {
				debuglog.Infof("rescan: added %d, skipped %d", summary.Added, summary.Skipped)
			}
			return state.RescanCompleted{Summary: summary, Err: err}
		}
	}

	debuglog.Warnf("unhandled effect %T", e)
	return nil
}

// submitCover builds the upload for the active tab. File uploads are read
// off the UI loop; URL input is checked locally before it is submitted.
func (a *App) submitCover() tea.Cmd {
	switch a.state.Modal.Tab {
	case catalog.StrategyFile:
		return a.readCoverCmd(a.fileInput.Value())

	case catalog.StrategyURL:
		raw := strings.TrimSpace(a.urlInput.Value())
		if raw == "" {
			return a.dispatch(state.SubmitCover{Upload: catalog.URLUpload(raw)})
		}
		normalized, err := validation.NewPermissiveCoverURLValidator().ValidateAndNormalize(raw)
		if err != nil {
			return a.dispatch(state.InputInvalid{Err: inputError("url", err)})
		}
		return a.dispatch(state.SubmitCover{Upload: catalog.URLUpload(normalized)})

	default:
		return a.dispatch(state.SubmitCover{Upload: catalog.APIUpload()})
	}
}

func (a *App) readCoverCmd(path string) tea.Cmd {
	validator := validation.NewCoverFileValidator(a.config.Library.MaxUploadBytes)
	path = strings.TrimSpace(path)
	return func() tea.Msg {
		if path == "" {
			return state.SubmitCover{Upload: catalog.UploadRequest{Strategy: catalog.StrategyFile}}
		}
		cleaned, err := validator.Validate(path)
		if err != nil {
			return state.InputInvalid{Err: inputError("file", err)}
		}
		data, err := os.ReadFile(cleaned)
		if err != nil {
			return state.InputInvalid{Err: inputError("file", err)}
		}
		return state.SubmitCover{Upload: catalog.FileUpload(filepath.Base(cleaned), data)}
	}
}

// inputError wraps a local validation failure so the modal shows it inline.
func inputError(field string, err error) error {
	msg := err.Error()
	if r, size := utf8.DecodeRuneInString(msg); r != utf8.RuneError {
		msg = string(unicode.ToUpper(r)) + msg[size:]
	}
	return &catalog.ValidationError{Field: field, Message: msg}
}

// openCoverCmd launches the viewer on the album's cover, falling back to the
// placeholder when the cover cannot be reached.
func (a *App) openCoverCmd(album catalog.Album) tea.Cmd {
	ref := a.state.CoverRef(album)
	target := a.resolveCover(ref)
	placeholder := a.resolveCover(catalog.PlaceholderCover)
	launcher := a.launcher
	client := a.probe

	return func() tea.Msg {
		if ref != "" {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := probeCover(ctx, client, target)
			cancel()
			if err == nil {
				return coverOpenedMsg{Target: target, Err: launcher.Open(target)}
			}
			debuglog.WithFields(map[string]any{"album": album.ID, "cover": ref}).
				Warnf("cover unreachable: %v", err)
			return coverOpenedMsg{Target: placeholder, FailedRef: ref, Err: openPlaceholder(launcher, placeholder)}
		}
		return coverOpenedMsg{Target: placeholder, Err: openPlaceholder(launcher, placeholder)}
	}
}

// errNoPlaceholder means the service offers no placeholder to fall back to.
var errNoPlaceholder = errors.New("no cover available")

func openPlaceholder(launcher opener, target string) error {
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		if _, err := os.Stat(target); err != nil {
			return errNoPlaceholder
		}
	}
	return launcher.Open(target)
}

// probeCover checks that target is a reachable URL or an existing file.
func probeCover(ctx context.Context, client *http.Client, target string) error {
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		resp.Body.Close()
		if resp.StatusCode >= 400 {
			return fmt.Errorf("HTTP %d", resp.StatusCode)
		}
		return nil
	}

	info, err := os.Stat(target)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("not a file: %s", target)
	}
	return nil
}

func (a *App) coverOpened(msg coverOpenedMsg) tea.Cmd {
	var cmd tea.Cmd
	if msg.FailedRef != "" {
		cmd = a.dispatch(state.CoverFailed{Ref: msg.FailedRef})
	}
	switch {
	case msg.Err != nil:
		a.setStatus(fmt.Sprintf("Cannot open cover: %v", msg.Err), StatusWarn)
	case msg.FailedRef != "":
		a.setStatus(MsgNoCover, StatusWarn)
	default:
		a.setStatus("Opened "+truncateMiddle(msg.Target, 60), StatusInfo)
	}
	return cmd
}
