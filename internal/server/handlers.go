package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pders01/crate/internal/catalog"
	"github.com/pders01/crate/internal/debuglog"
)

func queryInt(c *gin.Context, key string, def int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return n
}

func albumID(c *gin.Context) (catalog.AlbumID, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		fail(c, http.StatusBadRequest, "Invalid album id")
		return 0, false
	}
	return catalog.AlbumID(id), true
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": false, "error": msg})
}

// failWith maps err to a status: service errors keep their own, rejected
// input is a 400, anything else is a 500 carrying the error text.
func failWith(c *gin.Context, err error) {
	var se *catalog.ServiceError
	if errors.As(err, &se) {
		fail(c, se.Status, catalog.Message(err))
		return
	}
	if catalog.IsValidation(err) {
		fail(c, http.StatusBadRequest, catalog.Message(err))
		return
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		fail(c, http.StatusRequestEntityTooLarge, "File too large")
		return
	}
	debuglog.Errorf("[%s] %s %s: %v", c.GetString(requestIDKey), c.Request.Method, c.Request.URL.Path, err)
	fail(c, http.StatusInternalServerError, err.Error())
}

func (s *Server) listAlbums(c *gin.Context) {
	req := catalog.PageRequest{
		Page:    queryInt(c, "page", 1),
		PerPage: queryInt(c, "per_page", catalog.PageSize),
		Search:  c.Query("search"),
		Filter:  catalog.ParseSharedFilter(c.Query("filter_shared")),
	}
	page, err := s.lib.FetchPage(c.Request.Context(), req)
	if err != nil {
		failWith(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (s *Server) stats(c *gin.Context) {
	stats, err := s.lib.FetchStats(c.Request.Context())
	if err != nil {
		failWith(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) toggleShared(c *gin.Context) {
	id, ok := albumID(c)
	if !ok {
		return
	}
	shared, err := s.lib.SetShared(c.Request.Context(), id)
	if err != nil {
		failWith(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "shared": shared})
}

func (s *Server) updateCover(c *gin.Context) {
	id, ok := albumID(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUploadBytes+1<<20)

	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			failWith(c, err)
			return
		}
	}

	strategy, err := catalog.ParseStrategy(c.PostForm("source"))
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid source")
		return
	}

	upload := catalog.UploadRequest{Strategy: strategy}
	switch strategy {
	case catalog.StrategyFile:
		fh, err := c.FormFile("file")
		if err != nil {
			fail(c, http.StatusBadRequest, "No file selected")
			return
		}
		f, err := fh.Open()
		if err != nil {
			failWith(c, err)
			return
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			failWith(c, err)
			return
		}
		upload.File = &catalog.CoverFile{Name: fh.Filename, Data: data}
	case catalog.StrategyURL:
		upload.URL = c.PostForm("url")
	}

	path, err := s.lib.SetCover(c.Request.Context(), id, upload)
	if err != nil {
		failWith(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "cover_path": path})
}

// rescan finishes the walk even if the client hangs up, so a scan is never
// left half applied.
func (s *Server) rescan(c *gin.Context) {
	summary, err := s.lib.Rescan(context.WithoutCancel(c.Request.Context()))
	if err != nil {
		debuglog.Errorf("[%s] rescan: %v", c.GetString(requestIDKey), err)
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"added":   summary.Added,
		"skipped": summary.Skipped,
	})
}

func (s *Server) cover(c *gin.Context) {
	path, ok := s.lib.ResolveCover(c.Param("path"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Cover not found"})
		return
	}
	c.File(path)
}
