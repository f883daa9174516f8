package search

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/mapping"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/pders01/crate/internal/catalog"
	"github.com/pders01/crate/internal/debuglog"
	"github.com/pders01/crate/internal/storage"
)

var indexedFields = []string{"artist", "album", "genre"}

var (
	_ Searcher = (*BleveEngine)(nil)
	_ Indexer  = (*BleveEngine)(nil)
	_ Counter  = (*BleveEngine)(nil)
)

// BleveEngine keeps a persistent index of album text fields.
type BleveEngine struct {
	idx      bleve.Index
	fallback *Engine
}

// NewBleveEngine creates or opens a Bleve index at indexPath and indexes albums.
func NewBleveEngine(indexPath string, albums []*storage.Album) (*BleveEngine, error) {
	var idx bleve.Index
	var err error

	// Ensure parent directory exists when creating an index
	_ = os.MkdirAll(filepath.Dir(indexPath), 0o755)

	// Try open first
	idx, err = bleve.Open(indexPath)
	if err != nil {
		idx, err = bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, err
		}
	}

	be := &BleveEngine{idx: idx, fallback: NewEngine()}
	if err := be.index(albums); err != nil {
		_ = idx.Close()
		return nil, err
	}
	return be, nil
}

// Fields are indexed whole and lowercased so that wildcard queries give
// substring semantics.
func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = keyword.Name

	dm := bleve.NewDocumentMapping()
	for _, name := range indexedFields {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = keyword.Name
		fm.Store = false
		fm.IncludeTermVectors = false
		dm.AddFieldMappingsAt(name, fm)
	}

	im.DefaultMapping = dm
	return im
}

func docID(id catalog.AlbumID) string {
	return strconv.FormatInt(int64(id), 10)
}

func (b *BleveEngine) index(albums []*storage.Album) error {
	batch := b.idx.NewBatch()
	for _, a := range albums {
		if err := batch.Index(docID(a.ID), map[string]any{
			"artist": strings.ToLower(a.Artist),
			"album":  strings.ToLower(a.Title),
			"genre":  strings.ToLower(a.Genre),
		}); err != nil {
			return err
		}
	}
	return b.idx.Batch(batch)
}

func (b *BleveEngine) Filter(albums []*storage.Album, query string) ([]*storage.Album, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return albums, nil
	}
	// Wildcard metacharacters in the query itself would change its meaning.
	if strings.ContainsAny(query, `*?\`) {
		return b.fallback.Filter(albums, query)
	}

	qs := make([]bleveQuery.Query, 0, len(indexedFields))
	for _, field := range indexedFields {
		wq := bleve.NewWildcardQuery("*" + query + "*")
		wq.SetField(field)
		qs = append(qs, wq)
	}
	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(qs...), max(len(albums), 1), 0, false)
	res, err := b.idx.Search(req)
	if err != nil {
		return nil, err
	}

	hits := make(map[string]struct{}, len(res.Hits))
	for _, h := range res.Hits {
		hits[h.ID] = struct{}{}
	}
	out := make([]*storage.Album, 0, len(hits))
	for _, a := range albums {
		if _, ok := hits[docID(a.ID)]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

// Reindex indexes the provided albums.
func (b *BleveEngine) Reindex(albums []*storage.Album) {
	if err := b.index(albums); err != nil {
		debuglog.Warnf("search index update failed: %v", err)
	}
}

// DocCount reports total documents in the index.
func (b *BleveEngine) DocCount() (int, error) {
	n, err := b.idx.DocCount()
	return int(n), err
}

func (b *BleveEngine) Close() error {
	return b.idx.Close()
}
