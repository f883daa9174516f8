package storage

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/pders01/crate/internal/catalog"
)

var (
	albumsBucket  = []byte("albums")
	foldersBucket = []byte("folders")
)

// ErrDuplicateFolder is returned when an album for the folder already exists.
var ErrDuplicateFolder = errors.New("album folder already exists")

type Store struct {
	db *bolt.DB
}

func NewStore(dbPath string) (*Store, error) {
	return NewStoreWithTimeout(dbPath, 1*time.Second)
}

// NewStoreWithTimeout opens the database, waiting at most timeout for the
// file lock.
func NewStoreWithTimeout(dbPath string, timeout time.Duration) (*Store, error) {
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{albumsBucket, foldersBucket} {
			if _, createErr := tx.CreateBucketIfNotExists(bucket); createErr != nil {
				return createErr
			}
		}
		return nil
	})

	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func idKey(id catalog.AlbumID) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(id))
	return b
}

// AddAlbum assigns the album a fresh ID and stores it. An album with no
// display order is placed after everything added before it.
func (s *Store) AddAlbum(album *Album) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		folders := tx.Bucket(foldersBucket)
		if folders.Get([]byte(album.FolderPath)) != nil {
			return fmt.Errorf("%w: %s", ErrDuplicateFolder, album.FolderPath)
		}

		b := tx.Bucket(albumsBucket)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		album.ID = catalog.AlbumID(seq)
		if album.DisplayOrder == 0 {
			album.DisplayOrder = int(seq)
		}
		if album.CreatedAt.IsZero() {
			album.CreatedAt = time.Now().UTC()
		}

		data, err := json.Marshal(album)
		if err != nil {
			return err
		}
		if err := b.Put(idKey(album.ID), data); err != nil {
			return err
		}
		return folders.Put([]byte(album.FolderPath), idKey(album.ID))
	})
}

// HasFolder reports whether an album was already created for folderPath.
func (s *Store) HasFolder(folderPath string) (bool, error) {
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket(foldersBucket).Get([]byte(folderPath)) != nil
		return nil
	})
	return found, err
}

func getAlbum(tx *bolt.Tx, id catalog.AlbumID) (*Album, error) {
	data := tx.Bucket(albumsBucket).Get(idKey(id))
	if data == nil {
		return nil, fmt.Errorf("album %d: %w", id, catalog.ErrNotFound)
	}
	var album Album
	if err := json.Unmarshal(data, &album); err != nil {
		return nil, err
	}
	return &album, nil
}

func putAlbum(tx *bolt.Tx, album *Album) error {
	data, err := json.Marshal(album)
	if err != nil {
		return err
	}
	return tx.Bucket(albumsBucket).Put(idKey(album.ID), data)
}

func (s *Store) GetAlbum(id catalog.AlbumID) (*Album, error) {
	var album *Album
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		album, err = getAlbum(tx, id)
		return err
	})
	return album, err
}

// GetAllAlbums returns every album in display order.
func (s *Store) GetAllAlbums() ([]*Album, error) {
	var albums []*Album
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(albumsBucket).ForEach(func(_ []byte, v []byte) error {
			var album Album
			if err := json.Unmarshal(v, &album); err != nil {
				return err
			}
			albums = append(albums, &album)
			return nil
		})
	})
	sort.SliceStable(albums, func(i, j int) bool {
		if albums[i].DisplayOrder != albums[j].DisplayOrder {
			return albums[i].DisplayOrder < albums[j].DisplayOrder
		}
		return albums[i].ID < albums[j].ID
	})
	return albums, err
}

// ToggleShared flips the shared flag and returns the new value.
func (s *Store) ToggleShared(id catalog.AlbumID) (bool, error) {
	var shared bool
	err := s.db.Update(func(tx *bolt.Tx) error {
		album, err := getAlbum(tx, id)
		if err != nil {
			return err
		}
		album.Shared = !album.Shared
		shared = album.Shared
		return putAlbum(tx, album)
	})
	return shared, err
}

func (s *Store) SetCoverPath(id catalog.AlbumID, coverPath string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		album, err := getAlbum(tx, id)
		if err != nil {
			return err
		}
		album.CoverPath = coverPath
		return putAlbum(tx, album)
	})
}

// SetDisplayOrder rewrites the display order of the given albums in one
// transaction. IDs that no longer exist are skipped.
func (s *Store) SetDisplayOrder(order map[catalog.AlbumID]int) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for id, pos := range order {
			album, err := getAlbum(tx, id)
			if errors.Is(err, catalog.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			album.DisplayOrder = pos
			if err := putAlbum(tx, album); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) Count() (int, error) {
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(albumsBucket).Stats().KeyN
		return nil
	})
	return n, err
}
