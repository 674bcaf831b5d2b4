package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"casamira/internal/models"

	"github.com/rs/zerolog"
)

// ErrNotFound is returned when an operation targets a record id that is not
// present in its collection.
var ErrNotFound = errors.New("record not found")

// Store persists each collection as a pretty-printed JSON array file under the
// data directory. Collections are lazily materialized: loading a missing file
// yields an empty slice. A save replaces the whole file.
//
// The per-collection mutex serializes individual file operations only. A full
// load-modify-save cycle is not transactional; two concurrent writers race and
// the later save wins.
type Store struct {
	dir    string
	logger *zerolog.Logger

	mu      sync.Mutex
	fileMus map[string]*sync.Mutex
}

func New(dir string, logger *zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	logger.Info().Str("dir", dir).Msg("record store initialized")
	return &Store{
		dir:     dir,
		logger:  logger,
		fileMus: make(map[string]*sync.Mutex),
	}, nil
}

func (s *Store) path(collection string) string {
	return filepath.Join(s.dir, collection+".json")
}

func (s *Store) lock(collection string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.fileMus[collection]
	if !ok {
		m = &sync.Mutex{}
		s.fileMus[collection] = m
	}
	return m
}

// load reads the collection file into out (a pointer to a slice). A missing
// file leaves out untouched and returns nil.
func (s *Store) load(collection string, out any) error {
	m := s.lock(collection)
	m.Lock()
	defer m.Unlock()

	data, err := os.ReadFile(s.path(collection))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read collection %s: %w", collection, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode collection %s: %w", collection, err)
	}
	return nil
}

// save replaces the collection file with the given records. The write goes to
// a temp file first and is moved into place, so readers never observe a
// partially written file.
func (s *Store) save(collection string, records any) error {
	m := s.lock(collection)
	m.Lock()
	defer m.Unlock()

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode collection %s: %w", collection, err)
	}

	tmp, err := os.CreateTemp(s.dir, collection+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", collection, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write collection %s: %w", collection, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close collection %s: %w", collection, err)
	}
	if err := os.Rename(tmpName, s.path(collection)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace collection %s: %w", collection, err)
	}
	return nil
}

func (s *Store) LoadFeatures() ([]models.Feature, error) {
	records := []models.Feature{}
	if err := s.load(models.CollectionFeatures, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Store) SaveFeatures(records []models.Feature) error {
	return s.save(models.CollectionFeatures, records)
}

func (s *Store) LoadNearby() ([]models.NearbyPlace, error) {
	records := []models.NearbyPlace{}
	if err := s.load(models.CollectionNearby, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Store) SaveNearby(records []models.NearbyPlace) error {
	return s.save(models.CollectionNearby, records)
}

func (s *Store) LoadFeedback() ([]models.FeedbackEntry, error) {
	records := []models.FeedbackEntry{}
	if err := s.load(models.CollectionFeedback, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Store) SaveFeedback(records []models.FeedbackEntry) error {
	return s.save(models.CollectionFeedback, records)
}

func (s *Store) LoadUsers() ([]models.User, error) {
	records := []models.User{}
	if err := s.load(models.CollectionUsers, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Store) SaveUsers(records []models.User) error {
	return s.save(models.CollectionUsers, records)
}

func (s *Store) LoadBookings() ([]models.Booking, error) {
	records := []models.Booking{}
	if err := s.load(models.CollectionBookings, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Store) SaveBookings(records []models.Booking) error {
	return s.save(models.CollectionBookings, records)
}

// Dir returns the data directory backing the store.
func (s *Store) Dir() string {
	return s.dir
}

// NextID returns max(existing ids)+1, or 1 for an empty collection. Ids are
// never reused after deletion because the maximum only grows.
func NextID[T any](records []T, id func(T) int64) int64 {
	var max int64
	for _, r := range records {
		if v := id(r); v > max {
			max = v
		}
	}
	return max + 1
}
