package store

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"casamira/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	logger := zerolog.New(io.Discard)
	s, err := New(t.TempDir(), &logger)
	require.NoError(t, err)
	return s
}

func TestLoadMissingCollectionReturnsEmpty(t *testing.T) {
	s := newTestStore(t)

	bookings, err := s.LoadBookings()
	require.NoError(t, err)
	assert.Empty(t, bookings)

	features, err := s.LoadFeatures()
	require.NoError(t, err)
	assert.Empty(t, features)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)

	features := []models.Feature{
		{ID: 1, Icon: "fas fa-bed", Title: "Luxurious Rooms", Description: "Elegantly designed spaces", Image: "deluxe.jpg"},
		{ID: 2, Icon: "fas fa-utensils", Title: "Fine Dining", Description: "Exquisite cuisine", Image: "resto.jpg"},
	}
	require.NoError(t, s.SaveFeatures(features))

	got, err := s.LoadFeatures()
	require.NoError(t, err)
	assert.Equal(t, features, got)

	// Insertion order is preserved across further round trips.
	features = append(features, models.Feature{ID: 3, Title: "Recreation"})
	require.NoError(t, s.SaveFeatures(features))
	got, err = s.LoadFeatures()
	require.NoError(t, err)
	assert.Equal(t, features, got)
}

func TestSaveWritesPrettyJSONArray(t *testing.T) {
	logger := zerolog.New(io.Discard)
	dir := t.TempDir()
	s, err := New(dir, &logger)
	require.NoError(t, err)

	require.NoError(t, s.SaveNearby([]models.NearbyPlace{
		{ID: 1, Title: "City of Dreams", Distance: "2.1 km • 8 min walk"},
	}))

	data, err := os.ReadFile(filepath.Join(dir, "nearby.json"))
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
	assert.Contains(t, string(data), "\n  ") // indented

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "City of Dreams", decoded[0]["title"])
}

func TestSaveEmptyCollection(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SaveFeedback([]models.FeedbackEntry{}))

	got, err := s.LoadFeedback()
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestLastWriteWins(t *testing.T) {
	s := newTestStore(t)

	base := []models.Booking{{ID: 1, Name: "Jane Doe", Status: models.StatusPending}}
	require.NoError(t, s.SaveBookings(base))

	// Two writers load independent snapshots.
	first, err := s.LoadBookings()
	require.NoError(t, err)
	second, err := s.LoadBookings()
	require.NoError(t, err)

	first[0].Status = models.StatusConfirmed
	require.NoError(t, s.SaveBookings(first))

	// The second writer saves a stale snapshot; its state becomes final and
	// the first writer's change is silently discarded.
	second = append(second, models.Booking{ID: 2, Name: "John Roe", Status: models.StatusPending})
	require.NoError(t, s.SaveBookings(second))

	final, err := s.LoadBookings()
	require.NoError(t, err)
	require.Len(t, final, 2)
	assert.Equal(t, models.StatusPending, final[0].Status)
}

func TestLoadCorruptFileFails(t *testing.T) {
	logger := zerolog.New(io.Discard)
	dir := t.TempDir()
	s, err := New(dir, &logger)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "users.json"), []byte("{not json"), 0o644))

	_, err = s.LoadUsers()
	assert.Error(t, err)
}

func TestNextID(t *testing.T) {
	id := func(b models.Booking) int64 { return b.ID }

	assert.Equal(t, int64(1), NextID([]models.Booking{}, id))
	assert.Equal(t, int64(4), NextID([]models.Booking{{ID: 1}, {ID: 3}}, id))
	// Ids are never reused: a deleted maximum still moves the counter up.
	assert.Equal(t, int64(8), NextID([]models.Booking{{ID: 7}}, id))
}

func TestNewCreatesDataDir(t *testing.T) {
	logger := zerolog.New(io.Discard)
	dir := filepath.Join(t.TempDir(), "nested", "data")

	_, err := New(dir, &logger)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
