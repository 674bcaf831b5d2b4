package store

import (
	"io"
	"testing"

	"casamira/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedMaterializesMissingCollections(t *testing.T) {
	logger := zerolog.New(io.Discard)
	s, err := New(t.TempDir(), &logger)
	require.NoError(t, err)

	content := SeedContent{
		Features: []models.Feature{{ID: 1, Title: "Exceptional Service"}},
		Nearby:   []models.NearbyPlace{{ID: 1, Title: "City of Dreams"}, {ID: 2, Title: "Solaire"}},
	}
	users := []models.User{{ID: 1, Username: "admin", Password: "admin123", Role: models.RoleAdmin, Name: "Site Admin"}}

	require.NoError(t, s.Seed(content, users))

	features, err := s.LoadFeatures()
	require.NoError(t, err)
	assert.Len(t, features, 1)

	nearby, err := s.LoadNearby()
	require.NoError(t, err)
	assert.Len(t, nearby, 2)

	feedback, err := s.LoadFeedback()
	require.NoError(t, err)
	assert.Empty(t, feedback)
	assert.False(t, s.missing(models.CollectionFeedback))

	got, err := s.LoadUsers()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "admin", got[0].Username)
}

func TestSeedNeverOverwritesExistingData(t *testing.T) {
	logger := zerolog.New(io.Discard)
	s, err := New(t.TempDir(), &logger)
	require.NoError(t, err)

	existing := []models.Feature{{ID: 5, Title: "Edited By Staff"}}
	require.NoError(t, s.SaveFeatures(existing))

	content := SeedContent{Features: []models.Feature{{ID: 1, Title: "Default"}}}
	require.NoError(t, s.Seed(content, nil))

	features, err := s.LoadFeatures()
	require.NoError(t, err)
	assert.Equal(t, existing, features)
}
