package service

import (
	"context"
	"io"
	"testing"

	"casamira/internal/models"
	"casamira/internal/store"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContentService(t *testing.T) *ContentService {
	t.Helper()
	logger := zerolog.New(io.Discard)
	st, err := store.New(t.TempDir(), &logger)
	require.NoError(t, err)
	return NewContentService(st, nil, testLogger())
}

func TestFeatureCRUD(t *testing.T) {
	svc := newContentService(t)
	ctx := context.Background()

	f1 := &models.Feature{Icon: "fas fa-concierge-bell", Title: "Exceptional Service", Description: "World-class hospitality", Image: "lobby.jpg"}
	require.NoError(t, svc.AddFeature(ctx, f1, adminActor))
	assert.Equal(t, int64(1), f1.ID)

	f2 := &models.Feature{Icon: "fas fa-bed", Title: "Luxurious Rooms", Image: "deluxe.jpg"}
	require.NoError(t, svc.AddFeature(ctx, f2, adminActor))
	assert.Equal(t, int64(2), f2.ID)

	// Edit replaces mutable fields in place, preserving order.
	edited := models.Feature{ID: 1, Icon: "fas fa-star", Title: "Five-Star Service", Description: "Updated", Image: "lobby2.jpg"}
	require.NoError(t, svc.EditFeature(ctx, edited, frontOfficeActor))

	features, err := svc.ListFeatures(ctx)
	require.NoError(t, err)
	require.Len(t, features, 2)
	assert.Equal(t, "Five-Star Service", features[0].Title)
	assert.Equal(t, "Luxurious Rooms", features[1].Title)

	require.NoError(t, svc.DeleteFeature(ctx, 1, frontOfficeActor))
	features, err = svc.ListFeatures(ctx)
	require.NoError(t, err)
	require.Len(t, features, 1)
	assert.Equal(t, int64(2), features[0].ID)

	// New additions never reuse a deleted id.
	f3 := &models.Feature{Title: "Recreation"}
	require.NoError(t, svc.AddFeature(ctx, f3, adminActor))
	assert.Equal(t, int64(3), f3.ID)
}

func TestFeatureNotFound(t *testing.T) {
	svc := newContentService(t)
	ctx := context.Background()

	err := svc.EditFeature(ctx, models.Feature{ID: 9}, adminActor)
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = svc.DeleteFeature(ctx, 9, adminActor)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestNearbyCRUD(t *testing.T) {
	svc := newContentService(t)
	ctx := context.Background()

	p := &models.NearbyPlace{Title: "City of Dreams", Description: "Entertainment destination", Image: "cod.jpg", Distance: "2.1 km • 8 min walk"}
	require.NoError(t, svc.AddNearby(ctx, p, frontOfficeActor))
	assert.Equal(t, int64(1), p.ID)

	edited := models.NearbyPlace{ID: 1, Title: "City of Dreams Manila", Description: "Premier destination", Image: "cod.jpg", Distance: "2.0 km"}
	require.NoError(t, svc.EditNearby(ctx, edited, frontOfficeActor))

	nearby, err := svc.ListNearby(ctx)
	require.NoError(t, err)
	require.Len(t, nearby, 1)
	assert.Equal(t, "City of Dreams Manila", nearby[0].Title)
	assert.Equal(t, "2.0 km", nearby[0].Distance)

	require.NoError(t, svc.DeleteNearby(ctx, 1, adminActor))
	nearby, err = svc.ListNearby(ctx)
	require.NoError(t, err)
	assert.Empty(t, nearby)

	err = svc.DeleteNearby(ctx, 1, adminActor)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

// Collections are independent: feature ids do not influence nearby ids.
func TestContentCollectionsIndependent(t *testing.T) {
	svc := newContentService(t)
	ctx := context.Background()

	require.NoError(t, svc.AddFeature(ctx, &models.Feature{Title: "Fine Dining"}, adminActor))
	require.NoError(t, svc.AddFeature(ctx, &models.Feature{Title: "Recreation"}, adminActor))

	p := &models.NearbyPlace{Title: "Landers"}
	require.NoError(t, svc.AddNearby(ctx, p, adminActor))
	assert.Equal(t, int64(1), p.ID)
}
