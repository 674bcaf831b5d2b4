package service

import (
	"context"
	"io"
	"testing"
	"time"

	"casamira/internal/auth"
	"casamira/internal/models"
	"casamira/internal/store"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) LoadFeatures() ([]models.Feature, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Feature), args.Error(1)
}
func (m *mockStore) SaveFeatures(records []models.Feature) error {
	return m.Called(records).Error(0)
}
func (m *mockStore) LoadNearby() ([]models.NearbyPlace, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.NearbyPlace), args.Error(1)
}
func (m *mockStore) SaveNearby(records []models.NearbyPlace) error {
	return m.Called(records).Error(0)
}
func (m *mockStore) LoadFeedback() ([]models.FeedbackEntry, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.FeedbackEntry), args.Error(1)
}
func (m *mockStore) SaveFeedback(records []models.FeedbackEntry) error {
	return m.Called(records).Error(0)
}
func (m *mockStore) LoadUsers() ([]models.User, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}
func (m *mockStore) SaveUsers(records []models.User) error {
	return m.Called(records).Error(0)
}
func (m *mockStore) LoadBookings() ([]models.Booking, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}
func (m *mockStore) SaveBookings(records []models.Booking) error {
	return m.Called(records).Error(0)
}

type mockBus struct {
	mock.Mock
}

func (m *mockBus) PublishJSON(eventType string, payload interface{}) error {
	return m.Called(eventType, payload).Error(0)
}

type mockAudit struct {
	mock.Mock
}

func (m *mockAudit) Record(ctx context.Context, actor models.Actor, action, entity string, entityID int64) error {
	return m.Called(ctx, actor, action, entity, entityID).Error(0)
}

func testLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

var (
	adminActor       = models.Actor{UserID: 1, Role: models.RoleAdmin, Name: "Site Admin"}
	frontOfficeActor = models.Actor{UserID: 2, Role: models.RoleFrontOffice, Name: "Front Desk"}
)

func TestBookingCreate(t *testing.T) {
	ms := new(mockStore)
	bus := new(mockBus)
	ms.On("LoadBookings").Return([]models.Booking{{ID: 4, Status: models.StatusConfirmed}}, nil)
	ms.On("SaveBookings", mock.Anything).Return(nil)
	bus.On("PublishJSON", "booking_created", mock.Anything).Return(nil)

	svc := NewBookingService(ms, bus, nil, testLogger())

	booking := &models.Booking{Name: "Jane Doe", Email: "j@x.com", RoomType: "Deluxe", Guests: 2}
	require.NoError(t, svc.Create(context.Background(), booking))

	assert.Equal(t, int64(5), booking.ID)
	assert.Equal(t, models.StatusPending, booking.Status)
	assert.Equal(t, booking.CreatedAt, booking.UpdatedAt)
	assert.False(t, booking.CreatedAt.IsZero())

	saved := ms.Calls[1].Arguments.Get(0).([]models.Booking)
	require.Len(t, saved, 2)
	assert.Equal(t, int64(5), saved[1].ID)
	bus.AssertExpectations(t)
}

func TestBookingSetStatus(t *testing.T) {
	created := time.Now().UTC().Add(-time.Hour)
	existing := []models.Booking{{ID: 1, Name: "Jane Doe", Status: models.StatusPending, CreatedAt: created, UpdatedAt: created}}

	ms := new(mockStore)
	bus := new(mockBus)
	aud := new(mockAudit)
	ms.On("LoadBookings").Return(existing, nil)
	ms.On("SaveBookings", mock.Anything).Return(nil)
	bus.On("PublishJSON", "booking_status_changed", mock.Anything).Return(nil)
	aud.On("Record", mock.Anything, frontOfficeActor, "set_status_confirmed", "booking", int64(1)).Return(nil)

	svc := NewBookingService(ms, bus, aud, testLogger())

	updated, err := svc.SetStatus(context.Background(), 1, models.StatusConfirmed, frontOfficeActor)
	require.NoError(t, err)

	assert.Equal(t, models.StatusConfirmed, updated.Status)
	assert.Equal(t, created, updated.CreatedAt)
	assert.True(t, !updated.UpdatedAt.Before(created))
	aud.AssertExpectations(t)
}

func TestBookingSetStatusFreeGraph(t *testing.T) {
	// No transition table: cancelled may go back to pending.
	existing := []models.Booking{{ID: 1, Status: models.StatusCancelled, CreatedAt: time.Now(), UpdatedAt: time.Now()}}

	ms := new(mockStore)
	ms.On("LoadBookings").Return(existing, nil)
	ms.On("SaveBookings", mock.Anything).Return(nil)

	svc := NewBookingService(ms, nil, nil, testLogger())

	updated, err := svc.SetStatus(context.Background(), 1, models.StatusPending, adminActor)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, updated.Status)
}

func TestBookingSetStatusInvalid(t *testing.T) {
	svc := NewBookingService(new(mockStore), nil, nil, testLogger())

	_, err := svc.SetStatus(context.Background(), 1, "completed", adminActor)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestBookingSetStatusNotFound(t *testing.T) {
	ms := new(mockStore)
	ms.On("LoadBookings").Return([]models.Booking{}, nil)

	svc := NewBookingService(ms, nil, nil, testLogger())

	_, err := svc.SetStatus(context.Background(), 42, models.StatusConfirmed, adminActor)
	assert.ErrorIs(t, err, store.ErrNotFound)
	ms.AssertNotCalled(t, "SaveBookings", mock.Anything)
}

func TestBookingDeleteForbiddenForFrontOffice(t *testing.T) {
	ms := new(mockStore)
	svc := NewBookingService(ms, nil, nil, testLogger())

	err := svc.Delete(context.Background(), 1, frontOfficeActor)
	assert.ErrorIs(t, err, auth.ErrForbidden)

	// Nothing was read or written; the collection is untouched.
	ms.AssertNotCalled(t, "LoadBookings")
	ms.AssertNotCalled(t, "SaveBookings", mock.Anything)
}

func TestBookingDeleteAsAdmin(t *testing.T) {
	existing := []models.Booking{
		{ID: 1, Name: "Jane Doe", Status: models.StatusConfirmed},
		{ID: 2, Name: "John Roe", Status: models.StatusPending},
	}

	ms := new(mockStore)
	bus := new(mockBus)
	aud := new(mockAudit)
	ms.On("LoadBookings").Return(existing, nil)
	ms.On("SaveBookings", mock.Anything).Return(nil)
	bus.On("PublishJSON", "booking_deleted", mock.Anything).Return(nil)
	aud.On("Record", mock.Anything, adminActor, "delete", "booking", int64(1)).Return(nil)

	svc := NewBookingService(ms, bus, aud, testLogger())

	require.NoError(t, svc.Delete(context.Background(), 1, adminActor))

	saved := ms.Calls[1].Arguments.Get(0).([]models.Booking)
	require.Len(t, saved, 1)
	assert.Equal(t, int64(2), saved[0].ID)
	assert.Equal(t, models.StatusPending, saved[0].Status)
	aud.AssertExpectations(t)
}

func TestBookingDeleteNotFound(t *testing.T) {
	ms := new(mockStore)
	ms.On("LoadBookings").Return([]models.Booking{{ID: 2}}, nil)

	svc := NewBookingService(ms, nil, nil, testLogger())

	err := svc.Delete(context.Background(), 99, adminActor)
	assert.ErrorIs(t, err, store.ErrNotFound)
	ms.AssertNotCalled(t, "SaveBookings", mock.Anything)
}

// TestBookingLifecycle runs the full create/confirm/delete flow against the
// real file store.
func TestBookingLifecycle(t *testing.T) {
	logger := zerolog.New(io.Discard)
	st, err := store.New(t.TempDir(), &logger)
	require.NoError(t, err)

	svc := NewBookingService(st, nil, nil, testLogger())
	ctx := context.Background()

	booking := &models.Booking{
		Name:     "Jane Doe",
		Email:    "j@x.com",
		RoomType: "Deluxe",
		CheckIn:  "2024-06-01",
		CheckOut: "2024-06-03",
		Guests:   2,
	}
	require.NoError(t, svc.Create(ctx, booking))
	assert.Equal(t, int64(1), booking.ID)
	assert.Equal(t, models.StatusPending, booking.Status)
	assert.Equal(t, booking.CreatedAt, booking.UpdatedAt)

	updated, err := svc.SetStatus(ctx, 1, models.StatusConfirmed, adminActor)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, updated.Status)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt) || updated.UpdatedAt.Equal(updated.CreatedAt))
	assert.Equal(t, booking.CreatedAt, updated.CreatedAt)

	// front_office may not delete; the collection stays intact.
	err = svc.Delete(ctx, 1, frontOfficeActor)
	assert.ErrorIs(t, err, auth.ErrForbidden)

	remaining, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, models.StatusConfirmed, remaining[0].Status)
	assert.Equal(t, updated.UpdatedAt, remaining[0].UpdatedAt)

	require.NoError(t, svc.Delete(ctx, 1, adminActor))
	remaining, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}
