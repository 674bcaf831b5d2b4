package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"casamira/internal/auth"
	"casamira/internal/domain"
	"casamira/internal/events"
	"casamira/internal/metrics"
	"casamira/internal/models"
	"casamira/internal/store"

	"github.com/rs/zerolog"
)

// ErrInvalidStatus is returned when a status outside the three known values
// is submitted.
var ErrInvalidStatus = errors.New("unknown booking status")

// BookingService implements the booking lifecycle over the record store.
// Every operation is a full load-mutate-save of the bookings collection;
// concurrent writers race and the later save wins.
type BookingService struct {
	store    domain.RecordStore
	eventBus domain.EventPublisher
	audit    domain.AuditRecorder
	logger   *zerolog.Logger
}

func NewBookingService(store domain.RecordStore, eventBus domain.EventPublisher, audit domain.AuditRecorder, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		store:    store,
		eventBus: eventBus,
		audit:    audit,
		logger:   logger,
	}
}

// Create assigns the next id and pending status. Guest-submitted fields are
// stored as-is, without field validation.
func (s *BookingService) Create(ctx context.Context, booking *models.Booking) error {
	bookings, err := s.store.LoadBookings()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	booking.ID = store.NextID(bookings, func(b models.Booking) int64 { return b.ID })
	booking.Status = models.StatusPending
	booking.CreatedAt = now
	booking.UpdatedAt = now

	bookings = append(bookings, *booking)
	if err := s.store.SaveBookings(bookings); err != nil {
		return err
	}

	metrics.IncBookingCreated()
	s.publishEvent(events.EventBookingCreated, *booking, models.Actor{})
	s.logger.Info().Int64("booking_id", booking.ID).Str("room_type", booking.RoomType).Msg("booking created")
	return nil
}

func (s *BookingService) List(ctx context.Context) ([]models.Booking, error) {
	return s.store.LoadBookings()
}

func (s *BookingService) Get(ctx context.Context, id int64) (*models.Booking, error) {
	bookings, err := s.store.LoadBookings()
	if err != nil {
		return nil, err
	}
	for i := range bookings {
		if bookings[i].ID == id {
			return &bookings[i], nil
		}
	}
	return nil, store.ErrNotFound
}

// SetStatus moves the booking to any of the three statuses. There is no
// transition table: a cancelled booking may be reopened to pending. Open to
// every authenticated staff role.
func (s *BookingService) SetStatus(ctx context.Context, id int64, status string, actor models.Actor) (*models.Booking, error) {
	if !models.ValidStatus(status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	bookings, err := s.store.LoadBookings()
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range bookings {
		if bookings[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.logger.Warn().Int64("booking_id", id).Str("status", status).Msg("status change for missing booking")
		return nil, store.ErrNotFound
	}

	bookings[idx].Status = status
	bookings[idx].UpdatedAt = time.Now().UTC()

	if err := s.store.SaveBookings(bookings); err != nil {
		return nil, err
	}

	updated := bookings[idx]
	metrics.IncBookingStatus(status)
	s.publishEvent(events.EventBookingStatusChanged, updated, actor)
	s.recordAudit(ctx, actor, "set_status_"+status, "booking", id)
	s.logger.Info().Int64("booking_id", id).Str("status", status).Int64("actor_id", actor.UserID).Msg("booking status changed")
	return &updated, nil
}

// Delete removes the booking. Admin role only; front_office receives
// ErrForbidden and nothing is written.
func (s *BookingService) Delete(ctx context.Context, id int64, actor models.Actor) error {
	if err := auth.Require(actor, auth.CapDeleteBooking); err != nil {
		s.logger.Warn().Int64("booking_id", id).Str("role", actor.Role).Msg("booking deletion denied")
		return err
	}

	bookings, err := s.store.LoadBookings()
	if err != nil {
		return err
	}

	kept := make([]models.Booking, 0, len(bookings))
	var deleted *models.Booking
	for i := range bookings {
		if bookings[i].ID == id {
			deleted = &bookings[i]
			continue
		}
		kept = append(kept, bookings[i])
	}
	if deleted == nil {
		s.logger.Warn().Int64("booking_id", id).Msg("deletion of missing booking")
		return store.ErrNotFound
	}

	if err := s.store.SaveBookings(kept); err != nil {
		return err
	}

	s.publishEvent(events.EventBookingDeleted, *deleted, actor)
	s.recordAudit(ctx, actor, "delete", "booking", id)
	s.logger.Info().Int64("booking_id", id).Int64("actor_id", actor.UserID).Msg("booking deleted")
	return nil
}

func (s *BookingService) publishEvent(eventType string, booking models.Booking, actor models.Actor) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID: booking.ID,
		GuestName: booking.Name,
		RoomType:  booking.RoomType,
		CheckIn:   booking.CheckIn,
		CheckOut:  booking.CheckOut,
		Guests:    booking.Guests,
		Status:    booking.Status,
		ChangedBy: actor.Name,
		ChangedID: actor.UserID,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}

func (s *BookingService) recordAudit(ctx context.Context, actor models.Actor, action, entity string, entityID int64) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, actor, action, entity, entityID); err != nil {
		s.logger.Error().Err(err).Str("action", action).Msg("audit record error")
	}
}
