package service

import (
	"context"
	"time"

	"casamira/internal/domain"
	"casamira/internal/events"
	"casamira/internal/metrics"
	"casamira/internal/models"
	"casamira/internal/store"

	"github.com/rs/zerolog"
)

// feedbackDateLayout matches the display format the entries were always
// stored with.
const feedbackDateLayout = "2006-01-02 15:04:05"

// FeedbackService handles public intake and admin review of guest feedback.
type FeedbackService struct {
	store    domain.RecordStore
	eventBus domain.EventPublisher
	audit    domain.AuditRecorder
	logger   *zerolog.Logger
}

func NewFeedbackService(store domain.RecordStore, eventBus domain.EventPublisher, audit domain.AuditRecorder, logger *zerolog.Logger) *FeedbackService {
	return &FeedbackService{
		store:    store,
		eventBus: eventBus,
		audit:    audit,
		logger:   logger,
	}
}

// Submit appends a public feedback entry, unread, stamped with the current
// time. No actor: this is the one unauthenticated mutation in the system.
func (s *FeedbackService) Submit(ctx context.Context, entry *models.FeedbackEntry) error {
	list, err := s.store.LoadFeedback()
	if err != nil {
		return err
	}

	entry.ID = store.NextID(list, func(e models.FeedbackEntry) int64 { return e.ID })
	entry.Date = time.Now().Format(feedbackDateLayout)
	entry.Read = false

	list = append(list, *entry)
	if err := s.store.SaveFeedback(list); err != nil {
		return err
	}

	metrics.IncFeedback()
	if s.eventBus != nil {
		payload := events.FeedbackEventPayload{
			FeedbackID: entry.ID,
			Name:       entry.Name,
			Email:      entry.Email,
			Message:    entry.Message,
		}
		if err := s.eventBus.PublishJSON(events.EventFeedbackReceived, payload); err != nil {
			s.logger.Error().Err(err).Int64("feedback_id", entry.ID).Msg("publish event error")
		}
	}

	s.logger.Info().Int64("feedback_id", entry.ID).Msg("feedback submitted")
	return nil
}

func (s *FeedbackService) List(ctx context.Context) ([]models.FeedbackEntry, error) {
	return s.store.LoadFeedback()
}

// MarkRead flips the read flag. The flag is one-way; there is no unread
// operation.
func (s *FeedbackService) MarkRead(ctx context.Context, id int64, actor models.Actor) error {
	list, err := s.store.LoadFeedback()
	if err != nil {
		return err
	}

	idx := -1
	for i := range list {
		if list[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.logger.Warn().Int64("feedback_id", id).Msg("mark read of missing feedback")
		return store.ErrNotFound
	}

	list[idx].Read = true
	if err := s.store.SaveFeedback(list); err != nil {
		return err
	}

	s.recordAudit(ctx, actor, "mark_read", "feedback", id)
	return nil
}

func (s *FeedbackService) Delete(ctx context.Context, id int64, actor models.Actor) error {
	list, err := s.store.LoadFeedback()
	if err != nil {
		return err
	}

	kept := make([]models.FeedbackEntry, 0, len(list))
	found := false
	for _, e := range list {
		if e.ID == id {
			found = true
			continue
		}
		kept = append(kept, e)
	}
	if !found {
		s.logger.Warn().Int64("feedback_id", id).Msg("deletion of missing feedback")
		return store.ErrNotFound
	}

	if err := s.store.SaveFeedback(kept); err != nil {
		return err
	}

	s.recordAudit(ctx, actor, "delete", "feedback", id)
	return nil
}

func (s *FeedbackService) recordAudit(ctx context.Context, actor models.Actor, action, entity string, entityID int64) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, actor, action, entity, entityID); err != nil {
		s.logger.Error().Err(err).Str("action", action).Msg("audit record error")
	}
}
