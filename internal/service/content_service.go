package service

import (
	"context"

	"casamira/internal/domain"
	"casamira/internal/models"
	"casamira/internal/store"

	"github.com/rs/zerolog"
)

// ContentService manages the two display-content collections: feature
// highlights and nearby points of interest. Plain CRUD, no workflow; any
// authenticated staff member may mutate.
type ContentService struct {
	store  domain.RecordStore
	audit  domain.AuditRecorder
	logger *zerolog.Logger
}

func NewContentService(store domain.RecordStore, audit domain.AuditRecorder, logger *zerolog.Logger) *ContentService {
	return &ContentService{store: store, audit: audit, logger: logger}
}

func (s *ContentService) ListFeatures(ctx context.Context) ([]models.Feature, error) {
	return s.store.LoadFeatures()
}

func (s *ContentService) AddFeature(ctx context.Context, feature *models.Feature, actor models.Actor) error {
	features, err := s.store.LoadFeatures()
	if err != nil {
		return err
	}

	feature.ID = store.NextID(features, func(f models.Feature) int64 { return f.ID })
	features = append(features, *feature)
	if err := s.store.SaveFeatures(features); err != nil {
		return err
	}

	s.recordAudit(ctx, actor, "add", "feature", feature.ID)
	s.logger.Info().Int64("feature_id", feature.ID).Str("title", feature.Title).Msg("feature added")
	return nil
}

// EditFeature replaces the mutable fields of the matching record in place,
// keeping its position in the collection.
func (s *ContentService) EditFeature(ctx context.Context, feature models.Feature, actor models.Actor) error {
	features, err := s.store.LoadFeatures()
	if err != nil {
		return err
	}

	idx := -1
	for i := range features {
		if features[i].ID == feature.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.logger.Warn().Int64("feature_id", feature.ID).Msg("edit of missing feature")
		return store.ErrNotFound
	}

	features[idx].Icon = feature.Icon
	features[idx].Title = feature.Title
	features[idx].Description = feature.Description
	features[idx].Image = feature.Image

	if err := s.store.SaveFeatures(features); err != nil {
		return err
	}

	s.recordAudit(ctx, actor, "edit", "feature", feature.ID)
	return nil
}

func (s *ContentService) DeleteFeature(ctx context.Context, id int64, actor models.Actor) error {
	features, err := s.store.LoadFeatures()
	if err != nil {
		return err
	}

	kept := make([]models.Feature, 0, len(features))
	found := false
	for _, f := range features {
		if f.ID == id {
			found = true
			continue
		}
		kept = append(kept, f)
	}
	if !found {
		s.logger.Warn().Int64("feature_id", id).Msg("deletion of missing feature")
		return store.ErrNotFound
	}

	if err := s.store.SaveFeatures(kept); err != nil {
		return err
	}

	s.recordAudit(ctx, actor, "delete", "feature", id)
	return nil
}

func (s *ContentService) ListNearby(ctx context.Context) ([]models.NearbyPlace, error) {
	return s.store.LoadNearby()
}

func (s *ContentService) AddNearby(ctx context.Context, place *models.NearbyPlace, actor models.Actor) error {
	nearby, err := s.store.LoadNearby()
	if err != nil {
		return err
	}

	place.ID = store.NextID(nearby, func(p models.NearbyPlace) int64 { return p.ID })
	nearby = append(nearby, *place)
	if err := s.store.SaveNearby(nearby); err != nil {
		return err
	}

	s.recordAudit(ctx, actor, "add", "nearby", place.ID)
	s.logger.Info().Int64("place_id", place.ID).Str("title", place.Title).Msg("nearby place added")
	return nil
}

func (s *ContentService) EditNearby(ctx context.Context, place models.NearbyPlace, actor models.Actor) error {
	nearby, err := s.store.LoadNearby()
	if err != nil {
		return err
	}

	idx := -1
	for i := range nearby {
		if nearby[i].ID == place.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.logger.Warn().Int64("place_id", place.ID).Msg("edit of missing nearby place")
		return store.ErrNotFound
	}

	nearby[idx].Title = place.Title
	nearby[idx].Description = place.Description
	nearby[idx].Image = place.Image
	nearby[idx].Distance = place.Distance

	if err := s.store.SaveNearby(nearby); err != nil {
		return err
	}

	s.recordAudit(ctx, actor, "edit", "nearby", place.ID)
	return nil
}

func (s *ContentService) DeleteNearby(ctx context.Context, id int64, actor models.Actor) error {
	nearby, err := s.store.LoadNearby()
	if err != nil {
		return err
	}

	kept := make([]models.NearbyPlace, 0, len(nearby))
	found := false
	for _, p := range nearby {
		if p.ID == id {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	if !found {
		s.logger.Warn().Int64("place_id", id).Msg("deletion of missing nearby place")
		return store.ErrNotFound
	}

	if err := s.store.SaveNearby(kept); err != nil {
		return err
	}

	s.recordAudit(ctx, actor, "delete", "nearby", id)
	return nil
}

func (s *ContentService) recordAudit(ctx context.Context, actor models.Actor, action, entity string, entityID int64) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, actor, action, entity, entityID); err != nil {
		s.logger.Error().Err(err).Str("action", action).Str("entity", entity).Msg("audit record error")
	}
}
