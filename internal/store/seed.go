package store

import (
	"os"

	"casamira/internal/models"
)

// SeedContent is the default public content written on first run, read from
// the seed file in main.
type SeedContent struct {
	Features []models.Feature     `yaml:"features"`
	Nearby   []models.NearbyPlace `yaml:"nearby"`
}

// Seed materializes collections that do not exist yet. Existing files are
// never touched, so re-running against a populated data dir is a no-op.
func (s *Store) Seed(content SeedContent, users []models.User) error {
	if missing := s.missing(models.CollectionFeatures); missing && len(content.Features) > 0 {
		if err := s.SaveFeatures(content.Features); err != nil {
			return err
		}
		s.logger.Info().Int("count", len(content.Features)).Msg("seeded features")
	}

	if missing := s.missing(models.CollectionNearby); missing && len(content.Nearby) > 0 {
		if err := s.SaveNearby(content.Nearby); err != nil {
			return err
		}
		s.logger.Info().Int("count", len(content.Nearby)).Msg("seeded nearby places")
	}

	if s.missing(models.CollectionFeedback) {
		if err := s.SaveFeedback([]models.FeedbackEntry{}); err != nil {
			return err
		}
	}

	if missing := s.missing(models.CollectionUsers); missing && len(users) > 0 {
		if err := s.SaveUsers(users); err != nil {
			return err
		}
		s.logger.Info().Int("count", len(users)).Msg("seeded staff users")
	}

	return nil
}

func (s *Store) missing(collection string) bool {
	_, err := os.Stat(s.path(collection))
	return os.IsNotExist(err)
}
