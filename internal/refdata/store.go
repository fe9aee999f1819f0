package refdata

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"freight-pricing-service/internal/model"
)

// Store publishes reference snapshots. Readers take a snapshot once per
// calculation; writers swap a fully built replacement so no reader observes a
// partially applied change.
type Store struct {
	mu      sync.Mutex
	current atomic.Pointer[Snapshot]
	log     zerolog.Logger
}

func NewStore(initial *Snapshot, log zerolog.Logger) *Store {
	s := &Store{log: log}
	s.current.Store(initial)
	return s
}

func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

func (s *Store) ReplaceRules(rules []model.RateValidationRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.current.Load().withRules(rules)
	if err != nil {
		return err
	}
	s.current.Store(next)
	s.log.Info().Int("rules", len(rules)).Msg("rate validation rules replaced")
	return nil
}

func (s *Store) ReplaceOverrides(businessID uuid.UUID, overrides []model.TollRateOverride) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.current.Load().withOverrides(businessID, overrides)
	if err != nil {
		return err
	}
	s.current.Store(next)
	s.log.Info().Str("business_entity_id", businessID.String()).Int("overrides", len(overrides)).Msg("toll rate overrides replaced")
	return nil
}

// LoadOverrides replaces the override set of every business entity at once.
func (s *Store) LoadOverrides(overrides []model.TollRateOverride) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.current.Load().withAllOverrides(overrides)
	if err != nil {
		return err
	}
	s.current.Store(next)
	s.log.Info().Int("overrides", len(overrides)).Msg("toll rate overrides loaded")
	return nil
}
