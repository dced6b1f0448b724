package war

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dominion/internal/storage"
)

// Service manages the war lifecycle.
type Service struct {
	store  Store
	scorer *Scorer
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a Service.
//
// Precondition: store, scorer and logger must be non-nil.
func NewService(store Store, scorer *Scorer, logger *zap.Logger) *Service {
	return &Service{store: store, scorer: scorer, logger: logger, now: time.Now}
}

// Declare creates a pending war declared by attacker against defender.
//
// Precondition: attacker and defender are distinct non-zero alliance ids.
// Postcondition: the war is pending until defender accepts it.
func (s *Service) Declare(ctx context.Context, attacker, defender int64, goal GoalType, threshold int64, duration time.Duration) (*War, error) {
	if attacker == 0 || defender == 0 {
		return nil, ErrNoAlliance
	}
	if attacker == defender {
		return nil, ErrSameAlliance
	}
	switch goal {
	case GoalPlunder, GoalVictories, GoalPrestige:
	default:
		return nil, fmt.Errorf("%w: unknown goal type %q", ErrInvalidGoal, goal)
	}
	if threshold <= 0 || duration <= 0 {
		return nil, fmt.Errorf("%w: threshold and duration must be positive", ErrInvalidGoal)
	}
	_, err := s.store.OpenWarBetween(ctx, attacker, defender)
	if err == nil {
		return nil, ErrAlreadyAtWar
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("checking open wars: %w", err)
	}
	w := &War{
		AllianceA:     attacker,
		AllianceB:     defender,
		Status:        StatusPending,
		GoalType:      goal,
		GoalThreshold: threshold,
		Duration:      duration,
		DeclaredAt:    s.now(),
	}
	if err := s.store.InsertWar(ctx, w); err != nil {
		if errors.Is(err, ErrAlreadyAtWar) {
			return nil, ErrAlreadyAtWar
		}
		return nil, fmt.Errorf("inserting war: %w", err)
	}
	s.logger.Info("war declared",
		zap.Int64("war_id", w.ID),
		zap.Int64("attacker_alliance_id", attacker),
		zap.Int64("defender_alliance_id", defender),
		zap.String("goal", string(goal)),
		zap.Int64("threshold", threshold),
	)
	return w, nil
}

// Accept activates a pending war on behalf of the defending alliance.
func (s *Service) Accept(ctx context.Context, warID, allianceID int64) (*War, error) {
	w, err := s.get(ctx, warID)
	if err != nil {
		return nil, err
	}
	if w.AllianceB != allianceID {
		return nil, fmt.Errorf("%w: only the defending alliance may accept", ErrInvalidTransition)
	}
	start := s.now()
	end := start.Add(w.Duration)
	ok, err := s.store.ActivateWar(ctx, warID, start, end)
	if err != nil {
		return nil, fmt.Errorf("activating war %d: %w", warID, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: war %d is %s", ErrInvalidTransition, warID, w.Status)
	}
	w.Status, w.StartedAt, w.EndsAt = StatusActive, &start, &end
	s.logger.Info("war accepted", zap.Int64("war_id", warID))
	return w, nil
}

// Score returns the current score card of the war with warID.
func (s *Service) Score(ctx context.Context, warID int64) (ScoreCard, error) {
	w, err := s.get(ctx, warID)
	if err != nil {
		return ScoreCard{}, err
	}
	return s.scorer.Score(ctx, w)
}

// ConcludeExpired concludes every active war past its end time, awarding
// victory to the side leading on score. Returns the number concluded.
//
// A failure on one war is logged and does not stop the others.
func (s *Service) ConcludeExpired(ctx context.Context, now time.Time) (int, error) {
	wars, err := s.store.ExpiredWars(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("listing expired wars: %w", err)
	}
	concluded := 0
	for _, w := range wars {
		card, err := s.scorer.Score(ctx, w)
		if err != nil {
			s.logger.Warn("scoring expired war failed", zap.Int64("war_id", w.ID), zap.Error(err))
			continue
		}
		ok, err := s.store.ConcludeWar(ctx, w.ID, card.Leader(), now)
		if err != nil {
			s.logger.Warn("concluding expired war failed", zap.Int64("war_id", w.ID), zap.Error(err))
			continue
		}
		if !ok {
			continue
		}
		concluded++
		s.logger.Info("war expired",
			zap.Int64("war_id", w.ID),
			zap.Int64("winner_alliance_id", card.Leader()),
			zap.Int("score_a", card.TotalA),
			zap.Int("score_b", card.TotalB),
		)
	}
	return concluded, nil
}

func (s *Service) get(ctx context.Context, id int64) (*War, error) {
	w, err := s.store.War(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrWarNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading war %d: %w", id, err)
	}
	return w, nil
}
