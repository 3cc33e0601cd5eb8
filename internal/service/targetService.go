package service

import (
	"math"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/hudsonhicksoffish/the-click-continued/internal/models"
	"github.com/hudsonhicksoffish/the-click-continued/internal/store"
)

// TargetService manages the secret daily pixel.
type TargetService struct {
	store *store.Store
}

func NewTargetService(store *store.Store) *TargetService {
	return &TargetService{store: store}
}

// GetOrCreateDailyTarget returns today's target, lazily generating a fresh one
// the first time it is read on a new UTC calendar date. On any lock or storage
// failure it falls back to a fixed default pixel dated today instead of
// propagating, so the game stays playable while storage is unavailable; the
// fallback target is predictable for the rest of that day.
func (s *TargetService) GetOrCreateDailyTarget() *models.DailyTarget {
	today := time.Now().UTC().Format(models.DateLayout)

	if err := s.store.Acquire(store.FamilyTarget); err != nil {
		log.Warnf("daily target unavailable, using fallback: %s", err)
		return s.fallbackTarget(today)
	}
	defer s.store.Release(store.FamilyTarget)

	current, err := s.store.ReadTarget()
	if err != nil {
		log.Warnf("daily target unavailable, using fallback: %s", err)
		return s.fallbackTarget(today)
	}

	if current.TargetDate == today {
		return current
	}

	fresh := models.NewRandomTarget(today, current.Version+1)
	if err := s.store.WriteTarget(fresh); err != nil {
		log.Warnf("unable to persist new daily target, using fallback: %s", err)
		return s.fallbackTarget(today)
	}

	log.Infof("generated new daily target for %s", today)
	return fresh
}

// ForceNewDailyTarget regenerates the target regardless of its date. Used
// right after a win so the next click of the day cannot reuse the just-won
// pixel; errors propagate on this path.
func (s *TargetService) ForceNewDailyTarget() (*models.DailyTarget, error) {
	today := time.Now().UTC().Format(models.DateLayout)

	if err := s.store.Acquire(store.FamilyTarget); err != nil {
		return nil, err
	}
	defer s.store.Release(store.FamilyTarget)

	current, err := s.store.ReadTarget()
	if err != nil {
		return nil, err
	}

	fresh := models.NewRandomTarget(today, current.Version+1)
	if err := s.store.WriteTarget(fresh); err != nil {
		return nil, err
	}

	log.Infof("forced new daily target for %s", today)
	return fresh, nil
}

func (s *TargetService) fallbackTarget(today string) *models.DailyTarget {
	return &models.DailyTarget{
		TargetX:    models.FallbackTargetX,
		TargetY:    models.FallbackTargetY,
		TargetDate: today,
	}
}

// RoundedDistance computes the Euclidean pixel distance from a click to the
// target, rounded to 3 decimal places.
func RoundedDistance(target *models.DailyTarget, x, y float64) float64 {
	dx := float64(target.TargetX) - x
	dy := float64(target.TargetY) - y
	distance := math.Sqrt(dx*dx + dy*dy)
	return math.Round(distance*1000) / 1000
}
