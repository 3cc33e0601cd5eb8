package service

import (
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/hudsonhicksoffish/the-click-continued/internal/models"
	"github.com/hudsonhicksoffish/the-click-continued/internal/store"
)

// JackpotService owns the jackpot business rules layered on the record store.
// Mutations return a bool: callers must check it and must not assume the
// jackpot changed on false.
type JackpotService struct {
	store *store.Store
}

func NewJackpotService(store *store.Store) *JackpotService {
	return &JackpotService{store: store}
}

func (s *JackpotService) GetJackpot() (*models.JackpotState, error) {
	return s.store.ReadJackpot()
}

// UpdateJackpot validates and writes a new amount, bumping the record version.
// Rejects amounts outside [0, MaxJackpot]; rounds to 3 decimal places.
func (s *JackpotService) UpdateJackpot(newAmount decimal.Decimal, actorID string) bool {
	if err := s.store.Acquire(store.FamilyState); err != nil {
		log.Errorf("Error updating jackpot: %s", err)
		return false
	}
	defer s.store.Release(store.FamilyState)

	current, err := s.store.ReadJackpot()
	if err != nil {
		log.Errorf("Error updating jackpot: %s", err)
		return false
	}

	if newAmount.IsNegative() || newAmount.GreaterThan(models.MaxJackpot) {
		log.Warnf("rejected jackpot amount %s from %s", newAmount, actorID)
		return false
	}

	updated := &models.JackpotState{
		CurrentAmount:  newAmount.Round(3),
		LastUpdate:     time.Now().UTC(),
		LastModifiedBy: actorID,
		Version:        current.Version + 1,
	}

	if err := s.store.WriteJackpot(updated); err != nil {
		log.Errorf("Error updating jackpot: %s", err)
		return false
	}

	return true
}

// ResetJackpot puts the pot back to a base amount after a win.
func (s *JackpotService) ResetJackpot(baseAmount decimal.Decimal, actorID string) bool {
	return s.UpdateJackpot(baseAmount, actorID)
}

// LogHistory appends one entry to the jackpot history, dropping the oldest
// entries beyond the cap. Best-effort: a failure here is logged and must never
// roll back or block the jackpot mutation that triggered it.
func (s *JackpotService) LogHistory(previousAmount, newAmount decimal.Decimal, actionType, actorID string) bool {
	if err := s.store.Acquire(store.FamilyHistory); err != nil {
		log.Errorf("Error logging jackpot history: %s", err)
		return false
	}
	defer s.store.Release(store.FamilyHistory)

	history, err := s.store.ReadHistory()
	if err != nil {
		log.Errorf("Error logging jackpot history: %s", err)
		return false
	}

	history = append(history, models.JackpotHistoryEntry{
		Timestamp:      time.Now().UTC(),
		PreviousAmount: previousAmount,
		NewAmount:      newAmount,
		ActionType:     actionType,
		UserID:         actorID,
	})

	if len(history) > models.MaxHistoryEntries {
		history = history[len(history)-models.MaxHistoryEntries:]
	}

	if err := s.store.WriteHistory(history); err != nil {
		log.Errorf("Error logging jackpot history: %s", err)
		return false
	}

	return true
}

// GetHistory returns the full history log, oldest first.
func (s *JackpotService) GetHistory() ([]models.JackpotHistoryEntry, error) {
	return s.store.ReadHistory()
}
