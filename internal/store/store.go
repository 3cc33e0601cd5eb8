package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/hudsonhicksoffish/the-click-continued/internal/models"
)

// Family identifies one independently locked record collection.
type Family string

const (
	FamilyState   Family = "state"
	FamilyHistory Family = "history"
	FamilyTarget  Family = "target"
)

var familyFiles = map[Family]string{
	FamilyState:   "jackpot_state.json",
	FamilyHistory: "jackpot_history.json",
	FamilyTarget:  "daily_target.json",
}

var (
	ErrNotFound    = errors.New("record not found")
	ErrCorrupt     = errors.New("record corrupt")
	ErrLockTimeout = errors.New("lock timeout")
)

// Store persists the three record families as human-inspectable JSON files,
// one file per family, each guarded by its own cooperative lock. Writes are
// whole-file overwrites; the family lock is the sole ordering device between
// concurrent read-modify-write sequences.
type Store struct {
	dir   string
	locks map[Family]*familyLock
}

func New(dir string) *Store {
	return &Store{
		dir: dir,
		locks: map[Family]*familyLock{
			FamilyState:   {},
			FamilyHistory: {},
			FamilyTarget:  {},
		},
	}
}

// Initialize creates the storage directory and writes default records for any
// family that has none. Safe to call on every process start.
func (s *Store) Initialize() error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create data dir %s: %w", s.dir, err)
	}

	now := time.Now().UTC()

	if missing, err := s.missing(FamilyState); err != nil {
		return err
	} else if missing {
		state := &models.JackpotState{
			CurrentAmount:  models.BaseJackpot,
			LastUpdate:     now,
			LastModifiedBy: models.SystemActor,
			Version:        1,
		}
		if err := s.WriteJackpot(state); err != nil {
			return err
		}
		log.Infof("initialized %s with default jackpot state", familyFiles[FamilyState])
	}

	if missing, err := s.missing(FamilyHistory); err != nil {
		return err
	} else if missing {
		if err := s.WriteHistory([]models.JackpotHistoryEntry{}); err != nil {
			return err
		}
		log.Infof("initialized %s with empty history", familyFiles[FamilyHistory])
	}

	if missing, err := s.missing(FamilyTarget); err != nil {
		return err
	} else if missing {
		target := models.NewRandomTarget(now.Format(models.DateLayout), 1)
		if err := s.WriteTarget(target); err != nil {
			return err
		}
		log.Infof("initialized %s for %s", familyFiles[FamilyTarget], target.TargetDate)
	}

	return nil
}

// Acquire takes the family lock, polling up to the retry budget.
func (s *Store) Acquire(family Family) error {
	if !s.locks[family].acquire() {
		return fmt.Errorf("%w: failed to acquire %s lock after %d attempts", ErrLockTimeout, family, lockMaxRetries)
	}
	return nil
}

// Release unconditionally frees the family lock. Callers must release on
// every exit path, error paths included.
func (s *Store) Release(family Family) {
	s.locks[family].release()
}

func (s *Store) path(family Family) string {
	return filepath.Join(s.dir, familyFiles[family])
}

func (s *Store) missing(family Family) (bool, error) {
	_, err := os.Stat(s.path(family))
	if err == nil {
		return false, nil
	}
	if os.IsNotExist(err) {
		return true, nil
	}
	return false, fmt.Errorf("probe %s record: %w", family, err)
}

func (s *Store) read(family Family, v any) error {
	data, err := os.ReadFile(s.path(family))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, family)
		}
		return fmt.Errorf("read %s record: %w", family, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s record: %v", ErrCorrupt, family, err)
	}
	return nil
}

func (s *Store) write(family Family, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s record: %w", family, err)
	}
	if err := os.WriteFile(s.path(family), data, 0644); err != nil {
		return fmt.Errorf("write %s record: %w", family, err)
	}
	return nil
}

func (s *Store) ReadJackpot() (*models.JackpotState, error) {
	state := &models.JackpotState{}
	if err := s.read(FamilyState, state); err != nil {
		return nil, err
	}
	return state, nil
}

func (s *Store) WriteJackpot(state *models.JackpotState) error {
	return s.write(FamilyState, state)
}

func (s *Store) ReadHistory() ([]models.JackpotHistoryEntry, error) {
	var history []models.JackpotHistoryEntry
	if err := s.read(FamilyHistory, &history); err != nil {
		return nil, err
	}
	return history, nil
}

func (s *Store) WriteHistory(history []models.JackpotHistoryEntry) error {
	return s.write(FamilyHistory, history)
}

func (s *Store) ReadTarget() (*models.DailyTarget, error) {
	target := &models.DailyTarget{}
	if err := s.read(FamilyTarget, target); err != nil {
		return nil, err
	}
	return target, nil
}

func (s *Store) WriteTarget(target *models.DailyTarget) error {
	return s.write(FamilyTarget, target)
}
