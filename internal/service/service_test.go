package service

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/hudsonhicksoffish/the-click-continued/internal/models"
	"github.com/hudsonhicksoffish/the-click-continued/internal/store"
)

func newTestServices(t *testing.T) (*JackpotService, *TargetService, *store.Store) {
	t.Helper()
	st := store.New(t.TempDir())
	require.NoError(t, st.Initialize())
	return NewJackpotService(st), NewTargetService(st), st
}

// brokenStore points at a path that is a regular file so every read fails.
func brokenStore(t *testing.T) *store.Store {
	t.Helper()
	blocked := filepath.Join(t.TempDir(), "blocked")
	require.NoError(t, os.WriteFile(blocked, []byte("x"), 0644))
	return store.New(blocked)
}

func TestUpdateJackpotRoundsAndBumpsVersion(t *testing.T) {
	jackpot, _, st := newTestServices(t)

	ok := jackpot.UpdateJackpot(decimal.RequireFromString("150.12345"), "conn-1")
	require.True(t, ok)

	state, err := st.ReadJackpot()
	require.NoError(t, err)
	require.True(t, decimal.RequireFromString("150.123").Equal(state.CurrentAmount))
	require.Equal(t, "conn-1", state.LastModifiedBy)
	require.Equal(t, int64(2), state.Version)
}

func TestUpdateJackpotRejectsOutOfRange(t *testing.T) {
	jackpot, _, st := newTestServices(t)

	require.False(t, jackpot.UpdateJackpot(decimal.RequireFromString("-0.001"), "conn-1"))
	require.False(t, jackpot.UpdateJackpot(decimal.RequireFromString("10000000.001"), "conn-1"))

	state, err := st.ReadJackpot()
	require.NoError(t, err)
	require.True(t, models.BaseJackpot.Equal(state.CurrentAmount))
	require.Equal(t, int64(1), state.Version, "rejected update must not bump version")
}

func TestUpdateJackpotAcceptsBoundaryAmounts(t *testing.T) {
	jackpot, _, st := newTestServices(t)

	require.True(t, jackpot.UpdateJackpot(decimal.Zero, "conn-1"))
	require.True(t, jackpot.UpdateJackpot(models.MaxJackpot, "conn-1"))

	state, err := st.ReadJackpot()
	require.NoError(t, err)
	require.Equal(t, int64(3), state.Version)
}

func TestUpdateJackpotFailsOnBrokenStore(t *testing.T) {
	jackpot := NewJackpotService(brokenStore(t))
	require.False(t, jackpot.UpdateJackpot(models.BaseJackpot, "conn-1"))
}

func TestResetJackpot(t *testing.T) {
	jackpot, _, st := newTestServices(t)

	require.True(t, jackpot.UpdateJackpot(decimal.RequireFromString("250.500"), "conn-1"))
	require.True(t, jackpot.ResetJackpot(models.BaseJackpot, "conn-2"))

	state, err := st.ReadJackpot()
	require.NoError(t, err)
	require.True(t, models.BaseJackpot.Equal(state.CurrentAmount))
	require.Equal(t, "conn-2", state.LastModifiedBy)
	require.Equal(t, int64(3), state.Version)
}

func TestLogHistoryAppends(t *testing.T) {
	jackpot, _, st := newTestServices(t)

	prev := decimal.RequireFromString("100.000")
	next := decimal.RequireFromString("100.001")
	require.True(t, jackpot.LogHistory(prev, next, models.ActionIncrement, "conn-1"))

	history, err := st.ReadHistory()
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, models.ActionIncrement, history[0].ActionType)
	require.Equal(t, "conn-1", history[0].UserID)
	require.True(t, prev.Equal(history[0].PreviousAmount))
	require.True(t, next.Equal(history[0].NewAmount))
}

func TestLogHistoryDropsOldestBeyondCap(t *testing.T) {
	jackpot, _, st := newTestServices(t)

	seed := make([]models.JackpotHistoryEntry, models.MaxHistoryEntries)
	for i := range seed {
		seed[i] = models.JackpotHistoryEntry{
			Timestamp:  time.Now().UTC(),
			ActionType: models.ActionAutoIncrement,
			UserID:     models.SystemActor,
		}
	}
	require.NoError(t, st.WriteHistory(seed))

	require.True(t, jackpot.LogHistory(models.BaseJackpot, models.BaseJackpot, models.ActionWin, "conn-9"))

	history, err := st.ReadHistory()
	require.NoError(t, err)
	require.Len(t, history, models.MaxHistoryEntries)
	require.Equal(t, models.ActionWin, history[len(history)-1].ActionType, "newest entry must survive truncation")
}

func TestLogHistoryFailureDoesNotPanic(t *testing.T) {
	jackpot := NewJackpotService(brokenStore(t))
	require.False(t, jackpot.LogHistory(models.BaseJackpot, models.BaseJackpot, models.ActionIncrement, "conn-1"))
}

func TestConcurrentHistoryAppendsAreNotLost(t *testing.T) {
	jackpot, _, st := newTestServices(t)

	const writers = 5
	const appends = 10

	done := make(chan bool, writers)
	for w := 0; w < writers; w++ {
		go func(w int) {
			ok := true
			for i := 0; i < appends; i++ {
				if !jackpot.LogHistory(models.BaseJackpot, models.BaseJackpot, models.ActionIncrement, "conn") {
					ok = false
				}
			}
			done <- ok
		}(w)
	}
	for w := 0; w < writers; w++ {
		require.True(t, <-done, "append failed under contention")
	}

	history, err := st.ReadHistory()
	require.NoError(t, err)
	require.Len(t, history, writers*appends, "no append may be lost to an interleaved write")
}

func TestGetOrCreateDailyTargetStableWithinDay(t *testing.T) {
	_, target, _ := newTestServices(t)

	first := target.GetOrCreateDailyTarget()
	second := target.GetOrCreateDailyTarget()
	require.Equal(t, first, second)
}

func TestGetOrCreateDailyTargetRegeneratesOnStaleDate(t *testing.T) {
	_, target, st := newTestServices(t)

	require.NoError(t, st.WriteTarget(&models.DailyTarget{
		TargetX:    1,
		TargetY:    2,
		TargetDate: "2000-01-01",
		Version:    3,
	}))

	fresh := target.GetOrCreateDailyTarget()
	require.Equal(t, time.Now().UTC().Format(models.DateLayout), fresh.TargetDate)
	require.Equal(t, int64(4), fresh.Version)

	persisted, err := st.ReadTarget()
	require.NoError(t, err)
	require.Equal(t, fresh, persisted)
}

func TestGetOrCreateDailyTargetFallsBackOnStorageFailure(t *testing.T) {
	target := NewTargetService(brokenStore(t))

	fallback := target.GetOrCreateDailyTarget()
	require.Equal(t, models.FallbackTargetX, fallback.TargetX)
	require.Equal(t, models.FallbackTargetY, fallback.TargetY)
	require.Equal(t, time.Now().UTC().Format(models.DateLayout), fallback.TargetDate)
}

func TestForceNewDailyTargetBumpsVersion(t *testing.T) {
	_, target, st := newTestServices(t)

	before, err := st.ReadTarget()
	require.NoError(t, err)

	fresh, err := target.ForceNewDailyTarget()
	require.NoError(t, err)
	require.Equal(t, before.Version+1, fresh.Version)
	require.Equal(t, time.Now().UTC().Format(models.DateLayout), fresh.TargetDate)
}

func TestForceNewDailyTargetPropagatesErrors(t *testing.T) {
	target := NewTargetService(brokenStore(t))

	_, err := target.ForceNewDailyTarget()
	require.Error(t, err)
}

func TestRoundedDistance(t *testing.T) {
	target := &models.DailyTarget{TargetX: 10, TargetY: 10}

	tests := []struct {
		name string
		x, y float64
		want float64
	}{
		{"exact hit", 10, 10, 0},
		{"3-4-5 triangle", 13, 14, 5},
		{"unit diagonal rounds to 3dp", 11, 11, 1.414},
		{"horizontal", 0, 10, 10},
		{"far corner", 999, 999, 1398.657},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, RoundedDistance(target, tt.x, tt.y))
		})
	}
}
