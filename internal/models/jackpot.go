package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Persisted records and wire payloads carry plain JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// History action types.
const (
	ActionWin           = "WIN"
	ActionIncrement     = "INCREMENT"
	ActionAutoIncrement = "AUTO_INCREMENT"
	ActionReset         = "RESET"
)

// SystemActor marks automated mutations (boot defaults, timer increments).
const SystemActor = "system"

const MaxHistoryEntries = 1000

var (
	BaseJackpot   = decimal.RequireFromString("100.00")
	MaxJackpot    = decimal.NewFromInt(10000000)
	MissIncrement = decimal.RequireFromString("0.001")
	AutoIncrement = decimal.RequireFromString("0.01")
)

// JackpotState is the singleton jackpot record. Version increases by one on
// every successful mutation so callers can detect staleness.
type JackpotState struct {
	CurrentAmount  decimal.Decimal `json:"current_amount"`
	LastUpdate     time.Time       `json:"last_update"`
	LastModifiedBy string          `json:"last_modified_by"`
	Version        int64           `json:"version"`
}

// JackpotHistoryEntry is one append-only log entry; the collection is capped
// at MaxHistoryEntries, oldest dropped first.
type JackpotHistoryEntry struct {
	Timestamp      time.Time       `json:"timestamp"`
	PreviousAmount decimal.Decimal `json:"previous_amount"`
	NewAmount      decimal.Decimal `json:"new_amount"`
	ActionType     string          `json:"action_type"`
	UserID         string          `json:"user_id"`
}
