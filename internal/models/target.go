package models

import "math/rand"

// Grid dimensions for the daily game board.
const (
	GridWidth  = 1000
	GridHeight = 1000
)

// Fallback pixel returned when the target record cannot be read; predictable
// but keeps the game playable through a storage outage.
const (
	FallbackTargetX = 500
	FallbackTargetY = 500
)

// DateLayout is the UTC calendar date format of a daily target.
const DateLayout = "2006-01-02"

// DailyTarget is the secret pixel valid for one UTC calendar day.
type DailyTarget struct {
	TargetX    int    `json:"target_x"`
	TargetY    int    `json:"target_y"`
	TargetDate string `json:"target_date"`
	Version    int64  `json:"version"`
}

// NewRandomTarget picks a uniformly random pixel for the given date.
func NewRandomTarget(date string, version int64) *DailyTarget {
	return &DailyTarget{
		TargetX:    rand.Intn(GridWidth),
		TargetY:    rand.Intn(GridHeight),
		TargetDate: date,
		Version:    version,
	}
}
