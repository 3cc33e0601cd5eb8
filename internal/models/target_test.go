package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRandomTargetWithinGrid(t *testing.T) {
	for i := 0; i < 200; i++ {
		target := NewRandomTarget("2026-08-29", 3)
		require.GreaterOrEqual(t, target.TargetX, 0)
		require.Less(t, target.TargetX, GridWidth)
		require.GreaterOrEqual(t, target.TargetY, 0)
		require.Less(t, target.TargetY, GridHeight)
		require.Equal(t, "2026-08-29", target.TargetDate)
		require.Equal(t, int64(3), target.Version)
	}
}
