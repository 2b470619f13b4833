package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettlementWindow(t *testing.T) {
	seoul, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	now := time.Date(2026, 3, 2, 14, 30, 0, 0, seoul)
	start, end := SettlementWindow(now, seoul)

	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, seoul), start)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, seoul), end)
	assert.Equal(t, 24*time.Hour, end.Sub(start))
}

func TestSettlementWindowJustAfterMidnight(t *testing.T) {
	now := time.Date(2026, 3, 2, 0, 0, 1, 0, time.UTC)
	start, end := SettlementWindow(now, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), end)
}

func TestSettlementWindowNilLocationDefaultsToUTC(t *testing.T) {
	now := time.Date(2026, 3, 2, 23, 59, 0, 0, time.UTC)
	start, end := SettlementWindow(now, nil)
	assert.Equal(t, time.UTC, start.Location())
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), end)
}
