package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextDueDate(t *testing.T) {
	tests := []struct {
		name    string
		current string
		pattern string
		want    string
	}{
		{
			name:    "daily advances one day",
			current: "2024-01-15T09:00:00Z",
			pattern: RecurrenceDaily,
			want:    "2024-01-16T09:00:00Z",
		},
		{
			name:    "weekly advances seven days",
			current: "2024-01-15T09:00:00Z",
			pattern: RecurrenceWeekly,
			want:    "2024-01-22T09:00:00Z",
		},
		{
			name:    "weekly crosses month boundary",
			current: "2024-01-29T09:00:00Z",
			pattern: RecurrenceWeekly,
			want:    "2024-02-05T09:00:00Z",
		},
		{
			name:    "monthly advances one calendar month",
			current: "2024-03-15T09:00:00Z",
			pattern: RecurrenceMonthly,
			want:    "2024-04-15T09:00:00Z",
		},
		{
			name:    "monthly clamps jan 31 to feb 29 in leap year",
			current: "2024-01-31T09:00:00Z",
			pattern: RecurrenceMonthly,
			want:    "2024-02-29T09:00:00Z",
		},
		{
			name:    "monthly clamps jan 31 to feb 28 in common year",
			current: "2023-01-31T09:00:00Z",
			pattern: RecurrenceMonthly,
			want:    "2023-02-28T09:00:00Z",
		},
		{
			name:    "monthly clamps may 31 to jun 30",
			current: "2024-05-31T09:00:00Z",
			pattern: RecurrenceMonthly,
			want:    "2024-06-30T09:00:00Z",
		},
		{
			name:    "monthly crosses year boundary",
			current: "2024-12-15T09:00:00Z",
			pattern: RecurrenceMonthly,
			want:    "2025-01-15T09:00:00Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current, err := time.Parse(time.RFC3339, tt.current)
			require.NoError(t, err)

			got := NextDueDate(current, tt.pattern)
			assert.Equal(t, tt.want, got.UTC().Format(time.RFC3339))
		})
	}
}

func TestNextDueDateUnknownPatternIsNoop(t *testing.T) {
	now := time.Now()
	assert.Equal(t, now, NextDueDate(now, "yearly"))
}

func TestNextDueDatePreservesTimeOfDay(t *testing.T) {
	current, err := time.Parse(time.RFC3339, "2024-06-10T18:30:45Z")
	require.NoError(t, err)

	got := NextDueDate(current, RecurrenceMonthly)
	assert.Equal(t, 18, got.Hour())
	assert.Equal(t, 30, got.Minute())
	assert.Equal(t, 45, got.Second())
}
