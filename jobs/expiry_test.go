package jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDaysUntil(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		expiry time.Time
		want   int
	}{
		{"SameDay", now.Add(6 * time.Hour), 0},
		{"Tomorrow", now.AddDate(0, 0, 1), 1},
		{"PartialDayTruncates", now.Add(36 * time.Hour), 1},
		{"ThirtyDays", now.AddDate(0, 0, 30), 30},
		{"Past", now.AddDate(0, 0, -2), -2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DaysUntil(now, tc.expiry))
		})
	}
}

func TestReminderWindowsOrder(t *testing.T) {
	// The sweep reports the widest window first; keep the marks descending.
	for i := 1; i < len(ReminderWindows); i++ {
		assert.Greater(t, ReminderWindows[i-1], ReminderWindows[i])
	}
}
