package services

import (
	"testing"
	"time"
)

func TestMonthlyChecker_IsDue(t *testing.T) {
	checker := MonthlyChecker{}

	tests := []struct {
		name       string
		lastClosed time.Time
		now        time.Time
		day        int
		want       bool
	}{
		{
			name: "never closed and day reached - is due",
			now:  time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC),
			day:  10,
			want: true,
		},
		{
			name: "never closed and before day - not due",
			now:  time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC),
			day:  10,
			want: false,
		},
		{
			name:       "closed this month - not due",
			lastClosed: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			now:        time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC),
			day:        10,
			want:       false,
		},
		{
			name:       "new month but before statement day - not due",
			lastClosed: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			now:        time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC),
			day:        15,
			want:       false,
		},
		{
			name:       "new month and on statement day - is due",
			lastClosed: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			now:        time.Date(2024, 2, 15, 12, 0, 0, 0, time.UTC),
			day:        15,
			want:       true,
		},
		{
			name:       "day 31 in February - adjusts to 29",
			lastClosed: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			now:        time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC), // 2024 is a leap year
			day:        31,
			want:       true,
		},
		{
			name:       "same month of another year - is due",
			lastClosed: time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC),
			now:        time.Date(2024, 2, 20, 12, 0, 0, 0, time.UTC),
			day:        1,
			want:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := checker.IsDue(tt.lastClosed, tt.now, tt.day)
			if got != tt.want {
				t.Errorf("MonthlyChecker.IsDue() = %v, want %v", got, tt.want)
			}
		})
	}
}
