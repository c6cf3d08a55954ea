package services

import "time"

// DuenessChecker decides whether a card's statement should be closed.
type DuenessChecker interface {
	// IsDue reports whether a statement is due at now given the month of the
	// last closed statement (zero when none) and the card's statement day.
	IsDue(lastClosed, now time.Time, statementDay int) bool
}

// MonthlyChecker closes one statement per calendar month, once the
// statement day has been reached.
type MonthlyChecker struct{}

func (MonthlyChecker) IsDue(lastClosed, now time.Time, statementDay int) bool {
	// Already closed this month?
	if !lastClosed.IsZero() && lastClosed.Year() == now.Year() && lastClosed.Month() == now.Month() {
		return false
	}
	return now.Day() >= clampDay(statementDay, now)
}

// clampDay maps a day of month onto now's month, so day 31 falls on the
// last day of shorter months.
func clampDay(day int, now time.Time) int {
	if day < 1 {
		day = 1
	}
	last := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		return last
	}
	return day
}
