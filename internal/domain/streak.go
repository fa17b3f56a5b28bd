package domain

import (
	"math"
	"time"
)

// Streak is the result of scanning a user's entry history.
type Streak struct {
	Current int
	// Date is the most recent day in the active streak, nil when Current is 0.
	Date *time.Time
}

// DayOf truncates t to its calendar day, keeping t's own year, month and day.
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(DayOf(b).Sub(DayOf(a)).Hours() / 24)
}

// CalculateStreak returns the run of consecutive days ending at the most
// recent entry. dates must be sorted newest first with no duplicate days.
//
// A missing entry for today does not break the streak; a gap of two or more
// days between the last entry and today does.
func CalculateStreak(dates []time.Time, today time.Time) Streak {
	if len(dates) == 0 {
		return Streak{}
	}

	mostRecent := DayOf(dates[0])
	if DaysBetween(mostRecent, today) > 1 {
		return Streak{}
	}

	streak := 1
	expected := mostRecent
	for _, d := range dates[1:] {
		expected = expected.AddDate(0, 0, -1)
		if !DayOf(d).Equal(expected) {
			break
		}
		streak++
	}
	return Streak{Current: streak, Date: &mostRecent}
}

// BestStreak returns the best streak after observing current.
func BestStreak(best, current int) int {
	return max(best, current)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
