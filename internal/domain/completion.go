package domain

import (
	"fmt"
	"time"
)

// SampleMonths is the number of months kept in a user's completion history.
const SampleMonths = 3

// DaysInMonth returns the length of the given calendar month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthCompletion builds the sample for one month. The current month is
// divided by its full length, not the days elapsed so far.
func MonthCompletion(entries, year int, month time.Month) CompletionSample {
	days := DaysInMonth(year, month)
	return CompletionSample{
		Month:      fmt.Sprintf("%04d-%02d", year, int(month)),
		Completion: round(float64(entries)/float64(days), 3),
		Entries:    entries,
		Days:       days,
	}
}

// SampleWindow returns the first day of the current month and the months
// before it, newest first.
func SampleWindow(today time.Time) []time.Time {
	out := make([]time.Time, 0, SampleMonths)
	for i := range SampleMonths {
		out = append(out, time.Date(today.Year(), today.Month()-time.Month(i), 1, 0, 0, 0, 0, time.UTC))
	}
	return out
}

// YearCompletion is the share of elapsed days in a window that have an entry.
type YearCompletion struct {
	Percentage float64
	Entries    int
	Days       int
	StartDate  time.Time
}

// CalculateYearCompletion counts days from start through today inclusive.
// A window with no elapsed days has a percentage of 0.
func CalculateYearCompletion(entries int, start, today time.Time) YearCompletion {
	days := DaysBetween(start, today) + 1
	yc := YearCompletion{Entries: entries, StartDate: DayOf(start)}
	if days <= 0 {
		return yc
	}
	yc.Days = days
	yc.Percentage = round(float64(entries)/float64(days)*100, 1)
	return yc
}

// YearWindowStart returns the day year completion is measured from: the first
// entry when it was written this year, otherwise January 1.
func YearWindowStart(firstEntry, today time.Time) time.Time {
	if firstEntry.Year() == today.Year() {
		return DayOf(firstEntry)
	}
	return time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
}
