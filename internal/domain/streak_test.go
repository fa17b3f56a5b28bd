package domain_test

import (
	"testing"
	"time"

	"journal/internal/domain"
)

func mustDay(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := domain.ParseDay(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return d
}

func days(t *testing.T, ss ...string) []time.Time {
	t.Helper()
	out := make([]time.Time, 0, len(ss))
	for _, s := range ss {
		out = append(out, mustDay(t, s))
	}
	return out
}

func TestCalculateStreak(t *testing.T) {
	tests := []struct {
		name     string
		dates    []string
		today    string
		want     int
		wantDate string
	}{
		{"empty", nil, "2024-03-10", 0, ""},
		{"today only", []string{"2024-03-10"}, "2024-03-10", 1, "2024-03-10"},
		{"yesterday only keeps streak", []string{"2024-03-09"}, "2024-03-10", 1, "2024-03-09"},
		{"two days ago breaks streak", []string{"2024-03-08", "2024-03-07"}, "2024-03-10", 0, ""},
		{"gap truncates", []string{"2024-03-10", "2024-03-09", "2024-03-08", "2024-03-05"}, "2024-03-10", 3, "2024-03-10"},
		{"ends yesterday", []string{"2024-03-09", "2024-03-08", "2024-03-07", "2024-03-06"}, "2024-03-10", 4, "2024-03-09"},
		{"across month boundary", []string{"2024-03-01", "2024-02-29", "2024-02-28"}, "2024-03-01", 3, "2024-03-01"},
		{"across year boundary", []string{"2024-01-01", "2023-12-31"}, "2024-01-02", 2, "2024-01-01"},
		{"gap right after most recent", []string{"2024-03-10", "2024-03-08", "2024-03-07"}, "2024-03-10", 1, "2024-03-10"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := domain.CalculateStreak(days(t, tc.dates...), mustDay(t, tc.today))
			if got.Current != tc.want {
				t.Fatalf("Current = %d; want %d", got.Current, tc.want)
			}
			if tc.wantDate == "" {
				if got.Date != nil {
					t.Fatalf("Date = %v; want nil", got.Date)
				}
				return
			}
			if got.Date == nil || got.Date.Format(domain.DayLayout) != tc.wantDate {
				t.Fatalf("Date = %v; want %s", got.Date, tc.wantDate)
			}
		})
	}
}

func TestCalculateStreak_ConsecutiveRun(t *testing.T) {
	today := mustDay(t, "2024-06-30")
	for _, end := range []time.Time{today, today.AddDate(0, 0, -1)} {
		for n := 1; n <= 40; n++ {
			dates := make([]time.Time, 0, n)
			for i := range n {
				dates = append(dates, end.AddDate(0, 0, -i))
			}
			if got := domain.CalculateStreak(dates, today).Current; got != n {
				t.Fatalf("run of %d ending %s: got %d", n, end.Format(domain.DayLayout), got)
			}
		}
	}
}

func TestCalculateStreak_IgnoresTimeOfDay(t *testing.T) {
	today := time.Date(2024, 3, 10, 23, 59, 0, 0, time.Local)
	dates := []time.Time{
		time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC),
	}
	if got := domain.CalculateStreak(dates, today).Current; got != 2 {
		t.Fatalf("got %d; want 2", got)
	}
}

func TestBestStreak(t *testing.T) {
	tests := []struct {
		best, current, want int
	}{
		{0, 5, 5},
		{7, 0, 7},
		{7, 7, 7},
		{3, 9, 9},
	}
	for _, tc := range tests {
		if got := domain.BestStreak(tc.best, tc.current); got != tc.want {
			t.Errorf("BestStreak(%d, %d) = %d; want %d", tc.best, tc.current, got, tc.want)
		}
	}
}

func TestDaysBetween(t *testing.T) {
	a := mustDay(t, "2024-03-09")
	b := time.Date(2024, 3, 10, 1, 0, 0, 0, time.Local)
	if got := domain.DaysBetween(a, b); got != 1 {
		t.Fatalf("got %d; want 1", got)
	}
	if got := domain.DaysBetween(b, a); got != -1 {
		t.Fatalf("got %d; want -1", got)
	}
}
