package app

import (
	"context"
	"fmt"
	"time"

	"journal/internal/domain"

	"golang.org/x/sync/errgroup"
)

// Clock returns the current time. Services read "today" through it.
type Clock func() time.Time

// Background task names.
const (
	TaskUpdateStreak            = "update_streak"
	TaskUpdateCompletionSamples = "update_completion_samples"
)

// StreakUpdate is the outcome of recomputing a user's streak.
type StreakUpdate struct {
	CurrentStreak int `json:"currentStreak"`
	BestStreak    int `json:"bestStreak"`
}

// ProgressService derives streaks, completion samples and progress stats.
type ProgressService struct {
	repo domain.ProgressRepository
	bg   *Background
	now  Clock
}

// NewProgressService creates a ProgressService. A nil clock uses time.Now.
func NewProgressService(repo domain.ProgressRepository, bg *Background, now Clock) *ProgressService {
	if now == nil {
		now = time.Now
	}
	if bg == nil {
		bg = NewBackground(nil, nil)
	}
	return &ProgressService{repo: repo, bg: bg, now: now}
}

func (s *ProgressService) today() time.Time {
	return domain.DayOf(s.now())
}

// UpdateUserStreak recomputes the streak from the full entry history and
// persists it with the best streak raised to match.
func (s *ProgressService) UpdateUserStreak(ctx context.Context, userID int64) (StreakUpdate, error) {
	dates, err := s.repo.ListEntryDates(ctx, userID)
	if err != nil {
		return StreakUpdate{}, fmt.Errorf("list entry dates: %w", err)
	}
	streak := domain.CalculateStreak(dates, s.today())

	state, err := s.repo.GetStreakState(ctx, userID)
	if err != nil {
		return StreakUpdate{}, fmt.Errorf("get streak: %w", err)
	}
	if state == nil {
		return StreakUpdate{}, ErrUserNotFound
	}

	best := domain.BestStreak(state.BestStreak, streak.Current)
	err = s.repo.UpdateStreakState(ctx, userID, domain.StreakState{
		CurrentStreak:     streak.Current,
		CurrentStreakDate: streak.Date,
		BestStreak:        best,
	})
	if err != nil {
		return StreakUpdate{}, fmt.Errorf("update streak: %w", err)
	}
	return StreakUpdate{CurrentStreak: streak.Current, BestStreak: best}, nil
}

// UpdateCompletionSamples recomputes the last three months of completion,
// current month first, and replaces the stored samples.
func (s *ProgressService) UpdateCompletionSamples(ctx context.Context, userID int64) ([]domain.CompletionSample, error) {
	months := domain.SampleWindow(s.today())
	samples := make([]domain.CompletionSample, len(months))

	g, gctx := errgroup.WithContext(ctx)
	for i, m := range months {
		g.Go(func() error {
			n, err := s.repo.MonthEntryCount(gctx, userID, m.Year(), m.Month())
			if err != nil {
				return fmt.Errorf("count %s: %w", m.Format("2006-01"), err)
			}
			samples[i] = domain.MonthCompletion(n, m.Year(), m.Month())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := s.repo.ReplaceCompletionSamples(ctx, userID, samples); err != nil {
		return nil, fmt.Errorf("replace samples: %w", err)
	}
	return samples, nil
}

// ScheduleRefresh dispatches the streak and completion recomputations after
// an entry write. Neither is awaited: failures are logged by the background
// runner and not retried, and the next write repairs any missed update since
// both recompute from full history.
func (s *ProgressService) ScheduleRefresh(ctx context.Context, userID int64) {
	s.bg.Go(ctx, TaskUpdateStreak, func(ctx context.Context) error {
		_, err := s.UpdateUserStreak(ctx, userID)
		return err
	})
	s.bg.Go(ctx, TaskUpdateCompletionSamples, func(ctx context.Context) error {
		_, err := s.UpdateCompletionSamples(ctx, userID)
		return err
	})
}

// GetUserProgressStats composes the user's progress from persisted state and
// the current date. It fails with ErrUserNotFound for unknown users.
func (s *ProgressService) GetUserProgressStats(ctx context.Context, userID int64) (*domain.ProgressStats, error) {
	data, err := s.repo.GetProgressData(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get progress: %w", err)
	}
	if data == nil {
		return nil, ErrUserNotFound
	}

	first, err := s.repo.FirstEntryDate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("first entry: %w", err)
	}
	if first == nil {
		return emptyProgressStats(), nil
	}

	today := s.today()
	start := domain.YearWindowStart(*first, today)
	yearEntries, err := s.repo.YearEntryCount(ctx, userID, today.Year())
	if err != nil {
		return nil, fmt.Errorf("year entries: %w", err)
	}
	year := domain.CalculateYearCompletion(yearEntries, start, today)

	streakTier := domain.StreakTier(data.CurrentStreak, data.BestStreak)
	completionTier := domain.CompletionTier(data.CompletionSamples)

	samples := data.CompletionSamples
	if samples == nil {
		samples = []domain.CompletionSample{}
	}

	return &domain.ProgressStats{
		CurrentStreak:     data.CurrentStreak,
		BestStreak:        data.BestStreak,
		CurrentStreakDate: formatDay(data.CurrentStreakDate),
		YearCompletion:    year.Percentage,
		YearEntries:       year.Entries,
		YearDays:          year.Days,
		YearStartDate:     formatDay(&year.StartDate),
		CompletionSamples: samples,
		StreakTier:        streakTier,
		CompletionTier:    completionTier,
		TierCombination:   domain.TierCombination(completionTier, streakTier),
	}, nil
}

// emptyProgressStats is the fixed state of a user who has never written.
func emptyProgressStats() *domain.ProgressStats {
	return &domain.ProgressStats{
		CompletionSamples: []domain.CompletionSample{},
		StreakTier:        domain.TierLow,
		CompletionTier:    domain.TierMid,
		TierCombination:   domain.TierCombination(domain.TierMid, domain.TierLow),
	}
}

func formatDay(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(domain.DayLayout)
	return &s
}
