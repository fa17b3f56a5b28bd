package app

import (
	"fmt"
	"math/rand/v2"

	"journal/internal/domain"
)

// Surfaces that request a contextual message.
const (
	ContextEntryPage   = "entry_page"
	ContextCalendar    = "calendar"
	ContextNavbarStats = "navbar_stats"
)

// RandSource picks an index in [0, n).
type RandSource interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// MessageTemplate renders a message from a user's stats.
type MessageTemplate func(s domain.ProgressStats) string

// MotivationService turns progress stats into motivational messages.
type MotivationService struct {
	templates map[string][]MessageTemplate
	rnd       RandSource
}

// NewMotivationService uses the built-in template table. A nil source picks
// templates non-deterministically.
func NewMotivationService(rnd RandSource) *MotivationService {
	return NewMotivationServiceWithTemplates(DefaultTemplates(), rnd)
}

// NewMotivationServiceWithTemplates uses the given tier combination table.
func NewMotivationServiceWithTemplates(templates map[string][]MessageTemplate, rnd RandSource) *MotivationService {
	if rnd == nil {
		rnd = globalRand{}
	}
	return &MotivationService{templates: templates, rnd: rnd}
}

// MotivationalMessage renders a random template for the stats' tier
// combination, or a generic message when there is none.
func (s *MotivationService) MotivationalMessage(stats domain.ProgressStats) string {
	templates := s.templates[stats.TierCombination]
	if len(templates) == 0 {
		return fmt.Sprintf("You have %d entries this year. Keep writing!", stats.YearEntries)
	}
	return templates[s.rnd.IntN(len(templates))](stats)
}

// ContextualMessage returns the message for a surface of the app. Every
// context currently gets the same message as MotivationalMessage; the switch
// is where per-surface wording goes.
func (s *MotivationService) ContextualMessage(stats domain.ProgressStats, context string) string {
	msg := s.MotivationalMessage(stats)
	switch context {
	case ContextEntryPage:
		return msg
	case ContextCalendar:
		return msg
	case ContextNavbarStats:
		return msg
	default:
		return msg
	}
}

// StreakStatusMessage summarizes the current streak against the best one.
func StreakStatusMessage(stats domain.ProgressStats) string {
	cur, best := stats.CurrentStreak, stats.BestStreak
	switch {
	case cur == 0:
		return "No active streak. Start one today!"
	case cur == 1:
		return "1 day streak. Keep it going!"
	case cur == best:
		return fmt.Sprintf("%d day streak - Your best! 🔥", cur)
	case float64(cur) >= float64(best)*0.8:
		return fmt.Sprintf("%d day streak. %d more to match your best!", cur, best-cur)
	default:
		return fmt.Sprintf("%d day streak", cur)
	}
}

// YearCompletionMessage formats year completion as "12.5% (10/80 days)".
func YearCompletionMessage(stats domain.ProgressStats) string {
	return fmt.Sprintf("%.1f%% (%d/%d days)", stats.YearCompletion, stats.YearEntries, stats.YearDays)
}

