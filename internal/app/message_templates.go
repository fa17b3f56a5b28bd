package app

import (
	"fmt"

	"journal/internal/domain"
)

func pct(s domain.ProgressStats) string {
	return fmt.Sprintf("%.0f%%", s.YearCompletion)
}

func toBest(s domain.ProgressStats) int {
	return s.BestStreak - s.CurrentStreak
}

func atBest(s domain.ProgressStats) bool {
	return s.CurrentStreak == s.BestStreak
}

// DefaultTemplates returns the message table keyed by tier combination.
func DefaultTemplates() map[string][]MessageTemplate {
	return map[string][]MessageTemplate{
		"low_low": {
			func(s domain.ProgressStats) string {
				return fmt.Sprintf("Start fresh today! Your best streak is %d days. Let's build toward that again, one entry at a time.", s.BestStreak)
			},
			func(domain.ProgressStats) string {
				return "Every journey starts with a single step. Write today and begin a new streak!"
			},
			func(s domain.ProgressStats) string {
				return fmt.Sprintf("You've done %d entries this year. Keep the momentum going, today is a new opportunity!", s.YearEntries)
			},
			func(domain.ProgressStats) string {
				return "Rebuilding takes courage. Start your streak today and watch it grow!"
			},
		},
		"low_mid": {
			func(s domain.ProgressStats) string {
				return fmt.Sprintf("You're at %d days! Keep this streak alive while working toward your %s year goal.", s.CurrentStreak, pct(s))
			},
			func(s domain.ProgressStats) string {
				return fmt.Sprintf("%d days and counting! You're %d days from matching your best streak of %d.", s.CurrentStreak, abs(toBest(s)), s.BestStreak)
			},
			func(s domain.ProgressStats) string {
				return fmt.Sprintf("You're building consistency with %d straight days. Don't break the chain!", s.CurrentStreak)
			},
			func(s domain.ProgressStats) string {
				return fmt.Sprintf("Your current %d-day streak shows real commitment. Keep it going!", s.CurrentStreak)
			},
		},
		"low_high": {
			func(s domain.ProgressStats) string {
				if atBest(s) {
					return fmt.Sprintf("🔥 %d days! You're at your all-time best! Can you push even further today?", s.CurrentStreak)
				}
				return fmt.Sprintf("Incredible! %d days strong! You're just %d away from your record of %d.", s.CurrentStreak, toBest(s), s.BestStreak)
			},
			func(s domain.ProgressStats) string {
				return fmt.Sprintf("Amazing streak of %d days! This consistency will transform your year completion rate.", s.CurrentStreak)
			},
			func(s domain.ProgressStats) string {
				return fmt.Sprintf("You're on fire with %d consecutive days! This is the momentum you need.", s.CurrentStreak)
			},
			func(s domain.ProgressStats) string {
				return fmt.Sprintf("%d days in a row! Your dedication is showing. Keep this energy going!", s.CurrentStreak)
			},
		},
		"mid_low": {
			func(s domain.ProgressStats) string {
				return fmt.Sprintf("You're at %s for the year. Start a new streak today to push that number higher!", pct(s))
			},
			func(s domain.ProgressStats) string {
				return fmt.Sprintf("Your year is %s complete with entries. A new streak starting today could make a big difference!", pct(s))
			},
			func(s domain.ProgressStats) string {
				return fmt.Sprintf("You've proven you can maintain %s completion. Now let's build a streak to match!", pct(s))
			},
			func(s domain.ProgressStats) string {
				return fmt.Sprintf("%d entries this year shows dedication. Time to build that streak back up!", s.YearEntries)
			},
		},
		"mid_mid": {
			func(s domain.ProgressStats) string {
				return fmt.Sprintf("Solid progress: %d day streak and %s year completion. You're in a good rhythm!", s.CurrentStreak, pct(s))
			},
			func(s domain.ProgressStats) string {
				return fmt.Sprintf("You're %d days from your best streak of %d. Keep this %d-day run going!", toBest(s), s.BestStreak, s.CurrentStreak)
			},
			func(s domain.ProgressStats) string {
				return fmt.Sprintf("%d days strong! You're maintaining good momentum at %s for the year.", s.CurrentStreak, pct(s))
			},
			func(s domain.ProgressStats) string {
				return fmt.Sprintf("Steady and consistent: %d days in a row. Your %s completion shows it's working!", s.CurrentStreak, pct(s))
			},
		},
		"mid_high": {
			func(s domain.ProgressStats) string {
				if atBest(s) {
					return fmt.Sprintf("🌟 %d days! You've matched your best! One more entry sets a new personal record!", s.CurrentStreak)
				}
				return fmt.Sprintf("Impressive %d-day streak! Just %d more to beat your record of %d!", s.CurrentStreak, toBest(s), s.BestStreak)
			},
			func(s domain.ProgressStats) string {
				return fmt.Sprintf("%d consecutive days! This streak is propelling your year to %s completion!", s.CurrentStreak, pct(s))
			},
			func(s domain.ProgressStats) string {
				return fmt.Sprintf("You're crushing it with %d days! This momentum could take you past your %s year rate.", s.CurrentStreak, pct(s))
			},
			func(s domain.ProgressStats) string {
				return fmt.Sprintf("%d days running! You're in the zone and it shows in your %s year completion.", s.CurrentStreak, pct(s))
			},
		},
		"high_low": {
			func(s domain.ProgressStats) string {
				return fmt.Sprintf("Outstanding %s year completion! Now let's rebuild that streak to match your consistency.", pct(s))
			},
			func(s domain.ProgressStats) string {
				return fmt.Sprintf("You've maintained %s completion this year. Start today to rebuild your streak!", pct(s))
			},
			func(s domain.ProgressStats) string {
				return fmt.Sprintf("%d entries in %d days is impressive! Let's get that streak growing again.", s.YearEntries, s.YearDays)
			},
			func(s domain.ProgressStats) string {
				return fmt.Sprintf("Your %s rate proves your commitment. A new streak starts right now!", pct(s))
			},
		},
		"high_mid": {
			func(s domain.ProgressStats) string {
				return fmt.Sprintf("Excellent work: %s for the year and a %d-day streak! You're %d from your best.", pct(s), s.CurrentStreak, toBest(s))
			},
			func(s domain.ProgressStats) string {
				return fmt.Sprintf("%d days building! Your %s year rate shows what you're capable of.", s.CurrentStreak, pct(s))
			},
			func(s domain.ProgressStats) string {
				return fmt.Sprintf("Strong %d-day streak supporting your impressive %s year completion!", s.CurrentStreak, pct(s))
			},
			func(s domain.ProgressStats) string {
				return fmt.Sprintf("You're at %d days with %s year completion. Keep the excellence going!", s.CurrentStreak, pct(s))
			},
		},
		"high_high": {
			func(s domain.ProgressStats) string {
				if atBest(s) {
					return fmt.Sprintf("🚀 %d days and %s year completion! You're at peak performance! Break your own record today!", s.CurrentStreak, pct(s))
				}
				return fmt.Sprintf("Phenomenal! %d days and %s for the year! Just %d from your record!", s.CurrentStreak, pct(s), toBest(s))
			},
			func(s domain.ProgressStats) string {
				return fmt.Sprintf("Exceptional consistency: %d consecutive days at %s year completion. You're unstoppable!", s.CurrentStreak, pct(s))
			},
			func(s domain.ProgressStats) string {
				return fmt.Sprintf("%d days running with %s year rate! This is the rhythm of success!", s.CurrentStreak, pct(s))
			},
			func(s domain.ProgressStats) string {
				return fmt.Sprintf("Peak performance: %d-day streak and %s yearly! You're setting the standard!", s.CurrentStreak, pct(s))
			},
		},
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
