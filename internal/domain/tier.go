package domain

// Tier is a coarse classification of a trend or ratio.
type Tier string

// Tiers, lowest first.
const (
	TierLow  Tier = "low"
	TierMid  Tier = "mid"
	TierHigh Tier = "high"
)

const (
	// Below this best streak, tiers use absolute streak lengths.
	newUserBestStreak = 2
	streakMidRatio    = 0.3
	streakHighRatio   = 0.8
	// Month-over-month change that counts as an improvement or decline.
	completionTrendThreshold = 0.05
)

// StreakTier classifies the current streak against the best one.
func StreakTier(current, best int) Tier {
	if best <= newUserBestStreak {
		switch current {
		case 0:
			return TierLow
		case 1:
			return TierMid
		default:
			return TierHigh
		}
	}

	ratio := float64(current) / float64(best)
	switch {
	case ratio < streakMidRatio:
		return TierLow
	case ratio < streakHighRatio:
		return TierMid
	default:
		return TierHigh
	}
}

// CompletionTier classifies the trend across samples ordered newest first.
func CompletionTier(samples []CompletionSample) Tier {
	if len(samples) < 2 {
		return TierMid
	}

	var improvements, declines int
	for i := 0; i < len(samples)-1; i++ {
		diff := samples[i].Completion - samples[i+1].Completion
		switch {
		case diff > completionTrendThreshold:
			improvements++
		case diff < -completionTrendThreshold:
			declines++
		}
	}

	switch {
	case improvements > declines:
		return TierHigh
	case declines > improvements:
		return TierLow
	default:
		return TierMid
	}
}

// TierCombination is the message bucket key, completion tier first.
func TierCombination(completion, streak Tier) string {
	return string(completion) + "_" + string(streak)
}

// TierCombinations lists every valid bucket key.
func TierCombinations() []string {
	tiers := []Tier{TierLow, TierMid, TierHigh}
	out := make([]string, 0, len(tiers)*len(tiers))
	for _, c := range tiers {
		for _, s := range tiers {
			out = append(out, TierCombination(c, s))
		}
	}
	return out
}
