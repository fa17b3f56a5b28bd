package adapthttp

import (
	"net/http"

	"journal/internal/app"
	"journal/internal/domain"
)

type progressMessages struct {
	Main                 string `json:"main"`
	StreakStatus         string `json:"streakStatus"`
	YearCompletionStatus string `json:"yearCompletionStatus"`
}

type progressResponse struct {
	*domain.ProgressStats
	Messages progressMessages `json:"messages"`
}

func (s *Server) handleProgressStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.progress.GetUserProgressStats(r.Context(), userFrom(r).ID)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, progressResponse{
		ProgressStats: stats,
		Messages: progressMessages{
			Main:                 s.motivation.MotivationalMessage(*stats),
			StreakStatus:         app.StreakStatusMessage(*stats),
			YearCompletionStatus: app.YearCompletionMessage(*stats),
		},
	})
}

func (s *Server) handleProgressMessage(w http.ResponseWriter, r *http.Request) {
	msgContext := r.URL.Query().Get("context")
	if msgContext == "" {
		msgContext = app.ContextEntryPage
	}

	stats, err := s.progress.GetUserProgressStats(r.Context(), userFrom(r).ID)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": s.motivation.ContextualMessage(*stats, msgContext),
		"context": msgContext,
		"stats": map[string]any{
			"currentStreak":   stats.CurrentStreak,
			"bestStreak":      stats.BestStreak,
			"yearCompletion":  stats.YearCompletion,
			"tierCombination": stats.TierCombination,
		},
	})
}
