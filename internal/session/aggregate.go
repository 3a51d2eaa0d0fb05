package session

import (
	"pat-tracker/internal/constants"
	"pat-tracker/internal/domain"
	"pat-tracker/internal/stats"
)

// Best returns the session with the highest ELO per hour. On ties the
// earliest session wins.
func Best(sessions []domain.Session) (domain.Session, bool) {
	if len(sessions) == 0 {
		return domain.Session{}, false
	}
	best := sessions[0]
	for _, s := range sessions[1:] {
		if s.EloPerHour > best.EloPerHour {
			best = s
		}
	}
	return best, true
}

// OverallEloPerHour divides the net rating change by the total time played,
// counting at least one hour.
func OverallEloPerHour(sessions []domain.Session) int {
	if len(sessions) == 0 {
		return 0
	}
	var change, minutes int
	for _, s := range sessions {
		change += s.EloChange
		minutes += s.DurationMinutes
	}
	hours := float64(minutes) / 60
	if hours < 1 {
		hours = 1
	}
	return stats.Round(float64(change) / hours)
}

func IsHot(s domain.Session) bool {
	return s.EloPerHour > constants.HotSessionEloPerHour && s.MatchCount >= constants.HotSessionMinMatches
}

func IsCold(s domain.Session) bool {
	return s.EloPerHour < constants.ColdSessionEloPerHour && s.MatchCount >= constants.HotSessionMinMatches
}

func Summarize(sessions []domain.Session) domain.SessionSummary {
	summary := domain.SessionSummary{
		SessionCount:      len(sessions),
		OverallEloPerHour: OverallEloPerHour(sessions),
	}
	if best, ok := Best(sessions); ok {
		summary.Best = &best
	}
	for _, s := range sessions {
		if IsHot(s) {
			summary.HotSessions++
		}
		if IsCold(s) {
			summary.ColdSessions++
		}
	}
	return summary
}
