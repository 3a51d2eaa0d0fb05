package session

import (
	"testing"

	"pat-tracker/internal/domain"
)

func TestBestTieBreak(t *testing.T) {
	sessions := []domain.Session{
		{ID: 1, EloPerHour: 50},
		{ID: 2, EloPerHour: 300},
		{ID: 3, EloPerHour: 300},
		{ID: 4, EloPerHour: -10},
	}
	best, ok := Best(sessions)
	if !ok {
		t.Fatalf("expected a best session")
	}
	if best.ID != 2 {
		t.Fatalf("expected the earlier of the tied sessions, got %d", best.ID)
	}

	if _, ok := Best(nil); ok {
		t.Fatalf("expected no best session for empty input")
	}
}

func TestOverallEloPerHour(t *testing.T) {
	tests := []struct {
		name     string
		sessions []domain.Session
		want     int
	}{
		{"none", nil, 0},
		{"floors to one hour", []domain.Session{{EloChange: 40, DurationMinutes: 10}}, 40},
		{"two hours", []domain.Session{
			{EloChange: 100, DurationMinutes: 60},
			{EloChange: -20, DurationMinutes: 60},
		}, 40},
		{"ninety minutes", []domain.Session{{EloChange: 45, DurationMinutes: 90}}, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OverallEloPerHour(tt.sessions); got != tt.want {
				t.Fatalf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	sessions := []domain.Session{
		{ID: 1, EloPerHour: 250, MatchCount: 3, EloChange: 50, DurationMinutes: 12},
		{ID: 2, EloPerHour: 250, MatchCount: 2, EloChange: 40, DurationMinutes: 10},
		{ID: 3, EloPerHour: -300, MatchCount: 4, EloChange: -60, DurationMinutes: 12},
	}
	got := Summarize(sessions)
	if got.SessionCount != 3 {
		t.Fatalf("session count = %d", got.SessionCount)
	}
	if got.Best == nil || got.Best.ID != 1 {
		t.Fatalf("best = %+v", got.Best)
	}
	if got.HotSessions != 1 || got.ColdSessions != 1 {
		t.Fatalf("hot=%d cold=%d", got.HotSessions, got.ColdSessions)
	}
	if got.OverallEloPerHour != 30 {
		t.Fatalf("overall = %d", got.OverallEloPerHour)
	}

	empty := Summarize([]domain.Session{})
	if empty.Best != nil || empty.SessionCount != 0 {
		t.Fatalf("unexpected summary for no sessions: %+v", empty)
	}
}
