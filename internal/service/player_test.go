package service

import (
	"context"
	"errors"
	"testing"

	"pat-tracker/internal/season"

	"github.com/rs/zerolog"
)

func newPlayerService(fx fixture) *PlayerService {
	return NewPlayerService(fx.feed, fx.profiles, fx.bans, fx.cfg, zerolog.Nop())
}

func TestPlayerSummary(t *testing.T) {
	svc := newPlayerService(newFixture(t))
	ctx := context.Background()

	got, err := svc.Summary(ctx, alpha, season.DateFilter{})
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if got.Matches != 4 || got.Wins != 2 || got.Losses != 2 {
		t.Fatalf("record = %d/%d/%d", got.Matches, got.Wins, got.Losses)
	}
	if got.WinRate != 50 {
		t.Errorf("WinRate = %v, want 50", got.WinRate)
	}
	if got.PeakElo != 1030 || got.CurrentElo != 1005 || got.NetElo != -15 {
		t.Errorf("elo peak/current/net = %d/%d/%d, want 1030/1005/-15", got.PeakElo, got.CurrentElo, got.NetElo)
	}
	if got.FirstDate != "2026-01-01" || got.LastDate != "2026-02-10" {
		t.Errorf("dates = %s..%s", got.FirstDate, got.LastDate)
	}
	if got.Profile != nil || got.Bans != nil {
		t.Errorf("expected no profile or bans, got %+v %+v", got.Profile, got.Bans)
	}

	banned, err := svc.Summary(ctx, charlie, season.DateFilter{})
	if err != nil {
		t.Fatalf("Summary(charlie): %v", err)
	}
	if banned.Bans == nil || !banned.Bans.VACBanned || banned.Bans.DaysSinceLastBan != 12 {
		t.Errorf("charlie bans = %+v", banned.Bans)
	}
	if banned.KDR != 9.0/10.0 {
		t.Errorf("charlie KDR = %v", banned.KDR)
	}
}

func TestPlayerSummaryNotFound(t *testing.T) {
	svc := newPlayerService(newFixture(t))
	ctx := context.Background()

	if _, err := svc.Summary(ctx, "999", season.DateFilter{}); !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("unknown player: got %v, want ErrPlayerNotFound", err)
	}
	s52 := season.DateFilter{From: "2026-02-09", To: "2026-02-23"}
	if _, err := svc.Summary(ctx, bravo, s52); !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("player outside range: got %v, want ErrPlayerNotFound", err)
	}
}

func TestPlayerSeasons(t *testing.T) {
	svc := newPlayerService(newFixture(t))
	ctx := context.Background()

	got, err := svc.Seasons(ctx, alpha)
	if err != nil {
		t.Fatalf("Seasons: %v", err)
	}
	want := []string{"S50", "S51", "S52"}
	if len(got) != len(want) {
		t.Fatalf("got %d seasons, want %d: %+v", len(got), len(want), got)
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("season %d = %s, want %s", i, got[i].ID, id)
		}
	}

	none, err := svc.Seasons(ctx, "999")
	if err != nil {
		t.Fatalf("Seasons(unknown): %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", none)
	}
}

func TestPlayerDaily(t *testing.T) {
	svc := newPlayerService(newFixture(t))

	days, err := svc.Daily(context.Background(), alpha, season.DateFilter{})
	if err != nil {
		t.Fatalf("Daily: %v", err)
	}
	if len(days) != 3 || days[0].Date != "2026-02-10" {
		t.Fatalf("unexpected days: %+v", days)
	}
	first := days[2]
	if first.Date != "2026-01-01" || first.Matches != 2 {
		t.Fatalf("unexpected first day: %+v", first)
	}
	if first.WinRate != 50 || first.KDR != 1.23 {
		t.Errorf("derived rates = %v / %v, want 50 / 1.23", first.WinRate, first.KDR)
	}
	if walkover := days[1]; walkover.KDR != 4 {
		t.Errorf("walkover KDR = %v, want 4", walkover.KDR)
	}
}

func TestPlayerSeriesEndpoints(t *testing.T) {
	svc := newPlayerService(newFixture(t))
	ctx := context.Background()

	points, err := svc.EloHistory(ctx, alpha, season.DateFilter{})
	if err != nil || len(points) != 4 || points[0].MatchID != "m1" {
		t.Fatalf("EloHistory = %+v, %v", points, err)
	}
	buckets, err := svc.DamageDistribution(ctx, alpha, season.DateFilter{})
	if err != nil || len(buckets) != 2 {
		t.Fatalf("DamageDistribution = %+v, %v", buckets, err)
	}
	blocks, err := svc.TimeOfDay(ctx, alpha, season.DateFilter{})
	if err != nil {
		t.Fatalf("TimeOfDay: %v", err)
	}
	for _, b := range blocks {
		if b.TimeBlock == "Other" {
			t.Fatalf("untracked block leaked: %+v", blocks)
		}
	}
}
