package service

import (
	"context"
	"testing"

	"pat-tracker/internal/database/dbtest"

	"github.com/rs/zerolog"
)

func TestGlobalStatsCached(t *testing.T) {
	fx := newFixture(t)
	svc := NewStatsService(fx.feed, fx.cache, fx.cfg, zerolog.Nop())
	ctx := context.Background()

	got, err := svc.Global(ctx)
	if err != nil {
		t.Fatalf("Global: %v", err)
	}
	if got.TotalPlayers != 7 || got.TotalMatches != 60 {
		t.Fatalf("stats = %+v", got)
	}
	if got.MinDate == nil || *got.MinDate != "2026-01-01" || got.MaxDate == nil || *got.MaxDate != "2026-03-02" {
		t.Fatalf("date range = %v..%v", got.MinDate, got.MaxDate)
	}

	dbtest.InsertMatch(t, fx.db, dbtest.Match{
		ID: "late", Date: "2026-03-10",
		Winner: dbtest.Side{SteamID: "900", Name: "Late", Rounds: 4},
		Loser:  dbtest.Side{SteamID: "901", Name: "Later", Rounds: 3},
	})
	cached, err := svc.Global(ctx)
	if err != nil {
		t.Fatalf("Global: %v", err)
	}
	if cached.TotalMatches != 60 {
		t.Errorf("expected cached stats, got %+v", cached)
	}
}

func TestSeasonsList(t *testing.T) {
	fx := newFixture(t)
	svc := NewStatsService(fx.feed, fx.cache, fx.cfg, zerolog.Nop())

	seasons := svc.Seasons()
	if len(seasons) != 5 || seasons[0].ID != "S50" || seasons[4].ID != "S54" {
		t.Fatalf("seasons = %+v", seasons)
	}
}
