package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"pat-tracker/internal/api"

	"github.com/rs/zerolog"
)

// fakeSteam answers for every requested id except those in missing.
type fakeSteam struct {
	mu      sync.Mutex
	missing map[string]bool
	fail    error
}

func (f *fakeSteam) GetPlayerSummaries(_ context.Context, ids []string) (*api.PlayerSummariesResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	resp := &api.PlayerSummariesResponse{}
	for _, id := range ids {
		if f.missing[id] {
			continue
		}
		resp.Response.Players = append(resp.Response.Players, api.SteamPlayer{
			SteamID:     id,
			PersonaName: "persona-" + id,
			AvatarFull:  "https://img/" + id + ".png",
			TimeCreated: 1600000000,
		})
	}
	return resp, nil
}

func (f *fakeSteam) GetPlayerBans(_ context.Context, ids []string) (*api.PlayerBansResponse, error) {
	resp := &api.PlayerBansResponse{}
	for _, id := range ids {
		if f.missing[id] {
			continue
		}
		resp.Players = append(resp.Players, api.SteamBans{SteamID: id, NumberOfGameBans: 1})
	}
	return resp, nil
}

func TestProfileSyncRun(t *testing.T) {
	fx := newFixture(t)
	steam := &fakeSteam{missing: map[string]bool{charlie: true}}
	svc := NewProfileSyncService(fx.feed, fx.profiles, steam, fx.cfg, zerolog.Nop())
	ctx := context.Background()

	report, err := svc.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.RunID == "" || report.Players != 7 || report.Batches != 1 || report.Failed != 0 {
		t.Fatalf("report = %+v", report)
	}
	if report.Profiles != 6 || report.Bans != 6 {
		t.Fatalf("upserted %d profiles and %d bans, want 6 each", report.Profiles, report.Bans)
	}

	p, err := fx.profiles.Get(ctx, golf)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.PersonaName != "persona-"+golf || p.SyncID != report.RunID || p.AccountCreated == nil {
		t.Errorf("profile = %+v", p)
	}
	b, err := fx.bans.Get(ctx, alpha)
	if err != nil || b.NumberOfGameBans != 1 || b.EconomyBan != "none" {
		t.Errorf("bans = %+v, %v", b, err)
	}

	if report.Missing != 1 {
		t.Errorf("missing = %d, want 1", report.Missing)
	}

	// the player Steam did not return waits out the stale window like the rest
	again, err := svc.Run(ctx)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if again.Players != 0 || again.RunID == report.RunID {
		t.Errorf("second report = %+v", again)
	}

	svc.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	later, err := svc.Run(ctx)
	if err != nil {
		t.Fatalf("later Run: %v", err)
	}
	if later.Players != 7 || later.Missing != 1 {
		t.Errorf("later report = %+v", later)
	}
}

func TestProfileSyncStaleness(t *testing.T) {
	fx := newFixture(t)
	steam := &fakeSteam{}
	svc := NewProfileSyncService(fx.feed, fx.profiles, steam, fx.cfg, zerolog.Nop())
	ctx := context.Background()

	if _, err := svc.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	svc.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	report, err := svc.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Players != 7 {
		t.Errorf("expected every profile to be stale after 48h, got %d", report.Players)
	}
}

func TestProfileSyncSkipsFailedBatch(t *testing.T) {
	fx := newFixture(t)
	steam := &fakeSteam{fail: errors.New("steam API error: 503")}
	svc := NewProfileSyncService(fx.feed, fx.profiles, steam, fx.cfg, zerolog.Nop())
	ctx := context.Background()

	report, err := svc.Run(ctx)
	if err != nil {
		t.Fatalf("a failed batch must not fail the run: %v", err)
	}
	if report.Failed != 1 || report.Profiles != 0 {
		t.Fatalf("report = %+v", report)
	}
	if _, err := fx.profiles.Get(ctx, alpha); err == nil {
		t.Fatalf("nothing should have been written")
	}
}
