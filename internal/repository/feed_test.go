package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"pat-tracker/internal/database/dbtest"
	"pat-tracker/internal/season"

	"github.com/rs/zerolog"
)

const (
	alpha   = "100"
	bravo   = "200"
	charlie = "300"
)

// seedFeed writes four matches for alpha: two against bravo on the first
// day, a walkover against charlie and an abandoned loss to charlie in S52.
func seedFeed(t *testing.T) *sql.DB {
	t.Helper()
	db := dbtest.Open(t)

	dbtest.InsertMatch(t, db, dbtest.Match{
		ID: "m1", Date: "2026-01-01", Time: "10:00", Type: "ranked", RoundsTotal: 7,
		Winner: dbtest.Side{SteamID: alpha, Name: "Alpha", Elo: 1020, EloChange: 20, Kills: 10, Deaths: 5, Damage: dbtest.Int(350), Rounds: 4},
		Loser:  dbtest.Side{SteamID: bravo, Name: "Bravo", Elo: 980, EloChange: -20, Kills: 5, Deaths: 10, Damage: dbtest.Int(150), Rounds: 3},
	})
	dbtest.InsertMatch(t, db, dbtest.Match{
		ID: "m2", Date: "2026-01-01", Time: "10:20", RoundsTotal: 7,
		Winner: dbtest.Side{SteamID: bravo, Name: "Bravo", Elo: 1000, EloChange: 20, Kills: 8, Deaths: 6, Damage: dbtest.Int(720), Rounds: 4},
		Loser:  dbtest.Side{SteamID: alpha, Name: "Alpha", Elo: 1000, EloChange: -20, Kills: 6, Deaths: 8, Damage: dbtest.Int(90), Rounds: 3},
	})
	dbtest.InsertMatch(t, db, dbtest.Match{
		ID: "m3", Date: "2026-01-02", Time: "02:00", RoundsTotal: 7,
		Winner: dbtest.Side{SteamID: alpha, Name: "Alpha", Elo: 1030, EloChange: 30, Kills: 12, Deaths: 3, Rounds: 1},
		Loser:  dbtest.Side{SteamID: charlie, Name: "Charlie", Elo: 970, EloChange: -30, Kills: 0, Deaths: 1, Rounds: 0},
	})
	dbtest.InsertMatch(t, db, dbtest.Match{
		ID: "m4", Date: "2026-02-10", Time: "17:30", RoundsTotal: 9,
		Winner: dbtest.Side{SteamID: charlie, Name: "Charlie", Elo: 1000, EloChange: 30, Kills: 9, Deaths: 9, Damage: dbtest.Int(400), Rounds: 3},
		Loser:  dbtest.Side{SteamID: alpha, Name: "Alpha", Elo: 1005, EloChange: -25, Kills: 7, Deaths: 9, Damage: dbtest.Int(300), Rounds: 3},
	})
	dbtest.InsertBans(t, db, charlie, true, 1, 0, 12)

	return db
}

var s52 = season.DateFilter{From: "2026-02-09", To: "2026-02-23"}

func TestPlayerMatchesOrderAndFilter(t *testing.T) {
	repo := NewFeedRepository(seedFeed(t), zerolog.Nop())
	ctx := context.Background()

	records, err := repo.PlayerMatches(ctx, alpha, season.DateFilter{})
	if err != nil {
		t.Fatalf("PlayerMatches: %v", err)
	}
	want := []string{"m1", "m2", "m3", "m4"}
	if len(records) != len(want) {
		t.Fatalf("got %d records, want %d", len(records), len(want))
	}
	for i, id := range want {
		if records[i].MatchID != id {
			t.Fatalf("record %d = %s, want %s", i, records[i].MatchID, id)
		}
	}
	if records[2].Damage != nil {
		t.Fatalf("expected nil damage for m3")
	}

	filtered, err := repo.PlayerMatches(ctx, alpha, s52)
	if err != nil {
		t.Fatalf("PlayerMatches filtered: %v", err)
	}
	if len(filtered) != 1 || filtered[0].MatchID != "m4" {
		t.Fatalf("unexpected filtered records: %+v", filtered)
	}

	none, err := repo.PlayerMatches(ctx, "999", season.DateFilter{})
	if err != nil {
		t.Fatalf("PlayerMatches unknown: %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", none)
	}
}

func TestDateFilterIsHalfOpen(t *testing.T) {
	db := seedFeed(t)
	for _, m := range []struct{ id, date string }{
		{"eve", "2026-02-08"},
		{"open", s52.From},
		{"close", s52.To},
	} {
		dbtest.InsertMatch(t, db, dbtest.Match{
			ID: m.id, Date: m.date, Time: "12:00",
			Winner: dbtest.Side{SteamID: alpha, Name: "Alpha", Elo: 1040, EloChange: 10, Kills: 5, Deaths: 5, Rounds: 4},
			Loser:  dbtest.Side{SteamID: bravo, Name: "Bravo", Elo: 990, EloChange: -10, Kills: 5, Deaths: 5, Rounds: 3},
		})
	}
	repo := NewFeedRepository(db, zerolog.Nop())
	ctx := context.Background()

	records, err := repo.PlayerMatches(ctx, alpha, s52)
	if err != nil {
		t.Fatalf("PlayerMatches: %v", err)
	}
	var got []string
	for _, r := range records {
		got = append(got, r.MatchID)
	}
	if len(got) != 2 || got[0] != "open" || got[1] != "m4" {
		t.Fatalf("matches in [%s, %s) = %v, want [open m4]", s52.From, s52.To, got)
	}

	st, err := repo.PlayerStats(ctx, alpha, s52)
	if err != nil {
		t.Fatalf("PlayerStats: %v", err)
	}
	if st.Matches != 2 || st.FirstDate != s52.From || st.LastDate != "2026-02-10" {
		t.Fatalf("stats in range = %+v", st)
	}
}

func TestPlayerStats(t *testing.T) {
	repo := NewFeedRepository(seedFeed(t), zerolog.Nop())

	s, err := repo.PlayerStats(context.Background(), alpha, season.DateFilter{})
	if err != nil {
		t.Fatalf("PlayerStats: %v", err)
	}
	if s.Matches != 4 || s.Wins != 2 || s.Losses != 2 {
		t.Fatalf("unexpected record: %+v", s)
	}
	if s.TotalKills != 35 || s.TotalDeaths != 25 {
		t.Fatalf("unexpected totals: %+v", s)
	}
	if s.AvgDamage != 247 {
		t.Fatalf("avg damage = %v, want 247", s.AvgDamage)
	}
	if s.FirstDate != "2026-01-01" || s.LastDate != "2026-02-10" || s.PeakElo != 1030 {
		t.Fatalf("unexpected range: %+v", s)
	}

	empty, err := repo.PlayerStats(context.Background(), "999", season.DateFilter{})
	if err != nil {
		t.Fatalf("PlayerStats unknown: %v", err)
	}
	if empty.Matches != 0 {
		t.Fatalf("expected no matches, got %d", empty.Matches)
	}
}

func TestEdgeMatches(t *testing.T) {
	repo := NewFeedRepository(seedFeed(t), zerolog.Nop())
	ctx := context.Background()

	first, err := repo.FirstMatch(ctx, alpha, season.DateFilter{})
	if err != nil || first.Elo != 1020 {
		t.Fatalf("FirstMatch = %+v, %v", first, err)
	}
	last, err := repo.LastMatch(ctx, alpha, season.DateFilter{})
	if err != nil || last.Elo != 1005 {
		t.Fatalf("LastMatch = %+v, %v", last, err)
	}
	if _, err := repo.LastMatch(ctx, "999", season.DateFilter{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDailyAndDistributions(t *testing.T) {
	repo := NewFeedRepository(seedFeed(t), zerolog.Nop())
	ctx := context.Background()

	days, err := repo.Daily(ctx, alpha, season.DateFilter{})
	if err != nil {
		t.Fatalf("Daily: %v", err)
	}
	if len(days) != 3 || days[0].Date != "2026-02-10" || days[2].Date != "2026-01-01" {
		t.Fatalf("unexpected days: %+v", days)
	}
	first := days[2]
	if first.Matches != 2 || first.Wins != 1 || first.MinElo != 1000 || first.MaxElo != 1020 || first.EloChange != 0 {
		t.Fatalf("unexpected rollup: %+v", first)
	}

	buckets, err := repo.DamageDistribution(ctx, alpha, season.DateFilter{})
	if err != nil {
		t.Fatalf("DamageDistribution: %v", err)
	}
	if len(buckets) != 2 || buckets[0].DamageRange != "0-99" || buckets[1].DamageRange != "300-399" || buckets[1].Count != 2 {
		t.Fatalf("unexpected buckets: %+v", buckets)
	}

	blocks, err := repo.TimeOfDay(ctx, alpha, season.DateFilter{})
	if err != nil {
		t.Fatalf("TimeOfDay: %v", err)
	}
	wantBlocks := []string{"6-10 PM CST", "2-6 AM CST", "10 AM-2 PM CST"}
	if len(blocks) != len(wantBlocks) {
		t.Fatalf("unexpected blocks: %+v", blocks)
	}
	for i, name := range wantBlocks {
		if blocks[i].TimeBlock != name {
			t.Fatalf("block %d = %q, want %q", i, blocks[i].TimeBlock, name)
		}
	}
	if blocks[1].Matches != 2 {
		t.Fatalf("expected both morning matches in one block, got %d", blocks[1].Matches)
	}
}

func TestOpponents(t *testing.T) {
	repo := NewFeedRepository(seedFeed(t), zerolog.Nop())

	opps, err := repo.Opponents(context.Background(), alpha, season.DateFilter{})
	if err != nil {
		t.Fatalf("Opponents: %v", err)
	}
	if len(opps) != 2 {
		t.Fatalf("expected 2 opponents, got %d", len(opps))
	}
	b, c := opps[0], opps[1]
	if b.SteamID != bravo || b.TimesFaced != 2 || b.Wins != 1 || b.Losses != 1 || b.OppPeakElo != 1000 {
		t.Fatalf("unexpected bravo row: %+v", b)
	}
	if b.OppKills != 13 || b.OppDeaths != 16 || b.Bans != nil {
		t.Fatalf("unexpected bravo totals: %+v", b)
	}
	if c.SteamID != charlie || c.Bans == nil || c.Bans.VAC != 1 || c.Bans.Days != 12 {
		t.Fatalf("unexpected charlie row: %+v", c)
	}
}

func TestDisconnects(t *testing.T) {
	repo := NewFeedRepository(seedFeed(t), zerolog.Nop())

	rows, err := repo.Disconnects(context.Background(), alpha, season.DateFilter{})
	if err != nil {
		t.Fatalf("Disconnects: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 disconnects, got %d", len(rows))
	}
	if rows[0].MatchID != "m4" || rows[0].MySide != "loser" || rows[0].MyRounds != 3 || rows[0].OppRounds != 3 {
		t.Fatalf("unexpected newest disconnect: %+v", rows[0])
	}
	if rows[1].MatchID != "m3" || rows[1].OppBans == nil {
		t.Fatalf("unexpected older disconnect: %+v", rows[1])
	}
}

func TestMatchHistoryPaging(t *testing.T) {
	repo := NewFeedRepository(seedFeed(t), zerolog.Nop())

	page, total, err := repo.MatchHistory(context.Background(), alpha, season.DateFilter{}, 2, 2)
	if err != nil {
		t.Fatalf("MatchHistory: %v", err)
	}
	if total != 4 {
		t.Fatalf("total = %d", total)
	}
	if len(page) != 2 || page[0].MatchID != "m3" || page[1].MatchID != "m4" {
		t.Fatalf("unexpected page: %+v", page)
	}
	if page[1].OppSteamID != charlie || page[1].OppRounds != 3 {
		t.Fatalf("unexpected opponent columns: %+v", page[1])
	}
}

func TestRecentMatches(t *testing.T) {
	repo := NewFeedRepository(seedFeed(t), zerolog.Nop())

	recent, err := repo.RecentMatches(context.Background(), 2)
	if err != nil {
		t.Fatalf("RecentMatches: %v", err)
	}
	if len(recent) != 2 || recent[0].MatchID != "m4" || recent[1].MatchID != "m3" {
		t.Fatalf("unexpected recent matches: %+v", recent)
	}
	if recent[0].WinnerID != charlie || recent[0].LoserID != alpha {
		t.Fatalf("sides swapped: %+v", recent[0])
	}
	if recent[1].WinnerDamage != nil || recent[1].MatchType != nil {
		t.Fatalf("expected null damage and type on m3: %+v", recent[1])
	}
}

func TestGlobalStatsAndDateRange(t *testing.T) {
	repo := NewFeedRepository(seedFeed(t), zerolog.Nop())
	ctx := context.Background()

	s, err := repo.GlobalStats(ctx)
	if err != nil {
		t.Fatalf("GlobalStats: %v", err)
	}
	if s.TotalPlayers != 3 || s.TotalMatches != 4 || *s.MinDate != "2026-01-01" || *s.MaxDate != "2026-02-10" {
		t.Fatalf("unexpected stats: %+v", s)
	}

	from, to, err := repo.DateRange(ctx, charlie)
	if err != nil || from != "2026-01-02" || to != "2026-02-10" {
		t.Fatalf("DateRange = %s..%s, %v", from, to, err)
	}
	if _, _, err := repo.DateRange(ctx, "999"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSearch(t *testing.T) {
	repo := NewFeedRepository(seedFeed(t), zerolog.Nop())
	ctx := context.Background()

	byName, err := repo.SearchByName(ctx, "ha", 20)
	if err != nil {
		t.Fatalf("SearchByName: %v", err)
	}
	if len(byName) != 2 || byName[0].SteamID != alpha || byName[0].Matches != 4 || byName[1].SteamID != charlie {
		t.Fatalf("unexpected name results: %+v", byName)
	}

	byID, err := repo.SearchByID(ctx, bravo, 5)
	if err != nil {
		t.Fatalf("SearchByID: %v", err)
	}
	if len(byID) != 1 || byID[0].PlayerName != "Bravo" || byID[0].Matches != 2 {
		t.Fatalf("unexpected id results: %+v", byID)
	}

	counts, err := repo.MatchCounts(ctx, []string{alpha, charlie, "999"})
	if err != nil {
		t.Fatalf("MatchCounts: %v", err)
	}
	if counts[alpha] != 4 || counts[charlie] != 2 {
		t.Fatalf("unexpected counts: %v", counts)
	}
	if _, ok := counts["999"]; ok {
		t.Fatalf("unknown id should be absent")
	}
}
