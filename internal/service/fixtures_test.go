package service

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"pat-tracker/internal/cache"
	"pat-tracker/internal/config"
	"pat-tracker/internal/database/dbtest"
	"pat-tracker/internal/repository"
	"pat-tracker/internal/season"

	"github.com/rs/zerolog"
)

const (
	alpha   = "100"
	bravo   = "200"
	charlie = "300"
	delta   = "400"
	echo    = "500"
	foxtrot = "76561198000000001"
	golf    = "76561198000000002"
)

type ladderPlayer struct {
	id   string
	name string
	elo  int
}

// seedLadder plays n matches between a and b on date, ten minutes apart; a
// wins the first aWins of them. Each result moves both ratings by 15.
func seedLadder(t *testing.T, db *sql.DB, prefix, date string, a, b ladderPlayer, n, aWins int) {
	t.Helper()
	for i := 0; i < n; i++ {
		aWon := i < aWins
		change := 15
		if !aWon {
			change = -15
		}
		a.elo += change
		b.elo -= change

		sa := dbtest.Side{SteamID: a.id, Name: a.name, Elo: a.elo, EloChange: change, Kills: 10, Deaths: 5, Damage: dbtest.Int(400)}
		sb := dbtest.Side{SteamID: b.id, Name: b.name, Elo: b.elo, EloChange: -change, Kills: 5, Deaths: 10, Damage: dbtest.Int(200)}
		m := dbtest.Match{
			ID:   fmt.Sprintf("%s%d", prefix, i),
			Date: date,
			Time: fmt.Sprintf("%02d:%02d", (i*10)/60, (i*10)%60),
		}
		if aWon {
			sa.Rounds, sb.Rounds = 4, 3
			m.Winner, m.Loser = sa, sb
		} else {
			sa.Rounds, sb.Rounds = 3, 4
			m.Winner, m.Loser = sb, sa
		}
		dbtest.InsertMatch(t, db, m)
	}
}

// seedFeed builds the shared fixture:
//   - alpha plays two matches against bravo on 2026-01-01, a walkover
//     against charlie the next night and an abandoned loss to charlie in S52
//   - delta beats echo four times out of six (peak 1260)
//   - foxtrot and golf play fifty matches, foxtrot winning thirty
func seedFeed(t *testing.T) *sql.DB {
	t.Helper()
	db := dbtest.Open(t)

	dbtest.InsertMatch(t, db, dbtest.Match{
		ID: "m1", Date: "2026-01-01", Time: "10:00", Type: "ranked",
		Winner: dbtest.Side{SteamID: alpha, Name: "Alpha", Elo: 1020, EloChange: 20, Kills: 10, Deaths: 5, Damage: dbtest.Int(350), Rounds: 4},
		Loser:  dbtest.Side{SteamID: bravo, Name: "Bravo", Elo: 980, EloChange: -20, Kills: 5, Deaths: 10, Damage: dbtest.Int(150), Rounds: 3},
	})
	dbtest.InsertMatch(t, db, dbtest.Match{
		ID: "m2", Date: "2026-01-01", Time: "10:20",
		Winner: dbtest.Side{SteamID: bravo, Name: "Bravo", Elo: 1000, EloChange: 20, Kills: 8, Deaths: 6, Damage: dbtest.Int(720), Rounds: 4},
		Loser:  dbtest.Side{SteamID: alpha, Name: "Alpha", Elo: 1000, EloChange: -20, Kills: 6, Deaths: 8, Damage: dbtest.Int(90), Rounds: 3},
	})
	dbtest.InsertMatch(t, db, dbtest.Match{
		ID: "m3", Date: "2026-01-02", Time: "02:00",
		Winner: dbtest.Side{SteamID: alpha, Name: "Alpha", Elo: 1030, EloChange: 30, Kills: 12, Deaths: 3, Rounds: 1},
		Loser:  dbtest.Side{SteamID: charlie, Name: "Charlie", Elo: 970, EloChange: -30, Kills: 0, Deaths: 1, Rounds: 0},
	})
	dbtest.InsertMatch(t, db, dbtest.Match{
		ID: "m4", Date: "2026-02-10", Time: "17:30", RoundsTotal: 9,
		Winner: dbtest.Side{SteamID: charlie, Name: "Charlie", Elo: 1000, EloChange: 30, Kills: 9, Deaths: 9, Damage: dbtest.Int(400), Rounds: 3},
		Loser:  dbtest.Side{SteamID: alpha, Name: "Alpha", Elo: 1005, EloChange: -25, Kills: 7, Deaths: 9, Damage: dbtest.Int(300), Rounds: 3},
	})
	dbtest.InsertBans(t, db, charlie, true, 1, 0, 12)

	seedLadder(t, db, "r", "2026-03-01",
		ladderPlayer{delta, "Delta", 1200}, ladderPlayer{echo, "Echo", 1100}, 6, 4)
	seedLadder(t, db, "x", "2026-03-02",
		ladderPlayer{foxtrot, "Foxtrot", 600}, ladderPlayer{golf, "Golf", 500}, 50, 30)
	dbtest.InsertBans(t, db, golf, false, 0, 2, 100)

	return db
}

func testConfig() *config.Config {
	return &config.Config{
		CacheTTL: time.Minute,
		Seasons:  season.NewTable(season.Builtin),
	}
}

type fixture struct {
	db       *sql.DB
	cfg      *config.Config
	cache    cache.Cache
	feed     *repository.FeedRepository
	profiles *repository.ProfileRepository
	bans     *repository.BansRepository
	boards   *repository.LeaderboardRepository
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := seedFeed(t)
	logger := zerolog.Nop()
	cfg := testConfig()
	return fixture{
		db:       db,
		cfg:      cfg,
		cache:    cache.NewMemoryCache(64, cfg.CacheTTL, logger),
		feed:     repository.NewFeedRepository(db, logger),
		profiles: repository.NewProfileRepository(db, logger),
		bans:     repository.NewBansRepository(db, logger),
		boards:   repository.NewLeaderboardRepository(db, logger),
	}
}
