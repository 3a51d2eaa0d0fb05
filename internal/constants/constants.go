package constants

import "time"

const (
	LeaderboardCacheTTL = 5 * time.Minute
	StatsCacheTTL       = 2 * time.Minute
	ProfileStaleAfter   = 24 * time.Hour
)

const (
	ExternalAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
	ProfileSyncTimeout = 10 * time.Minute
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
	DBBatchSize       = 100
)

const (
	ShutdownTimeout = 5 * time.Second
)

// session segmentation contract; changing either moves every reported boundary
const (
	SessionGapThreshold = 30 * time.Minute
	SessionMatchPadding = 10 * time.Minute
)

const (
	HotSessionEloPerHour  = 200
	HotSessionMinMatches  = 3
	ColdSessionEloPerHour = -200
)

const (
	WinRateMinMatches = 50
	KDRMinMatches     = 50
	PeakEloMinMatches = 5
)

const (
	LeaderboardPageSize      = 50
	PlayerLeaderboardFetch   = 25
	PlayerLeaderboardSize    = 20
	MatchHistoryPageSize     = 25
	RecentMatchesDefault     = 100
	RecentMatchesMax         = 200
	SearchMinQueryLength     = 2
	SearchProfileCandidates  = 30
	SearchResultLimit        = 20
	SearchExactIDLimit       = 5
	OpponentInsightTopBeaten = 5
	SteamIDBatchSize         = 100
)

// upper bound of stale players picked up by one profile sync run
const ProfileSyncMaxPlayers = 20000
