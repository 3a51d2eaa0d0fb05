package domain

import "time"

const (
	SideWinner = "winner"
	SideLoser  = "loser"
)

// MatchRecord is one player's row of a ranked match. Every match has exactly
// two rows, one per participant.
type MatchRecord struct {
	MatchID     string
	SteamID     string
	PlayerName  string
	Date        string // YYYY-MM-DD
	TimeOfDay   string // HH:MM[:SS] UTC, empty when unknown
	Side        string
	Elo         int
	EloChange   int
	Kills       int
	Deaths      int
	Damage      *int
	RoundsWon   int
	RoundsTotal int
}

func (m MatchRecord) Won() bool {
	return m.Side == SideWinner
}

// EloBefore is the rating the player carried into the match.
func (m MatchRecord) EloBefore() int {
	return m.Elo - m.EloChange
}

type Session struct {
	ID              int    `json:"id"`
	Date            string `json:"date"`
	StartTime       string `json:"startTime"`
	EndTime         string `json:"endTime"`
	MatchCount      int    `json:"matchCount"`
	Wins            int    `json:"wins"`
	Losses          int    `json:"losses"`
	EloStart        int    `json:"eloStart"`
	EloEnd          int    `json:"eloEnd"`
	EloMin          int    `json:"eloMin"`
	EloMax          int    `json:"eloMax"`
	EloChange       int    `json:"eloChange"`
	DurationMinutes int    `json:"durationMinutes"`
	EloPerHour      int    `json:"eloPerHour"`
	TotalKills      int    `json:"totalKills"`
	TotalDeaths     int    `json:"totalDeaths"`
}

type PlayerProfile struct {
	SteamID        string     `json:"steam_id"`
	PersonaName    string     `json:"persona_name"`
	AvatarURL      *string    `json:"avatar_url"`
	ProfileURL     *string    `json:"profile_url"`
	CountryCode    *string    `json:"country_code"`
	AccountCreated *time.Time `json:"account_created"`
	SyncID         string     `json:"-"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type PlayerBans struct {
	SteamID          string    `json:"steam_id"`
	VACBanned        bool      `json:"vac_banned"`
	NumberOfVACBans  int       `json:"number_of_vac_bans"`
	NumberOfGameBans int       `json:"number_of_game_bans"`
	DaysSinceLastBan int       `json:"days_since_last_ban"`
	CommunityBanned  bool      `json:"community_banned"`
	EconomyBan       string    `json:"economy_ban"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// PlayerStats is the raw aggregate row behind the player summary.
type PlayerStats struct {
	PlayerName  string
	Matches     int
	Wins        int
	Losses      int
	TotalKills  int
	TotalDeaths int
	AvgDamage   float64
	FirstDate   string
	LastDate    string
	PeakElo     int
}

type PlayerSummary struct {
	SteamID     string         `json:"steamId"`
	PlayerName  string         `json:"playerName"`
	Matches     int            `json:"matches"`
	Wins        int            `json:"wins"`
	Losses      int            `json:"losses"`
	WinRate     float64        `json:"winRate"`
	KDR         float64        `json:"kdr"`
	TotalKills  int            `json:"totalKills"`
	TotalDeaths int            `json:"totalDeaths"`
	AvgDamage   float64        `json:"avgDamage"`
	PeakElo     int            `json:"peakElo"`
	CurrentElo  int            `json:"currentElo"`
	NetElo      int            `json:"netElo"`
	FirstDate   string         `json:"firstDate"`
	LastDate    string         `json:"lastDate"`
	Profile     *PlayerProfile `json:"profile"`
	Bans        *PlayerBans    `json:"bans"`
}

type EloPoint struct {
	Date      string  `json:"date"`
	TimeUTC   *string `json:"time_utc"`
	Elo       int     `json:"elo"`
	Side      string  `json:"side"`
	MatchID   string  `json:"match_id"`
	EloChange int     `json:"elo_change"`
}

type DailyStat struct {
	Date        string  `json:"date"`
	Matches     int     `json:"matches"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	TotalKills  int     `json:"total_kills"`
	TotalDeaths int     `json:"total_deaths"`
	AvgDamage   float64 `json:"avg_damage"`
	MinElo      int     `json:"min_elo"`
	MaxElo      int     `json:"max_elo"`
	EloChange   int     `json:"elo_change"`
	WinRate     float64 `json:"win_rate"`
	KDR         float64 `json:"kdr"`
}

type DamageBucket struct {
	DamageRange string `json:"damage_range"`
	Count       int    `json:"count"`
}

type TimeBlockStat struct {
	TimeBlock   string `json:"time_block"`
	Matches     int    `json:"matches"`
	Wins        int    `json:"wins"`
	Losses      int    `json:"losses"`
	TotalKills  int    `json:"total_kills"`
	TotalDeaths int    `json:"total_deaths"`
}

// BanSummary is the compact ban view attached to rows about other players.
type BanSummary struct {
	VAC      int `json:"vac"`
	VACCount int `json:"vac_count"`
	Game     int `json:"game"`
	Days     int `json:"days"`
}

type OpponentStat struct {
	SteamID    string      `json:"steam_id"`
	PlayerName string      `json:"player_name"`
	TimesFaced int         `json:"times_faced"`
	Wins       int         `json:"wins"`
	Losses     int         `json:"losses"`
	OppPeakElo int         `json:"opp_peak_elo"`
	OppKills   int         `json:"opp_kills"`
	OppDeaths  int         `json:"opp_deaths"`
	Bans       *BanSummary `json:"bans"`
}

type FrequencyBucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

type OpponentInsights struct {
	Nemesis   *OpponentStat     `json:"nemesis"`
	Prey      *OpponentStat     `json:"prey"`
	Frequency []FrequencyBucket `json:"frequency"`
	TopBeaten []OpponentStat    `json:"topBeaten"`
	Notable   []OpponentStat    `json:"notable"`
}

// DisconnectRow is a match where the rounds played fall short of the rounds
// the match was scheduled for.
type DisconnectRow struct {
	MatchID     string
	Date        string
	MySide      string
	MyRounds    int
	RoundsTotal int
	MyElo       int
	OppName     string
	OppSteamID  string
	OppElo      int
	OppRounds   int
	OppBans     *BanSummary
}

type DisconnectDetail struct {
	MatchID    string      `json:"match_id"`
	Date       string      `json:"date"`
	OppName    string      `json:"opp_name"`
	OppSteamID string      `json:"opp_steam_id"`
	OppElo     int         `json:"opp_elo"`
	Score      string      `json:"score"`
	Type       string      `json:"type"`
	Bans       *BanSummary `json:"bans"`
}

type DisconnectReport struct {
	ByPlayer             int                `json:"byPlayer"`
	AgainstPlayer        int                `json:"againstPlayer"`
	ByPlayerDetails      []DisconnectDetail `json:"byPlayerDetails"`
	AgainstPlayerDetails []DisconnectDetail `json:"againstPlayerDetails"`
}

type MatchHistoryEntry struct {
	MatchID     string  `json:"match_id"`
	Date        string  `json:"date"`
	TimeUTC     *string `json:"time_utc"`
	Side        string  `json:"side"`
	RoundsWon   int     `json:"rounds_won"`
	RoundsTotal int     `json:"rounds_total"`
	Kills       int     `json:"kills"`
	Deaths      int     `json:"deaths"`
	Elo         int     `json:"elo"`
	EloChange   int     `json:"elo_change"`
	Damage      *int    `json:"damage"`
	OppName     string  `json:"opp_name"`
	OppSteamID  string  `json:"opp_steam_id"`
	OppElo      int     `json:"opp_elo"`
	OppKills    int     `json:"opp_kills"`
	OppDeaths   int     `json:"opp_deaths"`
	OppRounds   int     `json:"opp_rounds"`
}

type MatchHistoryPage struct {
	Matches    []MatchHistoryEntry `json:"matches"`
	Total      int                 `json:"total"`
	Page       int                 `json:"page"`
	TotalPages int                 `json:"totalPages"`
}

type RecentMatch struct {
	MatchID         string  `json:"match_id"`
	Date            string  `json:"date"`
	TimeUTC         *string `json:"time_utc"`
	MatchType       *string `json:"match_type"`
	WinnerName      string  `json:"winner_name"`
	WinnerID        string  `json:"winner_id"`
	WinnerElo       int     `json:"winner_elo"`
	WinnerEloChange int     `json:"winner_elo_change"`
	WinnerKills     int     `json:"winner_kills"`
	WinnerDeaths    int     `json:"winner_deaths"`
	WinnerDamage    *int    `json:"winner_damage"`
	WinnerRounds    int     `json:"winner_rounds"`
	LoserName       string  `json:"loser_name"`
	LoserID         string  `json:"loser_id"`
	LoserElo        int     `json:"loser_elo"`
	LoserEloChange  int     `json:"loser_elo_change"`
	LoserKills      int     `json:"loser_kills"`
	LoserDeaths     int     `json:"loser_deaths"`
	LoserDamage     *int    `json:"loser_damage"`
	LoserRounds     int     `json:"loser_rounds"`
}

const (
	LeaderboardWinRate = "winrate"
	LeaderboardElo     = "elo"
	LeaderboardActive  = "active"
	LeaderboardKDR     = "kdr"
)

// LeaderboardRow carries every column any leaderboard type selects; columns a
// type does not compute stay nil.
type LeaderboardRow struct {
	SteamID          string   `json:"steam_id"`
	PlayerName       string   `json:"player_name"`
	Matches          int      `json:"matches"`
	Wins             *int     `json:"wins,omitempty"`
	WinRate          *float64 `json:"win_rate,omitempty"`
	TotalKills       *int     `json:"total_kills,omitempty"`
	TotalDeaths      *int     `json:"total_deaths,omitempty"`
	KDR              *float64 `json:"kdr,omitempty"`
	PeakElo          *int     `json:"peak_elo,omitempty"`
	VACBanned        *int     `json:"vac_banned"`
	NumberOfGameBans *int     `json:"number_of_game_bans"`
}

// PlayerAggregate is one player's row inside a filtered leaderboard.
type PlayerAggregate struct {
	SteamID     string
	PlayerName  string
	Matches     int
	Wins        int
	Losses      int
	TotalKills  int
	TotalDeaths int
	AvgDamage   float64
	PeakElo     int
	CurrentElo  int
}

type LeaderboardBans struct {
	VACBanned        int `json:"vac_banned"`
	NumberOfGameBans int `json:"number_of_game_bans"`
	DaysSinceLastBan int `json:"days_since_last_ban"`
}

type RankedPlayer struct {
	SteamID    string           `json:"steam_id"`
	PlayerName string           `json:"player_name"`
	Matches    int              `json:"matches"`
	Wins       int              `json:"wins"`
	Losses     int              `json:"losses"`
	WinRate    float64          `json:"win_rate"`
	KDR        float64          `json:"kdr"`
	PeakElo    int              `json:"peak_elo"`
	CurrentElo int              `json:"current_elo"`
	AvgDamage  float64          `json:"avg_damage"`
	Bans       *LeaderboardBans `json:"bans"`
}

type PlayerLeaderboard struct {
	ByWinRate     []RankedPlayer `json:"byWinRate"`
	ByElo         []RankedPlayer `json:"byElo"`
	CurrentPlayer string         `json:"currentPlayer"`
}

type Rank struct {
	Rank       *int `json:"rank"`
	Total      int  `json:"total"`
	Percentile *int `json:"percentile"`
}

type Rankings struct {
	PeakElo Rank `json:"peakElo"`
	WinRate Rank `json:"winRate"`
}

type SearchResult struct {
	SteamID    string  `json:"steam_id"`
	PlayerName string  `json:"player_name"`
	Matches    int     `json:"matches"`
	AvatarURL  *string `json:"avatar_url"`
}

type GlobalStats struct {
	TotalPlayers int     `json:"totalPlayers"`
	TotalMatches int     `json:"totalMatches"`
	MinDate      *string `json:"minDate"`
	MaxDate      *string `json:"maxDate"`
}

type SessionSummary struct {
	SessionCount      int      `json:"sessionCount"`
	OverallEloPerHour int      `json:"overallEloPerHour"`
	Best              *Session `json:"best"`
	HotSessions       int      `json:"hotSessions"`
	ColdSessions      int      `json:"coldSessions"`
}
