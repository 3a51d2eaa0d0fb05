package service

import (
	"context"
	"fmt"
	"sort"

	"pat-tracker/internal/constants"
	"pat-tracker/internal/domain"
	"pat-tracker/internal/repository"
	"pat-tracker/internal/season"
	"pat-tracker/internal/stats"

	"github.com/rs/zerolog"
)

var frequencyLabels = []string{"1x", "2x", "3x", "4+"}

type OpponentService struct {
	feed   *repository.FeedRepository
	logger zerolog.Logger
}

func NewOpponentService(feed *repository.FeedRepository, logger zerolog.Logger) *OpponentService {
	return &OpponentService{feed: feed, logger: logger}
}

func (s *OpponentService) Opponents(ctx context.Context, steamID string, f season.DateFilter) ([]domain.OpponentStat, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	opponents, err := s.feed.Opponents(ctx, steamID, f)
	if err != nil {
		s.logger.Error().Err(err).Str("steam_id", steamID).Msg("failed to load opponents")
		return nil, err
	}
	return opponents, nil
}

func (s *OpponentService) Insights(ctx context.Context, steamID string, f season.DateFilter) (domain.OpponentInsights, error) {
	opponents, err := s.Opponents(ctx, steamID, f)
	if err != nil {
		return domain.OpponentInsights{}, err
	}
	return BuildInsights(opponents), nil
}

// BuildInsights derives the head-to-head highlights from opponents ordered by
// times faced. Ties go to the opponent listed first.
func BuildInsights(opponents []domain.OpponentStat) domain.OpponentInsights {
	insights := domain.OpponentInsights{
		Frequency: make([]domain.FrequencyBucket, len(frequencyLabels)),
		TopBeaten: []domain.OpponentStat{},
		Notable:   []domain.OpponentStat{},
	}
	for i, label := range frequencyLabels {
		insights.Frequency[i].Label = label
	}

	for i := range opponents {
		o := opponents[i]
		if o.Losses > 0 && (insights.Nemesis == nil || o.Losses > insights.Nemesis.Losses) {
			insights.Nemesis = &opponents[i]
		}
		if o.Wins > 0 && (insights.Prey == nil || o.Wins > insights.Prey.Wins) {
			insights.Prey = &opponents[i]
		}
		if o.TimesFaced >= 2 {
			insights.Notable = append(insights.Notable, o)
		}
		if o.Wins > 0 {
			insights.TopBeaten = append(insights.TopBeaten, o)
		}
		insights.Frequency[min(max(o.TimesFaced, 1), len(frequencyLabels))-1].Count++
	}

	sort.SliceStable(insights.Notable, func(a, b int) bool {
		return insights.Notable[a].TimesFaced > insights.Notable[b].TimesFaced
	})
	sort.SliceStable(insights.TopBeaten, func(a, b int) bool {
		return insights.TopBeaten[a].OppPeakElo > insights.TopBeaten[b].OppPeakElo
	})
	if len(insights.TopBeaten) > constants.OpponentInsightTopBeaten {
		insights.TopBeaten = insights.TopBeaten[:constants.OpponentInsightTopBeaten]
	}
	return insights
}

// Disconnects splits the player's unfinished matches by who left. The loser
// of an unfinished match is taken to be the one who quit.
func (s *OpponentService) Disconnects(ctx context.Context, steamID string, f season.DateFilter) (domain.DisconnectReport, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	rows, err := s.feed.Disconnects(ctx, steamID, f)
	if err != nil {
		s.logger.Error().Err(err).Str("steam_id", steamID).Msg("failed to load disconnects")
		return domain.DisconnectReport{}, err
	}

	report := domain.DisconnectReport{
		ByPlayerDetails:      []domain.DisconnectDetail{},
		AgainstPlayerDetails: []domain.DisconnectDetail{},
	}
	for _, r := range rows {
		winnerRounds, loserRounds := r.MyRounds, r.OppRounds
		if r.MySide != domain.SideWinner {
			winnerRounds, loserRounds = r.OppRounds, r.MyRounds
		}
		detail := domain.DisconnectDetail{
			MatchID:    r.MatchID,
			Date:       r.Date,
			OppName:    r.OppName,
			OppSteamID: r.OppSteamID,
			OppElo:     r.OppElo,
			Score:      fmt.Sprintf("%d-%d", r.MyRounds, r.OppRounds),
			Type:       stats.ClassifyDisconnect(winnerRounds, loserRounds),
			Bans:       r.OppBans,
		}
		if r.MySide == domain.SideLoser {
			report.ByPlayerDetails = append(report.ByPlayerDetails, detail)
		} else {
			report.AgainstPlayerDetails = append(report.AgainstPlayerDetails, detail)
		}
	}
	report.ByPlayer = len(report.ByPlayerDetails)
	report.AgainstPlayer = len(report.AgainstPlayerDetails)
	return report, nil
}
