package service

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"pat-tracker/internal/constants"
	"pat-tracker/internal/domain"
	"pat-tracker/internal/repository"

	"github.com/rs/zerolog"
)

var (
	steamIDPattern    = regexp.MustCompile(`^\d{10,17}$`)
	profileURLPattern = regexp.MustCompile(`steamcommunity\.com/profiles/(\d{10,17})`)
)

type SearchService struct {
	feed     *repository.FeedRepository
	profiles *repository.ProfileRepository
	logger   zerolog.Logger
}

func NewSearchService(feed *repository.FeedRepository, profiles *repository.ProfileRepository, logger zerolog.Logger) *SearchService {
	return &SearchService{feed: feed, profiles: profiles, logger: logger}
}

// NormalizeQuery trims q and reduces a Steam community profile URL to the
// steam id it names.
func NormalizeQuery(q string) string {
	q = strings.TrimSpace(q)
	if m := profileURLPattern.FindStringSubmatch(q); m != nil {
		return m[1]
	}
	return q
}

// Search looks players up by steam id or by name. Names are matched against
// synced Steam profiles first and against feed player names when no profile
// matches.
func (s *SearchService) Search(ctx context.Context, q string) ([]domain.SearchResult, error) {
	q = NormalizeQuery(q)
	if len(q) < constants.SearchMinQueryLength {
		return []domain.SearchResult{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if steamIDPattern.MatchString(q) {
		results, err := s.feed.SearchByID(ctx, q, constants.SearchExactIDLimit)
		if err != nil {
			s.logger.Error().Err(err).Str("q", q).Msg("failed to search by steam id")
			return nil, err
		}
		return results, nil
	}

	results, err := s.searchProfiles(ctx, q)
	if err != nil {
		s.logger.Error().Err(err).Str("q", q).Msg("failed to search profiles")
		return nil, err
	}
	if results != nil {
		return results, nil
	}

	results, err = s.feed.SearchByName(ctx, q, constants.SearchResultLimit)
	if err != nil {
		s.logger.Error().Err(err).Str("q", q).Msg("failed to search feed")
		return nil, err
	}
	return results, nil
}

// searchProfiles returns nil when no profile matches at all, and a possibly
// empty slice otherwise.
func (s *SearchService) searchProfiles(ctx context.Context, q string) ([]domain.SearchResult, error) {
	profiles, err := s.profiles.SearchPersona(ctx, q, constants.SearchProfileCandidates)
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, nil
	}

	ids := make([]string, len(profiles))
	for i, p := range profiles {
		ids[i] = p.SteamID
	}
	counts, err := s.feed.MatchCounts(ctx, ids)
	if err != nil {
		return nil, err
	}

	results := []domain.SearchResult{}
	for _, p := range profiles {
		if counts[p.SteamID] == 0 {
			continue
		}
		results = append(results, domain.SearchResult{
			SteamID:    p.SteamID,
			PlayerName: p.PersonaName,
			Matches:    counts[p.SteamID],
			AvatarURL:  p.AvatarURL,
		})
	}
	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Matches > results[b].Matches
	})
	return results[:min(len(results), constants.SearchResultLimit)], nil
}
