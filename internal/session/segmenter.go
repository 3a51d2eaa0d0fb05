// Package session groups a player's chronological matches into play sessions.
//
// A session is a run of matches where no two consecutive matches are more than
// constants.SessionGapThreshold apart. Segment is a pure fold over its input:
// it never mutates the records, never fails, and returns the same sessions for
// the same input.
package session

import (
	"strconv"
	"strings"
	"time"

	"pat-tracker/internal/constants"
	"pat-tracker/internal/domain"
	"pat-tracker/internal/season"
	"pat-tracker/internal/stats"
)

const unknownTime = "??:??"

var (
	gapThresholdMs = constants.SessionGapThreshold.Milliseconds()
	paddingMinutes = constants.SessionMatchPadding.Minutes()
)

// Segment partitions records, which must be sorted ascending by (date, time),
// into numbered sessions. Every record lands in exactly one session.
func Segment(records []domain.MatchRecord) []domain.Session {
	acc := accumulator{sessions: []domain.Session{}}
	for i := range records {
		acc = acc.step(records, i)
	}
	return acc.flush(records, len(records)).sessions
}

// accumulator is the fold state: the sessions closed so far and the index at
// which the open run begins.
type accumulator struct {
	sessions []domain.Session
	start    int
}

func (a accumulator) step(records []domain.MatchRecord, i int) accumulator {
	if i == a.start {
		return a
	}
	if Instant(records[i])-Instant(records[i-1]) > gapThresholdMs {
		a = a.flush(records, i)
		a.start = i
	}
	return a
}

func (a accumulator) flush(records []domain.MatchRecord, end int) accumulator {
	if end <= a.start {
		return a
	}
	// the fold threads one accumulator through, so its slice has a single owner
	a.sessions = append(a.sessions, summarize(len(a.sessions)+1, records[a.start:end]))
	return a
}

func summarize(id int, run []domain.MatchRecord) domain.Session {
	first, last := run[0], run[len(run)-1]

	s := domain.Session{
		ID:         id,
		Date:       first.Date,
		StartTime:  displayTime(first.TimeOfDay),
		EndTime:    displayTime(last.TimeOfDay),
		MatchCount: len(run),
		EloStart:   first.EloBefore(),
		EloEnd:     last.Elo,
	}

	s.EloMin = s.EloStart
	s.EloMax = run[0].Elo
	for _, m := range run {
		switch m.Side {
		case domain.SideWinner:
			s.Wins++
		case domain.SideLoser:
			s.Losses++
		}
		if m.Elo < s.EloMin {
			s.EloMin = m.Elo
		}
		if m.Elo > s.EloMax {
			s.EloMax = m.Elo
		}
		s.TotalKills += m.Kills
		s.TotalDeaths += m.Deaths
	}

	s.EloChange = s.EloEnd - s.EloStart

	elapsed := float64(Instant(last)-Instant(first)) / 60000
	duration := elapsed + paddingMinutes
	if duration < paddingMinutes {
		duration = paddingMinutes
	}
	s.DurationMinutes = stats.Round(duration)
	if duration > 0 {
		s.EloPerHour = stats.Round(float64(s.EloChange) / (duration / 60))
	}

	return s
}

// Instant converts a record's date and time of day to milliseconds since the
// Unix epoch. Seconds are ignored. A missing or malformed time counts as
// midnight and a malformed date as the epoch itself.
func Instant(m domain.MatchRecord) int64 {
	var base int64
	if d, err := time.Parse(season.DateLayout, m.Date); err == nil {
		base = d.UnixMilli()
	}
	h, mins := clock(m.TimeOfDay)
	return base + int64(h)*3600000 + int64(mins)*60000
}

func clock(v string) (int, int) {
	parts := strings.Split(v, ":")
	if len(parts) < 2 {
		return 0, 0
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0
	}
	mins, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0
	}
	return h, mins
}

func displayTime(v string) string {
	if v == "" {
		return unknownTime
	}
	return v
}
