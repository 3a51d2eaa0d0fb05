// Package season holds the static table of named PAT seasons and the date
// filters derived from it. A Table is built once at startup and never mutated.
package season

import (
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

type Season struct {
	ID    string `json:"id" koanf:"id"`
	Label string `json:"label" koanf:"label"`
	From  string `json:"from" koanf:"from"`
	To    string `json:"to" koanf:"to"`
}

// Boundaries are 4AM EST (09:00 UTC); the feed only stores dates, so the
// table does too.
var Builtin = []Season{
	{ID: "S50", Label: "Season 50", From: "2025-01-01", To: "2026-01-23"},
	{ID: "S51", Label: "Season 51", From: "2026-01-23", To: "2026-02-09"},
	{ID: "S52", Label: "Season 52", From: "2026-02-09", To: "2026-02-23"},
	{ID: "S53", Label: "Season 53", From: "2026-02-23", To: "2026-03-09"},
	{ID: "S54", Label: "Season 54", From: "2026-03-09", To: "2026-03-23"},
}

// DateFilter is a half-open [From, To) range on the feed's date column. An
// empty bound is not applied.
type DateFilter struct {
	From string
	To   string
}

func (f DateFilter) IsZero() bool {
	return f.From == "" && f.To == ""
}

// CacheKey renders the filter for use inside cache keys.
func (f DateFilter) CacheKey() string {
	if f.IsZero() {
		return "all"
	}
	return f.From + ".." + f.To
}

type Table struct {
	seasons []Season
	byID    map[string]Season
}

// NewTable copies the given seasons; entries with an empty id or unparsable
// dates are skipped, later duplicates replace earlier ones.
func NewTable(seasons []Season) *Table {
	t := &Table{byID: make(map[string]Season, len(seasons))}
	for _, s := range seasons {
		s.ID = strings.TrimSpace(s.ID)
		if s.ID == "" || !ValidDate(s.From) || !ValidDate(s.To) {
			continue
		}
		if _, dup := t.byID[s.ID]; dup {
			for i := range t.seasons {
				if t.seasons[i].ID == s.ID {
					t.seasons[i] = s
				}
			}
		} else {
			t.seasons = append(t.seasons, s)
		}
		t.byID[s.ID] = s
	}
	return t
}

func (t *Table) All() []Season {
	out := make([]Season, len(t.seasons))
	copy(out, t.seasons)
	return out
}

// Lookup returns the season with the given id. The no-match result is the
// zero Season and false.
func (t *Table) Lookup(id string) (Season, bool) {
	s, ok := t.byID[id]
	return s, ok
}

// Resolve turns the optional query parameters into a filter. An explicit
// from/to pair wins over a season id; anything malformed yields the empty
// filter.
func (t *Table) Resolve(seasonID, from, to string) DateFilter {
	if from != "" && to != "" {
		if ValidDate(from) && ValidDate(to) {
			return DateFilter{From: from, To: to}
		}
		return DateFilter{}
	}
	if seasonID != "" {
		if s, ok := t.Lookup(seasonID); ok {
			return DateFilter{From: s.From, To: s.To}
		}
	}
	return DateFilter{}
}

// Overlapping returns the seasons that intersect a player's [minDate, maxDate]
// span of activity.
func (t *Table) Overlapping(minDate, maxDate string) []Season {
	out := []Season{}
	if minDate == "" || maxDate == "" {
		return out
	}
	for _, s := range t.seasons {
		if s.To > minDate && s.From <= maxDate {
			out = append(out, s)
		}
	}
	return out
}

func ValidDate(v string) bool {
	_, err := time.Parse(DateLayout, v)
	return err == nil
}
