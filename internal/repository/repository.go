package repository

import (
	"database/sql"
	"errors"
	"strings"

	"pat-tracker/internal/domain"
	"pat-tracker/internal/season"
)

var ErrNotFound = errors.New("not found")

// appendDateFilter narrows query to the half-open range of f on the given
// date column.
func appendDateFilter(query string, args []any, column string, f season.DateFilter) (string, []any) {
	if f.From != "" {
		query += " AND " + column + " >= ?"
		args = append(args, f.From)
	}
	if f.To != "" {
		query += " AND " + column + " < ?"
		args = append(args, f.To)
	}
	return query, args
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func stringArgs(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

// banSummary maps the nullable ban columns of a LEFT JOIN; no row means no
// summary.
func banSummary(vac, vacCount, game, days sql.NullInt64) *domain.BanSummary {
	if !vac.Valid {
		return nil
	}
	return &domain.BanSummary{
		VAC:      int(vac.Int64),
		VACCount: int(vacCount.Int64),
		Game:     int(game.Int64),
		Days:     int(days.Int64),
	}
}
