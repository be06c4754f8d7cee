package picks

import (
	"fmt"
	"sort"
)

// SortKey names the column predictions are ranked by, always descending.
type SortKey string

const (
	ByConfidence       SortKey = "confidence"
	ByPredictedWinProb SortKey = "predicted_win_prob"
	ByHomeWinProb      SortKey = "home_win_prob"
)

// SortKeys lists the valid sort keys in the order they are offered to a user.
var SortKeys = []SortKey{ByConfidence, ByPredictedWinProb, ByHomeWinProb}

// ParseSortKey parses a column name into a SortKey. The empty string is ByConfidence.
func ParseSortKey(s string) (SortKey, error) {
	if s == "" {
		return ByConfidence, nil
	}
	for _, k := range SortKeys {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

func (k SortKey) value(r PredictionRow) float64 {
	var p *float64
	switch k {
	case ByPredictedWinProb:
		p = r.PredictedWinProb
	case ByHomeWinProb:
		p = r.HomeWinProb
	default:
		p = r.Confidence
	}
	if p == nil {
		return -1
	}
	return *p
}

// byKeyDesc sorts predictions by a key (descending)
type byKeyDesc struct {
	rows Predictions
	key  SortKey
}

func (a byKeyDesc) Len() int           { return len(a.rows) }
func (a byKeyDesc) Less(i, j int) bool { return a.key.value(a.rows[i]) > a.key.value(a.rows[j]) }
func (a byKeyDesc) Swap(i, j int)      { a.rows[i], a.rows[j] = a.rows[j], a.rows[i] }

// Rank returns a copy of rows ordered by key, descending. Ties keep their input order.
func Rank(rows []PredictionRow, key SortKey) Predictions {
	out := make(Predictions, len(rows))
	copy(out, rows)
	sort.Stable(byKeyDesc{rows: out, key: key})
	return out
}

// Weeks returns the distinct weeks present in rows, ascending.
func Weeks(rows []PredictionRow) []int {
	seen := make(map[int]bool)
	weeks := make([]int, 0)
	for _, r := range rows {
		if !seen[r.Week] {
			seen[r.Week] = true
			weeks = append(weeks, r.Week)
		}
	}
	sort.Ints(weeks)
	return weeks
}

// FilterWeek restricts rows spanning several weeks to the given week, preserving order.
// A batch holding a single week is returned unfiltered.
func FilterWeek(rows []PredictionRow, week int) []PredictionRow {
	if len(Weeks(rows)) <= 1 {
		return rows
	}
	out := make([]PredictionRow, 0)
	for _, r := range rows {
		if r.Week == week {
			out = append(out, r)
		}
	}
	return out
}
