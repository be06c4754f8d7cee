package picks

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ScheduleSource retrieves every game of a season.
type ScheduleSource interface {
	Schedule(ctx context.Context, season int) ([]GameRecord, error)
}

// CSVSchedule reads a schedule in the nflverse games CSV layout from a file path or an http(s) URL.
// The location may contain a %d verb, which is replaced by the season.
type CSVSchedule struct {
	Location string

	// RawDir, if set, receives a copy of the downloaded schedule as schedule_<season>.csv.
	RawDir string
}

// Schedule implements ScheduleSource.
func (c CSVSchedule) Schedule(ctx context.Context, season int) ([]GameRecord, error) {
	loc := c.Location
	if strings.Contains(loc, "%d") {
		loc = fmt.Sprintf(loc, season)
	}

	body, err := readLocation(ctx, loc)
	if err != nil {
		return nil, fmt.Errorf("schedule %s: %w", loc, err)
	}

	if c.RawDir != "" {
		raw := filepath.Join(c.RawDir, fmt.Sprintf("schedule_%d.csv", season))
		if err := os.WriteFile(raw, body, 0644); err != nil {
			return nil, fmt.Errorf("save raw schedule %s: %v: %w", raw, err, ErrStorage)
		}
	}

	games, err := ParseSchedule(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("schedule %s: %w", loc, err)
	}
	return FilterSeason(games, season), nil
}

func readLocation(ctx context.Context, loc string) ([]byte, error) {
	if !strings.HasPrefix(loc, "http://") && !strings.HasPrefix(loc, "https://") {
		b, err := os.ReadFile(loc)
		if err != nil {
			return nil, fmt.Errorf("%v: %w", err, ErrStorage)
		}
		return b, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// ParseSchedule parses a schedule CSV in the nflverse layout. Columns are located by header name;
// game_id, week, home_team and away_team are expected, while season, scores and spread_line are optional.
// Rows are kept even when fields are missing so the feature extractor can reject them.
func ParseSchedule(r io.Reader) ([]GameRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %v: %w", err, ErrStorage)
	}
	idx := make(map[string]int)
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	for _, col := range []string{"game_id", "week", "home_team", "away_team"} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("schedule column %s: %w", col, ErrMissingInputField)
		}
	}
	cell := func(record []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	games := make([]GameRecord, 0)
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %v: %w", len(games)+1, err, ErrStorage)
		}
		g := GameRecord{
			GameID:   cell(record, "game_id"),
			Season:   parseWeek(cell(record, "season")),
			Week:     parseWeek(cell(record, "week")),
			HomeTeam: Team(cell(record, "home_team")),
			AwayTeam: Team(cell(record, "away_team")),
		}
		g.HomeScore = parseScore(cell(record, "home_score"))
		g.AwayScore = parseScore(cell(record, "away_score"))
		// nflverse spread_line is positive when the home team is favored; GameRecord holds the betting line.
		if line := parseProb(cell(record, "spread_line")); line != nil {
			bet := -*line
			g.SpreadLine = &bet
		}
		games = append(games, g)
	}
	return games, nil
}

func parseScore(s string) *int {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	n := int(v)
	return &n
}

// FilterSeason keeps games of the given season. Games without a season are kept.
func FilterSeason(games []GameRecord, season int) []GameRecord {
	out := make([]GameRecord, 0, len(games))
	for _, g := range games {
		if g.Season == 0 || g.Season == season {
			out = append(out, g)
		}
	}
	return out
}
