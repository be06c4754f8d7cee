package picks

import "fmt"

// Team is a team code, like "KC" or "BUF".
type Team string

// GameRecord represents one scheduled matchup as retrieved from a schedule source.
type GameRecord struct {
	GameID   string
	Season   int
	Week     int
	HomeTeam Team
	AwayTeam Team

	// HomeScore and AwayScore are only set for completed games.
	HomeScore *int
	AwayScore *int

	// SpreadLine is the home team's betting line, negative when the home team is favored.
	SpreadLine *float64
}

// FeatureRow is the per-game feature vector consumed by a ProbabilitySource.
type FeatureRow struct {
	GameID     string
	Week       int
	HomeTeam   Team
	AwayTeam   Team
	SpreadHome float64
	IsHome     float64
}

// Features returns the model inputs in their canonical order: spread_home, is_home.
func (f FeatureRow) Features() []float64 {
	return []float64{f.SpreadHome, f.IsHome}
}

// Extract builds the FeatureRow for a game.
// Games missing an ID, a week, or either team are rejected with ErrMissingInputField.
func Extract(g GameRecord) (FeatureRow, error) {
	switch {
	case g.GameID == "":
		return FeatureRow{}, fmt.Errorf("extract: game_id: %w", ErrMissingInputField)
	case g.Week <= 0:
		return FeatureRow{}, fmt.Errorf("extract: game %s: week: %w", g.GameID, ErrMissingInputField)
	case g.HomeTeam == "":
		return FeatureRow{}, fmt.Errorf("extract: game %s: home_team: %w", g.GameID, ErrMissingInputField)
	case g.AwayTeam == "":
		return FeatureRow{}, fmt.Errorf("extract: game %s: away_team: %w", g.GameID, ErrMissingInputField)
	}

	spread := 0.
	if g.SpreadLine != nil {
		spread = -*g.SpreadLine
	}
	return FeatureRow{
		GameID:     g.GameID,
		Week:       g.Week,
		HomeTeam:   g.HomeTeam,
		AwayTeam:   g.AwayTeam,
		SpreadHome: spread,
		IsHome:     1,
	}, nil
}

// ExtractAll extracts every valid game in order.
// Invalid games never reach the output; they are reported as RowErrors instead.
func ExtractAll(games []GameRecord) ([]FeatureRow, []RowError) {
	rows := make([]FeatureRow, 0, len(games))
	var rejected []RowError
	seen := make(map[string]bool)
	for i, g := range games {
		f, err := Extract(g)
		if err != nil {
			rejected = append(rejected, RowError{Index: i, GameID: g.GameID, Err: err})
			continue
		}
		if seen[f.GameID] {
			rejected = append(rejected, RowError{Index: i, GameID: g.GameID, Err: fmt.Errorf("extract: game %s: %w", g.GameID, ErrDuplicateGame)})
			continue
		}
		seen[f.GameID] = true
		rows = append(rows, f)
	}
	return rows, rejected
}

// FilterGamesWeek returns the games scheduled in the given week, in schedule order.
func FilterGamesWeek(games []GameRecord, week int) []GameRecord {
	out := make([]GameRecord, 0)
	for _, g := range games {
		if g.Week == week {
			out = append(out, g)
		}
	}
	return out
}
