package picks

import (
	"fmt"
)

// PredictWeek runs the batch path for one week of a schedule: extract features, ask src for
// probabilities, derive decisions under threshold t, and rank by confidence.
//
// Games that cannot be extracted or derived are excluded and returned as RowErrors.
// A week with no valid games returns ErrNoRowsForWeek.
func PredictWeek(games []GameRecord, week int, src ProbabilitySource, t float64) (Predictions, []RowError, error) {
	features, rejected := ExtractAll(FilterGamesWeek(games, week))
	if len(features) == 0 {
		return nil, rejected, fmt.Errorf("week %d: %w", week, ErrNoRowsForWeek)
	}

	probs, err := src.PredictProbability(features)
	if err != nil {
		return nil, rejected, fmt.Errorf("week %d: predict: %v", week, err)
	}
	if len(probs) != len(features) {
		return nil, rejected, fmt.Errorf("week %d: predict: expected %d probabilities, got %d", week, len(features), len(probs))
	}

	rows := make([]PredictionRow, len(features))
	for i, f := range features {
		if probs[i] < 0 || probs[i] > 1 {
			return nil, rejected, fmt.Errorf("week %d: game %s: probability %f outside [0,1]", week, f.GameID, probs[i])
		}
		rows[i] = NewPredictionRow(f, probs[i])
	}

	derived, derr := DeriveAll(rows, t)
	rejected = append(rejected, derr...)
	return Rank(derived, ByConfidence), rejected, nil
}
