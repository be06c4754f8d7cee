package picks

import (
	"fmt"
	"math"
	"strings"
)

// DefaultThreshold is the home win probability at or above which the home team is picked.
const DefaultThreshold = 0.5

// PredictionRow is a game with its home win probability and the decision derived from it.
// A nil field is absent; Derive fills absent fields and never overwrites present ones.
type PredictionRow struct {
	GameID   string
	Week     int
	HomeTeam Team
	AwayTeam Team

	HomeWinProb      *float64
	PredictedWinner  *Team
	PredictedWinProb *float64
	Confidence       *float64
}

// NewPredictionRow builds an underived row from a feature row and the probability produced for it.
func NewPredictionRow(f FeatureRow, homeWinProb float64) PredictionRow {
	p := homeWinProb
	return PredictionRow{
		GameID:      f.GameID,
		Week:        f.Week,
		HomeTeam:    f.HomeTeam,
		AwayTeam:    f.AwayTeam,
		HomeWinProb: &p,
	}
}

// Derive fills in any absent winner, winner probability, and confidence of a row using threshold t.
//
// The winner is the home team when the home win probability is at least t.
// The winner probability follows the winner as stored or derived, not a fresh comparison against t,
// so a row derived under one threshold stays internally consistent when reopened under another.
func Derive(r PredictionRow, t float64) (PredictionRow, error) {
	if r.HomeWinProb == nil {
		return r, fmt.Errorf("derive: home_win_prob: %w", ErrInvariantViolation)
	}
	if !isProb(r.HomeWinProb) {
		return r, fmt.Errorf("derive: home_win_prob %v outside [0,1]: %w", *r.HomeWinProb, ErrInvariantViolation)
	}
	if r.PredictedWinProb != nil && !isProb(r.PredictedWinProb) {
		return r, fmt.Errorf("derive: predicted_win_prob %v outside [0,1]: %w", *r.PredictedWinProb, ErrInvariantViolation)
	}
	if r.Confidence != nil && !isProb(r.Confidence) {
		return r, fmt.Errorf("derive: confidence %v outside [0,1]: %w", *r.Confidence, ErrInvariantViolation)
	}
	if r.HomeTeam == "" {
		return r, fmt.Errorf("derive: home_team: %w", ErrMissingInputField)
	}
	if r.AwayTeam == "" {
		return r, fmt.Errorf("derive: away_team: %w", ErrMissingInputField)
	}

	out := r
	p := *r.HomeWinProb

	if out.PredictedWinner == nil {
		winner := r.AwayTeam
		if p >= t {
			winner = r.HomeTeam
		}
		out.PredictedWinner = &winner
	}

	if out.PredictedWinProb == nil {
		var wp float64
		switch *out.PredictedWinner {
		case r.HomeTeam:
			wp = p
		case r.AwayTeam:
			wp = 1 - p
		default:
			return r, fmt.Errorf("derive: predicted_winner %q is neither %s nor %s: %w", *out.PredictedWinner, r.HomeTeam, r.AwayTeam, ErrInvariantViolation)
		}
		out.PredictedWinProb = &wp
	}

	if out.Confidence == nil {
		c := math.Abs(*out.PredictedWinProb-0.5) * 2
		out.Confidence = &c
	}

	return out, nil
}

// isProb reports whether *p is in [0,1]. NaN is not.
func isProb(p *float64) bool {
	return *p >= 0 && *p <= 1
}

// DeriveAll derives every row with threshold t.
// Rows that cannot be derived are excluded and reported; surviving rows keep their input order.
func DeriveAll(rows []PredictionRow, t float64) ([]PredictionRow, []RowError) {
	out := make([]PredictionRow, 0, len(rows))
	var rejected []RowError
	for i, r := range rows {
		d, err := Derive(r, t)
		if err != nil {
			rejected = append(rejected, RowError{Index: i, GameID: r.GameID, Err: err})
			continue
		}
		out = append(out, d)
	}
	return out, rejected
}

// Matchup labels the game as "AWAY @ HOME".
func (r PredictionRow) Matchup() string {
	return fmt.Sprintf("%s @ %s", r.AwayTeam, r.HomeTeam)
}

// Winner returns the predicted winner, or the empty team if it has not been derived.
func (r PredictionRow) Winner() Team {
	if r.PredictedWinner == nil {
		return ""
	}
	return *r.PredictedWinner
}

func (r PredictionRow) String() string {
	return fmt.Sprintf("%s: %s %s %s", r.Matchup(), r.Winner(), formatProb(r.PredictedWinProb), formatProb(r.Confidence))
}

// Predictions is a batch of prediction rows.
type Predictions []PredictionRow

// String renders a preview table with probabilities rounded to three decimals.
func (p Predictions) String() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%4s %-4s %-4s %13s %16s %18s %10s\n",
		"week", "home", "away", "home_win_prob", "predicted_winner", "predicted_win_prob", "confidence"))
	for _, r := range p {
		b.WriteString(fmt.Sprintf("%4d %-4s %-4s %13s %16s %18s %10s\n",
			r.Week, r.HomeTeam, r.AwayTeam,
			formatProb(r.HomeWinProb), r.Winner(), formatProb(r.PredictedWinProb), formatProb(r.Confidence)))
	}
	return b.String()
}

func formatProb(p *float64) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("%0.3f", round3(*p))
}

// round3 rounds half away from zero to three decimals.
func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}

// Percent formats a probability as a percentage with one decimal, e.g. "62.0%".
func Percent(p *float64) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("%0.1f%%", math.Round(*p*1000)/10)
}
