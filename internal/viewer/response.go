package viewer

import (
	"fmt"
	"path/filepath"

	"github.com/reallyasi9/nfl-picks/internal/picks"
)

// Controls describes the inputs a client may offer.
type Controls struct {
	ThresholdMin  float64         `json:"threshold_min"`
	ThresholdMax  float64         `json:"threshold_max"`
	ThresholdStep float64         `json:"threshold_step"`
	SortKeys      []picks.SortKey `json:"sort_keys"`
}

// Row is one game as displayed. The percentage strings are presentation only; the raw decimals are canonical.
type Row struct {
	Matchup          string  `json:"matchup"`
	Week             int     `json:"week"`
	HomeTeam         string  `json:"home_team"`
	AwayTeam         string  `json:"away_team"`
	HomeWinProb      float64 `json:"home_win_prob"`
	PredictedWinner  string  `json:"predicted_winner"`
	PredictedWinProb float64 `json:"predicted_win_prob"`
	Confidence       float64 `json:"confidence"`
	WinnerLabel      string  `json:"winner_label"`
	HomeWinPct       string  `json:"home_win_pct"`
	PredictedWinPct  string  `json:"predicted_win_pct"`
	ConfidencePct    string  `json:"confidence_pct"`
}

// ViewResponse is the JSON body of a predictions view.
type ViewResponse struct {
	File             string        `json:"file"`
	Threshold        float64       `json:"threshold"`
	Sort             picks.SortKey `json:"sort"`
	Week             int           `json:"week"`
	Weeks            []int         `json:"weeks"`
	ShowWeekSelector bool          `json:"show_week_selector"`
	Rejected         int           `json:"rejected"`
	Fingerprint      string        `json:"fingerprint"`
	Controls         Controls      `json:"controls"`
	Rows             []Row         `json:"rows"`
}

func newViewResponse(file string, v picks.View) ViewResponse {
	rows := make([]Row, len(v.Rows))
	for i, r := range v.Rows {
		rows[i] = Row{
			Matchup:          r.Matchup(),
			Week:             r.Week,
			HomeTeam:         string(r.HomeTeam),
			AwayTeam:         string(r.AwayTeam),
			HomeWinProb:      *r.HomeWinProb,
			PredictedWinner:  string(r.Winner()),
			PredictedWinProb: *r.PredictedWinProb,
			Confidence:       *r.Confidence,
			WinnerLabel:      fmt.Sprintf("%s - %s", r.Winner(), picks.Percent(r.PredictedWinProb)),
			HomeWinPct:       picks.Percent(r.HomeWinProb),
			PredictedWinPct:  picks.Percent(r.PredictedWinProb),
			ConfidencePct:    picks.Percent(r.Confidence),
		}
	}
	return ViewResponse{
		File:             filepath.Base(file),
		Threshold:        v.State.Threshold,
		Sort:             v.State.SortKey,
		Week:             v.State.Week,
		Weeks:            v.Weeks,
		ShowWeekSelector: v.ShowWeekSelector,
		Rejected:         len(v.Rejected),
		Fingerprint:      fmt.Sprintf("%016x", v.Fingerprint),
		Controls: Controls{
			ThresholdMin:  picks.MinThreshold,
			ThresholdMax:  picks.MaxThreshold,
			ThresholdStep: picks.ThresholdStep,
			SortKeys:      picks.SortKeys,
		},
		Rows: rows,
	}
}
