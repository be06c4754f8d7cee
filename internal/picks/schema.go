package picks

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Columns is the canonical ordered column set of a predictions file.
var Columns = []string{
	"week",
	"home_team",
	"away_team",
	"home_win_prob",
	"predicted_winner",
	"predicted_win_prob",
	"confidence",
}

// legacyHomeWinColumn is the boolean winner column written by older predictors.
const legacyHomeWinColumn = "pred_home_win"

// FileName returns the predictions file name for a season and week.
func FileName(season, week int) string {
	return fmt.Sprintf("predictions_%d_wk%d.csv", season, week)
}

var fileNameRE = regexp.MustCompile(`predictions_(\d+)_wk(\d+)\.csv$`)

// PredictionFile is a predictions file discovered on disk.
type PredictionFile struct {
	Season int    `json:"season"`
	Week   int    `json:"week"`
	Path   string `json:"path"`
}

// FindPredictionFiles lists the predictions files in dir ordered by season then week.
func FindPredictionFiles(dir string) ([]PredictionFile, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "predictions_*_wk*.csv"))
	if err != nil {
		return nil, fmt.Errorf("find prediction files in %s: %v: %w", dir, err, ErrStorage)
	}
	files := make([]PredictionFile, 0, len(matches))
	for _, m := range matches {
		parts := fileNameRE.FindStringSubmatch(m)
		if parts == nil {
			continue
		}
		season, _ := strconv.Atoi(parts[1])
		week, _ := strconv.Atoi(parts[2])
		files = append(files, PredictionFile{Season: season, Week: week, Path: m})
	}
	sort.SliceStable(files, func(i, j int) bool {
		if files[i].Season == files[j].Season {
			return files[i].Week < files[j].Week
		}
		return files[i].Season < files[j].Season
	})
	return files, nil
}

// WriteCSV writes rows in the canonical schema. Probabilities are rounded to three decimals here and nowhere else.
func WriteCSV(w io.Writer, rows []PredictionRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write header: %v: %w", err, ErrStorage)
	}
	for _, r := range rows {
		record := []string{
			strconv.Itoa(r.Week),
			string(r.HomeTeam),
			string(r.AwayTeam),
			formatCell(r.HomeWinProb),
			string(r.Winner()),
			formatCell(r.PredictedWinProb),
			formatCell(r.Confidence),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %s: %v: %w", r.Matchup(), err, ErrStorage)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush: %v: %w", err, ErrStorage)
	}
	return nil
}

func formatCell(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(round3(*p), 'f', -1, 64)
}

// WriteFile replaces the file at path with rows in the canonical schema.
// The rows are written to a temporary file in the same directory and renamed into place,
// so a reader sees either the old file or the complete new one.
func WriteFile(path string, rows []PredictionRow) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("write %s: %v: %w", path, err, ErrStorage)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once renamed

	if err := WriteCSV(tmp, rows); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %v: %w", tmpName, err, ErrStorage)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %v: %w", tmpName, err, ErrStorage)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename %s -> %s: %v: %w", tmpName, path, err, ErrStorage)
	}
	return nil
}

// ReadCSV reads prediction rows from a file with any subset of the canonical columns.
// Missing columns and empty or unparseable cells are left absent for Derive to fill.
// Unknown columns are ignored.
func ReadCSV(r io.Reader) ([]PredictionRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	// first line contains the header information
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %v: %w", err, ErrStorage)
	}
	idx := make(map[string]int)
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	cell := func(record []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	rows := make([]PredictionRow, 0)
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %v: %w", len(rows)+1, err, ErrStorage)
		}

		row := PredictionRow{
			GameID:           cell(record, "game_id"),
			Week:             parseWeek(cell(record, "week")),
			HomeTeam:         Team(cell(record, "home_team")),
			AwayTeam:         Team(cell(record, "away_team")),
			HomeWinProb:      parseProb(cell(record, "home_win_prob")),
			PredictedWinProb: parseProb(cell(record, "predicted_win_prob")),
			Confidence:       parseProb(cell(record, "confidence")),
		}
		if w := cell(record, "predicted_winner"); w != "" {
			winner := Team(w)
			row.PredictedWinner = &winner
		} else if home, err := strconv.ParseBool(cell(record, legacyHomeWinColumn)); err == nil {
			winner := row.AwayTeam
			if home {
				winner = row.HomeTeam
			}
			row.PredictedWinner = &winner
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ReadFile reads the predictions file at path.
func ReadFile(path string) ([]PredictionRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %v: %w", path, err, ErrStorage)
	}
	defer f.Close()
	rows, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, nil
}

func parseProb(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil // Not an error, just missing data
	}
	return &v
}

// parseWeek accepts "5" as well as "5.0", which is how some writers emit integer columns holding blanks.
func parseWeek(s string) int {
	if w, err := strconv.Atoi(s); err == nil {
		return w
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return int(v)
	}
	return 0
}
