package picks

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestFileName(t *testing.T) {
	if got := FileName(2025, 5); got != "predictions_2025_wk5.csv" {
		t.Errorf("unexpected file name %s", got)
	}
}

func TestWriteCSV(t *testing.T) {
	rows := derived(t,
		PredictionRow{Week: 5, HomeTeam: "KC", AwayTeam: "BUF", HomeWinProb: fp(0.62)},
		PredictionRow{Week: 5, HomeTeam: "MIA", AwayTeam: "NE", HomeWinProb: fp(0.123456)},
	)
	var b bytes.Buffer
	if err := WriteCSV(&b, rows); err != nil {
		t.Fatal(err)
	}
	want := "week,home_team,away_team,home_win_prob,predicted_winner,predicted_win_prob,confidence\n" +
		"5,KC,BUF,0.62,KC,0.62,0.24\n" +
		"5,MIA,NE,0.123,NE,0.877,0.753\n"
	if diff := cmp.Diff(want, b.String()); diff != "" {
		t.Errorf("csv mismatch (-want +got):\n%s", diff)
	}
	if *rows[1].HomeWinProb != 0.123456 {
		t.Errorf("writing rounded the in-memory row: %v", *rows[1].HomeWinProb)
	}
}

func TestRoundTrip(t *testing.T) {
	in := derived(t,
		PredictionRow{Week: 4, HomeTeam: "KC", AwayTeam: "BUF", HomeWinProb: fp(0.62)},
		PredictionRow{Week: 4, HomeTeam: "MIA", AwayTeam: "NE", HomeWinProb: fp(0.3141592)},
		PredictionRow{Week: 5, HomeTeam: "SEA", AwayTeam: "LA", HomeWinProb: fp(0.5)},
		PredictionRow{Week: 6, HomeTeam: "GB", AwayTeam: "CHI", HomeWinProb: fp(0.9999)},
	)

	var b bytes.Buffer
	if err := WriteCSV(&b, in); err != nil {
		t.Fatal(err)
	}
	read, err := ReadCSV(&b)
	if err != nil {
		t.Fatal(err)
	}
	out, rejected := DeriveAll(read, DefaultThreshold)
	if len(rejected) > 0 {
		t.Fatalf("unexpected rejections: %v", rejected)
	}
	if diff := cmp.Diff(in, out, cmpopts.EquateApprox(0, 0.0005)); diff != "" {
		t.Errorf("round trip mismatch (-in +out):\n%s", diff)
	}
}

func TestReadCSVPartialColumns(t *testing.T) {
	data := "week,home_team,away_team,home_win_prob\n" +
		"5,KC,BUF,0.62\n" +
		"5,,MIA,0.4\n" +
		"5,SEA,LA,\n"
	rows, err := ReadCSV(strings.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows read, got %d", len(rows))
	}
	if rows[0].PredictedWinner != nil || rows[0].PredictedWinProb != nil || rows[0].Confidence != nil {
		t.Error("expected derived columns to be absent")
	}

	out, rejected := DeriveAll(rows, 0.65)
	if len(out) != 1 {
		t.Fatalf("expected 1 derivable row, got %d", len(out))
	}
	if out[0].Winner() != "BUF" || !near(*out[0].PredictedWinProb, 0.38) || !near(*out[0].Confidence, 0.24) {
		t.Errorf("unexpected derivation %v", out[0])
	}
	if len(rejected) != 2 || !errors.Is(rejected[0], ErrMissingInputField) || !errors.Is(rejected[1], ErrInvariantViolation) {
		t.Errorf("unexpected rejections %v", rejected)
	}
}

func TestReadCSVLegacyColumns(t *testing.T) {
	data := "game_id,week,home_team,away_team,home_win_prob,pred_home_win,confidence\n" +
		"2025_05_BUF_KC,5,KC,BUF,0.52,True,0.04\n" +
		"2025_05_NE_MIA,5,MIA,NE,0.48,False,0.04\n"
	rows, err := ReadCSV(strings.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	out, _ := DeriveAll(rows, 0.55)
	if len(out) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(out))
	}
	if out[0].Winner() != "KC" || !near(*out[0].PredictedWinProb, 0.52) {
		t.Errorf("stored home pick not honored: %v", out[0])
	}
	if out[1].Winner() != "NE" || !near(*out[1].PredictedWinProb, 0.52) {
		t.Errorf("stored away pick not honored: %v", out[1])
	}
	if out[0].GameID != "2025_05_BUF_KC" {
		t.Errorf("expected game id to be read, got %q", out[0].GameID)
	}
}

func TestReadCSVOutOfRangeProbabilities(t *testing.T) {
	data := "week,home_team,away_team,home_win_prob,confidence\n" +
		"5,KC,BUF,1.7,\n" +
		"5,SEA,LA,NaN,\n" +
		"5,MIA,NE,-0.2,\n" +
		"5,DAL,NYG,0.52,3\n" +
		"5,GB,CHI,0.6,\n"
	rows, err := ReadCSV(strings.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	out, rejected := DeriveAll(rows, DefaultThreshold)
	if len(out) != 1 || out[0].HomeTeam != "GB" {
		t.Fatalf("expected only GB to survive, got %v", out)
	}
	if len(rejected) != 4 {
		t.Fatalf("expected 4 rejections, got %v", rejected)
	}
	for _, re := range rejected {
		if !errors.Is(re, ErrInvariantViolation) {
			t.Errorf("row %d: expected invariant violation, got %v", re.Index, re.Err)
		}
	}
	if c := *out[0].Confidence; c < 0 || c > 1 {
		t.Errorf("confidence %v out of [0,1]", c)
	}
}

func TestWriteFileReplaces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName(2025, 5))
	if err := os.WriteFile(path, []byte("old contents"), 0644); err != nil {
		t.Fatal(err)
	}

	rows := derived(t, PredictionRow{Week: 5, HomeTeam: "KC", AwayTeam: "BUF", HomeWinProb: fp(0.62)})
	if err := WriteFile(path, rows); err != nil {
		t.Fatal(err)
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].HomeTeam != "KC" {
		t.Errorf("unexpected rows %v", got)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the predictions file, found %d entries", len(entries))
	}
}

func TestStorageFailure(t *testing.T) {
	dir := t.TempDir()
	if _, err := ReadFile(filepath.Join(dir, "missing.csv")); !errors.Is(err, ErrStorage) {
		t.Errorf("expected storage failure reading, got %v", err)
	}
	if err := WriteFile(filepath.Join(dir, "nope", "out.csv"), nil); !errors.Is(err, ErrStorage) {
		t.Errorf("expected storage failure writing, got %v", err)
	}
}

func TestFindPredictionFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"predictions_2025_wk10.csv", "predictions_2025_wk2.csv", "predictions_2024_wk18.csv", "notes.csv"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
	files, err := FindPredictionFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	got := make([]string, len(files))
	for i, f := range files {
		got[i] = filepath.Base(f.Path)
	}
	want := []string{"predictions_2024_wk18.csv", "predictions_2025_wk2.csv", "predictions_2025_wk10.csv"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("file order (-want +got):\n%s", diff)
	}
}
