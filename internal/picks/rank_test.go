package picks

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func derived(t *testing.T, rows ...PredictionRow) []PredictionRow {
	t.Helper()
	out, rejected := DeriveAll(rows, DefaultThreshold)
	if len(rejected) > 0 {
		t.Fatalf("unexpected rejections: %v", rejected)
	}
	return out
}

func gameIDs(rows []PredictionRow) []string {
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.GameID
	}
	return ids
}

func TestRank(t *testing.T) {
	rows := derived(t,
		PredictionRow{GameID: "a", HomeTeam: "KC", AwayTeam: "BUF", HomeWinProb: fp(0.62)},
		PredictionRow{GameID: "b", HomeTeam: "MIA", AwayTeam: "NE", HomeWinProb: fp(0.30)},
		PredictionRow{GameID: "c", HomeTeam: "SEA", AwayTeam: "LA", HomeWinProb: fp(0.81)},
		PredictionRow{GameID: "d", HomeTeam: "GB", AwayTeam: "CHI", HomeWinProb: fp(0.51)},
	)

	tests := []struct {
		key  SortKey
		want []string
	}{
		{ByConfidence, []string{"c", "b", "a", "d"}},
		{ByPredictedWinProb, []string{"c", "b", "a", "d"}},
		{ByHomeWinProb, []string{"c", "a", "d", "b"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			got := gameIDs(Rank(rows, tt.key))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("order mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if diff := cmp.Diff([]string{"a", "b", "c", "d"}, gameIDs(rows)); diff != "" {
		t.Errorf("Rank reordered its input:\n%s", diff)
	}
}

func TestRankStable(t *testing.T) {
	// 0.6 home and 0.4 home share confidence 0.2 and predicted_win_prob 0.6.
	rows := derived(t,
		PredictionRow{GameID: "first", HomeTeam: "KC", AwayTeam: "BUF", HomeWinProb: fp(0.6)},
		PredictionRow{GameID: "second", HomeTeam: "MIA", AwayTeam: "NE", HomeWinProb: fp(0.4)},
		PredictionRow{GameID: "third", HomeTeam: "SEA", AwayTeam: "LA", HomeWinProb: fp(0.6)},
	)
	for _, key := range []SortKey{ByConfidence, ByPredictedWinProb} {
		got := gameIDs(Rank(rows, key))
		want := []string{"first", "second", "third"}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("%s: ties reordered (-want +got):\n%s", key, diff)
		}
	}
	got := gameIDs(Rank(rows, ByHomeWinProb))
	if diff := cmp.Diff([]string{"first", "third", "second"}, got); diff != "" {
		t.Errorf("home_win_prob: ties reordered (-want +got):\n%s", diff)
	}
}

func TestParseSortKey(t *testing.T) {
	for _, k := range SortKeys {
		got, err := ParseSortKey(string(k))
		if err != nil || got != k {
			t.Errorf("expected %s, got %s (%v)", k, got, err)
		}
	}
	if got, _ := ParseSortKey(""); got != ByConfidence {
		t.Errorf("expected empty key to be confidence, got %s", got)
	}
	if _, err := ParseSortKey("spread"); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestFilterWeek(t *testing.T) {
	rows := []PredictionRow{
		{GameID: "4a", Week: 4},
		{GameID: "5a", Week: 5},
		{GameID: "6a", Week: 6},
		{GameID: "5b", Week: 5},
		{GameID: "4b", Week: 4},
		{GameID: "5c", Week: 5},
	}
	got := gameIDs(FilterWeek(rows, 5))
	if diff := cmp.Diff([]string{"5a", "5b", "5c"}, got); diff != "" {
		t.Errorf("week 5 (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]int{4, 5, 6}, Weeks(rows)); diff != "" {
		t.Errorf("weeks (-want +got):\n%s", diff)
	}

	single := []PredictionRow{{GameID: "a", Week: 3}, {GameID: "b", Week: 3}}
	if got := FilterWeek(single, 9); len(got) != 2 {
		t.Errorf("expected single-week batch to pass through, got %d rows", len(got))
	}
}
