// Package firestore stores schedules and weekly picks in Cloud Firestore.
//
// Layout:
//	seasons/<season>/games/<game_id>
//	seasons/<season>/predictions/wk<week>/games/<game_id or matchup>
package firestore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/reallyasi9/nfl-picks/internal/picks"
	"google.golang.org/api/iterator"
)

// Game represents how a scheduled game is stored in Firestore.
type Game struct {
	GameID     string   `firestore:"game_id"`
	Week       int      `firestore:"week"`
	HomeTeam   string   `firestore:"home_team"`
	AwayTeam   string   `firestore:"away_team"`
	HomeScore  *int     `firestore:"home_score"`
	AwayScore  *int     `firestore:"away_score"`
	SpreadLine *float64 `firestore:"spread_line"`
}

// Prediction represents how a derived pick is stored in Firestore.
type Prediction struct {
	Week             int     `firestore:"week"`
	HomeTeam         string  `firestore:"home_team"`
	AwayTeam         string  `firestore:"away_team"`
	HomeWinProb      float64 `firestore:"home_win_prob"`
	PredictedWinner  string  `firestore:"predicted_winner"`
	PredictedWinProb float64 `firestore:"predicted_win_prob"`
	Confidence       float64 `firestore:"confidence"`
}

// PredictionWeek is the parent document of one week's picks.
type PredictionWeek struct {
	Season    int       `firestore:"season"`
	Week      int       `firestore:"week"`
	Threshold float64   `firestore:"threshold"`
	Games     int       `firestore:"games"`
	Timestamp time.Time `firestore:"timestamp,serverTimestamp"`
}

// Store reads schedules from and writes picks to Firestore.
type Store struct {
	client *firestore.Client
}

// NewStore wraps a Firestore client.
func NewStore(client *firestore.Client) *Store {
	return &Store{client: client}
}

func (s *Store) season(season int) *firestore.DocumentRef {
	return s.client.Collection("seasons").Doc(strconv.Itoa(season))
}

// Schedule implements picks.ScheduleSource.
func (s *Store) Schedule(ctx context.Context, season int) ([]picks.GameRecord, error) {
	itr := s.season(season).Collection("games").OrderBy("week", firestore.Asc).Documents(ctx)
	defer itr.Stop()

	games := make([]picks.GameRecord, 0)
	for {
		doc, err := itr.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("schedule: season %d: %v", season, err)
		}
		var g Game
		if err := doc.DataTo(&g); err != nil {
			return nil, fmt.Errorf("schedule: document %s: %v", doc.Ref.ID, err)
		}
		if g.GameID == "" {
			g.GameID = doc.Ref.ID
		}
		games = append(games, g.record(season))
	}
	return games, nil
}

// WritePredictions replaces a week's picks in one transaction.
// Game documents left over from an earlier run that are not in rows are deleted.
func (s *Store) WritePredictions(ctx context.Context, season, week int, threshold float64, rows []picks.PredictionRow) error {
	weekRef := s.season(season).Collection("predictions").Doc(fmt.Sprintf("wk%d", week))
	gamesCol := weekRef.Collection("games")

	docs := make([]Prediction, len(rows))
	ids := make([]string, len(rows))
	for i, r := range rows {
		p, err := prediction(r)
		if err != nil {
			return fmt.Errorf("write predictions: %v", err)
		}
		docs[i] = p
		ids[i] = docID(r)
	}

	return s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		// reads must come before writes in a transaction
		existing, err := tx.Documents(gamesCol).GetAll()
		if err != nil {
			return err
		}
		existingIDs := make([]string, len(existing))
		for i, doc := range existing {
			existingIDs[i] = doc.Ref.ID
		}

		err = tx.Set(weekRef, &PredictionWeek{Season: season, Week: week, Threshold: threshold, Games: len(rows)})
		if err != nil {
			return err
		}
		for i := range docs {
			if err := tx.Set(gamesCol.Doc(ids[i]), &docs[i]); err != nil {
				return err
			}
		}
		for _, id := range staleIDs(existingIDs, ids) {
			if err := tx.Delete(gamesCol.Doc(id)); err != nil {
				return err
			}
		}
		return nil
	})
}

// docID is the document ID of a pick: its game ID, or the matchup when the game ID is unknown.
func docID(r picks.PredictionRow) string {
	if r.GameID != "" {
		return r.GameID
	}
	return fmt.Sprintf("%s_at_%s", r.AwayTeam, r.HomeTeam)
}

// staleIDs returns the existing IDs not in keep, in existing order.
func staleIDs(existing, keep []string) []string {
	k := make(map[string]bool, len(keep))
	for _, id := range keep {
		k[id] = true
	}
	stale := make([]string, 0)
	for _, id := range existing {
		if !k[id] {
			stale = append(stale, id)
		}
	}
	return stale
}

func (g Game) record(season int) picks.GameRecord {
	return picks.GameRecord{
		GameID:     g.GameID,
		Season:     season,
		Week:       g.Week,
		HomeTeam:   picks.Team(g.HomeTeam),
		AwayTeam:   picks.Team(g.AwayTeam),
		HomeScore:  g.HomeScore,
		AwayScore:  g.AwayScore,
		SpreadLine: g.SpreadLine,
	}
}

// prediction converts a fully derived row to its stored form.
func prediction(r picks.PredictionRow) (Prediction, error) {
	if r.HomeWinProb == nil || r.PredictedWinner == nil || r.PredictedWinProb == nil || r.Confidence == nil {
		return Prediction{}, fmt.Errorf("row %s is not derived: %w", r.Matchup(), picks.ErrInvariantViolation)
	}
	return Prediction{
		Week:             r.Week,
		HomeTeam:         string(r.HomeTeam),
		AwayTeam:         string(r.AwayTeam),
		HomeWinProb:      *r.HomeWinProb,
		PredictedWinner:  string(*r.PredictedWinner),
		PredictedWinProb: *r.PredictedWinProb,
		Confidence:       *r.Confidence,
	}, nil
}
