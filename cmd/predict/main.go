package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"

	firebase "firebase.google.com/go"
	"github.com/reallyasi9/nfl-picks/internal/firestore"
	"github.com/reallyasi9/nfl-picks/internal/picks"
)

var configFile = flag.String("config", "config.yaml", "YAML `file` containing paths and the default threshold")
var season = flag.Int("season", -1, "Season `year` to predict")
var week = flag.Int("week", -1, "Week `number` to predict (starting at 1)")
var threshold = flag.Float64("threshold", picks.DefaultThreshold, "Override the configured home win probability `threshold` in [0,1] (e.g. 0.55)")
var scheduleLoc = flag.String("schedule", "", "Schedule CSV `path or URL`, with an optional %d for the season (default from config)")
var modelFile = flag.String("model", "", "Model artifact YAML `file` (default artifacts/baseline_logreg.yaml)")
var projectID = flag.String("project", "", "Google Cloud `project` to read the schedule from and write picks to (optional)")

func check(err error) {
	if err != nil {
		log.Fatalln(err)
	}
}

func main() {
	flag.Parse()
	if *season < 0 {
		log.Fatalf("invalid season %d", *season)
	}
	if *week < 0 {
		log.Fatalf("invalid week number %d", *week)
	}

	ctx := context.Background()

	cfg, err := picks.LoadConfig(*configFile)
	check(err)
	check(cfg.EnsureDirs())

	t := cfg.Threshold()
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "threshold" {
			t = *threshold
		}
	})
	check(picks.ValidateThreshold(t))

	var store *firestore.Store
	var source picks.ScheduleSource
	if *projectID != "" {
		app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: *projectID})
		check(err)
		fs, err := app.Firestore(ctx)
		check(err)
		defer fs.Close()
		store = firestore.NewStore(fs)
		source = store
	} else {
		loc := *scheduleLoc
		if loc == "" {
			loc = cfg.Schedule
		}
		if loc == "" {
			log.Fatalln("no schedule given: pass -schedule, set schedule in the config, or pass -project")
		}
		source = picks.CSVSchedule{Location: loc, RawDir: cfg.Paths.Raw}
	}

	games, err := source.Schedule(ctx, *season)
	check(err)
	log.Printf("loaded %d games for season %d", len(games), *season)

	mf := *modelFile
	if mf == "" {
		mf = cfg.ModelPath()
	}
	model, err := picks.LoadModel(mf)
	check(err)
	log.Printf("loaded model %s", mf)

	predictions, rejected, err := picks.PredictWeek(games, *week, model, t)
	for _, re := range rejected {
		log.Printf("excluding %v", re)
	}
	if errors.Is(err, picks.ErrNoRowsForWeek) {
		fmt.Printf("No games found for season=%d, week=%d.\n", *season, *week)
		return
	}
	check(err)

	outPath := cfg.PredictionsPath(*season, *week)
	check(picks.WriteFile(outPath, predictions))

	if store != nil {
		check(store.WritePredictions(ctx, *season, *week, t, predictions))
		log.Printf("stored %d picks in project %s", len(predictions), *projectID)
	}

	fmt.Printf("Threshold = %g. Saved predictions to %s\n\n", t, outPath)
	fmt.Print(predictions)
}
