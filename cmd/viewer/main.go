package main

import (
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/reallyasi9/nfl-picks/internal/picks"
	"github.com/reallyasi9/nfl-picks/internal/viewer"
)

var configFile = flag.String("config", "config.yaml", "YAML `file` containing the processed predictions path")
var dataDir = flag.String("data", "", "`directory` of predictions CSVs (default from config)")
var addr = flag.String("addr", ":8501", "`address` to listen on")

func main() {
	flag.Parse()

	dir := *dataDir
	if dir == "" {
		cfg, err := picks.LoadConfig(*configFile)
		if err != nil {
			log.Fatalln(err)
		}
		dir = cfg.Paths.Processed
	}

	files, err := picks.FindPredictionFiles(dir)
	if err != nil {
		log.Fatalln(err)
	}
	if len(files) == 0 {
		log.Printf("no predictions found in %s yet", dir)
	}

	server := &http.Server{
		Addr:              *addr,
		Handler:           viewer.NewServer(dir).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("viewer listening on %s, serving %s", *addr, dir)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("viewer failed: %v", err)
	}
}
