// Package viewer serves the interactive predictions view over HTTP.
package viewer

import (
	"bytes"
	"fmt"
	"log"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/reallyasi9/nfl-picks/internal/picks"
)

var (
	recomputes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nflpicks_viewer_recomputes_total",
		Help: "Total number of view recomputations.",
	})
	rejectedRows = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nflpicks_viewer_rejected_rows_total",
		Help: "Total number of rows excluded from a view because they could not be derived.",
	})
	filesLoaded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nflpicks_viewer_files_loaded_total",
		Help: "Total number of prediction files read from disk.",
	})
)

// Server serves the predictions files found in a directory.
// Loaded files are cached until they change on disk; view state belongs to each request.
type Server struct {
	dir string

	mu      sync.Mutex
	batches map[string]loadedBatch
}

type loadedBatch struct {
	rows    []picks.PredictionRow
	modTime time.Time
}

// NewServer serves the predictions files found in dir.
func NewServer(dir string) *Server {
	return &Server{dir: dir, batches: make(map[string]loadedBatch)}
}

// Router builds the gin engine for the viewer.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/weeks", s.handleWeeks)
	r.GET("/predictions", s.handlePredictions)
	r.GET("/export", s.handleExport)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

func (s *Server) handleWeeks(c *gin.Context) {
	files, err := picks.FindPredictionFiles(s.dir)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]gin.H, len(files))
	for i, f := range files {
		out[i] = gin.H{"season": f.Season, "week": f.Week, "file": filepath.Base(f.Path), "label": fmt.Sprintf("Week %d", f.Week)}
	}
	c.JSON(http.StatusOK, gin.H{"files": out})
}

func (s *Server) handlePredictions(c *gin.Context) {
	file, sess, ok := s.view(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newViewResponse(file, sess.View()))
}

func (s *Server) handleExport(c *gin.Context) {
	_, sess, ok := s.view(c)
	if !ok {
		return
	}
	var b bytes.Buffer
	if err := sess.Export(&b); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="predictions_view.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", b.Bytes())
}

// view starts a session over the requested file in the default state and applies the controls in
// the query, in the order threshold, sort key, week. Nothing carries over between requests.
func (s *Server) view(c *gin.Context) (string, *picks.Session, bool) {
	file, err := s.resolve(c.Query("file"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return "", nil, false
	}
	events, err := parseEvents(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", nil, false
	}
	batch, err := s.batch(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return "", nil, false
	}

	sess := picks.NewSession(batch, picks.DefaultViewState())
	for _, ev := range events {
		sess.Apply(ev)
		recomputes.Inc()
	}
	rejectedRows.Add(float64(len(sess.View().Rejected)))
	return file, sess, true
}

func parseEvents(c *gin.Context) ([]picks.Event, error) {
	events := make([]picks.Event, 0, 3)
	if v, ok := c.GetQuery("threshold"); ok {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(t) {
			return nil, fmt.Errorf("invalid threshold %q", v)
		}
		events = append(events, picks.ThresholdChanged{Threshold: t})
	}
	if v, ok := c.GetQuery("sort"); ok {
		k, err := picks.ParseSortKey(v)
		if err != nil {
			return nil, err
		}
		events = append(events, picks.SortKeyChanged{Key: k})
	}
	if v, ok := c.GetQuery("week"); ok {
		w, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid week %q", v)
		}
		events = append(events, picks.WeekChanged{Week: w})
	}
	return events, nil
}

// resolve maps a requested file name to a discovered predictions file. The empty name is the latest week.
func (s *Server) resolve(name string) (string, error) {
	files, err := picks.FindPredictionFiles(s.dir)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", fmt.Errorf("no predictions found in %s", s.dir)
	}
	if name == "" {
		return files[len(files)-1].Path, nil
	}
	for _, f := range files {
		if filepath.Base(f.Path) == name {
			return f.Path, nil
		}
	}
	return "", fmt.Errorf("predictions file %q not found", name)
}

// batch returns the rows of the file at path, rereading it when its modification time changes.
// The cached rows are shared between requests and never modified.
func (s *Server) batch(path string) ([]picks.PredictionRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %v: %w", path, err, picks.ErrStorage)
	}
	if b, ok := s.batches[path]; ok && b.modTime.Equal(info.ModTime()) {
		return b.rows, nil
	}
	rows, err := picks.ReadFile(path)
	if err != nil {
		return nil, err
	}
	_, rejected := picks.DeriveAll(rows, picks.DefaultThreshold)
	for _, re := range rejected {
		log.Printf("excluding %s: %v", path, re)
	}
	s.batches[path] = loadedBatch{rows: rows, modTime: info.ModTime()}
	filesLoaded.Inc()
	log.Printf("loaded %d rows from %s", len(rows), path)
	return rows, nil
}
