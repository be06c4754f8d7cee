package picks

import (
	"io"
	"math"
	"sync"

	"github.com/segmentio/fasthash/jody"
)

// Interactive threshold bounds and step.
const (
	MinThreshold  = 0.40
	MaxThreshold  = 0.60
	ThresholdStep = 0.01 // ClampThreshold snaps to hundredths
)

// ViewState is everything a user controls in the interactive view.
// A zero Week means "no week chosen yet"; the earliest week in the batch is used.
type ViewState struct {
	Threshold float64
	SortKey   SortKey
	Week      int
}

// DefaultViewState is the state a viewing session starts in.
func DefaultViewState() ViewState {
	return ViewState{Threshold: DefaultThreshold, SortKey: ByConfidence}
}

// ClampThreshold limits t to the interactive range and snaps it to the step grid. NaN is DefaultThreshold.
func ClampThreshold(t float64) float64 {
	if math.IsNaN(t) {
		return DefaultThreshold
	}
	t = math.Max(MinThreshold, math.Min(MaxThreshold, t))
	return math.Round(t*100) / 100
}

// Event is a user input that changes the view state.
type Event interface {
	apply(ViewState) ViewState
}

// ThresholdChanged sets a new winner threshold.
type ThresholdChanged struct{ Threshold float64 }

// SortKeyChanged sets a new ranking column.
type SortKeyChanged struct{ Key SortKey }

// WeekChanged selects the week to display.
type WeekChanged struct{ Week int }

func (e ThresholdChanged) apply(s ViewState) ViewState {
	s.Threshold = e.Threshold
	return s
}

func (e SortKeyChanged) apply(s ViewState) ViewState {
	s.SortKey = e.Key
	return s
}

func (e WeekChanged) apply(s ViewState) ViewState {
	s.Week = e.Week
	return s
}

// View is the derived, filtered and ranked presentation of a batch for one state.
type View struct {
	State            ViewState
	Rows             Predictions
	Weeks            []int
	ShowWeekSelector bool
	Rejected         []RowError
	Fingerprint      uint64
}

// Render derives the batch with fill-missing semantics under state, then filters and ranks it.
// The returned state is state with its threshold, sort key and week normalized against the batch.
func Render(state ViewState, batch []PredictionRow) (ViewState, View) {
	state.Threshold = ClampThreshold(state.Threshold)
	if _, err := ParseSortKey(string(state.SortKey)); err != nil || state.SortKey == "" {
		state.SortKey = ByConfidence
	}

	derived, rejected := DeriveAll(batch, state.Threshold)
	weeks := Weeks(derived)
	multi := len(weeks) > 1
	if multi && !containsInt(weeks, state.Week) {
		state.Week = weeks[0]
	}
	rows := Rank(FilterWeek(derived, state.Week), state.SortKey)

	return state, View{
		State:            state,
		Rows:             rows,
		Weeks:            weeks,
		ShowWeekSelector: multi,
		Rejected:         rejected,
		Fingerprint:      fingerprint(state, rows),
	}
}

// Transition applies one event to state and re-renders the batch.
func Transition(state ViewState, ev Event, batch []PredictionRow) (ViewState, View) {
	return Render(ev.apply(state), batch)
}

func containsInt(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

func fingerprint(s ViewState, rows Predictions) uint64 {
	h := jody.HashString64(string(s.SortKey))
	h = jody.AddUint64(h, math.Float64bits(s.Threshold))
	h = jody.AddUint64(h, uint64(s.Week))
	for _, r := range rows {
		h = jody.AddString64(h, string(r.HomeTeam))
		h = jody.AddString64(h, string(r.AwayTeam))
		h = jody.AddString64(h, string(r.Winner()))
		h = jody.AddUint64(h, math.Float64bits(*r.PredictedWinProb))
		h = jody.AddUint64(h, math.Float64bits(*r.Confidence))
	}
	return h
}

// Session is one interactive viewing session over a loaded batch.
// Transitions are serialized: each completes before the next event is applied.
type Session struct {
	mu    sync.Mutex
	batch []PredictionRow
	state ViewState
	view  View
}

// NewSession starts a session over batch in the given state.
func NewSession(batch []PredictionRow, state ViewState) *Session {
	s := &Session{batch: batch}
	s.state, s.view = Render(state, batch)
	return s
}

// Apply handles one event and returns the resulting view.
func (s *Session) Apply(ev Event) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state, s.view = Transition(s.state, ev, s.batch)
	return s.view
}

// View returns the current view without recomputing.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Export writes the current view in the canonical schema.
func (s *Session) Export(w io.Writer) error {
	return WriteCSV(w, s.View().Rows)
}
