package picks

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingInputField reports a game or prediction lacking a required attribute.
	// The row is dropped; the batch continues.
	ErrMissingInputField = errors.New("missing input field")

	// ErrDuplicateGame reports a game_id seen more than once in a schedule.
	ErrDuplicateGame = errors.New("duplicate game")

	// ErrNoRowsForWeek reports that a season/week has nothing to predict.
	ErrNoRowsForWeek = errors.New("no rows for week")

	// ErrInvariantViolation reports a prediction row reaching the deriver without a home win probability,
	// or carrying a stored winner that is neither of its teams.
	ErrInvariantViolation = errors.New("invariant violation")

	// ErrStorage wraps I/O failures reading or writing prediction files.
	ErrStorage = errors.New("storage failure")
)

// RowError records why a single row was excluded from a batch.
type RowError struct {
	Index  int
	GameID string
	Err    error
}

func (e RowError) Error() string {
	if e.GameID == "" {
		return fmt.Sprintf("row %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("row %d (%s): %v", e.Index, e.GameID, e.Err)
}

func (e RowError) Unwrap() error {
	return e.Err
}
