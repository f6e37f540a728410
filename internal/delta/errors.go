package delta

import (
	"errors"
	"fmt"

	"airdelta/internal/series"
)

var (
	// ErrInsufficientData: one series is empty or the two never overlap.
	ErrInsufficientData = series.ErrInsufficientData

	// ErrFetchFailure matches every *FetchError.
	ErrFetchFailure = errors.New("feed fetch failed")

	// ErrInvalidParameter marks parameters rejected before any fetch.
	ErrInvalidParameter = errors.New("invalid parameter")
)

// FetchError wraps a Feed Source failure with the side and channel it hit.
type FetchError struct {
	Side    string // "indoor", "outdoor" or "series"
	Channel string
	Field   int
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s channel %s field %d: %v", e.Side, e.Channel, e.Field, e.Err)
}

// Unwrap exposes both ErrFetchFailure and the source error.
func (e *FetchError) Unwrap() []error {
	return []error{ErrFetchFailure, e.Err}
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidParameter, fmt.Sprintf(format, args...))
}
