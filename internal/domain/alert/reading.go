package alert

import (
	"errors"
	"fmt"
	"time"
)

// ErrValueOutOfRange is returned when a sample falls outside [0, 1).
var ErrValueOutOfRange = errors.New("value out of range [0, 1)")

// Reading is one classified sample.
type Reading struct {
	// Sequence is the 1-based tick number that produced the sample.
	Sequence uint64
	// Value is the raw sample in [0, 1).
	Value float64
	// Level is the classification of Value against the threshold.
	Level Level
	// Timestamp is when the sample was taken.
	Timestamp time.Time
}

// NewReading validates the sample and classifies it against threshold.
func NewReading(sequence uint64, value, threshold float64, timestamp time.Time) (Reading, error) {
	// NaN fails both comparisons.
	if !(value >= 0 && value < 1) {
		return Reading{}, fmt.Errorf("sample %v: %w", value, ErrValueOutOfRange)
	}

	return Reading{
		Sequence:  sequence,
		Value:     value,
		Level:     Classify(value, threshold),
		Timestamp: timestamp,
	}, nil
}

// IsZero reports whether no sample has been recorded yet.
func (r Reading) IsZero() bool {
	return r.Sequence == 0 && r.Timestamp.IsZero()
}
