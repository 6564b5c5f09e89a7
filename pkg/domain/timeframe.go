package domain

import (
	"fmt"
	"time"
)

// Timeframe is a tagged enumeration of bar durations.
type Timeframe string

const (
	M1  Timeframe = "M1"
	M5  Timeframe = "M5"
	M15 Timeframe = "M15"
	M30 Timeframe = "M30"
	H1  Timeframe = "H1"
	H4  Timeframe = "H4"
	D1  Timeframe = "D1"
	W1  Timeframe = "W1"
)

var timeframeDurations = map[Timeframe]time.Duration{
	M1:  time.Minute,
	M5:  5 * time.Minute,
	M15: 15 * time.Minute,
	M30: 30 * time.Minute,
	H1:  time.Hour,
	H4:  4 * time.Hour,
	D1:  24 * time.Hour,
	W1:  7 * 24 * time.Hour,
}

// Duration returns the wall-clock duration of one bar of this timeframe.
func (tf Timeframe) Duration() time.Duration {
	return timeframeDurations[tf]
}

// Valid reports whether tf is one of the known timeframe codes.
func (tf Timeframe) Valid() bool {
	_, ok := timeframeDurations[tf]
	return ok
}

// ParseTimeframe parses a timeframe code, failing with ErrInvalidArgument
// on an unknown code.
func ParseTimeframe(code string) (Timeframe, error) {
	tf := Timeframe(code)
	if !tf.Valid() {
		return "", fmt.Errorf("%w: unknown timeframe code %q", ErrInvalidArgument, code)
	}
	return tf, nil
}
