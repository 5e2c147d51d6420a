package model

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Delay is the number of seconds until a reminder fires.
type Delay int

const (
	MinDelay     Delay = 10
	MaxDelay     Delay = 300
	DefaultDelay Delay = 60
)

var ErrDelayOutOfRange = errors.New("delay out of range")

// ClampDelay pins a picker value into [MinDelay, MaxDelay].
func ClampDelay(seconds int) Delay {
	switch {
	case seconds < int(MinDelay):
		return MinDelay
	case seconds > int(MaxDelay):
		return MaxDelay
	default:
		return Delay(seconds)
	}
}

// ParseDelay reads a slider value. Fractional values are truncated the way a
// one-second step slider reports them, then clamped.
func ParseDelay(s string) (Delay, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty delay")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid delay %q: %w", s, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid delay %q", s)
	}
	// Clamp before converting; int() of an out-of-range float is undefined.
	switch {
	case f < float64(MinDelay):
		return MinDelay, nil
	case f > float64(MaxDelay):
		return MaxDelay, nil
	}
	return Delay(int(f)), nil
}

func (d Delay) Validate() error {
	if d < MinDelay || d > MaxDelay {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrDelayOutOfRange, d, MinDelay, MaxDelay)
	}
	return nil
}

func (d Delay) Duration() time.Duration {
	return time.Duration(d) * time.Second
}

func (d Delay) Int() int { return int(d) }
