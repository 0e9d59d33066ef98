package app

import (
	"fmt"
	"strings"
	"time"
)

// IDGenerator returns identifiers for new tasks.
type IDGenerator func() int64

// Clock returns the current time.
type Clock func() time.Time

// IDStrategy selects how task ids are produced.
type IDStrategy string

// IDStrategyCounter and related constants define supported strategies.
const (
	IDStrategyCounter IDStrategy = "counter"
	IDStrategyClock   IDStrategy = "clock"
)

// ParseIDStrategy normalizes a configured strategy name.
func ParseIDStrategy(raw string) (IDStrategy, error) {
	switch s := IDStrategy(strings.ToLower(strings.TrimSpace(raw))); s {
	case "", IDStrategyCounter:
		return IDStrategyCounter, nil
	case IDStrategyClock:
		return IDStrategyClock, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownIDStrategy, raw)
	}
}

// NewIDGenerator builds the generator for strategy.
func NewIDGenerator(strategy IDStrategy, clock Clock) (IDGenerator, error) {
	switch strategy {
	case "", IDStrategyCounter:
		return CounterIDs(), nil
	case IDStrategyClock:
		return ClockIDs(clock), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownIDStrategy, strategy)
	}
}

// CounterIDs yields 1, 2, 3, ...
func CounterIDs() IDGenerator {
	var next int64
	return func() int64 {
		next++
		return next
	}
}

// ClockIDs yields Unix-millisecond ids, bumped so each id exceeds the last.
func ClockIDs(clock Clock) IDGenerator {
	if clock == nil {
		clock = time.Now
	}
	var last int64
	return func() int64 {
		id := clock().UnixMilli()
		if id <= last {
			id = last + 1
		}
		last = id
		return id
	}
}
