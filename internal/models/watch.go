// Package models defines the core domain entities: watches, candidates,
// probability snapshots, and alert records.
package models

import (
	"time"
)

// Direction filters which way a probability move must go to alert.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	DirectionAny  Direction = "any"
)

// Allows reports whether a signed delta (in percentage points) passes the
// direction gate. A zero delta never passes Up or Down.
func (d Direction) Allows(deltaPoints float64) bool {
	switch d {
	case DirectionUp:
		return deltaPoints > 0
	case DirectionDown:
		return deltaPoints < 0
	default:
		return true
	}
}

// WatchedEvent is one user-configured watch on a tracked event.
// ThresholdPct <= 0 means "use the detector default".
type WatchedEvent struct {
	EventKey     string
	ThresholdPct float64
	Direction    Direction
	CreatedAt    time.Time
}

// ObservedProbability is the last-seen home-win probability for a watched
// key. Kept separate from WatchedEvent: it is observation history, not
// configuration, so re-configuring a watch does not lose the baseline.
type ObservedProbability struct {
	HomeWinProb float64
	ObservedAt  time.Time
}
