package models

import (
	"time"
)

// Alert is one fired movement alert, as recorded in the history store.
// The queued delivery text lives in Message; the remaining fields exist so
// history can be queried without re-parsing formatted strings.
type Alert struct {
	ID          string
	EventKey    string
	HomeTeam    string
	AwayTeam    string
	OldProb     float64
	NewProb     float64
	DeltaPoints float64
	Message     string
	DetectedAt  time.Time
}
