package models

import (
	"errors"
	"time"
)

// Candidate is one trackable event from the results feed listing. EventKey
// may be empty for fixtures the aggregator has not keyed yet; LeaseID is the
// upstream fallback identifier.
type Candidate struct {
	EventKey  string    `json:"event_key"`
	LeaseID   string    `json:"lease_id"`
	HomeTeam  string    `json:"home_team"`
	AwayTeam  string    `json:"away_team"`
	StartTime time.Time `json:"start_time"`
	Finished  bool      `json:"finished"`
}

// Key returns the canonical identifier: EventKey when present, else LeaseID.
func (c Candidate) Key() string {
	if c.EventKey != "" {
		return c.EventKey
	}
	return c.LeaseID
}

// Validate checks candidate field constraints.
func (c *Candidate) Validate() error {
	if c.EventKey == "" && c.LeaseID == "" {
		return errors.New("candidate must carry an event key or lease ID")
	}
	if c.HomeTeam == "" {
		return errors.New("home team must not be empty")
	}
	if c.AwayTeam == "" {
		return errors.New("away team must not be empty")
	}
	return nil
}
