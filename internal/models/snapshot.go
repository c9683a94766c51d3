package models

import (
	"errors"
	"time"
)

// ProbabilitySnapshot is one point-in-time probability reading for an event
// as returned by the aggregator. The three probabilities are not required to
// sum to 1: source markets may carry overround.
type ProbabilitySnapshot struct {
	EventKey    string    `json:"event_key"`
	HomeTeam    string    `json:"home_team"`
	AwayTeam    string    `json:"away_team"`
	HomeWinProb float64   `json:"home_win_prob"`
	DrawProb    float64   `json:"draw_prob"`
	AwayWinProb float64   `json:"away_win_prob"`
	Liquidity   float64   `json:"liquidity"`
	Volume      float64   `json:"volume"`
	SourceCount int       `json:"source_count"`
	AsOf        time.Time `json:"as_of"`
}

// Normalize clamps each outcome probability into [0,1]. An absent outcome
// axis decodes as the zero value, which is the documented default.
func (s *ProbabilitySnapshot) Normalize() {
	s.HomeWinProb = clamp01(s.HomeWinProb)
	s.DrawProb = clamp01(s.DrawProb)
	s.AwayWinProb = clamp01(s.AwayWinProb)
}

// Validate checks snapshot field constraints after normalization.
func (s *ProbabilitySnapshot) Validate() error {
	if s.EventKey == "" {
		return errors.New("event key must not be empty")
	}
	if s.HomeWinProb < 0.0 || s.HomeWinProb > 1.0 {
		return errors.New("home win probability must be between 0.0 and 1.0")
	}
	if s.DrawProb < 0.0 || s.DrawProb > 1.0 {
		return errors.New("draw probability must be between 0.0 and 1.0")
	}
	if s.AwayWinProb < 0.0 || s.AwayWinProb > 1.0 {
		return errors.New("away win probability must be between 0.0 and 1.0")
	}
	if s.Liquidity < 0 {
		return errors.New("liquidity must not be negative")
	}
	if s.Volume < 0 {
		return errors.New("volume must not be negative")
	}
	if s.SourceCount < 0 {
		return errors.New("source count must not be negative")
	}
	return nil
}

// Empty reports whether the snapshot carries no probability data at all.
func (s *ProbabilitySnapshot) Empty() bool {
	return s.HomeWinProb == 0 && s.DrawProb == 0 && s.AwayWinProb == 0
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
