package watch

import (
	"fmt"
	"math"

	"github.com/rewired-gh/oddswatch/internal/models"
)

// Evaluate compares the current snapshot against the previous observed
// home-win probability and decides whether the move crosses the watch's
// threshold and direction gate. prev is nil on the first observation for a
// key, which only establishes a baseline and never alerts.
//
// Each tick compares only against the immediately preceding observation:
// a run of small same-direction moves that individually stay under the
// threshold never fires even if their sum would. Known limitation carried
// over from the original behavior.
func Evaluate(w models.WatchedEvent, prev *float64, snap *models.ProbabilitySnapshot) (models.Alert, bool) {
	if prev == nil {
		return models.Alert{}, false
	}

	deltaPoints := (snap.HomeWinProb - *prev) * 100
	threshold := w.ThresholdPct
	if threshold <= 0 {
		threshold = DefaultThresholdPct
	}

	if !w.Direction.Allows(deltaPoints) || math.Abs(deltaPoints) < threshold {
		return models.Alert{}, false
	}

	return models.Alert{
		EventKey:    w.EventKey,
		HomeTeam:    snap.HomeTeam,
		AwayTeam:    snap.AwayTeam,
		OldProb:     *prev,
		NewProb:     snap.HomeWinProb,
		DeltaPoints: deltaPoints,
		Message:     formatAlert(w.EventKey, snap.HomeTeam, snap.AwayTeam, *prev, snap.HomeWinProb, deltaPoints),
	}, true
}

func formatAlert(eventKey, homeTeam, awayTeam string, oldProb, newProb, deltaPoints float64) string {
	emoji := "📈"
	if deltaPoints < 0 {
		emoji = "📉"
	}
	return fmt.Sprintf("%s %s vs %s (%s): home win %+.2fpp (%.1f%% → %.1f%%)",
		emoji, homeTeam, awayTeam, eventKey, deltaPoints, oldProb*100, newProb*100)
}
