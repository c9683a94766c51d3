package watch

import (
	"strings"
	"testing"

	"github.com/rewired-gh/oddswatch/internal/models"
)

func snap(prob float64) *models.ProbabilitySnapshot {
	return &models.ProbabilitySnapshot{
		EventKey:    "ev_1",
		HomeTeam:    "Arsenal",
		AwayTeam:    "Tottenham",
		HomeWinProb: prob,
	}
}

func ptr(v float64) *float64 { return &v }

func TestEvaluate_FirstObservationNeverAlerts(t *testing.T) {
	w := models.WatchedEvent{EventKey: "ev_1", Direction: models.DirectionAny}
	if _, fired := Evaluate(w, nil, snap(0.99)); fired {
		t.Error("first observation must only establish a baseline")
	}
}

func TestEvaluate_ThresholdBoundary(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
		prev, cur float64
		want      bool
	}{
		{"exactly at default threshold", 0, 0.50, 0.53, true},
		{"just under default threshold", 0, 0.50, 0.5299, false},
		{"custom threshold crossed", 5, 0.50, 0.56, true},
		{"custom threshold not crossed", 5, 0.50, 0.54, false},
		{"downward move crosses", 0, 0.50, 0.45, true},
		{"no movement", 0, 0.50, 0.50, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := models.WatchedEvent{EventKey: "ev_1", ThresholdPct: tt.threshold, Direction: models.DirectionAny}
			_, fired := Evaluate(w, ptr(tt.prev), snap(tt.cur))
			if fired != tt.want {
				t.Errorf("fired = %v, want %v", fired, tt.want)
			}
		})
	}
}

func TestEvaluate_DirectionGate(t *testing.T) {
	tests := []struct {
		name      string
		direction models.Direction
		prev, cur float64
		want      bool
	}{
		{"down never alerts on rise", models.DirectionDown, 0.10, 0.90, false},
		{"up never alerts on drop", models.DirectionUp, 0.90, 0.10, false},
		{"up passes on rise", models.DirectionUp, 0.50, 0.60, true},
		{"down passes on drop", models.DirectionDown, 0.60, 0.50, true},
		{"any passes both ways", models.DirectionAny, 0.60, 0.50, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := models.WatchedEvent{EventKey: "ev_1", Direction: tt.direction}
			_, fired := Evaluate(w, ptr(tt.prev), snap(tt.cur))
			if fired != tt.want {
				t.Errorf("fired = %v, want %v", fired, tt.want)
			}
		})
	}
}

func TestEvaluate_AlertFields(t *testing.T) {
	w := models.WatchedEvent{EventKey: "ev_1", ThresholdPct: 5, Direction: models.DirectionAny}
	alert, fired := Evaluate(w, ptr(0.50), snap(0.56))
	if !fired {
		t.Fatal("expected an alert")
	}
	if alert.EventKey != "ev_1" {
		t.Errorf("got event key %q", alert.EventKey)
	}
	if alert.OldProb != 0.50 || alert.NewProb != 0.56 {
		t.Errorf("got probs %v → %v", alert.OldProb, alert.NewProb)
	}
	for _, want := range []string{"Arsenal", "Tottenham", "ev_1", "+6.00pp", "50.0%", "56.0%"} {
		if !strings.Contains(alert.Message, want) {
			t.Errorf("message %q missing %q", alert.Message, want)
		}
	}
}

func TestEvaluate_NegativeDeltaFormatting(t *testing.T) {
	w := models.WatchedEvent{EventKey: "ev_1", Direction: models.DirectionAny}
	alert, fired := Evaluate(w, ptr(0.56), snap(0.50))
	if !fired {
		t.Fatal("expected an alert")
	}
	if !strings.Contains(alert.Message, "-6.00pp") {
		t.Errorf("message %q missing signed delta", alert.Message)
	}
}
