package storage

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rewired-gh/oddswatch/internal/models"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(100, ":memory:")
	if err != nil {
		t.Fatalf("failed to create test storage: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testAlert(eventKey string, detectedAt time.Time) *models.Alert {
	return &models.Alert{
		ID:          uuid.NewString(),
		EventKey:    eventKey,
		HomeTeam:    "Arsenal",
		AwayTeam:    "Tottenham",
		OldProb:     0.50,
		NewProb:     0.56,
		DeltaPoints: 6.0,
		Message:     "📈 Arsenal vs Tottenham (" + eventKey + "): home win +6.00pp (50.0% → 56.0%)",
		DetectedAt:  detectedAt,
	}
}

func TestStorage_AddAndRecentAlerts(t *testing.T) {
	s := newTestStorage(t)
	now := time.Now()

	for i := 0; i < 3; i++ {
		a := testAlert("ev_1", now.Add(time.Duration(i)*time.Second))
		if err := s.AddAlert(a); err != nil {
			t.Fatalf("AddAlert: %v", err)
		}
	}

	alerts, err := s.RecentAlerts(10)
	if err != nil {
		t.Fatalf("RecentAlerts: %v", err)
	}
	if len(alerts) != 3 {
		t.Fatalf("got %d alerts, want 3", len(alerts))
	}
	// Newest first.
	if !alerts[0].DetectedAt.After(alerts[2].DetectedAt) {
		t.Errorf("alerts not ordered newest first")
	}
	if alerts[0].EventKey != "ev_1" || alerts[0].DeltaPoints != 6.0 {
		t.Errorf("round-trip mismatch: %+v", alerts[0])
	}
}

func TestStorage_RecentAlertsEmpty(t *testing.T) {
	s := newTestStorage(t)
	alerts, err := s.RecentAlerts(5)
	if err != nil {
		t.Fatalf("RecentAlerts: %v", err)
	}
	if len(alerts) != 0 {
		t.Errorf("got %d alerts, want 0", len(alerts))
	}
}

func TestStorage_AlertsForEvent(t *testing.T) {
	s := newTestStorage(t)
	now := time.Now()
	for i, key := range []string{"ev_1", "ev_2", "ev_1"} {
		if err := s.AddAlert(testAlert(key, now.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatalf("AddAlert: %v", err)
		}
	}

	alerts, err := s.AlertsForEvent("ev_1", 10)
	if err != nil {
		t.Fatalf("AlertsForEvent: %v", err)
	}
	if len(alerts) != 2 {
		t.Errorf("got %d alerts for ev_1, want 2", len(alerts))
	}
}

func TestStorage_RotatesBeyondCap(t *testing.T) {
	s, err := New(5, ":memory:")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	now := time.Now()
	for i := 0; i < 10; i++ {
		a := testAlert(fmt.Sprintf("ev_%d", i), now.Add(time.Duration(i)*time.Second))
		if err := s.AddAlert(a); err != nil {
			t.Fatalf("AddAlert: %v", err)
		}
	}

	alerts, err := s.RecentAlerts(100)
	if err != nil {
		t.Fatalf("RecentAlerts: %v", err)
	}
	if len(alerts) != 5 {
		t.Fatalf("got %d alerts, want 5 after rotation", len(alerts))
	}
	// The newest five survive.
	if alerts[0].EventKey != "ev_9" {
		t.Errorf("newest alert is %s, want ev_9", alerts[0].EventKey)
	}
	if alerts[4].EventKey != "ev_5" {
		t.Errorf("oldest surviving alert is %s, want ev_5", alerts[4].EventKey)
	}
}
