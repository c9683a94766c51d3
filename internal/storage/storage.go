// Package storage provides SQLite-backed persistence for the fired-alert
// history. Watches themselves are deliberately not persisted; the history is
// a write-behind audit trail.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rewired-gh/oddswatch/internal/models"
	_ "modernc.org/sqlite"
)

// Storage wraps a SQLite database holding fired alerts.
type Storage struct {
	db        *sql.DB
	maxAlerts int
}

// New opens or creates the SQLite database at dbPath.
// An empty dbPath defaults to $TMPDIR/oddswatch/data.db.
func New(maxAlerts int, dbPath string) (*Storage, error) {
	if dbPath == "" {
		dbPath = filepath.Join(os.TempDir(), "oddswatch", "data.db")
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // single writer; WAL allows concurrent readers
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}
	s := &Storage{db: db, maxAlerts: maxAlerts}
	if err := s.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) createTables() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS alerts (
			id           TEXT PRIMARY KEY,
			event_key    TEXT NOT NULL,
			home_team    TEXT NOT NULL,
			away_team    TEXT NOT NULL,
			old_prob     REAL NOT NULL,
			new_prob     REAL NOT NULL,
			delta_points REAL NOT NULL,
			message      TEXT NOT NULL,
			detected_at  INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_detected_at ON alerts(detected_at)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_event_key ON alerts(event_key)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// AddAlert inserts a fired alert and rotates out the oldest rows beyond the
// configured cap.
func (s *Storage) AddAlert(alert *models.Alert) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.Exec(`
		INSERT INTO alerts
			(id, event_key, home_team, away_team, old_prob, new_prob, delta_points, message, detected_at)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		alert.ID, alert.EventKey, alert.HomeTeam, alert.AwayTeam,
		alert.OldProb, alert.NewProb, alert.DeltaPoints, alert.Message,
		alert.DetectedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}

	if s.maxAlerts > 0 {
		if _, err = tx.Exec(`
			DELETE FROM alerts WHERE id NOT IN (
				SELECT id FROM alerts ORDER BY detected_at DESC LIMIT ?
			)`, s.maxAlerts); err != nil {
			return fmt.Errorf("failed to enforce alert cap: %w", err)
		}
	}

	return tx.Commit()
}

// RecentAlerts returns up to limit newest alerts, newest first.
func (s *Storage) RecentAlerts(limit int) ([]models.Alert, error) {
	rows, err := s.db.Query(`
		SELECT id, event_key, home_team, away_team, old_prob, new_prob, delta_points, message, detected_at
		FROM alerts ORDER BY detected_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()
	return scanAlerts(rows)
}

// AlertsForEvent returns up to limit newest alerts for one event key.
func (s *Storage) AlertsForEvent(eventKey string, limit int) ([]models.Alert, error) {
	rows, err := s.db.Query(`
		SELECT id, event_key, home_team, away_team, old_prob, new_prob, delta_points, message, detected_at
		FROM alerts WHERE event_key = ? ORDER BY detected_at DESC LIMIT ?`, eventKey, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()
	return scanAlerts(rows)
}

func scanAlerts(rows *sql.Rows) ([]models.Alert, error) {
	var alerts []models.Alert
	for rows.Next() {
		var a models.Alert
		var detectedAtNano int64
		err := rows.Scan(
			&a.ID, &a.EventKey, &a.HomeTeam, &a.AwayTeam,
			&a.OldProb, &a.NewProb, &a.DeltaPoints, &a.Message,
			&detectedAtNano,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		a.DetectedAt = time.Unix(0, detectedAtNano)
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}
