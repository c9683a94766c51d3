package telegram

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rewired-gh/oddswatch/internal/models"
)

func TestEscapeMarkdownV2(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Hello World", "Hello World"},
		{"Hello_World", "Hello\\_World"},
		{"Test*bold*", "Test\\*bold\\*"},
		{"50.0% → 56.0%", "50\\.0% → 56\\.0%"},
		{"[link](url)", "\\[link\\]\\(url\\)"},
		{"+6.00pp", "\\+6\\.00pp"},
		{"", ""},
		{"_*[]()~`>#+-=|{}.!", "\\_\\*\\[\\]\\(\\)\\~\\`\\>\\#\\+\\-\\=\\|\\{\\}\\.\\!"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := escapeMarkdownV2(tt.input)
			if result != tt.expected {
				t.Errorf("escapeMarkdownV2(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

type fakeHistory struct {
	alerts []models.Alert
	err    error
}

func (f *fakeHistory) RecentAlerts(int) ([]models.Alert, error) {
	return f.alerts, f.err
}

func TestFormatHistory(t *testing.T) {
	now := time.Date(2026, 3, 14, 15, 9, 0, 0, time.UTC)

	tests := []struct {
		name    string
		history HistorySource
		want    string
	}{
		{"disabled", nil, "disabled"},
		{"empty", &fakeHistory{}, "No alerts fired yet"},
		{"load failure", &fakeHistory{err: errors.New("db locked")}, "try again shortly"},
		{"with alerts", &fakeHistory{alerts: []models.Alert{
			{Message: "Arsenal vs Tottenham (ev_1): home win +6.00pp", DetectedAt: now},
		}}, "2026-03-14 15:09"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Client{history: tt.history}
			out := c.formatHistory()
			if !strings.Contains(out, tt.want) {
				t.Errorf("got %q, want substring %q", out, tt.want)
			}
		})
	}
}
