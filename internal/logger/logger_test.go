package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("warn", "text", &buf)

	Debug("debug message")
	Info("info message")
	Warn("warn message")
	Error("error message")

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Errorf("levels below warn should be suppressed:\n%s", out)
	}
	if !strings.Contains(out, "[WARN] warn message") {
		t.Errorf("warn message missing:\n%s", out)
	}
	if !strings.Contains(out, "[ERROR] error message") {
		t.Errorf("error message missing:\n%s", out)
	}
}

func TestUnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("bogus", "json", &buf)

	Debug("debug message")
	Info("info message")

	out := buf.String()
	if strings.Contains(out, "debug message") {
		t.Errorf("debug should be suppressed at the default level:\n%s", out)
	}
	if !strings.Contains(out, "info message") {
		t.Errorf("info message missing:\n%s", out)
	}
}
