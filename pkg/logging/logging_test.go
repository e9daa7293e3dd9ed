package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LogLevel(999), "UNKNOWN"},
	}

	for _, test := range tests {
		result := test.level.String()
		if result != test.expected {
			t.Errorf("LogLevel(%d).String() = %s, expected %s", test.level, result, test.expected)
		}
	}
}

func TestLogLevel_SlogLevel(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected slog.Level
	}{
		{LevelDebug, slog.LevelDebug},
		{LevelInfo, slog.LevelInfo},
		{LevelWarn, slog.LevelWarn},
		{LevelError, slog.LevelError},
		{LogLevel(999), slog.LevelInfo}, // Default for unknown
	}

	for _, test := range tests {
		result := test.level.SlogLevel()
		if result != test.expected {
			t.Errorf("LogLevel(%d).SlogLevel() = %v, expected %v", test.level, result, test.expected)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   LevelDebug,
		"DEBUG":   LevelDebug,
		" info ":  LevelInfo,
		"warning": LevelWarn,
		"warn":    LevelWarn,
		"error":   LevelError,
		"verbose": LevelInfo,
		"":        LevelInfo,
	}

	for input, expected := range tests {
		if got := ParseLevel(input); got != expected {
			t.Errorf("ParseLevel(%q) = %s, expected %s", input, got, expected)
		}
	}
}

func TestInitForCLI(t *testing.T) {
	var buf bytes.Buffer

	InitForCLI(LevelInfo, &buf)

	Info("test-subsystem", "test message %d", 42)

	output := buf.String()
	if !strings.Contains(output, "test message 42") {
		t.Error("Expected log message to appear in CLI output")
	}

	if !strings.Contains(output, "test-subsystem") {
		t.Error("Expected subsystem to appear in CLI output")
	}
}

func TestCLILevelFiltering(t *testing.T) {
	var buf bytes.Buffer

	InitForCLI(LevelInfo, &buf)

	Debug("test", "debug message")
	Info("test", "info message")

	output := buf.String()
	if strings.Contains(output, "debug message") {
		t.Error("Debug message should be filtered out at INFO level")
	}

	if !strings.Contains(output, "info message") {
		t.Error("Info message should appear at INFO level")
	}
}

func TestErrorIncludesCause(t *testing.T) {
	var buf bytes.Buffer
	InitForCLI(LevelDebug, &buf)

	Error("Config", errors.New("permission denied"), "failed to read %s", "config.yaml")

	output := buf.String()
	if !strings.Contains(output, "failed to read config.yaml") {
		t.Errorf("expected message in output, got %q", output)
	}
	if !strings.Contains(output, "permission denied") {
		t.Errorf("expected error cause in output, got %q", output)
	}
}

func TestSubsystemLogger(t *testing.T) {
	var buf bytes.Buffer
	InitForCLI(LevelDebug, &buf)

	Subsystem("TokenClient").Debug("token request failed", "status", 400)

	output := buf.String()
	if !strings.Contains(output, "subsystem=TokenClient") {
		t.Errorf("expected subsystem attribute, got %q", output)
	}
	if !strings.Contains(output, "status=400") {
		t.Errorf("expected status attribute, got %q", output)
	}
}

func TestAudit(t *testing.T) {
	var buf bytes.Buffer
	InitForCLI(LevelInfo, &buf)

	Audit(AuditEvent{
		Action:          "token_refresh",
		Outcome:         "success",
		Target:          "app-123",
		OrganizationUID: "org-1",
	})

	output := buf.String()
	for _, want := range []string{"[AUDIT] token_refresh", "outcome=success", "target=app-123", "organization_uid=org-1"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in audit output %q", want, output)
		}
	}
	if strings.Contains(output, "error=") {
		t.Error("expected no error attribute for successful audit event")
	}
}

func TestAuditSuppressedAboveInfo(t *testing.T) {
	var buf bytes.Buffer
	InitForCLI(LevelError, &buf)

	Audit(AuditEvent{Action: "logout", Outcome: "success"})

	if buf.Len() != 0 {
		t.Errorf("expected no output at ERROR level, got %q", buf.String())
	}
}
