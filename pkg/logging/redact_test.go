package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func redactedOutput(t *testing.T, msg string, attrs ...any) string {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(NewRedactingHandler(slog.NewJSONHandler(&buf, nil)))
	logger.Info(msg, attrs...)
	return buf.String()
}

func TestRedactBearerToken(t *testing.T) {
	out := redactedOutput(t, "session registered", "header", "Bearer abc123secret")
	if strings.Contains(out, "abc123secret") {
		t.Errorf("token leaked: %s", out)
	}
	if !strings.Contains(out, "[REDACTED]") {
		t.Errorf("no redaction marker: %s", out)
	}
}

func TestRedactKeyValueSecrets(t *testing.T) {
	out := redactedOutput(t, `frame: {"token": "tok_55512", "method": "device.Model"}`)
	if strings.Contains(out, "tok_55512") {
		t.Errorf("token leaked: %s", out)
	}
	if !strings.Contains(out, "device.Model") {
		t.Errorf("non-secret content mangled: %s", out)
	}
}

func TestRedactLeavesPlainMessages(t *testing.T) {
	out := redactedOutput(t, "received firebolt request", "method", "device.Model", "app", "com.x.y")
	if strings.Contains(out, "[REDACTED]") {
		t.Errorf("plain message redacted: %s", out)
	}
}
