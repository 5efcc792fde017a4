package logging

import (
	"context"
	"log/slog"
	"regexp"
)

// Request frames and session registration payloads can carry app tokens;
// these patterns scrub the value while keeping the surrounding text.
var redactPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(Bearer\s+)\S+`),
	regexp.MustCompile(`(?i)((?:secret|api[_-]?key|token|auth[_-]?token)"?\s*[=:]\s*"?)[^"\s,}]+`),
}

const redactedPlaceholder = "[REDACTED]"

// RedactingHandler scrubs token-like values from log records before
// forwarding them to an inner handler.
type RedactingHandler struct {
	inner slog.Handler
}

// NewRedactingHandler wraps an inner handler with secret redaction.
func NewRedactingHandler(inner slog.Handler) *RedactingHandler {
	return &RedactingHandler{inner: inner}
}

// Enabled delegates to the inner handler.
func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle redacts the message and all string attribute values.
func (h *RedactingHandler) Handle(ctx context.Context, r slog.Record) error {
	out := slog.NewRecord(r.Time, r.Level, redactString(r.Message), r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(redactAttr(a))
		return true
	})
	return h.inner.Handle(ctx, out)
}

// WithAttrs redacts the attrs before passing them to the inner handler.
func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redacted[i] = redactAttr(a)
	}
	return &RedactingHandler{inner: h.inner.WithAttrs(redacted)}
}

// WithGroup delegates to the inner handler.
func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{inner: h.inner.WithGroup(name)}
}

func redactAttr(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		return slog.String(a.Key, redactString(a.Value.String()))
	case slog.KindGroup:
		group := a.Value.Group()
		redacted := make([]any, 0, len(group))
		for _, g := range group {
			redacted = append(redacted, redactAttr(g))
		}
		return slog.Group(a.Key, redacted...)
	default:
		return a
	}
}

func redactString(s string) string {
	for _, p := range redactPatterns {
		s = p.ReplaceAllString(s, "${1}"+redactedPlaceholder)
	}
	return s
}
