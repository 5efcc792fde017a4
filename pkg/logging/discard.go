package logging

import (
	"context"
	"log/slog"
)

// DiscardHandler is a slog.Handler that drops all records. Packages default
// to a discard logger until the daemon wires a real one.
type DiscardHandler struct{}

func (DiscardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (DiscardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d DiscardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d DiscardHandler) WithGroup(string) slog.Handler           { return d }

// NewDiscardLogger returns a logger that discards all output.
func NewDiscardLogger() *slog.Logger {
	return slog.New(DiscardHandler{})
}
