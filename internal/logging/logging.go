// Package logging holds the silent default logger shared by the library
// packages, which log nothing unless the caller passes a logger.
package logging

import (
	"context"
	"log/slog"
)

// OrDiscard returns l, or a no-op logger if l is nil.
// This allows internal code to call logging methods without nil checks.
func OrDiscard(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.New(discardHandler{})
}

// discardHandler is a slog.Handler that discards all log records.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }
