// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides a slog handler that mirrors WARN and ERROR
// records into the local events table, so operational problems (API
// outages, auth rejections, rate limiting) survive process restarts.
package logging

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
)

// EventLogHandler is a slog.Handler that wraps another handler and also
// writes WARN and ERROR level logs to the events table.
type EventLogHandler struct {
	inner slog.Handler
	db    *sql.DB
	level slog.Level
}

// NewEventLogHandler creates an EventLogHandler that wraps inner. Logs
// at WARN level and above are written to both the wrapped handler and
// the events table.
func NewEventLogHandler(inner slog.Handler, db *sql.DB) *EventLogHandler {
	return &EventLogHandler{
		inner: inner,
		db:    db,
		level: slog.LevelWarn,
	}
}

// Enabled implements slog.Handler.
func (h *EventLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *EventLogHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}

	if r.Level >= h.level {
		h.writeEvent(r)
	}

	return nil
}

// WithAttrs implements slog.Handler.
func (h *EventLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &EventLogHandler{
		inner: h.inner.WithAttrs(attrs),
		db:    h.db,
		level: h.level,
	}
}

// WithGroup implements slog.Handler.
func (h *EventLogHandler) WithGroup(name string) slog.Handler {
	return &EventLogHandler{
		inner: h.inner.WithGroup(name),
		db:    h.db,
		level: h.level,
	}
}

// writeEvent records one log record. A background context is used so
// the event is stored even when the request context is already
// cancelled. Write failures are swallowed: the event log must never
// take down the logger.
func (h *EventLogHandler) writeEvent(r slog.Record) {
	_, _ = h.db.ExecContext(context.Background(),
		`INSERT INTO events (level, message, details, created_at) VALUES (?, ?, ?, ?)`,
		levelName(r.Level), r.Message, recordDetails(r), r.Time,
	)
}

func levelName(level slog.Level) string {
	if level >= slog.LevelError {
		return "error"
	}
	return "warning"
}

// recordDetails flattens the record attributes into a "k=v k=v" string.
func recordDetails(r slog.Record) string {
	if r.NumAttrs() == 0 {
		return ""
	}

	var sb strings.Builder
	r.Attrs(func(a slog.Attr) bool {
		if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(a.Key)
		sb.WriteString("=")
		sb.WriteString(a.Value.String())
		return true
	})
	return sb.String()
}
