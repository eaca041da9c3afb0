// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

type countingRefresher struct {
	calls atomic.Int64
	err   error
}

func (c *countingRefresher) LoadAll(_ context.Context) error {
	c.calls.Add(1)
	return c.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStartDisabledWithZeroInterval(t *testing.T) {
	ref := &countingRefresher{}
	s := New(ref, 0, discardLogger())

	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if got := len(s.cron.Entries()); got != 0 {
		t.Errorf("expected no cron entries, got %d", got)
	}
	s.Stop()
}

func TestStartSchedulesRefresh(t *testing.T) {
	ref := &countingRefresher{}
	s := New(ref, 5*time.Minute, discardLogger())

	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Stop()

	if got := len(s.cron.Entries()); got != 1 {
		t.Fatalf("expected 1 cron entry, got %d", got)
	}
}

func TestRefreshSwallowsErrors(t *testing.T) {
	ref := &countingRefresher{err: errors.New("api down")}
	s := New(ref, time.Minute, discardLogger())

	// Call the job body directly; a failed refresh must not panic and
	// must still count as an attempt.
	s.refresh()
	s.refresh()

	if got := ref.calls.Load(); got != 2 {
		t.Errorf("LoadAll calls = %d, want 2", got)
	}
}
