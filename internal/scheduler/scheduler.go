// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the periodic catalog refresh in the
// background.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Refresher reloads a snapshot from the remote API.
type Refresher interface {
	LoadAll(ctx context.Context) error
}

// Scheduler refreshes the catalog on a fixed interval so content and
// plan edits made directly against the API eventually show up on the
// site. A failed refresh keeps the previous snapshot.
type Scheduler struct {
	catalog  Refresher
	cron     *cron.Cron
	interval time.Duration
	logger   *slog.Logger
}

// New creates a new scheduler. An interval of zero disables it.
func New(catalog Refresher, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		catalog:  catalog,
		cron:     cron.New(),
		interval: interval,
		logger:   logger,
	}
}

// Start begins the periodic refresh. No-op when the interval is zero.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.logger.Info("catalog refresh disabled")
		return nil
	}

	_, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.interval), s.refresh)
	if err != nil {
		return fmt.Errorf("scheduling catalog refresh: %w", err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "interval", s.interval)
	return nil
}

// Stop gracefully stops the scheduler, waiting for a running refresh.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.catalog.LoadAll(ctx); err != nil {
		s.logger.Error("catalog refresh failed, keeping previous snapshot", "error", err)
		return
	}
	s.logger.Debug("catalog refreshed")
}
