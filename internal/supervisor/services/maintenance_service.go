// Dish Atlas - Culinary History on an Interactive Globe
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dishatlas

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// MaintenanceTask is one periodic housekeeping job, such as badger value-log
// GC or evicting expired cache entries.
type MaintenanceTask struct {
	Name string
	Run  func(ctx context.Context) error
}

// MaintenanceService runs its tasks on a fixed interval. A failing task is
// logged and retried on the next tick; it never stops the service.
type MaintenanceService struct {
	tasks    []MaintenanceTask
	interval time.Duration
	timeout  time.Duration
	logger   zerolog.Logger
}

// NewMaintenanceService creates the service. A non-positive interval means
// ten minutes.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewMaintenanceService(interval time.Duration, logger zerolog.Logger, tasks ...MaintenanceTask) *MaintenanceService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &MaintenanceService{
		tasks:    tasks,
		interval: interval,
		timeout:  interval / 2,
		logger:   logger.With().Str("service", "maintenance").Logger(),
	}
}

// Serve implements suture.Service.
func (s *MaintenanceService) Serve(ctx context.Context) error {
	s.logger.Info().
		Int("tasks", len(s.tasks)).
		Dur("interval", s.interval).
		Msg("maintenance service starting")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *MaintenanceService) runOnce(ctx context.Context) {
	for _, task := range s.tasks {
		if ctx.Err() != nil {
			return
		}

		taskCtx, cancel := context.WithTimeout(ctx, s.timeout)
		start := time.Now()
		err := task.Run(taskCtx)
		cancel()

		if err != nil {
			s.logger.Warn().Err(err).Str("task", task.Name).Msg("maintenance task failed")
			continue
		}
		s.logger.Debug().Str("task", task.Name).Dur("duration", time.Since(start)).Msg("maintenance task complete")
	}
}

// String names the service in supervisor logs.
func (s *MaintenanceService) String() string {
	return "maintenance"
}
