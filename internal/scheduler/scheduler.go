// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic maintenance jobs such as content backups
// and expired session cleanup.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/charity-cms/internal/storage"
)

// jobTimeout bounds a single job run.
const jobTimeout = 5 * time.Minute

// Job is a named unit of periodic work.
type Job struct {
	Name        string
	Description string
	Schedule    string // cron expression or descriptor such as @hourly
	Run         func(ctx context.Context) error
}

// Scheduler owns the cron instance and the job registry.
type Scheduler struct {
	cron     *cron.Cron
	registry *Registry
	logger   *slog.Logger
}

// New creates a scheduler. Schedule overrides are kept in backend.
func New(backend storage.Backend, logger *slog.Logger) *Scheduler {
	c := cron.New(
		cron.WithParser(parser),
		cron.WithChain(cron.Recover(cronLogger{logger}), cron.SkipIfStillRunning(cronLogger{logger})),
	)
	return &Scheduler{
		cron:     c,
		registry: newRegistry(backend, c, logger),
		logger:   logger,
	}
}

// Registry returns the job registry.
func (s *Scheduler) Registry() *Registry {
	return s.registry
}

// Add registers job with the cron instance.
func (s *Scheduler) Add(job Job) error {
	return s.registry.add(job, s.wrap(job))
}

// wrap turns a job into a cron func with a timeout and logging.
func (s *Scheduler) wrap(job Job) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		if err := s.registry.run(ctx, job.Name); err != nil {
			s.logger.Error("scheduled job failed", "job", job.Name, "error", err)
		}
	}
}

// Start begins running jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
