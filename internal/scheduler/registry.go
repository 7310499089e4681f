// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/charity-cms/internal/storage"
)

// OverridesKey is the storage key holding schedule overrides.
const OverridesKey = "scheduler_overrides"

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ErrUnknownJob is returned for names that were never registered.
var ErrUnknownJob = errors.New("unknown job")

// registeredJob holds the state of one job.
type registeredJob struct {
	job      Job
	schedule string // effective schedule (override or default)
	entryID  cron.EntryID
	fn       func()
	lastErr  error
	lastRun  time.Time
	mu       sync.Mutex // serializes runs of this job
}

// JobInfo is the public view of a registered job.
type JobInfo struct {
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	DefaultSchedule string    `json:"default_schedule"`
	Schedule        string    `json:"schedule"`
	IsOverridden    bool      `json:"is_overridden"`
	LastRun         time.Time `json:"last_run"`
	LastError       string    `json:"last_error,omitempty"`
	NextRun         time.Time `json:"next_run"`
}

// Registry tracks jobs and persists schedule overrides.
type Registry struct {
	backend storage.Backend
	cron    *cron.Cron
	logger  *slog.Logger
	mu      sync.RWMutex
	jobs    map[string]*registeredJob
}

func newRegistry(backend storage.Backend, c *cron.Cron, logger *slog.Logger) *Registry {
	return &Registry{
		backend: backend,
		cron:    c,
		logger:  logger,
		jobs:    make(map[string]*registeredJob),
	}
}

// ValidateSchedule reports whether spec is a usable cron expression.
func ValidateSchedule(spec string) error {
	if _, err := parser.Parse(spec); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}
	return nil
}

func (r *Registry) loadOverrides(ctx context.Context) map[string]string {
	overrides := map[string]string{}
	if r.backend == nil {
		return overrides
	}
	data, err := r.backend.Get(ctx, OverridesKey)
	if errors.Is(err, storage.ErrNotFound) {
		return overrides
	}
	if err != nil {
		r.logger.Warn("failed to read schedule overrides", "error", err)
		return overrides
	}
	if err := json.Unmarshal(data, &overrides); err != nil {
		r.logger.Warn("ignoring corrupt schedule overrides", "error", err)
		return map[string]string{}
	}
	return overrides
}

// saveOverride sets or, with an empty schedule, clears the override for name.
func (r *Registry) saveOverride(name, schedule string) error {
	if r.backend == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	overrides := r.loadOverrides(ctx)
	if schedule == "" {
		delete(overrides, name)
	} else {
		overrides[name] = schedule
	}
	data, err := json.Marshal(overrides)
	if err != nil {
		return err
	}
	return r.backend.Put(ctx, OverridesKey, data)
}

// add registers job under its effective schedule.
func (r *Registry) add(job Job, fn func()) error {
	if job.Name == "" || job.Run == nil {
		return errors.New("job needs a name and a run func")
	}
	if err := ValidateSchedule(job.Schedule); err != nil {
		return fmt.Errorf("job %s: %w", job.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobs[job.Name]; exists {
		return fmt.Errorf("job %s already registered", job.Name)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	schedule := job.Schedule
	if override, ok := r.loadOverrides(ctx)[job.Name]; ok && ValidateSchedule(override) == nil {
		schedule = override
	}

	id, err := r.cron.AddFunc(schedule, fn)
	if err != nil {
		return fmt.Errorf("scheduling %s: %w", job.Name, err)
	}
	r.jobs[job.Name] = &registeredJob{job: job, schedule: schedule, entryID: id, fn: fn}
	r.logger.Debug("registered scheduled job", "name", job.Name, "schedule", schedule)
	return nil
}

func (r *Registry) get(name string) (*registeredJob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rj, ok := r.jobs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	return rj, nil
}

// run executes a job and records the result.
func (r *Registry) run(ctx context.Context, name string) error {
	rj, err := r.get(name)
	if err != nil {
		return err
	}
	rj.mu.Lock()
	defer rj.mu.Unlock()

	err = rj.job.Run(ctx)

	r.mu.Lock()
	rj.lastRun = time.Now()
	rj.lastErr = err
	r.mu.Unlock()
	return err
}

// List returns all registered jobs sorted by name.
func (r *Registry) List() []JobInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]JobInfo, 0, len(r.jobs))
	for _, rj := range r.jobs {
		entry := r.cron.Entry(rj.entryID)
		info := JobInfo{
			Name:            rj.job.Name,
			Description:     rj.job.Description,
			DefaultSchedule: rj.job.Schedule,
			Schedule:        rj.schedule,
			IsOverridden:    rj.schedule != rj.job.Schedule,
			LastRun:         rj.lastRun,
			NextRun:         entry.Next,
		}
		if rj.lastErr != nil {
			info.LastError = rj.lastErr.Error()
		}
		result = append(result, info)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// TriggerNow runs a job immediately and returns its error.
func (r *Registry) TriggerNow(ctx context.Context, name string) error {
	r.logger.Info("manually triggering job", "name", name)
	return r.run(ctx, name)
}

// UpdateSchedule moves a job to a new schedule and persists the override.
func (r *Registry) UpdateSchedule(name, schedule string) error {
	if err := ValidateSchedule(schedule); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rj, ok := r.jobs[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	if err := r.reschedule(rj, schedule); err != nil {
		return err
	}

	override := schedule
	if schedule == rj.job.Schedule {
		override = ""
	}
	if err := r.saveOverride(name, override); err != nil {
		r.logger.Error("failed to persist schedule override", "error", err, "name", name)
	}
	r.logger.Info("updated job schedule", "name", name, "schedule", schedule)
	return nil
}

// ResetSchedule removes the override and restores the default schedule.
func (r *Registry) ResetSchedule(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rj, ok := r.jobs[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	if rj.schedule == rj.job.Schedule {
		return nil
	}
	if err := r.reschedule(rj, rj.job.Schedule); err != nil {
		return err
	}
	if err := r.saveOverride(name, ""); err != nil {
		r.logger.Error("failed to remove schedule override", "error", err, "name", name)
	}
	r.logger.Info("reset job schedule to default", "name", name, "schedule", rj.job.Schedule)
	return nil
}

// reschedule swaps the cron entry of rj. The caller holds r.mu.
func (r *Registry) reschedule(rj *registeredJob, schedule string) error {
	r.cron.Remove(rj.entryID)
	id, err := r.cron.AddFunc(schedule, rj.fn)
	if err != nil {
		fallbackID, fallbackErr := r.cron.AddFunc(rj.schedule, rj.fn)
		if fallbackErr != nil {
			return fmt.Errorf("critical: failed to restore schedule after update failure: %w (original: %w)", fallbackErr, err)
		}
		rj.entryID = fallbackID
		return fmt.Errorf("failed to apply new schedule: %w", err)
	}
	rj.entryID = id
	rj.schedule = schedule
	return nil
}

// Unregister stops and forgets a job. Its override is kept.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rj, ok := r.jobs[name]
	if !ok {
		return
	}
	r.cron.Remove(rj.entryID)
	delete(r.jobs, name)
	r.logger.Debug("unregistered scheduled job", "name", name)
}
