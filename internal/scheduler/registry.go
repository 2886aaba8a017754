/*
Copyright 2025 The sipstuff-k8s-operator authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package scheduler fires recurring calls on cron schedules. Schedules live
// in memory for the lifetime of the process; every firing goes through the
// same build and submit path as POST /call.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	_ "time/tzdata"

	"github.com/go-logr/logr"
	"github.com/robfig/cron/v3"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/utils/clock"

	"github.com/vroomfondel/sipstuff-k8s-operator/api/v1alpha1"
	"github.com/vroomfondel/sipstuff-k8s-operator/internal/builder"
	"github.com/vroomfondel/sipstuff-k8s-operator/internal/config"
	"github.com/vroomfondel/sipstuff-k8s-operator/internal/metrics"
	"github.com/vroomfondel/sipstuff-k8s-operator/internal/orchestrator"
	"github.com/vroomfondel/sipstuff-k8s-operator/pkg/common"
)

var (
	ErrScheduleExists   = errors.New("schedule already exists")
	ErrScheduleNotFound = errors.New("schedule not found")
)

// idleWait bounds how long the run loop sleeps when no schedule is due.
const idleWait = time.Minute

type entry struct {
	spec        v1alpha1.ScheduledCall
	schedule    cron.Schedule
	suspend     bool
	nextRun     time.Time
	lastRun     *time.Time
	lastRunName string
}

// Registry holds the named schedules and drives their firings.
type Registry struct {
	cfg     *config.OperatorConfig
	manager *orchestrator.Manager
	metrics *metrics.CallJobMetrics
	clock   clock.Clock
	logger  logr.Logger

	mu      sync.Mutex
	entries map[string]*entry
	wake    chan struct{}
}

func NewRegistry(
	cfg *config.OperatorConfig,
	manager *orchestrator.Manager,
	callMetrics *metrics.CallJobMetrics,
	clk clock.Clock,
	logger logr.Logger,
) *Registry {
	return &Registry{
		cfg:     cfg,
		manager: manager,
		metrics: callMetrics,
		clock:   clk,
		logger:  logger,
		entries: make(map[string]*entry),
		wake:    make(chan struct{}, 1),
	}
}

// Add registers a schedule. The call template is defaulted and validated
// here so a broken schedule never reaches the builder at firing time.
func (r *Registry) Add(sc v1alpha1.ScheduledCall) (*v1alpha1.ScheduledCallStatus, error) {
	v1alpha1.SetScheduledCallDefaults(&sc)
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	schedule, err := parseSchedule(sc.Schedule, sc.TimeZone)
	if err != nil {
		return nil, err
	}
	if _, err := builder.Build(&sc.Template, r.cfg); err != nil {
		return nil, fmt.Errorf("template: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[sc.Name]; ok {
		return nil, fmt.Errorf("%w: %q", ErrScheduleExists, sc.Name)
	}

	e := &entry{
		spec:     sc,
		schedule: schedule,
		suspend:  sc.Suspend != nil && *sc.Suspend,
		nextRun:  schedule.Next(r.clock.Now()),
	}
	r.entries[sc.Name] = e
	r.poke()

	r.logger.Info("Registered schedule", "name", sc.Name, "schedule", sc.Schedule, "suspend", e.suspend, "nextRun", e.nextRun)
	status := e.status()
	return &status, nil
}

// Get returns the status of one schedule.
func (r *Registry) Get(name string) (*v1alpha1.ScheduledCallStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrScheduleNotFound, name)
	}
	status := e.status()
	return &status, nil
}

// List returns all schedule statuses ordered by name.
func (r *Registry) List() []v1alpha1.ScheduledCallStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	statuses := make([]v1alpha1.ScheduledCallStatus, 0, len(r.entries))
	for _, e := range r.entries {
		statuses = append(statuses, e.status())
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Name < statuses[j].Name })
	return statuses
}

// Delete removes a schedule. Jobs it already fired are untouched.
func (r *Registry) Delete(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[name]; !ok {
		return fmt.Errorf("%w: %q", ErrScheduleNotFound, name)
	}
	delete(r.entries, name)
	r.poke()
	r.logger.Info("Removed schedule", "name", name)
	return nil
}

// Start runs the firing loop until the context is canceled.
func (r *Registry) Start(ctx context.Context) {
	go r.run(ctx)
}

func (r *Registry) run(ctx context.Context) {
	for {
		timer := r.clock.NewTimer(r.untilNext())
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C():
		case <-r.wake:
			timer.Stop()
		}
		r.runDue(ctx, r.clock.Now())
	}
}

// runDue fires every schedule whose next run is not after now and advances
// the bookkeeping. Suspended schedules are advanced without firing.
func (r *Registry) runDue(ctx context.Context, now time.Time) {
	for _, e := range r.due(now) {
		name, err := r.fire(ctx, e.spec)

		r.mu.Lock()
		current, ok := r.entries[e.spec.Name]
		if ok {
			fired := now
			current.lastRun = &fired
			current.lastRunName = name
			current.nextRun = current.schedule.Next(now)
		}
		r.mu.Unlock()

		if err != nil {
			r.logger.Error(err, "Failed to fire schedule", "name", e.spec.Name)
		}
	}
}

// due collects the entries to fire and silently rolls suspended ones
// forward.
func (r *Registry) due(now time.Time) []*entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	var fire []*entry
	for _, e := range r.entries {
		if e.nextRun.After(now) {
			continue
		}
		if e.suspend {
			e.nextRun = e.schedule.Next(now)
			continue
		}
		fire = append(fire, e)
	}
	sort.Slice(fire, func(i, j int) bool { return fire[i].spec.Name < fire[j].spec.Name })
	return fire
}

func (r *Registry) fire(ctx context.Context, sc v1alpha1.ScheduledCall) (string, error) {
	job, err := builder.Build(&sc.Template, r.cfg)
	if err != nil {
		return "", fmt.Errorf("failed to build job for schedule %q: %w", sc.Name, err)
	}
	job.Labels[common.LabelScheduleName] = sc.Name
	job.Spec.Template.Labels[common.LabelScheduleName] = sc.Name

	created, err := r.manager.Submit(ctx, job)
	if err != nil {
		r.metrics.HandleFailedSubmission()
		return "", err
	}
	r.metrics.HandleScheduled()
	r.logger.Info("Schedule fired", "name", sc.Name, "job", created.Name)
	return created.Name, nil
}

func (r *Registry) untilNext() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	wait := idleWait
	now := r.clock.Now()
	for _, e := range r.entries {
		d := e.nextRun.Sub(now)
		if d < 0 {
			d = 0
		}
		if d < wait {
			wait = d
		}
	}
	return wait
}

func (r *Registry) poke() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

func (e *entry) status() v1alpha1.ScheduledCallStatus {
	status := v1alpha1.ScheduledCallStatus{
		Name:        e.spec.Name,
		Schedule:    e.spec.Schedule,
		TimeZone:    e.spec.TimeZone,
		Suspend:     e.suspend,
		LastRunName: e.lastRunName,
	}
	if !e.nextRun.IsZero() {
		next := metav1.NewTime(e.nextRun)
		status.NextRun = &next
	}
	if e.lastRun != nil {
		last := metav1.NewTime(*e.lastRun)
		status.LastRun = &last
	}
	return status
}

// parseSchedule resolves the effective cron schedule. An explicit timezone
// field is validated; a CRON_TZ or TZ prefix inside the expression wins over
// the field.
func parseSchedule(schedule, timezone string) (cron.Schedule, error) {
	if timezone == "" {
		timezone = "Local"
	} else if _, err := time.LoadLocation(timezone); err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}

	spec := schedule
	if !strings.HasPrefix(spec, "CRON_TZ=") && !strings.HasPrefix(spec, "TZ=") {
		spec = fmt.Sprintf("CRON_TZ=%s %s", timezone, spec)
	}

	parsed, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}
	return parsed, nil
}
