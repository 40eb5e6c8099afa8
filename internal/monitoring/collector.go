// Package monitoring watches report job health and raises alerts.
package monitoring

import (
	"context"
	"sort"
	"time"

	"github.com/rotisserie/eris"

	"github.com/articflow/agentlink/internal/model"
	"github.com/articflow/agentlink/internal/resilience"
	"github.com/articflow/agentlink/internal/store"
)

// scanLimit bounds how many recent jobs a snapshot looks at.
const scanLimit = 10000

// MetricsSnapshot holds a point-in-time view of job health.
type MetricsSnapshot struct {
	// Job metrics (within lookback window).
	JobsTotal     int     `json:"jobs_total"`
	JobsCompleted int     `json:"jobs_completed"`
	JobsFailed    int     `json:"jobs_failed"`
	JobsRunning   int     `json:"jobs_running"`
	JobsStuck     int     `json:"jobs_stuck"`
	FailRate      float64 `json:"fail_rate"`
	AvgDuration   float64 `json:"avg_duration_secs"`

	// Webhooks whose circuit is open, sorted.
	OpenCircuits []string `json:"open_circuits"`

	LookbackHours int       `json:"lookback_hours"`
	CollectedAt   time.Time `json:"collected_at"`
}

// BreakerStates reports the circuit state per upstream. *resilience.Breakers
// implements it.
type BreakerStates interface {
	States() map[string]resilience.CircuitState
}

// Collector gathers metrics from the job store and circuit breakers.
type Collector struct {
	store      store.Store
	breakers   BreakerStates
	stuckAfter time.Duration
	now        func() time.Time
}

// NewCollector creates a metrics collector. breakers may be nil. A running
// job untouched for stuckAfter counts as stuck.
func NewCollector(st store.Store, breakers BreakerStates, stuckAfter time.Duration) *Collector {
	if stuckAfter <= 0 {
		stuckAfter = 15 * time.Minute
	}
	return &Collector{store: st, breakers: breakers, stuckAfter: stuckAfter, now: time.Now}
}

// Collect gathers a snapshot over the given lookback window.
func (c *Collector) Collect(ctx context.Context, lookbackHours int) (*MetricsSnapshot, error) {
	now := c.now().UTC()
	snap := &MetricsSnapshot{
		OpenCircuits:  []string{},
		LookbackHours: lookbackHours,
		CollectedAt:   now,
	}
	cutoff := now.Add(-time.Duration(lookbackHours) * time.Hour)

	list, err := c.store.ListJobs(ctx, model.JobFilter{Limit: scanLimit})
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: list jobs")
	}

	var finishedFor time.Duration
	for _, j := range list {
		if j.CreatedAt.Before(cutoff) {
			continue
		}
		snap.JobsTotal++
		switch j.Status {
		case model.JobStatusCompleted:
			snap.JobsCompleted++
			finishedFor += j.UpdatedAt.Sub(j.CreatedAt)
		case model.JobStatusFailed:
			snap.JobsFailed++
		default:
			snap.JobsRunning++
			if now.Sub(j.UpdatedAt) > c.stuckAfter {
				snap.JobsStuck++
			}
		}
	}

	if finished := snap.JobsCompleted + snap.JobsFailed; finished > 0 {
		snap.FailRate = float64(snap.JobsFailed) / float64(finished)
	}
	if snap.JobsCompleted > 0 {
		snap.AvgDuration = finishedFor.Seconds() / float64(snap.JobsCompleted)
	}

	if c.breakers != nil {
		for name, state := range c.breakers.States() {
			if state == resilience.CircuitOpen {
				snap.OpenCircuits = append(snap.OpenCircuits, name)
			}
		}
		sort.Strings(snap.OpenCircuits)
	}

	return snap, nil
}
