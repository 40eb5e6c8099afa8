package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/articflow/agentlink/internal/store"
)

// DefaultPurgeSchedule runs the purge every ten minutes.
const DefaultPurgeSchedule = "@every 10m"

// Purger deletes finished jobs once they are older than the TTL.
type Purger struct {
	store store.Store
	ttl   time.Duration
	cron  *cron.Cron
	now   func() time.Time
}

// NewPurger creates a Purger. It does nothing until Start.
func NewPurger(st store.Store, ttl time.Duration) *Purger {
	return &Purger{store: st, ttl: ttl, cron: cron.New(), now: time.Now}
}

// Purge deletes finished jobs last updated more than ttl ago.
func (p *Purger) Purge(ctx context.Context) (int, error) {
	n, err := p.store.DeleteJobsBefore(ctx, p.now().Add(-p.ttl))
	if err != nil {
		return 0, eris.Wrap(err, "jobs: purge")
	}
	return n, nil
}

// Start schedules Purge on spec, a standard cron expression or descriptor.
func (p *Purger) Start(spec string) error {
	if spec == "" {
		spec = DefaultPurgeSchedule
	}
	_, err := p.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		n, err := p.Purge(ctx)
		if err != nil {
			zap.L().Warn("jobs: scheduled purge failed", zap.Error(err))
			return
		}
		if n > 0 {
			zap.L().Info("jobs: purged expired jobs", zap.Int("deleted", n))
		}
	})
	if err != nil {
		return eris.Wrapf(err, "jobs: invalid purge schedule %q", spec)
	}
	p.cron.Start()
	zap.L().Info("jobs: purge scheduled", zap.String("schedule", spec), zap.Duration("ttl", p.ttl))
	return nil
}

// Stop halts the schedule and waits for a running purge to finish.
func (p *Purger) Stop() {
	<-p.cron.Stop().Done()
}
