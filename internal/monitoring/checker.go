package monitoring

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/articflow/agentlink/internal/config"
)

// Checker runs periodic alert checks in the background. An alert type is
// re-sent at most once per cooldown.
type Checker struct {
	collector *Collector
	alerter   *Alerter
	cfg       config.MonitoringConfig
	cooldown  time.Duration
	lastSent  map[AlertType]time.Time
	now       func() time.Time
}

// NewChecker creates a background alert checker.
func NewChecker(collector *Collector, alerter *Alerter, cfg config.MonitoringConfig) *Checker {
	return &Checker{
		collector: collector,
		alerter:   alerter,
		cfg:       cfg,
		cooldown:  time.Hour,
		lastSent:  make(map[AlertType]time.Time),
		now:       time.Now,
	}
}

// Run starts the periodic check loop. It blocks until ctx is cancelled.
func (c *Checker) Run(ctx context.Context) {
	interval := time.Duration(c.cfg.CheckIntervalSecs) * time.Second
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	log := zap.L().With(zap.String("component", "monitoring.checker"))
	log.Info("starting alert checker",
		zap.Duration("interval", interval),
		zap.Int("lookback_hours", c.cfg.LookbackWindowHours),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("alert checker stopped")
			return
		case <-ticker.C:
			c.Check(ctx)
		}
	}
}

// Check collects one snapshot and sends the alerts not in cooldown. It
// returns the number sent.
func (c *Checker) Check(ctx context.Context) int {
	log := zap.L().With(zap.String("component", "monitoring.checker"))

	snap, err := c.collector.Collect(ctx, c.cfg.LookbackWindowHours)
	if err != nil {
		log.Error("monitoring: failed to collect metrics", zap.Error(err))
		return 0
	}

	now := c.now()
	var due []Alert
	for _, a := range c.alerter.Evaluate(snap) {
		if last, ok := c.lastSent[a.Type]; ok && now.Sub(last) < c.cooldown {
			continue
		}
		due = append(due, a)
	}
	if len(due) == 0 {
		log.Debug("monitoring: no alerts due")
		return 0
	}

	sent := c.alerter.SendAlerts(ctx, due)
	if sent > 0 {
		for _, a := range due {
			c.lastSent[a.Type] = now
		}
	}
	log.Info("monitoring: alert check complete",
		zap.Int("alerts_due", len(due)),
		zap.Int("alerts_sent", sent),
	)
	return sent
}
