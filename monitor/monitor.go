package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Crowley723/site-monitor/sites"
)

func New(registry *sites.Registry, prober Prober, alerter Alerter, logger *slog.Logger, options Options) *Monitor {
	m := &Monitor{
		registry: registry,
		engine:   NewStatusEngine(options.DownThreshold, options.SmoothingFactor),
		prober:   prober,
		alerter:  alerter,
		logger:   logger,
		options:  options,
		now:      time.Now,
	}
	m.scheduler = NewScheduler(m.CheckSite, logger)
	return m
}

// Start launches the scheduler and begins probing every site already in the
// registry.
func (m *Monitor) Start() {
	m.scheduler.Run()

	existing := m.registry.List()

	m.logger.Info("starting monitor",
		"sites", len(existing),
		"down_threshold", m.engine.DownThreshold,
		"probe_timeout", m.options.ProbeTimeout.String(),
		"interval_override", m.options.IntervalOverride.String())

	for _, site := range existing {
		m.scheduler.Start(site.ID, m.intervalFor(site))
	}
}

// Stop cancels every scheduled probe and waits for running ones to return.
func (m *Monitor) Stop() {
	m.scheduler.Shutdown()
	m.logger.Info("monitor stopped")
}

// AddSite registers a site and schedules its probe, first run immediately.
func (m *Monitor) AddSite(name, url string, interval time.Duration) sites.Site {
	site := m.registry.Add(name, url, interval)
	m.scheduler.Start(site.ID, m.intervalFor(site))

	m.logger.Info("site added", "site_id", site.ID, "site", site.Name, "url", site.URL)
	return site
}

// RemoveSite cancels the site's task before deleting its record and throttle
// state. Returns false if the site did not exist.
func (m *Monitor) RemoveSite(id int) bool {
	m.scheduler.Stop(id)

	removed := m.registry.Remove(id)
	if removed {
		m.alerter.Forget(id)
		m.logger.Info("site removed", "site_id", id)
	}
	return removed
}

// CheckNow runs an extra probe for the site outside its schedule, or merges
// the request into a probe already in flight.
func (m *Monitor) CheckNow(id int) RunResult {
	return m.scheduler.RunNow(id)
}

func (m *Monitor) Sites() []sites.Site {
	return m.registry.List()
}

func (m *Monitor) Site(id int) (sites.Site, bool) {
	return m.registry.Find(id)
}

// CheckSite probes one site and applies the result. A probe that finishes
// after its task was cancelled, or for a site that no longer exists, is
// discarded.
func (m *Monitor) CheckSite(ctx context.Context, id int) error {
	site, ok := m.registry.Find(id)
	if !ok {
		return nil
	}

	result := m.probe(ctx, site)

	if ctx.Err() != nil {
		m.logger.Debug("discarding probe for cancelled task", "site_id", id)
		return nil
	}

	var alert bool
	updated, ok := m.registry.Update(id, func(current sites.Site) sites.Site {
		next, down := m.engine.Apply(current, result, m.now())
		alert = down
		return next
	})
	if !ok {
		m.logger.Debug("discarding probe for removed site", "site_id", id)
		return nil
	}

	if !result.Success {
		m.logger.Warn("site check failed",
			"site_id", id,
			"site", updated.Name,
			"consecutive_failures", updated.ConsecutiveFailures,
			"error", result.Err)
	} else {
		m.logger.Debug("site check succeeded",
			"site_id", id,
			"site", updated.Name,
			"latency_ms", updated.ResponseTimeMs,
			"uptime", updated.UptimePercentage)
	}

	if alert {
		m.logger.Warn("site is down", "site_id", id, "site", updated.Name, "url", updated.URL)
		m.alerter.SiteDown(updated)
	}

	return nil
}

// probe calls the prober with the configured timeout and converts a panic
// into a failed result.
func (m *Monitor) probe(ctx context.Context, site sites.Site) (result ProbeResult) {
	if m.options.ProbeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.options.ProbeTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("prober panicked", "site_id", site.ID, "panic", r)
			result = ProbeResult{Success: false, Err: fmt.Sprintf("prober panic: %v", r)}
		}
	}()

	return m.prober.Probe(ctx, site.URL)
}

func (m *Monitor) intervalFor(site sites.Site) time.Duration {
	if m.options.IntervalOverride > 0 {
		return m.options.IntervalOverride
	}
	return site.CheckInterval
}
