package monitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/Crowley723/site-monitor/sites"
)

// ProbeResult is the outcome of one health check. Ordinary network failure is
// reported through Success=false, never as an error.
type ProbeResult struct {
	Success   bool
	LatencyMs int64
	Err       string
}

// Prober performs a single health check against a site URL.
type Prober interface {
	Probe(ctx context.Context, url string) ProbeResult
}

// ProberFunc adapts a function to the Prober interface.
type ProberFunc func(ctx context.Context, url string) ProbeResult

func (f ProberFunc) Probe(ctx context.Context, url string) ProbeResult {
	return f(ctx, url)
}

// Alerter is told about down-transitions and site removals. SiteDown must not
// block the probe pipeline.
type Alerter interface {
	SiteDown(site sites.Site)
	Forget(siteID int)
}

type Options struct {
	DownThreshold   int
	SmoothingFactor float64
	ProbeTimeout    time.Duration
	// IntervalOverride replaces every site's cadence when positive.
	IntervalOverride time.Duration
}

type Monitor struct {
	registry  *sites.Registry
	scheduler *Scheduler
	engine    StatusEngine
	prober    Prober
	alerter   Alerter
	logger    *slog.Logger
	options   Options
	now       func() time.Time
}
