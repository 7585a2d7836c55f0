package monitor

import (
	"math"
	"time"

	"github.com/Crowley723/site-monitor/sites"
)

const (
	DefaultDownThreshold   = 3
	DefaultSmoothingFactor = 0.05

	lastCheckedLayout = "15:04"
)

// StatusEngine turns probe results into site state. It owns the failure
// streak and the uptime average; nothing else writes those fields.
type StatusEngine struct {
	DownThreshold   int
	SmoothingFactor float64
}

func NewStatusEngine(downThreshold int, smoothingFactor float64) StatusEngine {
	if downThreshold < 1 {
		downThreshold = DefaultDownThreshold
	}
	if smoothingFactor <= 0 || smoothingFactor > 1 {
		smoothingFactor = DefaultSmoothingFactor
	}
	return StatusEngine{
		DownThreshold:   downThreshold,
		SmoothingFactor: smoothingFactor,
	}
}

// Apply returns the updated site and whether this result is a down-transition.
func (e StatusEngine) Apply(site sites.Site, result ProbeResult, now time.Time) (sites.Site, bool) {
	site.LastChecked = now
	site.LastCheckedLabel = now.Format(lastCheckedLayout)

	if result.Success {
		site.Status = sites.StatusUp
		site.ResponseTimeMs = result.LatencyMs
		site.ConsecutiveFailures = 0
		site.UptimePercentage = e.decay(site.UptimePercentage, 100)
		return site, false
	}

	site.ConsecutiveFailures++
	if site.ConsecutiveFailures < e.DownThreshold {
		return site, false
	}

	alert := site.Status != sites.StatusDown
	site.Status = sites.StatusDown
	site.UptimePercentage = e.decay(site.UptimePercentage, 0)

	return site, alert
}

// decay moves current toward sample by the smoothing factor, rounded to two
// decimals and clamped to [0,100].
func (e StatusEngine) decay(current, sample float64) float64 {
	next := current*(1-e.SmoothingFactor) + sample*e.SmoothingFactor
	return clamp(round2(next), 0, 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
