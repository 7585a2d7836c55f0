package alert

import (
	"sync"
	"time"
)

// Throttle remembers when the last downtime email was delivered per site.
// Only successful sends are recorded. Each Forget bumps the site's
// generation so work queued before a removal cannot record against a later
// site that reuses the id.
type Throttle struct {
	mu   sync.Mutex
	last map[int]time.Time
	gen  map[int]uint64
}

func NewThrottle() *Throttle {
	return &Throttle{last: make(map[int]time.Time), gen: make(map[int]uint64)}
}

// Allow reports whether at least window has passed since the last delivered
// email for siteID at time now. A site never notified is always allowed.
func (t *Throttle) Allow(siteID int, window time.Duration, now time.Time) (bool, time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	last, ok := t.last[siteID]
	if !ok {
		return true, 0
	}

	elapsed := now.Sub(last)
	return elapsed >= window, elapsed
}

func (t *Throttle) Generation(siteID int) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.gen[siteID]
}

// Record stores at as the last delivery for siteID if the site has not been
// forgotten since gen was read. Returns whether it was stored.
func (t *Throttle) Record(siteID int, gen uint64, at time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.gen[siteID] != gen {
		return false
	}
	t.last[siteID] = at
	return true
}

func (t *Throttle) Forget(siteID int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.last, siteID)
	t.gen[siteID]++
}

func (t *Throttle) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.last)
}
