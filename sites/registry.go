package sites

import (
	"errors"
	"sync"
	"time"
)

const DefaultCheckInterval = 5 * time.Minute

var ErrNotFound = errors.New("site not found")

// Registry is the in-memory source of truth for monitored sites. Every
// mutation is followed by a Publish on the configured publisher, outside the
// lock, so subscribers may read List from their callback.
type Registry struct {
	mu        sync.RWMutex
	sites     []Site
	publisher Publisher
}

func NewRegistry(publisher Publisher) *Registry {
	return &Registry{
		sites:     []Site{},
		publisher: publisher,
	}
}

// List returns a copy of all sites in insertion order.
func (r *Registry) List() []Site {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Site, len(r.sites))
	copy(result, r.sites)
	return result
}

func (r *Registry) Find(id int) (Site, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return Site{}, false
	}
	return r.sites[i], true
}

// Add appends a new pending site with the next free id. A non-positive
// interval falls back to DefaultCheckInterval.
func (r *Registry) Add(name, url string, interval time.Duration) Site {
	if interval <= 0 {
		interval = DefaultCheckInterval
	}

	r.mu.Lock()
	site := Site{
		ID:                  r.nextID(),
		Name:                name,
		URL:                 url,
		Status:              StatusPending,
		ResponseTimeMs:      0,
		UptimePercentage:    100,
		LastCheckedLabel:    InitialCheckedLabel,
		ConsecutiveFailures: 0,
		CheckInterval:       interval,
	}
	r.sites = append(r.sites, site)
	r.mu.Unlock()

	r.publish()
	return site
}

// Remove deletes the site and reports whether it existed. Removing an absent
// id is a no-op and does not publish.
func (r *Registry) Remove(id int) bool {
	r.mu.Lock()
	i := r.indexOf(id)
	if i < 0 {
		r.mu.Unlock()
		return false
	}
	r.sites = append(r.sites[:i:i], r.sites[i+1:]...)
	r.mu.Unlock()

	r.publish()
	return true
}

// Update replaces the record for id with fn's result. fn runs under the write
// lock and must not call back into the registry. Returns false without
// calling fn when the site no longer exists.
func (r *Registry) Update(id int, fn func(Site) Site) (Site, bool) {
	r.mu.Lock()
	i := r.indexOf(id)
	if i < 0 {
		r.mu.Unlock()
		return Site{}, false
	}
	updated := fn(r.sites[i])
	updated.ID = id
	r.sites[i] = updated
	r.mu.Unlock()

	r.publish()
	return updated, true
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sites)
}

func (r *Registry) nextID() int {
	maxID := 0
	for _, s := range r.sites {
		if s.ID > maxID {
			maxID = s.ID
		}
	}
	return maxID + 1
}

func (r *Registry) indexOf(id int) int {
	for i, s := range r.sites {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func (r *Registry) publish() {
	if r.publisher != nil {
		r.publisher.Publish()
	}
}
