package sites

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type countingPublisher struct {
	count atomic.Int32
}

func (c *countingPublisher) Publish() { c.count.Add(1) }

func TestAddAssignsIDsAndDefaults(t *testing.T) {
	pub := &countingPublisher{}
	r := NewRegistry(pub)

	site := r.Add("X", "https://x.test", 0)

	if site.ID != 1 {
		t.Errorf("Expected id 1, got %d", site.ID)
	}
	if site.Status != StatusPending {
		t.Errorf("Expected status pending, got %s", site.Status)
	}
	if site.UptimePercentage != 100 {
		t.Errorf("Expected uptime 100, got %v", site.UptimePercentage)
	}
	if site.ConsecutiveFailures != 0 || site.ResponseTimeMs != 0 {
		t.Errorf("Expected zeroed counters, got %+v", site)
	}
	if site.CheckInterval != DefaultCheckInterval {
		t.Errorf("Expected default interval, got %v", site.CheckInterval)
	}
	if site.LastCheckedLabel != InitialCheckedLabel {
		t.Errorf("Expected label %q, got %q", InitialCheckedLabel, site.LastCheckedLabel)
	}
	if pub.count.Load() != 1 {
		t.Errorf("Expected 1 publish, got %d", pub.count.Load())
	}
}

func TestAddUsesMaxIDPlusOne(t *testing.T) {
	r := NewRegistry(nil)
	r.Add("a", "https://a.test", 0)
	r.Add("b", "https://b.test", 0)
	r.Add("c", "https://c.test", time.Minute)
	r.Remove(2)

	site := r.Add("d", "https://d.test", 0)
	if site.ID != 4 {
		t.Errorf("Expected id 4, got %d", site.ID)
	}

	r.Remove(4)
	r.Remove(3)
	site = r.Add("e", "https://e.test", 0)
	if site.ID != 2 {
		t.Errorf("Expected id 2 after removing the tail, got %d", site.ID)
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	pub := &countingPublisher{}
	r := NewRegistry(pub)
	site := r.Add("X", "https://x.test", 0)

	if !r.Remove(site.ID) {
		t.Errorf("Expected first remove to report true")
	}
	if r.Remove(site.ID) {
		t.Errorf("Expected second remove to report false")
	}
	if _, ok := r.Find(site.ID); ok {
		t.Errorf("Expected site to be gone")
	}
	if pub.count.Load() != 2 {
		t.Errorf("Expected 2 publishes (add, remove), got %d", pub.count.Load())
	}
}

func TestListReturnsCopy(t *testing.T) {
	r := NewRegistry(nil)
	r.Add("X", "https://x.test", 0)

	list := r.List()
	list[0].Status = StatusDown

	site, _ := r.Find(1)
	if site.Status != StatusPending {
		t.Errorf("Expected registry to be unaffected by caller mutation, got %s", site.Status)
	}
}

func TestUpdateAbsentSite(t *testing.T) {
	pub := &countingPublisher{}
	r := NewRegistry(pub)

	called := false
	_, ok := r.Update(42, func(s Site) Site {
		called = true
		return s
	})

	if ok || called {
		t.Errorf("Expected update of absent site to be a no-op, ok=%v called=%v", ok, called)
	}
	if pub.count.Load() != 0 {
		t.Errorf("Expected no publish, got %d", pub.count.Load())
	}
}

func TestUpdateKeepsID(t *testing.T) {
	r := NewRegistry(nil)
	r.Add("X", "https://x.test", 0)

	updated, ok := r.Update(1, func(s Site) Site {
		s.ID = 99
		s.Status = StatusUp
		return s
	})
	if !ok {
		t.Fatalf("Expected update to succeed")
	}
	if updated.ID != 1 || updated.Status != StatusUp {
		t.Errorf("Expected id 1 and status up, got %+v", updated)
	}
}

func TestConcurrentAdd(t *testing.T) {
	r := NewRegistry(&countingPublisher{})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Add("site", "https://site.test", 0)
		}()
	}
	wg.Wait()

	seen := make(map[int]bool)
	for _, s := range r.List() {
		if seen[s.ID] {
			t.Fatalf("Duplicate id %d", s.ID)
		}
		seen[s.ID] = true
	}
	if len(seen) != 50 {
		t.Errorf("Expected 50 sites, got %d", len(seen))
	}
}
