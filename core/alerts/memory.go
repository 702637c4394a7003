package alerts

import (
	"context"
	"sync"
	"time"
)

// MemoryDeduper keeps claims in process memory.
type MemoryDeduper struct {
	mu     sync.Mutex
	claims map[string]time.Time
	now    func() time.Time
}

// NewMemoryDeduper returns an empty MemoryDeduper using the wall clock.
func NewMemoryDeduper() *MemoryDeduper {
	return &MemoryDeduper{claims: map[string]time.Time{}, now: time.Now}
}

func (d *MemoryDeduper) Claim(_ context.Context, key string, ttl time.Duration) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := d.now()
	if exp, ok := d.claims[key]; ok && now.Before(exp) {
		return false, nil
	}
	d.claims[key] = now.Add(ttl)
	for k, exp := range d.claims {
		if !now.Before(exp) {
			delete(d.claims, k)
		}
	}
	return true, nil
}

// MemoryPublisher stores published alerts. It backs the "memory" publisher
// and tests.
type MemoryPublisher struct {
	mu     sync.Mutex
	alerts []Alert
}

func (p *MemoryPublisher) Publish(_ context.Context, a Alert) error {
	p.mu.Lock()
	p.alerts = append(p.alerts, a)
	p.mu.Unlock()
	return nil
}

// Alerts returns a copy of the published alerts.
func (p *MemoryPublisher) Alerts() []Alert {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Alert(nil), p.alerts...)
}

func init() {
	_ = RegisterPublisher("memory", func(map[string]any) (Publisher, error) {
		return &MemoryPublisher{}, nil
	})
}
