package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hamed0406/sitemapchecker/internal/repo"
)

// Store keeps deliveries for the lifetime of the process.
type Store struct {
	mu         sync.RWMutex
	nextID     int64
	deliveries []repo.Delivery
}

func New() *Store {
	return &Store{deliveries: make([]repo.Delivery, 0, 128)}
}

func (m *Store) Append(ctx context.Context, d *repo.Delivery) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	if d.ID == 0 {
		d.ID = m.nextID
	}
	if d.ReceivedAt.IsZero() {
		d.ReceivedAt = time.Now().UTC()
	}
	m.deliveries = append(m.deliveries, *d)
	return nil
}

func (m *Store) List(ctx context.Context, channel string) ([]repo.Delivery, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]repo.Delivery, 0, len(m.deliveries))
	for _, d := range m.deliveries {
		if channel == "" || d.Channel == channel {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *Store) Latest(ctx context.Context) ([]repo.Delivery, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	latest := make(map[string]repo.Delivery)
	for _, d := range m.deliveries {
		cur, ok := latest[d.Result.SitemapURL]
		if !ok || !d.ReceivedAt.Before(cur.ReceivedAt) {
			latest[d.Result.SitemapURL] = d
		}
	}

	out := make([]repo.Delivery, 0, len(latest))
	for _, d := range latest {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Result.SitemapURL < out[j].Result.SitemapURL })
	return out, nil
}
