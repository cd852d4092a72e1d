package repo

import (
	"context"
	"time"

	"github.com/hamed0406/sitemapchecker/internal/domain"
)

// Delivery is one result received by the sink on a channel
// ("notification" or "critical").
type Delivery struct {
	ID         int64                  `json:"id"`
	Channel    string                 `json:"channel"`
	Result     domain.SiteCheckResult `json:"result"`
	ReceivedAt time.Time              `json:"received_at"`
}

// DeliveryStore is the port the sink writes to; swap in any adapter later.
type DeliveryStore interface {
	// Append assigns ID and ReceivedAt when unset.
	Append(ctx context.Context, d *Delivery) error
	// List returns deliveries oldest first, optionally filtered by channel.
	List(ctx context.Context, channel string) ([]Delivery, error)
	// Latest returns the newest delivery per sitemap URL.
	Latest(ctx context.Context) ([]Delivery, error)
}
