package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/hamed0406/sitemapchecker/internal/domain"
)

type Notifier interface {
	Send(ctx context.Context, r domain.SiteCheckResult) error
}

const (
	ChannelNotification = "notification"
	ChannelCritical     = "critical"
)

// Dispatcher posts every result to Primary and, when the result lists
// unreachable pages, to Critical as well. Sitemap-level failures
// (UnreachableSitemap, InvalidSitemap) only go to Primary.
type Dispatcher struct {
	Logger   *zap.Logger
	Primary  Notifier
	Critical Notifier
}

func NewDispatcher(logger *zap.Logger, primary, critical Notifier) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{Logger: logger, Primary: primary, Critical: critical}
}

// Dispatch is best-effort: failures are logged and never returned.
func (d *Dispatcher) Dispatch(ctx context.Context, r domain.SiteCheckResult) {
	d.send(ctx, ChannelNotification, d.Primary, r)
	if r.HasUnreachable() {
		d.send(ctx, ChannelCritical, d.Critical, r)
	}
}

func (d *Dispatcher) send(ctx context.Context, channel string, n Notifier, r domain.SiteCheckResult) {
	if n == nil {
		return
	}
	d.Logger.Info("posting_result",
		zap.String("channel", channel),
		zap.String("sitemap_url", r.SitemapURL),
		zap.String("status", string(r.Status)),
	)
	d.Logger.Debug("result_body", zap.Any("result", r))

	if err := n.Send(ctx, r); err != nil {
		d.Logger.Error("post_result_failed",
			zap.String("channel", channel),
			zap.String("sitemap_url", r.SitemapURL),
			zap.Error(err),
		)
	}
}
