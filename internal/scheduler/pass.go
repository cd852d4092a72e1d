package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/sitemapchecker/internal/domain"
)

// Dispatcher delivers one result; delivery failures stay inside it.
type Dispatcher interface {
	Dispatch(ctx context.Context, r domain.SiteCheckResult)
}

// Pass is a single run over all configured sitemaps.
type Pass struct {
	Logger      *zap.Logger
	Coordinator *Coordinator
	Dispatcher  Dispatcher
}

func NewPass(logger *zap.Logger, coord *Coordinator, d Dispatcher) *Pass {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pass{Logger: logger, Coordinator: coord, Dispatcher: d}
}

// Run checks every sitemap, dispatching each result as soon as it arrives,
// and returns the results in the order they completed.
func (p *Pass) Run(ctx context.Context, sitemaps []string) []domain.SiteCheckResult {
	start := time.Now()
	p.Logger.Info("pass_started", zap.Int("sitemaps", len(sitemaps)))

	results := make([]domain.SiteCheckResult, 0, len(sitemaps))
	for r := range p.Coordinator.Run(ctx, sitemaps) {
		p.Dispatcher.Dispatch(ctx, r)
		results = append(results, r)
	}

	p.Logger.Info("pass_finished",
		zap.Int("results", len(results)),
		zap.Int("dropped", len(sitemaps)-len(results)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return results
}
