package scheduler

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/hamed0406/sitemapchecker/internal/domain"
)

// SitemapChecker produces exactly one result per sitemap URL.
type SitemapChecker interface {
	Check(ctx context.Context, sitemapURL string) domain.SiteCheckResult
}

// Coordinator runs one checker task per sitemap and hands back results as
// they complete.
type Coordinator struct {
	Logger      *zap.Logger
	Checker     SitemapChecker
	Concurrency int // 0 = one goroutine per sitemap, all at once
}

func NewCoordinator(logger *zap.Logger, checker SitemapChecker, concurrency int) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if concurrency < 0 {
		concurrency = 0
	}
	return &Coordinator{
		Logger:      logger,
		Checker:     checker,
		Concurrency: concurrency,
	}
}

// Run starts every task and returns a channel that yields results in
// completion order. The channel is buffered for every sitemap, so tasks never
// wait on the reader, and it is closed once all tasks are done.
//
// A task that panics is logged and produces no result; its sitemap is
// treated as if it had not been configured.
func (c *Coordinator) Run(ctx context.Context, sitemaps []string) <-chan domain.SiteCheckResult {
	out := make(chan domain.SiteCheckResult, len(sitemaps))

	limit := c.Concurrency
	if limit == 0 || limit > len(sitemaps) {
		limit = len(sitemaps)
	}
	sem := make(chan struct{}, max(limit, 1))
	var wg sync.WaitGroup

	for _, sm := range sitemaps {
		wg.Add(1)
		go func(sitemapURL string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				c.Logger.Warn("sitemap_check_cancelled",
					zap.String("sitemap_url", sitemapURL),
					zap.Error(ctx.Err()),
				)
				return
			}
			defer func() { <-sem }()

			res, err := c.checkOne(ctx, sitemapURL)
			if err != nil {
				c.Logger.Error("sitemap_check_panic",
					zap.String("sitemap_url", sitemapURL),
					zap.Error(err),
				)
				return
			}
			out <- res
		}(sm)
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

func (c *Coordinator) checkOne(ctx context.Context, sitemapURL string) (res domain.SiteCheckResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("checker panicked: %v", r)
		}
	}()
	return c.Checker.Check(ctx, sitemapURL), nil
}
