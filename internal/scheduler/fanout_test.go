package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hamed0406/sitemapchecker/internal/domain"
)

// --- fakes ---

// delayChecker sleeps per sitemap before answering, panics on request.
type delayChecker struct {
	delays map[string]time.Duration
	panics map[string]bool

	running atomic.Int32
	peak    atomic.Int32
}

func (d *delayChecker) Check(ctx context.Context, sitemapURL string) domain.SiteCheckResult {
	n := d.running.Add(1)
	defer d.running.Add(-1)
	for {
		p := d.peak.Load()
		if n <= p || d.peak.CompareAndSwap(p, n) {
			break
		}
	}

	if d.panics[sitemapURL] {
		panic("checker exploded")
	}
	time.Sleep(d.delays[sitemapURL])
	return domain.Checked(sitemapURL, 1, nil)
}

func collect(ch <-chan domain.SiteCheckResult) []domain.SiteCheckResult {
	var out []domain.SiteCheckResult
	for r := range ch {
		out = append(out, r)
	}
	return out
}

// --- tests ---

func TestCoordinator_CompletionOrder(t *testing.T) {
	chk := &delayChecker{delays: map[string]time.Duration{
		"slow": 150 * time.Millisecond,
		"fast": 0,
	}}
	c := NewCoordinator(zap.NewNop(), chk, 0)

	got := collect(c.Run(context.Background(), []string{"slow", "fast"}))
	if len(got) != 2 {
		t.Fatalf("want 2 results, got %d", len(got))
	}
	if got[0].SitemapURL != "fast" || got[1].SitemapURL != "slow" {
		t.Fatalf("want completion order fast, slow; got %s, %s", got[0].SitemapURL, got[1].SitemapURL)
	}
}

func TestCoordinator_RunsSitemapsConcurrently(t *testing.T) {
	chk := &delayChecker{delays: map[string]time.Duration{
		"a": 100 * time.Millisecond,
		"b": 100 * time.Millisecond,
		"c": 100 * time.Millisecond,
	}}
	c := NewCoordinator(zap.NewNop(), chk, 0)

	start := time.Now()
	got := collect(c.Run(context.Background(), []string{"a", "b", "c"}))
	if len(got) != 3 {
		t.Fatalf("want 3 results, got %d", len(got))
	}
	if el := time.Since(start); el > 250*time.Millisecond {
		t.Fatalf("sitemaps should run in parallel; took %s", el)
	}
	if chk.peak.Load() != 3 {
		t.Fatalf("want 3 tasks running at once, peak=%d", chk.peak.Load())
	}
}

func TestCoordinator_ConcurrencyLimit(t *testing.T) {
	chk := &delayChecker{delays: map[string]time.Duration{
		"a": 30 * time.Millisecond,
		"b": 30 * time.Millisecond,
		"c": 30 * time.Millisecond,
		"d": 30 * time.Millisecond,
	}}
	c := NewCoordinator(zap.NewNop(), chk, 2)

	got := collect(c.Run(context.Background(), []string{"a", "b", "c", "d"}))
	if len(got) != 4 {
		t.Fatalf("want 4 results, got %d", len(got))
	}
	if chk.peak.Load() > 2 {
		t.Fatalf("concurrency limit exceeded, peak=%d", chk.peak.Load())
	}
}

func TestCoordinator_PanickingTaskIsDroppedAndLogged(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	chk := &delayChecker{panics: map[string]bool{"bad": true}}
	c := NewCoordinator(zap.New(core), chk, 0)

	got := collect(c.Run(context.Background(), []string{"good", "bad", "also-good"}))
	if len(got) != 2 {
		t.Fatalf("want 2 results (panic dropped), got %d", len(got))
	}
	for _, r := range got {
		if r.SitemapURL == "bad" {
			t.Fatalf("panicking sitemap must produce no result")
		}
	}
	entries := logs.FilterMessage("sitemap_check_panic").All()
	if len(entries) != 1 || entries[0].ContextMap()["sitemap_url"] != "bad" {
		t.Fatalf("want one panic log for bad, got %+v", entries)
	}
}

func TestCoordinator_NoSitemapsClosesChannel(t *testing.T) {
	c := NewCoordinator(nil, &delayChecker{}, 0)
	select {
	case _, ok := <-c.Run(context.Background(), nil):
		if ok {
			t.Fatalf("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatalf("channel was not closed")
	}
}

func TestCoordinator_CancelledWhileWaitingForSlot(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	chk := checkerFunc(func(ctx context.Context, u string) domain.SiteCheckResult {
		started <- struct{}{}
		<-release
		return domain.Checked(u, 0, nil)
	})
	c := NewCoordinator(zap.NewNop(), chk, 1)

	ctx, cancel := context.WithCancel(context.Background())
	out := c.Run(ctx, []string{"first", "second"})
	<-started
	cancel()
	time.Sleep(20 * time.Millisecond)
	close(release)

	got := collect(out)
	if len(got) != 1 {
		t.Fatalf("want only the running task to finish, got %d results", len(got))
	}
}

type checkerFunc func(ctx context.Context, sitemapURL string) domain.SiteCheckResult

func (f checkerFunc) Check(ctx context.Context, sitemapURL string) domain.SiteCheckResult {
	return f(ctx, sitemapURL)
}
