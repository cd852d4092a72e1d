package probe

import (
	"context"
	"io"
	"net/http"
	"time"
)

// DefaultUserAgent is sent when HTTPChecker.UserAgent is empty.
const DefaultUserAgent = "sitemapchecker/1.0"

// drainLimit caps how much of a probed body is read before closing so the
// connection can be reused.
const drainLimit = 64 << 10

type HTTPChecker struct {
	Client    *http.Client
	UserAgent string
}

func NewHTTPChecker(timeout time.Duration, userAgent string) *HTTPChecker {
	return &HTTPChecker{
		Client:    &http.Client{Timeout: timeout},
		UserAgent: userAgent,
	}
}

// Check issues a single GET. Only a 200 response counts as reachable.
func (h *HTTPChecker) Check(ctx context.Context, target string) CheckResult {
	start := time.Now()
	req, err := NewRequest(ctx, http.MethodGet, target, h.UserAgent)
	if err != nil {
		return CheckResult{Success: false, Reason: ReasonRequest, Message: err.Error()}
	}

	resp, err := h.Client.Do(req)
	latency := time.Since(start).Seconds() * 1000 // ms
	if err != nil {
		return CheckResult{Success: false, Reason: classifyError(err), Message: err.Error(), LatencyMS: latency}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, drainLimit))

	return CheckResult{
		Success:    resp.StatusCode == http.StatusOK,
		StatusCode: resp.StatusCode,
		LatencyMS:  latency,
		Reason:     ReasonHTTPStatus,
		Message:    resp.Status,
	}
}

// NewRequest builds an unauthenticated request carrying the checker's User-Agent.
func NewRequest(ctx context.Context, method, target, userAgent string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, err
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	req.Header.Set("User-Agent", userAgent)
	return req, nil
}
