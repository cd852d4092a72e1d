package probe

import "context"

// CheckResult is the outcome of a single page probe.
//
// Fields:
// - StatusCode: HTTP status code when a response arrived; 0 for transport errors.
// - Reason: "http_status" when a response arrived, otherwise the transport
//   failure class from classifyError.
type CheckResult struct {
	Success    bool
	StatusCode int
	LatencyMS  float64
	Reason     string
	Message    string
}

// Checker probes one page URL.
type Checker interface {
	Check(ctx context.Context, target string) CheckResult
}
