package insight

import (
	"context"
	"errors"
	"time"
)

// ErrNoTransactions is returned by Process when the input transaction set is
// empty. It is the only error the pipeline surfaces to callers.
var ErrNoTransactions = errors.New("insight: no transactions provided")

// Tier identifies which generation strategy produced a result.
type Tier string

const (
	// TierExternal means the external generation backend produced the insights.
	TierExternal Tier = "EXTERNAL"
	// TierLocal means the deterministic rule engine (or the static
	// placeholder) produced the insights.
	TierLocal Tier = "LOCAL"
)

// InsightResult is the cached unit of work: the generated insights plus
// provenance metadata. Immutable once stored.
type InsightResult struct {
	ID         string    `json:"id"`
	Insights   []string  `json:"insights"`
	Tier       Tier      `json:"tier"`
	IsFallback bool      `json:"is_fallback"`
	Reason     string    `json:"reason,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Envelope is the response shape returned to API callers.
type Envelope struct {
	Insights     []string `json:"insights"`
	IsSampleData bool     `json:"is_sample_data"`
	Reason       string   `json:"reason,omitempty"`
	RawResponse  bool     `json:"raw_response,omitempty"`
	Formatted    bool     `json:"formatted"`
}

// Envelope converts the result into its API representation.
func (r *InsightResult) Envelope() *Envelope {
	return &Envelope{
		Insights:     r.Insights,
		IsSampleData: r.IsFallback,
		Reason:       r.Reason,
		Formatted:    true,
	}
}

// Store is the fingerprint cache consumed by the orchestrator. Implementations
// must be safe for concurrent use and must treat entries older than their TTL
// as absent. Caching is best-effort: a failing Store never fails a request.
type Store interface {
	// Get returns the cached result for the fingerprint, or ok=false when the
	// entry is absent or expired.
	Get(ctx context.Context, fingerprint string) (*InsightResult, bool, error)
	// Put stores the result under the fingerprint.
	Put(ctx context.Context, fingerprint string, result *InsightResult) error
	// Invalidate drops the entry for the fingerprint, if any.
	Invalidate(ctx context.Context, fingerprint string) error
}

// Generator produces insights from a spending summary, typically by calling an
// external generation backend.
type Generator interface {
	// Available reports whether the backend is reachable. It never returns an
	// error: any failure counts as unavailable.
	Available(ctx context.Context) bool
	// Generate returns 1..5 insight strings, or an error when the backend
	// fails or produces nothing usable.
	Generate(ctx context.Context, summary SpendingSummary) ([]string, error)
	// Endpoint identifies the backend for degradation reasons in logs and
	// envelopes.
	Endpoint() string
}
