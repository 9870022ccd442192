package insight

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dvloznov/insight-service/internal/domain"
)

// Service orchestrates the tiered insight pipeline: fingerprint cache →
// availability check → external generation → local rule engine → static
// placeholder. For any valid non-empty input it returns a usable envelope;
// every failure past input validation degrades instead of propagating.
type Service struct {
	cache      Store
	generator  Generator
	rules      *LocalRules
	forceLocal bool
	log        zerolog.Logger
}

// ServiceConfig wires the orchestrator's collaborators. Cache and Generator
// may be nil: a nil cache disables caching, a nil generator pins the service
// to the local tier.
type ServiceConfig struct {
	Cache     Store
	Generator Generator
	// ForceLocal is the deployment-tier predicate: when set, the external
	// backend is never probed or called. This is policy, not failure handling.
	ForceLocal bool
	Logger     zerolog.Logger
}

// NewService creates the insight orchestrator.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		cache:      cfg.Cache,
		generator:  cfg.Generator,
		rules:      NewLocalRules(),
		forceLocal: cfg.ForceLocal,
		log:        cfg.Logger,
	}
}

// Options adjusts a single Process call.
type Options struct {
	// Reload invalidates the cache entry for the request's fingerprint before
	// the lookup, guaranteeing a fresh computation.
	Reload bool
}

// Process runs the pipeline for one transaction set and returns the result
// envelope. The only error it returns is ErrNoTransactions; all downstream
// failures degrade to the local tier.
func (s *Service) Process(ctx context.Context, txs []domain.Transaction, opts Options) (*Envelope, error) {
	if len(txs) == 0 {
		return nil, ErrNoTransactions
	}

	fingerprint := Fingerprint(txs)

	if s.cache != nil {
		if opts.Reload {
			if err := s.cache.Invalidate(ctx, fingerprint); err != nil {
				s.log.Warn().Err(err).Str("fingerprint", fingerprint).Msg("Cache invalidation failed")
			}
		} else if cached, ok, err := s.cache.Get(ctx, fingerprint); err != nil {
			s.log.Warn().Err(err).Str("fingerprint", fingerprint).Msg("Cache lookup failed")
		} else if ok {
			s.log.Debug().Str("fingerprint", fingerprint).Str("tier", string(cached.Tier)).Msg("Cache hit")
			return cached.Envelope(), nil
		}
	}

	summary := Aggregate(txs)
	result := s.compute(ctx, summary)

	// A result computed after the caller gave up must not be cached: a
	// cancellation-induced fallback would otherwise stick for the TTL window.
	if s.cache != nil && ctx.Err() == nil {
		if err := s.cache.Put(ctx, fingerprint, result); err != nil {
			s.log.Warn().Err(err).Str("fingerprint", fingerprint).Msg("Cache store failed")
		}
	}

	return result.Envelope(), nil
}

// compute runs the availability check and the external attempt, falling back
// to the local tier on any failure.
func (s *Service) compute(ctx context.Context, summary SpendingSummary) *InsightResult {
	if s.forceLocal || s.generator == nil {
		// Deliberate policy, not a failure: no reason attached.
		return s.fallback(summary, "")
	}

	if !s.generator.Available(ctx) {
		reason := fmt.Sprintf("backend unreachable at %s", s.generator.Endpoint())
		s.log.Info().Str("endpoint", s.generator.Endpoint()).Msg("Backend unavailable, using local rules")
		return s.fallback(summary, reason)
	}

	insights, err := s.generator.Generate(ctx, summary)
	if err != nil {
		s.log.Warn().Err(err).Msg("External insight generation failed, using local rules")
		return s.fallback(summary, fmt.Sprintf("insight generation failed: %v", err))
	}

	return &InsightResult{
		ID:        uuid.NewString(),
		Insights:  insights,
		Tier:      TierExternal,
		CreatedAt: time.Now(),
	}
}

// fallback produces a local-tier result, substituting the static placeholder
// when the rule engine yields nothing.
func (s *Service) fallback(summary SpendingSummary, reason string) *InsightResult {
	insights := s.rules.Generate(summary)
	if len(insights) == 0 {
		insights = Placeholder()
	}
	return &InsightResult{
		ID:         uuid.NewString(),
		Insights:   insights,
		Tier:       TierLocal,
		IsFallback: true,
		Reason:     reason,
		CreatedAt:  time.Now(),
	}
}
