// Package out defines outbound ports implemented by adapters.
package out

import (
	"context"
	"time"

	"mailmaestro/core/domain"
)

// ModelGateway is the outbound port to the external LLM provider. Analyze
// issues a single blocking call and returns the raw provider payload; parsing
// and default substitution happen in the normalizer, never here.
type ModelGateway interface {
	// Analyze sends the prompt for one email and returns the raw response
	// text (free-text variant, possibly fenced) or the pre-shaped function
	// arguments JSON (structured variant). A non-2xx provider status
	// surfaces as an error.
	Analyze(ctx context.Context, prompt string) (string, error)

	// Structured reports whether responses are pre-shaped function-call
	// arguments (no markdown fence handling needed).
	Structured() bool
}

// AnalysisCache caches normalized analysis results keyed by email content
// hash. Purely an API-cost optimization; persistence still runs on every
// analysis pass.
type AnalysisCache interface {
	Get(ctx context.Context, key string) (*domain.AnalysisResult, bool)
	Set(ctx context.Context, key string, res *domain.AnalysisResult, ttl time.Duration)
}
