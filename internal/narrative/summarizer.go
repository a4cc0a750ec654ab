// Package narrative turns structured reconciliation findings into prose.
// The summarization capability is an injected interface so the analytical
// core never depends on a live LLM: the Gemini client is the production
// implementation and a deterministic template renderer serves tests and
// offline runs.
package narrative

import (
	"context"
	"fmt"

	"github.com/jonathan/trial-reconciler/internal/types"
)

// Summarizer accepts structured findings and emits narrative text. The
// caller treats the returned string as opaque and embeds it verbatim.
type Summarizer interface {
	Summarize(ctx context.Context, findings *types.Findings) (string, error)
}

// retrySummarizer retries a bounded number of times before giving up,
// preserving the underlying error.
type retrySummarizer struct {
	inner   Summarizer
	retries int
}

// WithRetry wraps a summarizer with a bounded retry policy: the call is
// attempted once plus up to retries extra times. Negative values mean no
// retries.
func WithRetry(inner Summarizer, retries int) Summarizer {
	if retries < 0 {
		retries = 0
	}
	return &retrySummarizer{inner: inner, retries: retries}
}

func (r *retrySummarizer) Summarize(ctx context.Context, findings *types.Findings) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= r.retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := r.inner.Summarize(ctx, findings)
		if err == nil {
			return text, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("summarization failed after %d attempts: %w", r.retries+1, lastErr)
}
