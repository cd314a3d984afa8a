// Package tokens provides token estimation utilities using tiktoken.
package tokens

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"

	. "github.com/curamyn/curamyn/internal/logging"
)

// DefaultEncoding is cl100k_base, used by current OpenAI chat models.
const DefaultEncoding = "cl100k_base"

// Estimator provides token estimation using tiktoken.
type Estimator struct {
	encoding *tiktoken.Tiktoken
}

var (
	globalEstimator     *Estimator
	globalEstimatorOnce sync.Once
)

// Get returns the global token estimator (singleton).
func Get() *Estimator {
	globalEstimatorOnce.Do(func() {
		var err error
		globalEstimator, err = New()
		if err != nil {
			L_warn("tokens: failed to create estimator, using fallback", "error", err)
			globalEstimator = &Estimator{} // fallback to char-based estimation
		}
	})
	return globalEstimator
}

// New creates a new token estimator.
func New() (*Estimator, error) {
	enc, err := tiktoken.GetEncoding(DefaultEncoding)
	if err != nil {
		return nil, err
	}
	return &Estimator{encoding: enc}, nil
}

// Count returns the token count for a string.
// Falls back to chars/4 if tiktoken is unavailable.
func (e *Estimator) Count(text string) int {
	if e == nil || e.encoding == nil {
		return len(text) / 4
	}
	return len(e.encoding.Encode(text, nil, nil))
}

// Truncate returns text cut down to at most maxTokens tokens. Used to cap
// prompt context sent to the analyzers and the summarizer.
func (e *Estimator) Truncate(text string, maxTokens int) string {
	if maxTokens <= 0 || text == "" {
		return text
	}
	if e == nil || e.encoding == nil {
		limit := maxTokens * 4
		if len(text) <= limit {
			return text
		}
		return text[:limit]
	}

	ids := e.encoding.Encode(text, nil, nil)
	if len(ids) <= maxTokens {
		return text
	}
	return e.encoding.Decode(ids[:maxTokens])
}
