// Package source defines the adapter contract for external lead data
// providers and the registry that resolves enabled source names.
package source

import (
	"context"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// Query is the input to one adapter fetch.
type Query struct {
	Text       string
	Location   string
	MaxResults int
	// Hints carries optional adapter-specific parameters, e.g. a vertical
	// classification that changes query phrasing.
	Hints map[string]string
}

// Hint returns the named hint or "".
func (q Query) Hint(name string) string {
	if q.Hints == nil {
		return ""
	}
	return q.Hints[name]
}

// Adapter fetches raw records from one external provider. Implementations
// own their provider-specific pagination and must stop at MaxResults or
// provider exhaustion, whichever comes first. Zero matches is an empty
// result, not an error; errors signal transport, auth, or provider-side
// failures only. Adapters are stateless across calls apart from their rate
// limiter's clock.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context, q Query) ([]model.RawRecord, error)
}
