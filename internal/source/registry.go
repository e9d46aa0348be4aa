package source

import (
	"net/http"
	"strings"
	"time"

	"github.com/sells-group/leadgen-cli/internal/config"
)

// Factory builds an adapter from the process configuration.
type Factory func(cfg *config.Config) Adapter

// aliases maps legacy source names to their canonical names.
var aliases = map[string]string{
	"google_places": "google_maps",
}

// Registry maps canonical source names to adapter factories.
type Registry struct {
	factories map[string]Factory
	order     []string // registration order for deterministic listing
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under its canonical name.
func (r *Registry) Register(name string, f Factory) {
	if _, ok := r.factories[name]; !ok {
		r.order = append(r.order, name)
	}
	r.factories[name] = f
}

// Resolve returns the factory for a source name, resolving aliases. The
// second return is false for unknown sources.
func (r *Registry) Resolve(name string) (Factory, bool) {
	f, ok := r.factories[Canonical(name)]
	return f, ok
}

// Available returns the canonical source names in registration order.
func (r *Registry) Available() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Canonical normalizes a source name and resolves aliases.
func Canonical(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := aliases[name]; ok {
		return canonical
	}
	return name
}

// DefaultSources is the source list used when a job enables none.
func DefaultSources() []string {
	return []string{"google_maps"}
}

// HTTPClient builds the outbound HTTP client shared by adapters, honoring
// the configured request timeout.
func HTTPClient(cfg *config.Config) *http.Client {
	timeout := time.Duration(cfg.Pipeline.RequestTimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
