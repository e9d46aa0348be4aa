// Package sources assembles the default source registry with every
// built-in adapter.
package sources

import (
	"github.com/sells-group/leadgen-cli/internal/source"
	"github.com/sells-group/leadgen-cli/internal/source/directory"
	"github.com/sells-group/leadgen-cli/internal/source/places"
	"github.com/sells-group/leadgen-cli/internal/source/search"
)

// NewRegistry returns a registry with all built-in source adapters.
func NewRegistry() *source.Registry {
	r := source.NewRegistry()
	r.Register(places.Name, places.New)
	r.Register(search.Name, search.New)
	r.Register(directory.Name, directory.New)
	return r
}
