package source

import (
	"strings"

	"github.com/sells-group/leadgen-cli/internal/config"
)

// MissingCredentials checks whether the requested sources have the minimum
// configuration they need and returns an actionable error message when none
// of them are usable. An empty return means at least one source can run.
// No network call is made; this is the precondition gate that fails a job
// before any fetch.
func MissingCredentials(sources []string, cfg *config.Config) string {
	placesOK := strings.TrimSpace(cfg.Places.Key) != ""
	searchOK := strings.TrimSpace(cfg.CustomSearch.Key) != "" &&
		strings.TrimSpace(cfg.CustomSearch.EngineID) != ""

	has := func(name string) bool {
		for _, s := range sources {
			if Canonical(s) == name {
				return true
			}
		}
		return false
	}

	if has("google_maps") {
		if placesOK {
			return ""
		}
		return "Google Places API key is missing. Set LEADGEN_PLACES_KEY or places.key in config.yaml. " +
			"Get a key at https://console.cloud.google.com/apis/credentials"
	}

	if has("google_search") && !searchOK {
		return "Google Custom Search keys missing. Set LEADGEN_CUSTOM_SEARCH_KEY and LEADGEN_CUSTOM_SEARCH_ENGINE_ID"
	}

	if has("yellow_pages") || has("google_search") {
		return ""
	}

	return "No valid data source configured. Enable google_maps, google_search, or yellow_pages"
}
