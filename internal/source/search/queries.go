package search

import "strings"

// Intent-phrase templates aimed at finding prospective clients rather than
// agencies. {location} / {query} placeholders are substituted at build time.
var (
	realEstateQueries = []string{
		`"sell my house" {location}`,
		`"want to sell my home" {location}`,
		`"sell my property" {location}`,
		`"first time home buyer" {location}`,
		`"looking to buy house" {location}`,
		`"buy a house" {location}`,
		`"need to sell house fast" {location}`,
	}

	carQueries = []string{
		`"sell my car" {location}`,
		`"want to sell my car" {location}`,
		`"sell my vehicle" {location}`,
		`"buy used car" {location}`,
		`"looking to buy a car" {location}`,
	}
)

// QueryPhrases returns the concrete search phrases for a vertical. Real
// estate and automotive verticals expand into buyer/seller intent phrases;
// anything else falls back to "{query} {location}".
func QueryPhrases(vertical, query, location string) []string {
	expand := func(templates []string) []string {
		out := make([]string, len(templates))
		for i, t := range templates {
			out[i] = strings.ReplaceAll(t, "{location}", location)
		}
		return out
	}

	switch normalizeVertical(vertical) {
	case "real_estate":
		return expand(realEstateQueries)
	case "cars":
		return expand(carQueries)
	default:
		return []string{strings.TrimSpace(query + " " + location)}
	}
}

func normalizeVertical(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "real_estate", "real estate", "realestate":
		return "real_estate"
	case "cars", "car", "auto", "automotive":
		return "cars"
	default:
		return ""
	}
}

// Intent describes what a search phrase implies about the person behind a
// matching result.
type Intent struct {
	Vertical string `json:"industry"`
	Kind     string `json:"intent"`
	Category string `json:"category,omitempty"`
}

// InferIntent classifies a phrase as buyer or seller intent within a
// vertical. Phrases that match neither stay "unknown".
func InferIntent(vertical, phrase string) Intent {
	out := Intent{Vertical: vertical, Kind: "unknown"}
	if out.Vertical == "" {
		out.Vertical = "general"
	}

	p := strings.ToLower(phrase)
	property := strings.Contains(p, "house") || strings.Contains(p, "home") || strings.Contains(p, "property")
	vehicle := strings.Contains(p, "car") || strings.Contains(p, "vehicle")

	switch {
	case strings.Contains(p, "sell") && property:
		out.Kind, out.Category = "seller", "real_estate"
	case strings.Contains(p, "buy") && (strings.Contains(p, "house") || strings.Contains(p, "home")):
		out.Kind, out.Category = "buyer", "real_estate"
	case strings.Contains(p, "sell") && vehicle:
		out.Kind, out.Category = "seller", "car"
	case strings.Contains(p, "buy") && vehicle:
		out.Kind, out.Category = "buyer", "car"
	}
	return out
}
