package pipeline

import (
	"github.com/sells-group/leadgen-cli/internal/model"
)

// buildLead converts a standardized record into a canonical lead. Provenance
// names only the source whose adapter produced the surviving record.
func buildLead(rec model.RawRecord, sourceName string) model.Lead {
	lead := model.Lead{
		CompanyName:    str(rec, "company_name"),
		CompanyDomain:  str(rec, "company_domain"),
		CompanyWebsite: str(rec, "company_website"),
		CompanyPhone:   str(rec, "company_phone"),
		CompanyEmail:   str(rec, "company_email"),

		Street:  str(rec, "street"),
		City:    str(rec, "city"),
		State:   str(rec, "state"),
		Country: str(rec, "country"),
		ZipCode: str(rec, "zip_code"),

		ContactEmail: str(rec, "contact_email"),
		ContactPhone: str(rec, "contact_phone"),

		ReviewCount: integer(rec, "review_count"),

		Source:      sourceName,
		ExternalID:  str(rec, "external_id"),
		DataSources: []string{sourceName},
		SourceURLs:  strs(rec, "source_urls"),

		EmailFound: boolean(rec, "email_found"),
	}

	if r, ok := float(rec, "rating"); ok && r > 0 {
		lead.Rating = &r
	}
	if lat, ok := float(rec, "latitude"); ok {
		lead.Latitude = &lat
	}
	if lng, ok := float(rec, "longitude"); ok {
		lead.Longitude = &lng
	}
	if lead.Email() != "" {
		lead.EmailFound = true
	}

	if raw, ok := rec["raw"].(map[string]any); ok {
		lead.RawData = raw
	} else {
		lead.RawData = rec
	}
	return lead
}

// record field accessors tolerant of provider-shaped value types

func str(rec model.RawRecord, key string) string {
	s, _ := rec[key].(string)
	return s
}

func float(rec model.RawRecord, key string) (float64, bool) {
	switch v := rec[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

func integer(rec model.RawRecord, key string) int {
	switch v := rec[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

func boolean(rec model.RawRecord, key string) bool {
	b, _ := rec[key].(bool)
	return b
}

func strs(rec model.RawRecord, key string) []string {
	switch v := rec[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
