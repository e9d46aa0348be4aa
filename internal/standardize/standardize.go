// Package standardize maps provider-shaped raw records onto the canonical
// lead field names.
package standardize

import (
	"net/url"
	"strings"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// fieldMap maps provider field names to canonical field names. A canonical
// field that is already populated is never overwritten.
var fieldMap = map[string]string{
	"name":              "company_name",
	"website":           "company_website",
	"phone":             "company_phone",
	"email":             "company_email",
	"address":           "street",
	"formatted_address": "street",
}

// Host extracts the host from a website URL, lowercased with any leading
// "www." stripped. Returns "" for unparseable or host-less input.
func Host(website string) string {
	if website == "" {
		return ""
	}
	u, err := url.Parse(website)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Host)
	return strings.TrimPrefix(host, "www.")
}

// Standardize returns a copy of raw with canonical field names applied and
// company_domain derived from company_website when absent. It is pure and
// idempotent: the input is not mutated, and standardizing an
// already-standardized record is a no-op.
func Standardize(raw model.RawRecord) model.RawRecord {
	out := make(model.RawRecord, len(raw)+2)
	for k, v := range raw {
		out[k] = v
	}

	for src, target := range fieldMap {
		v, ok := out[src]
		if !ok || v == nil {
			continue
		}
		if existing, ok := out[target]; ok && existing != nil {
			continue
		}
		out[target] = v
	}

	if _, ok := out["company_domain"]; !ok {
		if website, _ := out["company_website"].(string); website != "" {
			if domain := Host(website); domain != "" {
				out["company_domain"] = domain
			}
		}
	}

	return out
}
