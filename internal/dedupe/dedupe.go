// Package dedupe derives stable identity keys for leads and collapses
// duplicates across sources.
package dedupe

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/standardize"
)

// Key builds the deduplication key for a standardized record. A record with
// a source-native external id keys as "{source}:{external_id}"; otherwise a
// fallback key is derived from normalized name, website host, and street.
func Key(raw model.RawRecord, source string) string {
	if source == "" {
		if s, _ := raw["source"].(string); s != "" {
			source = s
		} else {
			source = "unknown"
		}
	}

	if id := stringField(raw, "external_id"); id != "" {
		return source + ":" + id
	}

	name := normalize(firstString(raw, "company_name", "name"))
	host := standardize.Host(firstString(raw, "company_website", "website"))
	street := normalize(firstString(raw, "street", "address"))
	return fmt.Sprintf("fallback:%s|%s|%s", name, host, street)
}

// Dedupe keeps the first record observed for each key, preserving input
// order. The pipeline runs sources sequentially, so the first source to
// return a business wins.
func Dedupe(records []model.RawRecord, source string) []model.RawRecord {
	set := NewSet()
	var out []model.RawRecord
	for _, r := range records {
		if set.Add(Key(r, source)) {
			out = append(out, r)
		}
	}
	return out
}

// Set is a running dedup set accumulated across all sources in one run.
type Set struct {
	seen map[string]bool
}

// NewSet creates an empty dedup set.
func NewSet() *Set {
	return &Set{seen: make(map[string]bool)}
}

// Add records key and reports whether it was new.
func (s *Set) Add(key string) bool {
	if s.seen[key] {
		return false
	}
	s.seen[key] = true
	return true
}

// Len returns the number of distinct keys observed.
func (s *Set) Len() int {
	return len(s.seen)
}

// normalize lowercases, trims, and NFKC-folds a key component so that
// visually equivalent values collide.
func normalize(v string) string {
	return norm.NFKC.String(strings.ToLower(strings.TrimSpace(v)))
}

func stringField(raw model.RawRecord, key string) string {
	s, _ := raw[key].(string)
	return strings.TrimSpace(s)
}

func firstString(raw model.RawRecord, keys ...string) string {
	for _, k := range keys {
		if s := stringField(raw, k); s != "" {
			return s
		}
	}
	return ""
}
