// Package contact extracts emails and phone numbers from free text such as
// search result snippets.
package contact

import (
	"regexp"
	"strings"
)

// skipEmailDomains are domains that produce false positives in scraped text.
var skipEmailDomains = map[string]bool{
	"example.com":   true,
	"domain.com":    true,
	"email.com":     true,
	"yoursite.com":  true,
	"sentry.io":     true,
	"wixpress.com":  true,
	"google.com":    true,
	"facebook.com":  true,
	"twitter.com":   true,
	"linkedin.com":  true,
	"youtube.com":   true,
	"instagram.com": true,
}

var (
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	// US formats: (xxx) xxx-xxxx, xxx-xxx-xxxx, xxx.xxx.xxxx, optional +1.
	usPhoneRe = regexp.MustCompile(`(?:\+1[-.\s]?)?\(?[0-9]{3}\)?[-.\s]?[0-9]{3}[-.\s]?[0-9]{4}`)
	// International: +country code followed by digit groups.
	intlPhoneRe = regexp.MustCompile(`\+\d{1,3}[-.\s]?\d{1,4}[-.\s]?\d{1,4}[-.\s]?\d{1,9}`)
	nonDigitRe  = regexp.MustCompile(`\D`)
)

// Info holds the first email and phone found in a piece of text.
type Info struct {
	Email string
	Phone string
}

// ExtractEmails returns valid-looking business emails from text, skipping
// generic and placeholder domains. Order is preserved, duplicates dropped.
func ExtractEmails(text string) []string {
	if text == "" {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, e := range emailRe.FindAllString(text, -1) {
		lower := strings.ToLower(e)
		at := strings.LastIndex(lower, "@")
		domain := lower[at+1:]
		if skipEmailDomains[domain] {
			continue
		}
		if strings.Contains(lower, "@example") ||
			strings.Contains(lower, "noreply") ||
			strings.Contains(lower, "no-reply") ||
			strings.Contains(lower, "email@") {
			continue
		}
		if seen[lower] {
			continue
		}
		seen[lower] = true
		out = append(out, e)
	}
	return out
}

// ExtractPhones returns phone numbers found in text, deduplicated by their
// digit sequence. Matches shorter than 10 digits are dropped.
func ExtractPhones(text string) []string {
	if text == "" {
		return nil
	}
	matches := append(usPhoneRe.FindAllString(text, -1), intlPhoneRe.FindAllString(text, -1)...)
	seen := make(map[string]bool)
	var out []string
	for _, m := range matches {
		digits := nonDigitRe.ReplaceAllString(m, "")
		if len(digits) < 10 || seen[digits] {
			continue
		}
		seen[digits] = true
		out = append(out, m)
	}
	return out
}

// Extract returns the first email and phone found in text.
func Extract(text string) Info {
	var info Info
	if emails := ExtractEmails(text); len(emails) > 0 {
		info.Email = emails[0]
	}
	if phones := ExtractPhones(text); len(phones) > 0 {
		info.Phone = phones[0]
	}
	return info
}
