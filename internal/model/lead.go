// Package model defines the job and lead types shared across the pipeline.
package model

import "time"

// RawRecord is an untyped, provider-shaped record produced by a single
// source adapter call.
type RawRecord = map[string]any

// Lead is the canonical, scored unit of pipeline output. One job owns
// zero-or-many leads; each run replaces the job's lead set wholesale.
type Lead struct {
	ID    string `json:"id"`
	JobID string `json:"job_id"`

	CompanyName    string `json:"company_name"`
	CompanyDomain  string `json:"company_domain,omitempty"`
	CompanyWebsite string `json:"company_website,omitempty"`
	CompanyPhone   string `json:"company_phone,omitempty"`
	CompanyEmail   string `json:"company_email,omitempty"`

	Street    string   `json:"street,omitempty"`
	City      string   `json:"city,omitempty"`
	State     string   `json:"state,omitempty"`
	Country   string   `json:"country,omitempty"`
	ZipCode   string   `json:"zip_code,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	ContactFirstName string `json:"contact_first_name,omitempty"`
	ContactLastName  string `json:"contact_last_name,omitempty"`
	ContactTitle     string `json:"contact_title,omitempty"`
	ContactEmail     string `json:"contact_email,omitempty"`
	ContactPhone     string `json:"contact_phone,omitempty"`
	ContactLinkedIn  string `json:"contact_linkedin,omitempty"`

	Rating      *float64 `json:"rating,omitempty"`
	ReviewCount int      `json:"review_count,omitempty"`

	LeadScore   int `json:"lead_score"`
	IntentScore int `json:"intent_score"`

	Source      string   `json:"source"`
	ExternalID  string   `json:"external_id,omitempty"`
	DataSources []string `json:"data_sources,omitempty"`
	SourceURLs  []string `json:"source_urls,omitempty"`

	EmailFound    bool `json:"email_found"`
	EmailVerified bool `json:"email_verified"`
	IsEnriched    bool `json:"is_enriched"`

	RawData RawRecord `json:"raw_data,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Email returns the best known email for the lead, preferring the contact
// email over the company email.
func (l *Lead) Email() string {
	if l.ContactEmail != "" {
		return l.ContactEmail
	}
	return l.CompanyEmail
}
