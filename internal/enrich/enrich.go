// Package enrich augments leads with third-party company data.
package enrich

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/config"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/standardize"
	"github.com/sells-group/leadgen-cli/pkg/clearbit"
)

// Enricher mutates a lead in place with additional company data. A failed
// enrichment must not fail the lead.
type Enricher interface {
	Enrich(ctx context.Context, lead *model.Lead) error
}

// CompanyEnricher looks companies up by domain.
type CompanyEnricher struct {
	client clearbit.Client
}

// New returns a company enricher, or nil when no API key is configured.
func New(cfg *config.Config) *CompanyEnricher {
	if cfg.Clearbit.Key == "" {
		return nil
	}
	return NewWithClient(clearbit.NewClient(cfg.Clearbit.Key,
		clearbit.WithBaseURL(cfg.Clearbit.BaseURL)))
}

// NewWithClient returns a company enricher with an explicit client.
func NewWithClient(client clearbit.Client) *CompanyEnricher {
	return &CompanyEnricher{client: client}
}

// Enrich attaches company firmographics to the lead's raw data and flips
// IsEnriched on success. Lookup failures are recorded on the lead and
// returned, leaving the lead otherwise untouched.
func (e *CompanyEnricher) Enrich(ctx context.Context, lead *model.Lead) error {
	domain := lead.CompanyDomain
	if domain == "" {
		domain = standardize.Host(lead.CompanyWebsite)
	}
	if domain == "" {
		return nil
	}

	company, err := e.client.FindCompany(ctx, domain)
	if err != nil {
		if eris.Is(err, clearbit.ErrNotFound) {
			return nil
		}
		if lead.RawData == nil {
			lead.RawData = model.RawRecord{}
		}
		lead.RawData["enrichment_error"] = err.Error()
		zap.L().Warn("company enrichment failed",
			zap.String("domain", domain), zap.Error(err))
		return eris.Wrap(err, "enrich: company lookup")
	}

	if lead.RawData == nil {
		lead.RawData = model.RawRecord{}
	}
	lead.RawData["clearbit"] = company
	if lead.CompanyName == "" && company.Name != "" {
		lead.CompanyName = company.Name
	}
	lead.IsEnriched = true
	return nil
}
