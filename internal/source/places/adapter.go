// Package places implements the google_maps source adapter on top of the
// Google Places API.
package places

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/config"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/source"
	"github.com/sells-group/leadgen-cli/pkg/places"
)

// Name is the canonical source name.
const Name = "google_maps"

// pageTokenDelay is how long Places next-page tokens take to become valid
// after being issued.
const pageTokenDelay = 2100 * time.Millisecond

// Adapter fetches business records via Places Text Search and Place
// Details.
type Adapter struct {
	client  places.Client
	limiter *source.Limiter
	// sleep is swappable in tests to avoid real page-token delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates the adapter from configuration.
func New(cfg *config.Config) source.Adapter {
	return NewWithClient(
		places.NewClient(cfg.Places.Key,
			places.WithBaseURL(cfg.Places.BaseURL),
			places.WithHTTPClient(source.HTTPClient(cfg)),
		),
		cfg.Places.RequestsPerMinute,
	)
}

// NewWithClient creates the adapter with an explicit client, used by tests.
func NewWithClient(client places.Client, requestsPerMinute int) *Adapter {
	return &Adapter{
		client:  client,
		limiter: source.NewLimiter(requestsPerMinute),
		sleep:   sleepCtx,
	}
}

// Name returns the canonical source name.
func (a *Adapter) Name() string { return Name }

// Fetch pages through text search results, pulling details per place, until
// MaxResults records are collected or the provider has no further page.
func (a *Adapter) Fetch(ctx context.Context, q source.Query) ([]model.RawRecord, error) {
	log := zap.L().With(zap.String("source", Name), zap.String("query", q.Text))

	var records []model.RawRecord
	pageToken := ""

	for len(records) < q.MaxResults {
		if pageToken != "" {
			if err := a.sleep(ctx, pageTokenDelay); err != nil {
				return records, err
			}
		}
		if err := a.limiter.Wait(ctx); err != nil {
			return records, err
		}

		resp, err := a.client.TextSearch(ctx, q.Text+" in "+q.Location, pageToken)
		if err != nil {
			return nil, eris.Wrap(err, "places: text search")
		}

		for _, place := range resp.Results {
			if len(records) >= q.MaxResults {
				break
			}
			records = append(records, a.record(ctx, place))
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}

	log.Debug("fetch complete", zap.Int("records", len(records)))
	return records, nil
}

// record builds the raw record for one search hit, merging in place details
// when they can be fetched. Detail failures degrade to search-only data.
func (a *Adapter) record(ctx context.Context, place places.Place) model.RawRecord {
	var details *places.PlaceDetails
	if place.PlaceID != "" {
		if err := a.limiter.Wait(ctx); err == nil {
			d, err := a.client.Details(ctx, place.PlaceID)
			if err != nil {
				zap.L().Warn("place details failed",
					zap.String("place_id", place.PlaceID), zap.Error(err))
			} else {
				details = d
			}
		}
	}
	if details == nil {
		details = &places.PlaceDetails{}
	}

	address := details.FormattedAddress
	if address == "" {
		address = place.FormattedAddress
	}
	phone := details.FormattedPhoneNumber
	if phone == "" {
		phone = details.InternationalPhoneNumber
	}

	raw := model.RawRecord{
		"name":         place.Name,
		"website":      details.Website,
		"phone":        phone,
		"address":      address,
		"city":         details.Component("locality"),
		"state":        details.Component("administrative_area_level_1"),
		"country":      details.Component("country"),
		"zip_code":     details.Component("postal_code"),
		"external_id":  place.PlaceID,
		"rating":       place.Rating,
		"review_count": place.UserRatingsTotal,
		"raw":          map[string]any{"place": place, "details": details},
	}
	if place.Geometry.Location.Lat != 0 || place.Geometry.Location.Lng != 0 {
		raw["latitude"] = place.Geometry.Location.Lat
		raw["longitude"] = place.Geometry.Location.Lng
	}
	return raw
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
