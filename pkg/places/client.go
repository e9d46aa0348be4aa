// Package places provides a Google Places API client for text search and
// place details.
package places

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/place"

// Client performs Google Places API operations. Pagination is left to the
// caller: TextSearch returns one page plus the token for the next.
type Client interface {
	TextSearch(ctx context.Context, query, pageToken string) (*TextSearchResponse, error)
	Details(ctx context.Context, placeID string) (*PlaceDetails, error)
}

// TextSearchResponse is one page of Places Text Search results.
type TextSearchResponse struct {
	Results       []Place `json:"results"`
	Status        string  `json:"status"`
	NextPageToken string  `json:"next_page_token"`
}

// Place is a single text search result.
type Place struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address"`
	Rating           float64  `json:"rating"`
	UserRatingsTotal int      `json:"user_ratings_total"`
	Geometry         Geometry `json:"geometry"`
}

// Geometry holds the place location.
type Geometry struct {
	Location LatLng `json:"location"`
}

// LatLng is a WGS84 coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// PlaceDetails is the subset of Place Details fields the pipeline uses.
type PlaceDetails struct {
	Name                     string             `json:"name"`
	Website                  string             `json:"website"`
	FormattedAddress         string             `json:"formatted_address"`
	FormattedPhoneNumber     string             `json:"formatted_phone_number"`
	InternationalPhoneNumber string             `json:"international_phone_number"`
	URL                      string             `json:"url"`
	AddressComponents        []AddressComponent `json:"address_components"`
}

// AddressComponent is one structured address part.
type AddressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

// Component returns the long name of the first component carrying the given
// type, or "".
func (d *PlaceDetails) Component(kind string) string {
	for _, c := range d.AddressComponents {
		for _, t := range c.Types {
			if t == kind {
				return c.LongName
			}
		}
	}
	return ""
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a Google Places API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) TextSearch(ctx context.Context, query, pageToken string) (*TextSearchResponse, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("key", c.apiKey)
	if pageToken != "" {
		params.Set("pagetoken", pageToken)
	}

	var result TextSearchResponse
	if err := c.get(ctx, "/textsearch/json", params, &result); err != nil {
		return nil, err
	}

	switch result.Status {
	case "OK", "ZERO_RESULTS":
		return &result, nil
	default:
		return nil, eris.Errorf("places: text search status %s", result.Status)
	}
}

func (c *httpClient) Details(ctx context.Context, placeID string) (*PlaceDetails, error) {
	fields := strings.Join([]string{
		"name",
		"formatted_address",
		"formatted_phone_number",
		"international_phone_number",
		"website",
		"address_components",
		"url",
	}, ",")

	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", fields)
	params.Set("key", c.apiKey)

	var result struct {
		Status string        `json:"status"`
		Result *PlaceDetails `json:"result"`
	}
	if err := c.get(ctx, "/details/json", params, &result); err != nil {
		return nil, err
	}

	if result.Status != "OK" {
		// Details are best-effort enrichment of a search hit; a non-OK
		// status yields an empty details struct rather than an error.
		return &PlaceDetails{}, nil
	}
	return result.Result, nil
}

func (c *httpClient) get(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return eris.Wrap(err, "places: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "places: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "places: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("places: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrap(err, "places: unmarshal response")
	}
	return nil
}
