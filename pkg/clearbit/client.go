// Package clearbit provides a minimal Clearbit company lookup client used
// for optional lead enrichment.
package clearbit

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

const defaultBaseURL = "https://company.clearbit.com/v2"

// ErrNotFound is returned when no company matches the domain.
var ErrNotFound = eris.New("clearbit: company not found")

// Client looks up firmographic data by company domain.
type Client interface {
	FindCompany(ctx context.Context, domain string) (*Company, error)
}

// Company is the subset of the company payload the pipeline consumes.
type Company struct {
	Name        string  `json:"name"`
	Domain      string  `json:"domain"`
	Industry    string  `json:"industry"`
	Description string  `json:"description"`
	Metrics     Metrics `json:"metrics"`
}

// Metrics holds sizing data.
type Metrics struct {
	Employees int `json:"employees"`
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

// NewClient creates a Clearbit client.
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

func (c *httpClient) FindCompany(ctx context.Context, domain string) (*Company, error) {
	endpoint := c.baseURL + "/companies/find?domain=" + url.QueryEscape(domain)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, eris.Wrap(err, "clearbit: create request")
	}
	req.SetBasicAuth(c.apiKey, "")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "clearbit: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "clearbit: read response")
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrNotFound
	default:
		return nil, eris.Errorf("clearbit: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var company Company
	if err := json.Unmarshal(body, &company); err != nil {
		return nil, eris.Wrap(err, "clearbit: unmarshal response")
	}
	return &company, nil
}
