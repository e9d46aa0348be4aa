// Package search implements the google_search source adapter, which mines
// the Custom Search JSON API for buyer/seller intent results.
package search

import (
	"context"
	"fmt"
	"hash/fnv"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/config"
	"github.com/sells-group/leadgen-cli/internal/contact"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/source"
	"github.com/sells-group/leadgen-cli/pkg/customsearch"
)

// Name is the canonical source name.
const Name = "google_search"

// Adapter turns web search results into raw lead records.
type Adapter struct {
	client  customsearch.Client
	limiter *source.Limiter
}

// New creates the adapter from configuration.
func New(cfg *config.Config) source.Adapter {
	return NewWithClient(
		customsearch.NewClient(cfg.CustomSearch.Key, cfg.CustomSearch.EngineID,
			customsearch.WithBaseURL(cfg.CustomSearch.BaseURL),
			customsearch.WithHTTPClient(source.HTTPClient(cfg)),
		),
		cfg.CustomSearch.RequestsPerMinute,
	)
}

// NewWithClient creates the adapter with an explicit client, used by tests.
func NewWithClient(client customsearch.Client, requestsPerMinute int) *Adapter {
	return &Adapter{client: client, limiter: source.NewLimiter(requestsPerMinute)}
}

// Name returns the canonical source name.
func (a *Adapter) Name() string { return Name }

// Fetch runs every intent phrase for the query's vertical, splitting the
// result budget across phrases and deduplicating by result URL.
func (a *Adapter) Fetch(ctx context.Context, q source.Query) ([]model.RawRecord, error) {
	vertical := q.Hint("vertical")
	phrases := QueryPhrases(vertical, q.Text, q.Location)

	perPhrase := q.MaxResults / len(phrases)
	if perPhrase < 5 {
		perPhrase = 5
	}

	seenURLs := make(map[string]bool)
	var records []model.RawRecord

	for _, phrase := range phrases {
		if len(records) >= q.MaxResults {
			break
		}
		items, err := a.searchPhrase(ctx, phrase, perPhrase)
		if err != nil {
			return nil, eris.Wrapf(err, "search: phrase %q", phrase)
		}
		intent := InferIntent(vertical, phrase)

		for i, item := range items {
			if len(records) >= q.MaxResults {
				break
			}
			link := strings.TrimSpace(item.Link)
			if seenURLs[link] {
				continue
			}
			seenURLs[link] = true
			records = append(records, buildRecord(item, phrase, i, intent))
		}
	}

	zap.L().Debug("fetch complete",
		zap.String("source", Name),
		zap.Int("phrases", len(phrases)),
		zap.Int("records", len(records)))
	return records, nil
}

// searchPhrase pages through results for one phrase up to limit items.
func (a *Adapter) searchPhrase(ctx context.Context, phrase string, limit int) ([]customsearch.Item, error) {
	var items []customsearch.Item
	start := 1
	for len(items) < limit {
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		num := limit - len(items)
		if num > 10 {
			num = 10
		}
		resp, err := a.client.Search(ctx, phrase, start, num)
		if err != nil {
			return nil, err
		}
		items = append(items, resp.Items...)
		if resp.NextStart == 0 {
			break
		}
		start = resp.NextStart
	}
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func buildRecord(item customsearch.Item, phrase string, index int, intent Intent) model.RawRecord {
	link := strings.TrimSpace(item.Link)
	name := cleanTitle(item.Title)
	info := contact.Extract(item.Title + " " + item.Snippet)

	externalID := link
	if externalID == "" {
		h := fnv.New32a()
		_, _ = h.Write([]byte(phrase))
		externalID = fmt.Sprintf("search_%d_%d", h.Sum32()%1e8, index)
	}

	raw := model.RawRecord{
		"name":            name,
		"company_name":    name,
		"website":         link,
		"company_website": link,
		"company_phone":   info.Phone,
		"company_email":   info.Email,
		"contact_email":   info.Email,
		"external_id":     externalID,
		"email_found":     info.Email != "",
		"intent":          intent,
		"raw": map[string]any{
			"item":    item,
			"snippet": item.Snippet,
			"intent":  intent,
		},
	}
	if link != "" {
		raw["source_urls"] = []string{link}
		if u, err := url.Parse(link); err == nil && u.Host != "" {
			raw["company_domain"] = strings.TrimPrefix(strings.ToLower(u.Host), "www.")
		}
	} else if item.DisplayLink != "" {
		raw["company_domain"] = strings.TrimPrefix(strings.ToLower(item.DisplayLink), "www.")
	}
	return raw
}

// cleanTitle strips trailing site-name artifacts ("Acme - Homepage").
func cleanTitle(title string) string {
	for _, sep := range []string{" - ", " | ", " – ", " — "} {
		if idx := strings.Index(title, sep); idx >= 0 {
			title = title[:idx]
		}
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return "Unknown"
	}
	return title
}
