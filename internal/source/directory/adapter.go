// Package directory implements the yellow_pages source adapter, scraping
// business-directory search pages.
package directory

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/config"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/source"
)

// Name is the canonical source name.
const Name = "yellow_pages"

// perPage is how many listings a full directory page carries. A shorter
// page means the result set is exhausted.
const perPage = 30

// Adapter scrapes paginated directory search results.
type Adapter struct {
	baseURL   string
	userAgent string
	maxPages  int
	client    *http.Client
	limiter   *source.Limiter
}

// New creates the adapter from configuration.
func New(cfg *config.Config) source.Adapter {
	return &Adapter{
		baseURL:   strings.TrimRight(cfg.Directory.BaseURL, "/"),
		userAgent: cfg.Directory.UserAgent,
		maxPages:  cfg.Directory.MaxPages,
		client:    source.HTTPClient(cfg),
		limiter:   source.NewLimiter(cfg.Directory.RequestsPerMinute),
	}
}

// Name returns the canonical source name.
func (a *Adapter) Name() string { return Name }

// Fetch walks search result pages until the cap is reached, a page comes
// back short, or the page budget runs out. Transport errors after the first
// successful page end the walk rather than failing the whole fetch.
func (a *Adapter) Fetch(ctx context.Context, q source.Query) ([]model.RawRecord, error) {
	var records []model.RawRecord

	for page := 1; page <= a.maxPages && len(records) < q.MaxResults; page++ {
		if err := a.limiter.Wait(ctx); err != nil {
			return records, err
		}

		doc, err := a.fetchPage(ctx, q.Text, q.Location, page)
		if err != nil {
			if page == 1 {
				return nil, eris.Wrap(err, "directory: fetch first page")
			}
			zap.L().Warn("directory page fetch failed",
				zap.Int("page", page), zap.Error(err))
			break
		}

		cards := doc.Find(".result, .search-result, .srp-listing, .v-card")
		if cards.Length() == 0 {
			cards = doc.Find("[class*='result']")
		}
		if cards.Length() == 0 {
			break
		}

		cards.EachWithBreak(func(i int, card *goquery.Selection) bool {
			if len(records) >= q.MaxResults {
				return false
			}
			records = append(records, a.parseCard(card, page, i))
			return true
		})

		if cards.Length() < perPage {
			break
		}
	}

	zap.L().Debug("fetch complete",
		zap.String("source", Name), zap.Int("records", len(records)))
	return records, nil
}

func (a *Adapter) fetchPage(ctx context.Context, query, location string, page int) (*goquery.Document, error) {
	u := fmt.Sprintf("%s/search?search_terms=%s&geo_location_terms=%s&page=%d",
		a.baseURL, url.QueryEscape(query), url.QueryEscape(location), page)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, eris.Wrap(err, "directory: build request")
	}
	req.Header.Set("User-Agent", a.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "directory: request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("directory: unexpected status %d", resp.StatusCode)
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "directory: parse html")
	}
	return doc, nil
}

func (a *Adapter) parseCard(card *goquery.Selection, page, index int) model.RawRecord {
	text := func(sel string) string {
		return strings.TrimSpace(card.Find(sel).First().Text())
	}

	name := text(".business-name, .n a, a[class*='business-name'], .org, h2 a")
	if name == "" {
		name = fmt.Sprintf("Business %d", index)
	}

	listingHref, _ := card.Find("a[href*='/mip/']").First().Attr("href")
	externalID := listingID(listingHref)
	if externalID == "" {
		externalID = fmt.Sprintf("yp_%d_%d", page, index)
	}

	website := ""
	card.Find("a").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		href, ok := link.Attr("href")
		if !ok || !strings.HasPrefix(href, "http") || strings.Contains(href, "yellowpages") {
			return true
		}
		website = href
		return false
	})

	html, _ := goquery.OuterHtml(card)
	if len(html) > 500 {
		html = html[:500]
	}

	return model.RawRecord{
		"name":        name,
		"website":     website,
		"phone":       text(".phones, .phone, [class*='phone']"),
		"address":     text(".adr, .street-address, .address, [class*='address']"),
		"city":        text(".locality"),
		"state":       text(".region"),
		"external_id": externalID,
		"raw":         map[string]any{"card_html": html, "href": listingHref},
	}
}

// listingID pulls the stable listing slug out of a detail-page href.
func listingID(href string) string {
	if href == "" {
		return ""
	}
	href = strings.SplitN(href, "?", 2)[0]
	parts := strings.Split(strings.TrimRight(href, "/"), "/")
	return parts[len(parts)-1]
}
