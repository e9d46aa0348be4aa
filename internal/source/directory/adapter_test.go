package directory

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadgen-cli/internal/config"
	"github.com/sells-group/leadgen-cli/internal/source"
)

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		Directory: config.DirectoryConfig{
			BaseURL:           baseURL,
			RequestsPerMinute: 6000,
			MaxPages:          5,
			UserAgent:         "leadgen-test/1.0",
		},
	}
}

func card(name, phone, addr, mip, website string) string {
	var b strings.Builder
	b.WriteString(`<div class="result">`)
	b.WriteString(`<a class="business-name" href="#">` + name + `</a>`)
	if phone != "" {
		b.WriteString(`<div class="phones">` + phone + `</div>`)
	}
	if addr != "" {
		b.WriteString(`<div class="street-address">` + addr + `</div>`)
		b.WriteString(`<span class="locality">Austin</span><span class="region">TX</span>`)
	}
	if mip != "" {
		b.WriteString(`<a href="/mip/` + mip + `?from=srp">details</a>`)
	}
	if website != "" {
		b.WriteString(`<a class="track-visit-website" href="` + website + `">site</a>`)
	}
	b.WriteString(`</div>`)
	return b.String()
}

func TestFetch_ParsesCards(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "hvac repair", r.URL.Query().Get("search_terms"))
		assert.Equal(t, "Austin, TX", r.URL.Query().Get("geo_location_terms"))
		assert.Equal(t, "leadgen-test/1.0", r.Header.Get("User-Agent"))

		fmt.Fprint(w, "<html><body>",
			card("Acme HVAC", "(512) 555-0100", "100 Main St", "acme-hvac-12345", "https://acmehvac.com"),
			card("Budget Air", "", "", "", ""),
			"</body></html>")
	}))
	defer srv.Close()

	a := New(testConfig(srv.URL)).(*Adapter)
	got, err := a.Fetch(context.Background(), source.Query{
		Text: "hvac repair", Location: "Austin, TX", MaxResults: 10,
	})

	require.NoError(t, err)
	require.Len(t, got, 2)

	rec := got[0]
	assert.Equal(t, "Acme HVAC", rec["name"])
	assert.Equal(t, "(512) 555-0100", rec["phone"])
	assert.Equal(t, "100 Main St", rec["address"])
	assert.Equal(t, "Austin", rec["city"])
	assert.Equal(t, "TX", rec["state"])
	assert.Equal(t, "acme-hvac-12345", rec["external_id"])
	assert.Equal(t, "https://acmehvac.com", rec["website"])

	// No listing link falls back to a page/index id.
	assert.Equal(t, "yp_1_1", got[1]["external_id"])
}

func TestFetch_StopsOnShortPage(t *testing.T) {
	var pages int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pages++
		fmt.Fprint(w, "<html><body>", card("Only Co", "", "", "", ""), "</body></html>")
	}))
	defer srv.Close()

	a := New(testConfig(srv.URL)).(*Adapter)
	got, err := a.Fetch(context.Background(), source.Query{
		Text: "dentists", Location: "Reno, NV", MaxResults: 40,
	})

	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 1, pages)
}

func TestFetch_PageBudget(t *testing.T) {
	var pages int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pages++
		var b strings.Builder
		b.WriteString("<html><body>")
		for i := 0; i < perPage; i++ {
			b.WriteString(card(fmt.Sprintf("Biz %d-%d", pages, i), "", "", "", ""))
		}
		b.WriteString("</body></html>")
		fmt.Fprint(w, b.String())
	}))
	defer srv.Close()

	a := New(testConfig(srv.URL)).(*Adapter)
	got, err := a.Fetch(context.Background(), source.Query{
		Text: "plumbers", Location: "Boise, ID", MaxResults: 1000,
	})

	require.NoError(t, err)
	assert.Equal(t, 5, pages)
	assert.Len(t, got, 5*perPage)
}

func TestFetch_FirstPageErrorFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	a := New(testConfig(srv.URL)).(*Adapter)
	_, err := a.Fetch(context.Background(), source.Query{
		Text: "gyms", Location: "Miami, FL", MaxResults: 10,
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch first page")
}

func TestListingID(t *testing.T) {
	assert.Equal(t, "acme-12345", listingID("/mip/acme-12345?from=srp"))
	assert.Equal(t, "acme-12345", listingID("https://www.yellowpages.com/mip/acme-12345"))
	assert.Equal(t, "", listingID(""))
}
