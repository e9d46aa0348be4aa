package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadgen-cli/internal/source"
	"github.com/sells-group/leadgen-cli/pkg/customsearch"
)

type fakeSearch struct {
	items   map[string][]customsearch.Item
	queries []string
}

func (f *fakeSearch) Search(_ context.Context, query string, start, num int) (*customsearch.SearchResponse, error) {
	f.queries = append(f.queries, query)
	_ = start
	_ = num
	return &customsearch.SearchResponse{Items: f.items[query]}, nil
}

func TestQueryPhrases(t *testing.T) {
	re := QueryPhrases("real_estate", "ignored", "Austin, TX")
	require.Len(t, re, 7)
	assert.Equal(t, `"sell my house" Austin, TX`, re[0])

	cars := QueryPhrases("automotive", "", "Denver, CO")
	require.Len(t, cars, 5)
	assert.Equal(t, `"sell my car" Denver, CO`, cars[0])

	generic := QueryPhrases("", "hvac contractors", "Boise, ID")
	require.Len(t, generic, 1)
	assert.Equal(t, "hvac contractors Boise, ID", generic[0])
}

func TestInferIntent(t *testing.T) {
	tests := []struct {
		phrase   string
		kind     string
		category string
	}{
		{`"sell my house" Austin`, "seller", "real_estate"},
		{`"first time home buyer" Austin`, "buyer", "real_estate"},
		{`"sell my vehicle" Denver`, "seller", "car"},
		{`"buy used car" Denver`, "buyer", "car"},
		{"hvac contractors Boise", "unknown", ""},
	}
	for _, tt := range tests {
		got := InferIntent("", tt.phrase)
		assert.Equal(t, tt.kind, got.Kind, tt.phrase)
		assert.Equal(t, tt.category, got.Category, tt.phrase)
		assert.Equal(t, "general", got.Vertical)
	}
}

func TestFetch_BuildsRecords(t *testing.T) {
	client := &fakeSearch{items: map[string][]customsearch.Item{
		"hvac Boise, ID": {
			{
				Title:       "Acme Heating - Best HVAC in Boise",
				Link:        "https://www.acmeheating.com/contact",
				Snippet:     "Call us at (208) 555-0123 or email info@acmeheating.com today.",
				DisplayLink: "www.acmeheating.com",
			},
		},
	}}
	a := NewWithClient(client, 6000)

	got, err := a.Fetch(context.Background(), source.Query{
		Text: "hvac", Location: "Boise, ID", MaxResults: 10,
	})

	require.NoError(t, err)
	require.Len(t, got, 1)
	rec := got[0]
	assert.Equal(t, "Acme Heating", rec["name"])
	assert.Equal(t, "https://www.acmeheating.com/contact", rec["website"])
	assert.Equal(t, "info@acmeheating.com", rec["company_email"])
	assert.Equal(t, "(208) 555-0123", rec["company_phone"])
	assert.Equal(t, "acmeheating.com", rec["company_domain"])
	assert.Equal(t, true, rec["email_found"])
	assert.Equal(t, "https://www.acmeheating.com/contact", rec["external_id"])
}

func TestFetch_VerticalPhrasesAndURLDedupe(t *testing.T) {
	item := customsearch.Item{Title: "Sell Fast", Link: "https://sellfast.example"}
	client := &fakeSearch{items: map[string][]customsearch.Item{}}
	for _, phrase := range QueryPhrases("real_estate", "", "Austin, TX") {
		client.items[phrase] = []customsearch.Item{item}
	}
	a := NewWithClient(client, 6000)

	got, err := a.Fetch(context.Background(), source.Query{
		Text: "brokers", Location: "Austin, TX", MaxResults: 40,
		Hints: map[string]string{"vertical": "real_estate"},
	})

	require.NoError(t, err)
	// Same URL from every phrase collapses to one record.
	require.Len(t, got, 1)
	assert.Len(t, client.queries, 7)
	intent, ok := got[0]["intent"].(Intent)
	require.True(t, ok)
	assert.Equal(t, "seller", intent.Kind)
}

func TestFetch_SyntheticExternalID(t *testing.T) {
	client := &fakeSearch{items: map[string][]customsearch.Item{
		"plumbers Reno, NV": {{Title: "No Link Result", Snippet: "text"}},
	}}
	a := NewWithClient(client, 6000)

	got, err := a.Fetch(context.Background(), source.Query{
		Text: "plumbers", Location: "Reno, NV", MaxResults: 5,
	})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Contains(t, got[0]["external_id"], "search_")
}

func TestCleanTitle(t *testing.T) {
	assert.Equal(t, "Acme", cleanTitle("Acme | Home"))
	assert.Equal(t, "Acme", cleanTitle("Acme - Contact Us"))
	assert.Equal(t, "Unknown", cleanTitle("  "))
}
