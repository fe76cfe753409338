package crossref

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"sjsage522/rankscout/internal/crawler"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSearcher returns canned suppliers and records every keyword
type mockSearcher struct {
	results  map[string][]crawler.SupplierRecord
	failures map[string]error
	keywords []string
	onSearch func()
}

func (m *mockSearcher) Search(ctx context.Context, keyword string) ([]crawler.SupplierRecord, error) {
	m.keywords = append(m.keywords, keyword)
	if m.onSearch != nil {
		m.onSearch()
	}
	if err := m.failures[keyword]; err != nil {
		return nil, err
	}
	return m.results[keyword], nil
}

func record(normalized string) crawler.CatalogRecord {
	return crawler.CatalogRecord{TitleNormalized: normalized}
}

func supplier(name string) crawler.SupplierRecord {
	return crawler.SupplierRecord{CompanyName: name}
}

func TestOrchestratorRun(t *testing.T) {
	searcher := &mockSearcher{
		results: map[string][]crawler.SupplierRecord{
			"color block knit": {supplier("Hangzhou Knitwear"), supplier("Ningbo Textiles")},
			"wool scarf":       {supplier("Shenzhen Apparel")},
		},
	}

	results, err := NewOrchestrator(searcher).Run(context.Background(), []crawler.CatalogRecord{
		record("wool scarf"),
		record("color block knit"),
		record("long skirt"),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"wool scarf", "color block knit", "long skirt"}, searcher.keywords)
	assert.Equal(t, []string{"wool scarf", "color block knit", "long skirt"}, results.Keys())

	knit, ok := results.Get("color block knit")
	require.True(t, ok)
	assert.Len(t, knit, 2)

	// no suppliers is an empty list, not an absent key
	skirt, ok := results.Get("long skirt")
	require.True(t, ok)
	assert.NotNil(t, skirt)
	assert.Empty(t, skirt)
}

func TestOrchestratorSkipsEmptyKeys(t *testing.T) {
	searcher := &mockSearcher{}

	results, err := NewOrchestrator(searcher).Run(context.Background(), []crawler.CatalogRecord{
		record(""),
		record("   "),
		record("knit"),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"knit"}, searcher.keywords)
	assert.Equal(t, 1, results.Len())
	_, ok := results.Get("")
	assert.False(t, ok)
}

func TestOrchestratorRecoversFailedSearch(t *testing.T) {
	searcher := &mockSearcher{
		results:  map[string][]crawler.SupplierRecord{"wool scarf": {supplier("Shenzhen Apparel")}},
		failures: map[string]error{"knit": errors.New("Timeout 60000ms exceeded")},
	}

	results, err := NewOrchestrator(searcher).Run(context.Background(), []crawler.CatalogRecord{
		record("knit"),
		record("wool scarf"),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"knit", "wool scarf"}, searcher.keywords)
	failed, ok := results.Get("knit")
	require.True(t, ok)
	assert.Empty(t, failed)
	assert.NotNil(t, failed)

	scarf, _ := results.Get("wool scarf")
	assert.Len(t, scarf, 1)
}

func TestOrchestratorKeyCollision(t *testing.T) {
	calls := 0
	searcher := &mockSearcher{}
	searcher.onSearch = func() {
		calls++
		searcher.results = map[string][]crawler.SupplierRecord{
			"knit": {supplier("Supplier " + string(rune('A'+calls-1)))},
		}
	}

	results, err := NewOrchestrator(searcher).Run(context.Background(), []crawler.CatalogRecord{
		record("knit"),
		record("scarf"),
		record("knit"),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"knit", "scarf", "knit"}, searcher.keywords)
	assert.Equal(t, []string{"knit", "scarf"}, results.Keys())
	knit, _ := results.Get("knit")
	assert.Equal(t, "Supplier C", knit[0].CompanyName)
}

func TestOrchestratorStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	searcher := &mockSearcher{
		results: map[string][]crawler.SupplierRecord{"knit": {supplier("Hangzhou Knitwear")}},
	}
	searcher.onSearch = cancel

	results, err := NewOrchestrator(searcher).Run(ctx, []crawler.CatalogRecord{
		record("knit"),
		record("scarf"),
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"knit"}, searcher.keywords)
	assert.Equal(t, []string{"knit"}, results.Keys())
}

func TestMapJSONKeepsOrder(t *testing.T) {
	url := "https://nbtex.en.alibaba.com/company_profile.html?a=1&b=2"
	low, high := 3, 9

	m := NewMap()
	m.Set("wool scarf", []crawler.SupplierRecord{})
	m.Set("color block knit", []crawler.SupplierRecord{{
		CompanyName: "Ningbo Textiles",
		CompanyURL:  &url,
		PriceMin:    &low,
		PriceMax:    &high,
	}})
	m.Set("árvore", []crawler.SupplierRecord{})

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"wool scarf": [],
		"color block knit": [{
			"Company Name": "Ningbo Textiles",
			"Company URL": "https://nbtex.en.alibaba.com/company_profile.html?a=1&b=2",
			"Min Price": 3,
			"Max Price": 9,
			"Image URL": null
		}],
		"árvore": []
	}`, string(data))

	scarfAt := strings.Index(string(data), `"wool scarf"`)
	knitAt := strings.Index(string(data), `"color block knit"`)
	assert.Less(t, scarfAt, knitAt)

	decoded := NewMap()
	require.NoError(t, json.Unmarshal(data, decoded))
	assert.Equal(t, m.Keys(), decoded.Keys())
	knit, _ := decoded.Get("color block knit")
	assert.Equal(t, 9, *knit[0].PriceMax)
	scarf, _ := decoded.Get("wool scarf")
	assert.NotNil(t, scarf)

	assert.Error(t, json.Unmarshal([]byte(`["not", "an", "object"]`), NewMap()))
}

func TestEmptyMapJSON(t *testing.T) {
	data, err := json.Marshal(NewMap())
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}
