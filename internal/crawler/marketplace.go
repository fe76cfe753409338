package crawler

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"sjsage522/rankscout/internal/browser"
	"sjsage522/rankscout/internal/extract"
	scrapeerrors "sjsage522/rankscout/pkg/errors"

	"github.com/PuerkitoBio/goquery"
)

// MarketplaceScraper extracts supplier cards from a marketplace search
type MarketplaceScraper struct {
	BaseScraper
	config MarketplaceConfig
}

var _ SupplierSearcher = (*MarketplaceScraper)(nil)

// NewMarketplaceScraper creates a supplier search scraper
func NewMarketplaceScraper(cfg MarketplaceConfig, b browser.Browser) *MarketplaceScraper {
	return &MarketplaceScraper{
		BaseScraper: newBaseScraper(b, cfg.Profile, cfg.BaseURL, cfg.Provider),
		config:      cfg,
	}
}

// WithSleep replaces the settle wait of the page controller
func (s *MarketplaceScraper) WithSleep(sleep browser.SleepFunc) *MarketplaceScraper {
	s.Controller.WithSleep(sleep)
	return s
}

// SearchURL builds the search page address for keyword
func (s *MarketplaceScraper) SearchURL(keyword string) string {
	escaped := url.QueryEscape(keyword)
	if strings.Contains(s.config.SearchURL, "%s") {
		return strings.Replace(s.config.SearchURL, "%s", escaped, 1)
	}
	return s.config.SearchURL + escaped
}

// Search returns up to the configured number of suppliers for keyword
func (s *MarketplaceScraper) Search(ctx context.Context, keyword string) ([]SupplierRecord, error) {
	searchURL := s.SearchURL(keyword)

	doc, err := s.load(ctx, searchURL)
	if err != nil {
		var scrapeErr *scrapeerrors.ScrapeError
		if errors.As(err, &scrapeErr) {
			return nil, err
		}
		return nil, scrapeerrors.NewSearch(s.Provider, keyword, err)
	}

	suppliers := s.extractSuppliers(doc.Selection)
	s.log.Info().Int("count", len(suppliers)).Str("keyword", keyword).Msg("Scraped suppliers")
	return suppliers, nil
}

// extractSuppliers pairs the i-th supplier link with the i-th price block
// and the i-th image; the three lists are not nested in a common card.
func (s *MarketplaceScraper) extractSuppliers(root *goquery.Selection) []SupplierRecord {
	anchors := extract.Containers(root, s.config.Selectors.Supplier, s.config.Limit)
	prices := root.Find(s.config.Selectors.Price)
	images := root.Find(s.config.Selectors.Image)

	suppliers := make([]SupplierRecord, 0, len(anchors))
	for i, anchor := range anchors {
		record := SupplierRecord{
			CompanyURL: s.Extractor.Value(anchor, extract.Attr("", "href")),
		}
		if name := s.Extractor.Value(anchor, extract.Text("")); name != nil {
			record.CompanyName = *name
		}

		if i < prices.Length() {
			r := s.parsePrice(s.Extractor.Value(prices.Eq(i), extract.Text("")))
			record.PriceMin, record.PriceMax = ordered(r.Min, r.Max)
		}
		if i < images.Length() {
			record.ImageURL = s.Extractor.Value(images.Eq(i), extract.Attr("", "src"))
		}

		suppliers = append(suppliers, record)
	}
	return suppliers
}

// ordered swaps a reversed range so that min <= max holds on the record
func ordered(lo, hi *int) (*int, *int) {
	if lo != nil && hi != nil && *lo > *hi {
		return hi, lo
	}
	return lo, hi
}
