package crawler

import (
	"context"

	"sjsage522/rankscout/internal/browser"
	"sjsage522/rankscout/internal/extract"
	"sjsage522/rankscout/internal/normalize"
	"sjsage522/rankscout/internal/translate"
	scrapeerrors "sjsage522/rankscout/pkg/errors"

	"github.com/PuerkitoBio/goquery"
)

// CatalogScraper extracts ranked products from a tiered ranking page
type CatalogScraper struct {
	BaseScraper
	config     CatalogConfig
	translator translate.Translator
}

var _ CatalogSource = (*CatalogScraper)(nil)

// NewCatalogScraper creates a catalog scraper. A nil translator keeps the
// source titles.
func NewCatalogScraper(cfg CatalogConfig, b browser.Browser, tr translate.Translator) *CatalogScraper {
	if tr == nil {
		tr = translate.Identity
	}
	return &CatalogScraper{
		BaseScraper: newBaseScraper(b, cfg.Profile, cfg.BaseURL, cfg.Provider),
		config:      cfg,
		translator:  tr,
	}
}

// WithSleep replaces the settle wait of the page controller
func (s *CatalogScraper) WithSleep(sleep browser.SleepFunc) *CatalogScraper {
	s.Controller.WithSleep(sleep)
	return s
}

// Scrape loads url (the configured URL when empty) and returns the retained
// records, top tier first, each tier in page order.
func (s *CatalogScraper) Scrape(ctx context.Context, url string) ([]CatalogRecord, error) {
	if url == "" {
		url = s.config.URL
	}

	doc, err := s.load(ctx, url)
	if err != nil {
		return nil, err
	}

	records := s.extractRecords(ctx, doc.Selection)
	s.log.Info().Int("count", len(records)).Str("url", url).Msg("Scraped catalog")
	return records, nil
}

func (s *CatalogScraper) extractRecords(ctx context.Context, root *goquery.Selection) []CatalogRecord {
	var records []CatalogRecord
	for _, tier := range s.config.Tiers {
		containers := extract.Containers(root, tier.Container, tier.Limit)
		s.log.Debug().Str("tier", tier.Name).Int("containers", len(containers)).Msg("Located tier")

		for i, container := range containers {
			record := s.buildRecord(ctx, s.Extractor.Extract(container, tier.Fields))
			if !record.Retained() {
				s.log.Debug().
					Err(scrapeerrors.NewExtraction(s.Provider, "container has no title or link")).
					Str("tier", tier.Name).
					Int("index", i).
					Msg("Dropping record")
				continue
			}
			records = append(records, record)
		}
	}
	return records
}

func (s *CatalogScraper) buildRecord(ctx context.Context, values extract.Values) CatalogRecord {
	source := values.Get(fieldTitle)
	translated := s.translateTitle(ctx, source)
	parsed := s.parsePrice(values.Get(fieldPrice))

	return CatalogRecord{
		Rank:            values.Get(fieldRank),
		TitleSource:     source,
		TitleTranslated: translated,
		TitleNormalized: normalize.TitleField(translated),
		DetailURL:       values.Get(fieldURL),
		ImageURL:        values.Get(fieldImage),
		Price:           parsed.Min,
		ReviewCountText: values.Get(fieldReviews),
		SellerName:      values.Get(fieldCompany),
	}
}

// translateTitle falls back to the source text when translation fails
func (s *CatalogScraper) translateTitle(ctx context.Context, source *string) *string {
	if source == nil || *source == "" {
		return source
	}

	translated, err := s.translator.Translate(ctx, *source, s.config.TargetLanguage)
	if err != nil {
		s.log.Warn().
			Err(scrapeerrors.NewTranslation("falling back to source title", err)).
			Str("title", *source).
			Msg("Translation failed")
		fallback := *source
		return &fallback
	}
	return &translated
}
