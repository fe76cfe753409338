package crawler

import (
	"context"

	"sjsage522/rankscout/internal/browser"
	"sjsage522/rankscout/internal/extract"
	"sjsage522/rankscout/internal/price"
	"sjsage522/rankscout/logger"
	scrapeerrors "sjsage522/rankscout/pkg/errors"

	"github.com/PuerkitoBio/goquery"
)

// BaseScraper provides the page session shared by all scrapers: one
// rendering session per call, released on every exit path.
type BaseScraper struct {
	Browser    browser.Browser
	Controller *browser.Controller
	Extractor  *extract.Extractor
	Provider   string
	log        *logger.Logger
}

func newBaseScraper(b browser.Browser, profile browser.Profile, baseURL, provider string) BaseScraper {
	return BaseScraper{
		Browser:    b,
		Controller: browser.NewController(profile),
		Extractor:  extract.New(baseURL),
		Provider:   provider,
		log:        logger.ForScraper(provider),
	}
}

// GetName returns the scraper's provider name
func (s *BaseScraper) GetName() string {
	return s.Provider
}

// load opens a session, readies url and returns a snapshot of the rendered DOM
func (s *BaseScraper) load(ctx context.Context, url string) (*goquery.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	page, err := s.Browser.Open(s.Controller.Profile())
	if err != nil {
		return nil, scrapeerrors.NewSession(s.Provider, "failed to open page", err)
	}
	defer func() {
		if err := page.Close(); err != nil {
			s.log.Warn().Err(err).Msg("Failed to close page session")
		}
	}()

	if err := s.Controller.Prepare(ctx, page, url); err != nil {
		return nil, err
	}

	html, err := page.Content()
	if err != nil {
		return nil, scrapeerrors.NewSession(s.Provider, "failed to read rendered page", err)
	}

	doc, err := extract.Document(html)
	if err != nil {
		return nil, scrapeerrors.NewSession(s.Provider, "failed to parse rendered page", err)
	}
	return doc, nil
}

// parsePrice parses an optional price field. Text without a number is
// logged and yields an empty range.
func (s *BaseScraper) parsePrice(text *string) price.Range {
	r := price.ParseField(text)
	if r.Empty() && text != nil {
		s.log.Debug().Err(scrapeerrors.NewParsing(s.Provider, "price", *text)).Msg("Unparsable price")
	}
	return r
}
