// Package crossref looks every catalog record up on the supplier
// marketplace and collects the suppliers per search key.
package crossref

import (
	"context"
	"errors"

	"sjsage522/rankscout/internal/crawler"
	"sjsage522/rankscout/logger"
	scrapeerrors "sjsage522/rankscout/pkg/errors"
)

// Searcher finds suppliers for a keyword
type Searcher interface {
	Search(ctx context.Context, keyword string) ([]crawler.SupplierRecord, error)
}

// Orchestrator runs one marketplace search per catalog record, one after
// another.
type Orchestrator struct {
	searcher Searcher
	log      *logger.Logger
}

// NewOrchestrator creates an orchestrator searching with searcher
func NewOrchestrator(searcher Searcher) *Orchestrator {
	return &Orchestrator{
		searcher: searcher,
		log:      logger.ForComponent("crossref"),
	}
}

// Run searches the marketplace for each record's search key in record order.
// Records with a blank key are skipped. A failed search maps its key to an
// empty list. Cancellation stops the run and returns the partial map.
func (o *Orchestrator) Run(ctx context.Context, records []crawler.CatalogRecord) (*Map, error) {
	results := NewMap()

	for i, record := range records {
		key := record.SearchKey()
		if key == "" {
			o.log.Debug().Int("index", i).Msg("Skipping record without search key")
			continue
		}
		if err := ctx.Err(); err != nil {
			return results, err
		}

		o.log.Info().Str("key", key).Msg("Searching suppliers")
		suppliers, err := o.searcher.Search(ctx, key)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return results, ctxErr
			}
			o.log.Warn().Err(asSearchError(key, err)).Str("key", key).Msg("Supplier search failed")
			suppliers = []crawler.SupplierRecord{}
		}
		if suppliers == nil {
			suppliers = []crawler.SupplierRecord{}
		}

		results.Set(key, suppliers)
	}

	return results, nil
}

func asSearchError(key string, err error) error {
	var scrapeErr *scrapeerrors.ScrapeError
	if errors.As(err, &scrapeErr) && scrapeErr.Type == scrapeerrors.ErrorTypeSearch {
		return err
	}
	return scrapeerrors.NewSearch("", key, err)
}
