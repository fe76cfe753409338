package pipeline

import (
	"context"
	"time"

	"sjsage522/rankscout/internal/crawler"
	"sjsage522/rankscout/internal/crossref"
	"sjsage522/rankscout/logger"
	"sjsage522/rankscout/services/publisher"
	"sjsage522/rankscout/services/storage"
)

// Pipeline runs scrapes, exports their results and optionally publishes
// them. Every scrape invocation runs under its own timeout.
type Pipeline struct {
	catalog     crawler.CatalogSource
	marketplace crawler.SupplierSearcher
	store       *storage.Store
	publisher   publisher.Publisher
	timeout     time.Duration
	log         *logger.Logger
}

// Options configures optional pipeline collaborators
type Options struct {
	// Timeout bounds a single scrape invocation; zero means no bound
	Timeout time.Duration
	// Publisher receives every record; nil disables publishing
	Publisher publisher.Publisher
}

// CatalogResult is the outcome of a catalog run
type CatalogResult struct {
	Records  []crawler.CatalogRecord
	JSONPath string
	CSVPath  string
}

// SupplierResult is the outcome of a single supplier search
type SupplierResult struct {
	Keyword   string
	Suppliers []crawler.SupplierRecord
	CSVPath   string
}

// CrossReferenceResult is the outcome of a cross-reference run
type CrossReferenceResult struct {
	Results  *crossref.Map
	JSONPath string
	CSVPath  string
}

// New creates a pipeline
func New(catalog crawler.CatalogSource, marketplace crawler.SupplierSearcher, store *storage.Store, opts Options) *Pipeline {
	return &Pipeline{
		catalog:     catalog,
		marketplace: marketplace,
		store:       store,
		publisher:   opts.Publisher,
		timeout:     opts.Timeout,
		log:         logger.ForComponent("pipeline"),
	}
}

// RunCatalog scrapes url and saves the records as JSON (the cross-reference
// input) and CSV.
func (p *Pipeline) RunCatalog(ctx context.Context, url string) (*CatalogResult, error) {
	scrapeCtx, cancel := p.withTimeout(ctx)
	records, err := p.catalog.Scrape(scrapeCtx, url)
	cancel()
	if err != nil {
		return nil, err
	}

	result := &CatalogResult{Records: records}
	if result.JSONPath, err = p.store.SaveCatalog(storage.ProductsFile, records); err != nil {
		return result, err
	}
	if result.CSVPath, err = p.store.WriteCatalogCSV(storage.ProductsCSV, records); err != nil {
		return result, err
	}

	publishRecords(ctx, p, publisher.KeyCatalog, records)
	return result, nil
}

// RunSuppliers searches the marketplace once and exports the suppliers
func (p *Pipeline) RunSuppliers(ctx context.Context, keyword string) (*SupplierResult, error) {
	scrapeCtx, cancel := p.withTimeout(ctx)
	suppliers, err := p.marketplace.Search(scrapeCtx, keyword)
	cancel()
	if err != nil {
		return nil, err
	}

	result := &SupplierResult{Keyword: keyword, Suppliers: suppliers}
	if result.CSVPath, err = p.store.WriteSuppliersCSV(storage.SuppliersCSV, suppliers); err != nil {
		return result, err
	}

	publishRecords(ctx, p, publisher.KeySuppliers, suppliers)
	return result, nil
}

// RunCrossReferenceFile reads catalog records from input and cross-references
// them, writing the map to output.
func (p *Pipeline) RunCrossReferenceFile(ctx context.Context, input, output string) (*CrossReferenceResult, error) {
	records, err := p.store.LoadCatalog(input)
	if err != nil {
		return nil, err
	}
	p.log.Info().Int("records", len(records)).Str("input", p.store.Path(input)).Msg("Loaded catalog records")
	return p.RunCrossReference(ctx, records, output)
}

// RunCrossReference searches suppliers for every record, one search at a
// time. A cancelled run still saves what it collected.
func (p *Pipeline) RunCrossReference(ctx context.Context, records []crawler.CatalogRecord, output string) (*CrossReferenceResult, error) {
	if output == "" {
		output = storage.CrossReferenceFile
	}

	orchestrator := crossref.NewOrchestrator(&timeoutSearcher{next: p.marketplace, timeout: p.timeout})
	results, runErr := orchestrator.Run(ctx, records)

	result := &CrossReferenceResult{Results: results}
	var err error
	if result.JSONPath, err = p.store.SaveCrossReference(output, results); err != nil {
		return result, err
	}
	if result.CSVPath, err = p.store.WriteCrossReferenceCSV(storage.CrossReferenceCSV, results); err != nil {
		return result, err
	}

	if runErr == nil {
		for _, key := range results.Keys() {
			suppliers, _ := results.Get(key)
			publishRecords(ctx, p, publisher.KeySuppliers, suppliers)
		}
	}
	return result, runErr
}

func (p *Pipeline) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.timeout)
}

// publishRecords logs failures; publishing never fails a run
func publishRecords[T any](ctx context.Context, p *Pipeline, key string, records []T) {
	if p.publisher == nil || len(records) == 0 {
		return
	}
	n, err := publisher.PublishRecords(ctx, p.publisher, key, records)
	if err != nil {
		p.log.Error().Err(err).Str("key", key).Int("published", n).Msg("Failed to publish records")
		return
	}
	p.log.Debug().Str("key", key).Int("published", n).Msg("Published records")
}

// timeoutSearcher bounds every search with its own deadline
type timeoutSearcher struct {
	next    crawler.SupplierSearcher
	timeout time.Duration
}

func (s *timeoutSearcher) Search(ctx context.Context, keyword string) ([]crawler.SupplierRecord, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return s.next.Search(ctx, keyword)
}
