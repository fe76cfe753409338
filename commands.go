package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"sjsage522/rankscout/config"
	"sjsage522/rankscout/internal/crawler"
	"sjsage522/rankscout/internal/crossref"
	scrapeerrors "sjsage522/rankscout/pkg/errors"
	"sjsage522/rankscout/services/pipeline"
	"sjsage522/rankscout/services/storage"
)

// CLI is the command line of rankscout; flag defaults come from the
// environment configuration.
type CLI struct {
	Headless     bool   `help:"Run the browser without a visible window." default:"${headless}" negatable:""`
	MaxScrolls   int    `help:"Lazy-load scroll cycles on the catalog page." default:"${max_scrolls}"`
	MaxPrimary   int    `help:"Lowers each catalog tier's own cap (top 10, remainder 7); larger values keep the tier caps." default:"${max_primary}"`
	MaxSecondary int    `help:"Cap on suppliers per search." default:"${max_secondary}"`
	OutputDir    string `help:"Directory for JSON and CSV exports." default:"${output_dir}"`

	Catalog   CatalogCmd   `cmd:"" help:"Scrape the catalog ranking page and translate its titles."`
	Suppliers SuppliersCmd `cmd:"" help:"Search the marketplace for suppliers of a keyword."`
	Crossref  CrossrefCmd  `cmd:"" help:"Search suppliers for every record of a saved catalog."`
	Watch     WatchCmd     `cmd:"" help:"Re-run catalog and cross-reference on an interval."`
}

// Apply overrides cfg with the parsed flags
func (c CLI) Apply(cfg config.Config) config.Config {
	cfg.Headless = c.Headless
	cfg.MaxScrolls = c.MaxScrolls
	cfg.MaxPrimaryRecords = c.MaxPrimary
	cfg.MaxSecondaryRecords = c.MaxSecondary
	cfg.OutputDir = c.OutputDir
	if c.Catalog.URL != "" {
		cfg.CatalogURL = c.Catalog.URL
	}
	return cfg
}

// App is bound to every command
type App struct {
	ctx      context.Context
	cfg      config.Config
	pipeline *pipeline.Pipeline
	out      io.Writer
}

// NewApp creates the command environment
func NewApp(ctx context.Context, cfg config.Config, p *pipeline.Pipeline, out io.Writer) *App {
	return &App{ctx: ctx, cfg: cfg, pipeline: p, out: out}
}

// CatalogCmd scrapes the catalog
type CatalogCmd struct {
	URL string `help:"Catalog ranking URL." default:"${catalog_url}"`
}

// Run executes the catalog command
func (c *CatalogCmd) Run(app *App) error {
	result, err := app.pipeline.RunCatalog(app.ctx, c.URL)
	if err != nil {
		return err
	}

	printCatalog(app.out, result.Records)
	fmt.Fprintf(app.out, "\nSaved %d products to %s and %s\n", len(result.Records), result.JSONPath, result.CSVPath)
	return nil
}

// SuppliersCmd searches the marketplace once
type SuppliersCmd struct {
	Keyword string `help:"Search keyword." required:"" short:"k"`
}

// Run executes the suppliers command
func (c *SuppliersCmd) Run(app *App) error {
	result, err := app.pipeline.RunSuppliers(app.ctx, c.Keyword)
	if err != nil {
		return err
	}

	printSuppliers(app.out, result.Suppliers)
	fmt.Fprintf(app.out, "\nSaved %d suppliers to %s\n", len(result.Suppliers), result.CSVPath)
	return nil
}

// CrossrefCmd cross-references a saved catalog
type CrossrefCmd struct {
	Input  string `help:"Catalog records JSON." default:"products_translated.json"`
	Output string `help:"Cross-reference results JSON." default:"alibaba_results.json"`
}

// Run executes the crossref command
func (c *CrossrefCmd) Run(app *App) error {
	result, err := app.pipeline.RunCrossReferenceFile(app.ctx, c.Input, c.Output)
	if result != nil && result.Results != nil {
		printCrossReference(app.out, result.Results)
		if result.JSONPath != "" {
			fmt.Fprintf(app.out, "\nSaved %d searches to %s and %s\n", result.Results.Len(), result.JSONPath, result.CSVPath)
		}
	}
	return err
}

// WatchCmd runs the full pipeline periodically
type WatchCmd struct{}

// Run executes the watch command until interrupted
func (c *WatchCmd) Run(app *App) error {
	fmt.Fprintf(app.out, "Watching %s every %s\n", app.cfg.CatalogURL, app.cfg.WatchInterval)
	return pipeline.NewWorker(app.pipeline, app.cfg.CatalogURL, app.cfg.WatchInterval).Start(app.ctx)
}

// failureHint explains what to do about a fatal scrape error. It returns
// an empty string for errors without a known remedy.
func failureHint(err error) string {
	var scrapeErr *scrapeerrors.ScrapeError
	if !errors.As(err, &scrapeErr) || !scrapeErr.IsFatal() {
		return ""
	}

	switch scrapeErr.Type {
	case scrapeerrors.ErrorTypeNavigation:
		return fmt.Sprintf("%s page could not be loaded: check the URL and the network, or raise NAVIGATION_TIMEOUT_SECONDS", scrapeErr.Site)
	case scrapeerrors.ErrorTypeSession:
		return "the browser could not be started: install Chromium with the playwright CLI (playwright install chromium)"
	case scrapeerrors.ErrorTypeConfiguration:
		return "fix the setting in the environment or .env file, or override it with a flag"
	}
	return ""
}

func printCatalog(out io.Writer, records []crawler.CatalogRecord) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tTITLE (EN)\tCLEANED\tPRICE\tREVIEWS\tCOMPANY")
	for _, r := range records {
		row := storage.CatalogRow(r)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", row[0], truncate(row[2], 48), row[3], row[6], row[7], row[8])
	}
	w.Flush()
}

func printSuppliers(out io.Writer, suppliers []crawler.SupplierRecord) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tCOMPANY\tMIN\tMAX\tURL")
	for i, r := range suppliers {
		row := storage.SupplierRow(r)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", strconv.Itoa(i+1), row[0], row[2], row[3], row[1])
	}
	w.Flush()
}

func printCrossReference(out io.Writer, results *crossref.Map) {
	for _, key := range results.Keys() {
		suppliers, _ := results.Get(key)
		fmt.Fprintf(out, "\n%s (%d suppliers)\n", key, len(suppliers))
		if len(suppliers) > 0 {
			printSuppliers(out, suppliers)
		}
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
