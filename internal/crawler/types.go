package crawler

import (
	"context"
	"strings"
)

// CatalogRecord is one ranked product from the catalog site. Optional
// fields are nil when the page did not carry them.
type CatalogRecord struct {
	Rank            *string `json:"Rank"`
	TitleSource     *string `json:"Product Title (JP)"`
	TitleTranslated *string `json:"Product Title (EN)"`
	TitleNormalized string  `json:"Cleaned Title"`
	DetailURL       *string `json:"Product URL"`
	ImageURL        *string `json:"Image URL"`
	Price           *int    `json:"Price"`
	ReviewCountText *string `json:"Reviews"`
	SellerName      *string `json:"Company"`
}

// Retained reports whether the record carries a translated title or a
// detail link. Records with neither are extraction noise.
func (r CatalogRecord) Retained() bool {
	return present(r.TitleTranslated) || present(r.DetailURL)
}

// SearchKey is the keyword used to look the product up on the marketplace
func (r CatalogRecord) SearchKey() string {
	return strings.TrimSpace(r.TitleNormalized)
}

// SupplierRecord is one supplier card from the marketplace search
type SupplierRecord struct {
	CompanyName string  `json:"Company Name"`
	CompanyURL  *string `json:"Company URL"`
	PriceMin    *int    `json:"Min Price"`
	PriceMax    *int    `json:"Max Price"`
	ImageURL    *string `json:"Image URL"`
}

// CatalogSource is implemented by primary site scrapers
type CatalogSource interface {
	// Scrape returns the ranked records of url in page order
	Scrape(ctx context.Context, url string) ([]CatalogRecord, error)

	// GetName returns the scraper's name for logging and identification
	GetName() string
}

// SupplierSearcher is implemented by secondary site scrapers
type SupplierSearcher interface {
	// Search returns the suppliers listed for keyword in relevance order
	Search(ctx context.Context, keyword string) ([]SupplierRecord, error)

	// GetName returns the scraper's name for logging and identification
	GetName() string
}

func present(s *string) bool {
	return s != nil && *s != ""
}
