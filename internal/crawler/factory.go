package crawler

import (
	"time"

	"sjsage522/rankscout/config"
	"sjsage522/rankscout/internal/browser"
	"sjsage522/rankscout/internal/extract"
)

const desktopUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120 Safari/537.36"

// Catalog field names
const (
	fieldRank    = "rank"
	fieldTitle   = "title"
	fieldURL     = "url"
	fieldImage   = "image"
	fieldPrice   = "price"
	fieldReviews = "reviews"
	fieldCompany = "company"
)

// Tier is one region of the catalog page with its own markup and cap
type Tier struct {
	Name      string
	Container string
	Limit     int
	Fields    extract.FieldMap
}

// CatalogConfig contains the configuration for a catalog scraper
type CatalogConfig struct {
	URL            string
	BaseURL        string
	Provider       string
	TargetLanguage string
	Profile        browser.Profile
	Tiers          []Tier
}

// MarketplaceSelectors locate the page-level lists that are aligned by index
type MarketplaceSelectors struct {
	Supplier string
	Price    string
	Image    string
}

// MarketplaceConfig contains the configuration for a supplier search scraper
type MarketplaceConfig struct {
	// SearchURL is a template; %s receives the query-escaped keyword
	SearchURL string
	BaseURL   string
	Provider  string
	Limit     int
	Profile   browser.Profile
	Selectors MarketplaceSelectors
}

// RakutenConfig describes the Rakuten daily ranking page
func RakutenConfig(cfg config.Config) CatalogConfig {
	fields := func(rankSelector string) extract.FieldMap {
		return extract.FieldMap{
			fieldRank:    extract.Text(rankSelector),
			fieldTitle:   extract.Text(".rnkRanking_itemName a"),
			fieldURL:     extract.Attr(".rnkRanking_itemName a", "href"),
			fieldImage:   extract.Attr(".rnkRanking_image img", "src"),
			fieldPrice:   extract.Text(".rnkRanking_price"),
			fieldReviews: extract.Text("a[href*='review']"),
			fieldCompany: extract.Text(".rnkRanking_shop a"),
		}
	}

	return CatalogConfig{
		URL:            cfg.CatalogURL,
		BaseURL:        "https://ranking.rakuten.co.jp",
		Provider:       "Rakuten",
		TargetLanguage: cfg.TranslateTarget,
		Profile: browser.Profile{
			Name:              "Rakuten",
			UserAgent:         desktopUserAgent,
			Locale:            "ja-JP",
			TimezoneID:        "Asia/Tokyo",
			ConsentLabels:     []string{"同意", "同意する", "Accept", "Agree", "閉じる", "同意して続ける"},
			MaxScrolls:        cfg.MaxScrolls,
			ScrollSettle:      800 * time.Millisecond,
			NavigationTimeout: cfg.NavigationTimeout,
			IdleTimeout:       cfg.IdleTimeout,
		},
		Tiers: []Tier{
			{
				Name:      "top",
				Container: "#rnkRankingMain .rnkRanking_top3box, #rnkRankingMain .rnkRanking_item",
				Limit:     capLimit(10, cfg.MaxPrimaryRecords),
				Fields:    fields(".rnkRanking_rank"),
			},
			{
				Name:      "remainder",
				Container: ".rnkRanking_after4box",
				Limit:     capLimit(7, cfg.MaxPrimaryRecords),
				Fields:    fields(".rnkRanking_dispRank"),
			},
		},
	}
}

// AlibabaConfig describes the Alibaba supplier search page
func AlibabaConfig(cfg config.Config) MarketplaceConfig {
	return MarketplaceConfig{
		SearchURL: cfg.MarketplaceSearchURL,
		BaseURL:   "https://www.alibaba.com",
		Provider:  "Alibaba",
		Limit:     cfg.MaxSecondaryRecords,
		Profile: browser.Profile{
			Name:              "Alibaba",
			UserAgent:         desktopUserAgent,
			Locale:            "en-US",
			TimezoneID:        "Asia/Shanghai",
			MaxScrolls:        cfg.MarketplaceMaxScrolls,
			ScrollSettle:      time.Second,
			NavigationTimeout: cfg.NavigationTimeout,
			IdleTimeout:       cfg.IdleTimeout,
		},
		Selectors: MarketplaceSelectors{
			Supplier: "a[target='_self'][href*='company_profile.html']",
			Price:    "div.price.max-row-2",
			Image:    "img[src*='alicdn.com']",
		},
	}
}

// capLimit bounds a tier's own cap by the configured record cap
func capLimit(tierLimit, configured int) int {
	if configured > 0 && configured < tierLimit {
		return configured
	}
	return tierLimit
}
