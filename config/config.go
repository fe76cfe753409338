package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	scrapeerrors "sjsage522/rankscout/pkg/errors"
)

// Config represents the application configuration
type Config struct {
	// Target sites
	CatalogURL           string
	MarketplaceSearchURL string

	// Scrape tuning
	Headless              bool
	MaxScrolls            int
	MarketplaceMaxScrolls int
	MaxPrimaryRecords     int // lowers, never raises, each catalog tier cap
	MaxSecondaryRecords   int
	NavigationTimeout     time.Duration
	IdleTimeout           time.Duration
	ScrapeTimeout         time.Duration

	// Translation backend
	TranslateURL    string
	TranslateTarget string
	TranslateRPS    float64

	// Memcache configuration (translation cache, disabled when empty)
	MemcacheAddr        string
	TranslationCacheTTL time.Duration

	// Redis configuration (record stream, disabled when empty)
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamCount     int
	RedisStreamMaxLength int

	// Output
	OutputDir     string
	WatchInterval time.Duration

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() Config {
	return Config{
		CatalogURL:            getEnv("CATALOG_URL", "https://ranking.rakuten.co.jp/daily/100371/?l2-id=ranking_a_top_gmenu"),
		MarketplaceSearchURL:  getEnv("MARKETPLACE_SEARCH_URL", "https://www.alibaba.com/trade/search?fsb=y&IndexArea=product_en&SearchText=%s&tab=supplier"),
		Headless:              getEnvBool("HEADLESS", false),
		MaxScrolls:            getEnvInt("MAX_SCROLLS", 6),
		MarketplaceMaxScrolls: getEnvInt("MARKETPLACE_MAX_SCROLLS", 5),
		MaxPrimaryRecords:     getEnvInt("MAX_PRIMARY_RECORDS", 10),
		MaxSecondaryRecords:   getEnvInt("MAX_SECONDARY_RECORDS", 5),
		NavigationTimeout:     time.Duration(getEnvInt("NAVIGATION_TIMEOUT_SECONDS", 60)) * time.Second,
		IdleTimeout:           time.Duration(getEnvInt("IDLE_TIMEOUT_SECONDS", 5)) * time.Second,
		ScrapeTimeout:         time.Duration(getEnvInt("SCRAPE_TIMEOUT_SECONDS", 300)) * time.Second,
		TranslateURL:          getEnv("TRANSLATE_URL", "https://translate.googleapis.com/translate_a/single"),
		TranslateTarget:       getEnv("TRANSLATE_TARGET", "en"),
		TranslateRPS:          getEnvFloat("TRANSLATE_RPS", 2),
		MemcacheAddr:          getEnv("MEMCACHE_ADDR", ""),
		TranslationCacheTTL:   time.Duration(getEnvInt("TRANSLATION_CACHE_TTL_HOURS", 168)) * time.Hour,
		RedisAddr:             getEnv("REDIS_ADDR", ""),
		RedisDB:               getEnvInt("REDIS_DB", 0),
		RedisStream:           getEnv("REDIS_STREAM", "rankscout"),
		RedisStreamCount:      getEnvInt("REDIS_STREAM_COUNT", 1),
		RedisStreamMaxLength:  getEnvInt("REDIS_STREAM_MAX_LENGTH", 1000),
		OutputDir:             getEnv("OUTPUT_DIR", "."),
		WatchInterval:         time.Duration(getEnvInt("WATCH_INTERVAL_MINUTES", 1440)) * time.Minute,
		Environment:           getEnv("SCOUT_ENVIRONMENT", "development"),
	}
}

// Validate checks that the configuration is usable
func (c Config) Validate() error {
	if c.CatalogURL == "" {
		return scrapeerrors.NewConfiguration("CATALOG_URL is required", nil)
	}
	if c.MarketplaceSearchURL == "" {
		return scrapeerrors.NewConfiguration("MARKETPLACE_SEARCH_URL is required", nil)
	}
	if c.MaxScrolls < 0 || c.MarketplaceMaxScrolls < 0 {
		return scrapeerrors.NewConfiguration("scroll counts must not be negative", nil)
	}
	if c.MaxPrimaryRecords <= 0 {
		return scrapeerrors.NewConfiguration(fmt.Sprintf("MAX_PRIMARY_RECORDS must be positive, got %d", c.MaxPrimaryRecords), nil)
	}
	if c.MaxSecondaryRecords <= 0 {
		return scrapeerrors.NewConfiguration(fmt.Sprintf("MAX_SECONDARY_RECORDS must be positive, got %d", c.MaxSecondaryRecords), nil)
	}
	if c.NavigationTimeout <= 0 {
		return scrapeerrors.NewConfiguration("NAVIGATION_TIMEOUT_SECONDS must be positive", nil)
	}
	if c.TranslateRPS <= 0 {
		return scrapeerrors.NewConfiguration("TRANSLATE_RPS must be positive", nil)
	}
	if c.RedisAddr != "" && c.RedisStreamCount <= 0 {
		return scrapeerrors.NewConfiguration("REDIS_STREAM_COUNT must be positive when REDIS_ADDR is set", nil)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}
