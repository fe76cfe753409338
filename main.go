package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"sjsage522/rankscout/config"
	"sjsage522/rankscout/internal/browser"
	"sjsage522/rankscout/internal/crawler"
	"sjsage522/rankscout/internal/translate"
	"sjsage522/rankscout/logger"
	"sjsage522/rankscout/services/cache"
	"sjsage522/rankscout/services/pipeline"
	"sjsage522/rankscout/services/publisher"
	"sjsage522/rankscout/services/storage"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	cfg := config.LoadConfig()

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("rankscout"),
		kong.Description("Scrape a ranked catalog and cross-reference it against a supplier marketplace."),
		kong.UsageOnError(),
		kong.Vars{
			"headless":      strconv.FormatBool(cfg.Headless),
			"max_scrolls":   strconv.Itoa(cfg.MaxScrolls),
			"max_primary":   strconv.Itoa(cfg.MaxPrimaryRecords),
			"max_secondary": strconv.Itoa(cfg.MaxSecondaryRecords),
			"output_dir":    cfg.OutputDir,
			"catalog_url":   cfg.CatalogURL,
		},
	)
	cfg = cli.Apply(cfg)

	// Validate after flags override the environment
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Str("hint", failureHint(err)).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Str("command", kctx.Command()).
		Bool("headless", cfg.Headless).
		Msg("Starting application")

	// Set up context with cancellation on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	services, err := initializeServices(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}

	app := NewApp(ctx, cfg, services.Pipeline, os.Stdout)
	runErr := kctx.Run(app)

	services.Cleanup()
	if runErr != nil {
		if hint := failureHint(runErr); hint != "" {
			log.Error().Err(runErr).Msg("Scrape aborted")
			fmt.Fprintln(os.Stderr, "rankscout: "+hint)
		} else {
			log.Error().Err(runErr).Msg("Command failed")
		}
		os.Exit(1)
	}
	log.Info().Msg("Done")
}

// Services holds all the initialized services
type Services struct {
	Browser   *browser.PlaywrightBrowser
	Publisher publisher.Publisher
	Pipeline  *pipeline.Pipeline
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		if err := s.Publisher.Close(); err != nil {
			logger.Warn("Failed to close publisher: %v", err)
		}
	}
	if s.Browser != nil {
		if err := s.Browser.Close(); err != nil {
			logger.Warn("Failed to stop browser driver: %v", err)
		}
	}
}

// initializeServices initializes all required services
func initializeServices(ctx context.Context, cfg config.Config) (*Services, error) {
	services := &Services{}

	b, err := browser.NewPlaywrightBrowser(cfg.Headless)
	if err != nil {
		return nil, err
	}
	services.Browser = b

	translator := newTranslator(cfg)

	// Publishing is optional; an unreachable Redis only disables it
	if cfg.RedisAddr != "" {
		redisPublisher := publisher.NewRedisPublisher(publisher.Options{
			Addr:            cfg.RedisAddr,
			DB:              cfg.RedisDB,
			StreamPrefix:    cfg.RedisStream,
			StreamCount:     cfg.RedisStreamCount,
			StreamMaxLength: cfg.RedisStreamMaxLength,
		})
		if err := redisPublisher.Ping(ctx); err != nil {
			logger.Warn("Redis at %s is unavailable, publishing disabled: %v", cfg.RedisAddr, err)
			redisPublisher.Close()
		} else {
			services.Publisher = redisPublisher
			logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)", cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
		}
	}

	services.Pipeline = pipeline.New(
		crawler.NewCatalogScraper(crawler.RakutenConfig(cfg), b, translator),
		crawler.NewMarketplaceScraper(crawler.AlibabaConfig(cfg), b),
		storage.NewStore(cfg.OutputDir),
		pipeline.Options{
			Timeout:   cfg.ScrapeTimeout,
			Publisher: services.Publisher,
		},
	)

	return services, nil
}

// newTranslator builds the translation client, cached when memcache is set
func newTranslator(cfg config.Config) translate.Translator {
	client := translate.NewClient(cfg.TranslateURL, cfg.TranslateRPS)
	if cfg.MemcacheAddr == "" {
		return client
	}

	memcache := cache.NewMemcacheService(cfg.MemcacheAddr)
	if err := memcache.Ping(); err != nil {
		logger.Warn("Memcache at %s is unavailable, translations are not cached: %v", cfg.MemcacheAddr, err)
		return client
	}

	logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)
	return translate.NewCachedTranslator(client, memcache, cfg.TranslationCacheTTL)
}
