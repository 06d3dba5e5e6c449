package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"sjsage522/rentalscraper/config"
	"sjsage522/rentalscraper/helpers"
	"sjsage522/rentalscraper/internal"
	"sjsage522/rentalscraper/internal/crawler"
	"sjsage522/rentalscraper/logger"
	scrapeerrors "sjsage522/rentalscraper/pkg/errors"
	"sjsage522/rentalscraper/pkg/metrics"
	"sjsage522/rentalscraper/services/cache"
	"sjsage522/rentalscraper/services/publisher"
	"sjsage522/rentalscraper/services/store"
	"sjsage522/rentalscraper/services/worker"

	"github.com/joho/godotenv"
)

func main() {
	cityFlag := flag.String("city", "", "city to scrape, prompted for when empty")
	flag.Parse()

	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	city := *cityFlag
	if city == "" {
		city, err = promptCity(os.Stdin, os.Stdout)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to read city")
		}
	}

	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(cfg.MetricsAddr); err != nil {
				log.Error().Err(err).Msg("Metrics listener stopped")
			}
		}()
	}

	log.Info().
		Str("environment", cfg.Environment).
		Int("number_of_pages", cfg.NumberOfPages).
		Int("max_retries", cfg.MaxRetries).
		Msg("Starting application")

	total, err := run(context.Background(), cfg, city)
	if err != nil {
		if scrapeerrors.IsType(err, scrapeerrors.ErrorTypeValidation) {
			log.Error().Err(err).Msg("Input error")
		} else {
			log.Error().Err(err).Msg("Scrape run failed")
		}
		os.Exit(1)
	}

	log.Info().Int("total", total).Msg("Scrape run finished")
}

// promptCity asks for the city on in
func promptCity(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Enter city for search: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// run validates the city, provisions its table and scrapes it
func run(ctx context.Context, cfg *config.Config, cityInput string) (int, error) {
	city, err := crawler.NormalizeCity(cityInput)
	if err != nil {
		return 0, err
	}

	client, err := helpers.NewHTTPClient(cfg.RequestTimeout, cfg.ProxyURL)
	if err != nil {
		return 0, scrapeerrors.NewConfiguration("failed to create http client", err)
	}

	searchURL := crawler.SearchURL(cfg.SiteOrigin, cfg.SearchPath, city)
	available, err := crawler.CityAvailable(ctx, client, searchURL, cfg.UserAgent)
	if err != nil {
		logger.LogError("city", err, "Error checking city availability")
	}
	if !available {
		return 0, scrapeerrors.NewValidation("city", fmt.Sprintf("the city %q is not available on the platform", city))
	}

	services, err := initializeServices(ctx, cfg)
	if err != nil {
		return 0, err
	}
	defer services.Cleanup()

	table, err := services.Store.CreateTable(ctx, city)
	if err != nil {
		return 0, err
	}

	runLogger := helpers.NewLogger(cfg.ErrorLogFile, logger.ForWorker().WithField("table", string(table)))
	selectors := crawler.DefaultSelectors(cfg.AreaLabel)

	fetcher := crawler.NewFetcher(crawler.FetcherConfig{
		Client:     client,
		UserAgent:  cfg.UserAgent,
		MaxRetries: cfg.MaxRetries,
		Backoff:    cfg.RetryBackoff,
		Logger:     helpers.NewLogger(cfg.ErrorLogFile, logger.ForFetcher()),
		Cache:      services.Cache,
		BlockTime:  cfg.BlockTime,
	})

	w := worker.NewWorker(
		fetcher,
		crawler.NewLinkExtractor(cfg.SiteOrigin, selectors),
		crawler.NewDetailExtractor(selectors),
		services.Dependencies,
		runLogger,
		cfg.RequestDelay,
		nil,
	)

	total := w.ScrapeAds(ctx, searchURL, table, cfg.NumberOfPages)

	if services.Publisher != nil {
		if err := services.Publisher.TrimStreams(); err != nil {
			helpers.NewLogger(cfg.ErrorLogFile, logger.ForPublisher()).LogError("publisher", err)
		}
	}

	return total, nil
}

// Services holds all the initialized services
type Services struct {
	internal.Dependencies
	db *store.SQLStore
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		s.Publisher.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
}

// initializeServices initializes all required services
func initializeServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	services := &Services{}

	db, err := store.Open(store.Config{
		Driver:   cfg.Database.Driver,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.Name,
		SSLMode:  cfg.Database.SSLMode,
		Path:     cfg.Database.Path,
	})
	if err != nil {
		return nil, err
	}
	services.db = db
	services.Store = db

	logger.Info("Connected to %s database", cfg.Database.Driver)

	if cfg.MemcacheAddr != "" {
		memcacheService := cache.NewMemcacheService(cfg.MemcacheAddr)
		if err := memcacheService.Ping(); err != nil {
			logger.LogError("cache", err, "Memcache unavailable at %s, rate-limit blocking disabled", cfg.MemcacheAddr)
		} else {
			services.Cache = memcacheService
			logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)
		}
	}

	if cfg.RedisAddr != "" {
		redisPublisher := publisher.NewRedisPublisher(
			ctx,
			cfg.RedisAddr,
			cfg.RedisDB,
			cfg.RedisStream,
			cfg.RedisStreamCount,
			cfg.RedisStreamMaxLength,
		)
		if err := redisPublisher.Ping(); err != nil {
			redisPublisher.Close()
			services.Cleanup()
			return nil, err
		}
		services.Publisher = redisPublisher

		logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)",
			cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
	}

	return services, nil
}
