// Command export dumps a city's stored ads into a CSV file.
package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"

	"sjsage522/rentalscraper/config"
	"sjsage522/rentalscraper/internal/crawler"
	"sjsage522/rentalscraper/logger"
	scrapeerrors "sjsage522/rentalscraper/pkg/errors"
	"sjsage522/rentalscraper/services/store"

	"github.com/joho/godotenv"
)

func main() {
	city := flag.String("city", "", "city whose ads table is exported")
	flag.Parse()

	godotenv.Load()
	logger.Init()
	log := logger.ForStore()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	path, count, err := export(context.Background(), cfg, *city)
	if err != nil {
		log.Error().Err(err).Str("city", *city).Msg("Export failed")
		os.Exit(1)
	}

	log.Info().Str("file", path).Int("rows", count).Msg("Export finished")
}

// export writes <ExportDir>/ads_<city>.csv and returns its path and row count
func export(ctx context.Context, cfg *config.Config, cityInput string) (string, int, error) {
	city, err := crawler.NormalizeCity(cityInput)
	if err != nil {
		return "", 0, err
	}
	table, err := store.TableName(city)
	if err != nil {
		return "", 0, err
	}

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
		return "", 0, err
	}
	defer db.Close()

	if err := os.MkdirAll(cfg.ExportDir, 0o755); err != nil {
		return "", 0, scrapeerrors.NewStorage("export", "failed to create export directory", err)
	}

	path := filepath.Join(cfg.ExportDir, string(table)+".csv")
	f, err := os.Create(path)
	if err != nil {
		return "", 0, scrapeerrors.NewStorage("export", "failed to create "+path, err)
	}
	defer f.Close()

	count, err := db.ExportCSV(ctx, table, f)
	if err != nil {
		return "", count, err
	}
	return path, count, nil
}
