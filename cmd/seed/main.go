package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"geoapi/internal/adapter/repo"
	"geoapi/internal/domain"
	"geoapi/internal/infra"
)

func strPtr(s string) *string { return &s }

var samples = []*domain.Geolocation{
	{
		IP:         "8.8.8.8",
		URL:        strPtr("google.com"),
		Latitude:   37.751,
		Longitude:  -97.822,
		City:       "Glenmont",
		Region:     "Ohio",
		Country:    "United States",
		Continent:  "North America",
		PostalCode: "44628",
		Timezone:   "America/Chicago",
		ISP:        "Google LLC",
	},
	{
		IP:         "1.1.1.1",
		URL:        strPtr("cloudflare.com"),
		Latitude:   -33.8688,
		Longitude:  151.2093,
		City:       "Sydney",
		Region:     "New South Wales",
		Country:    "Australia",
		Continent:  "Oceania",
		PostalCode: "2000",
		Timezone:   "Australia/Sydney",
		ISP:        "Cloudflare, Inc.",
	},
	{
		IP:        "93.184.216.34",
		URL:       strPtr("example.com"),
		Latitude:  42.1508,
		Longitude: -70.8228,
		City:      "Norwell",
		Region:    "Massachusetts",
		Country:   "United States",
		Continent: "North America",
		Timezone:  "America/New_York",
		ISP:       "Edgecast Inc.",
	},
}

func main() {
	_ = godotenv.Load()

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		exitWithError(errors.New("DATABASE_URL is required"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		exitWithError(fmt.Errorf("failed to connect database: %w", err))
	}
	defer pool.Close()

	logger := infra.NewLogger("cli").With().Str("cmd", "seed").Logger()
	store := repo.NewGeolocationRepo(pool, logger)

	for _, g := range samples {
		stored, outcome, err := store.Upsert(ctx, g)
		if err != nil {
			exitWithError(fmt.Errorf("failed to seed %s: %w", g.IP, err))
		}
		logger.Info().Str("ip", stored.IP).Str("outcome", string(outcome)).Msg("seeded geolocation")
	}
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
