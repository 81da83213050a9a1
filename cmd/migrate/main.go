package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"geoapi/internal/infra"
)

const createGeolocationTable = `
CREATE TABLE IF NOT EXISTS ip_geolocation (
    ip          TEXT PRIMARY KEY,
    url         TEXT,
    latitude    DOUBLE PRECISION NOT NULL,
    longitude   DOUBLE PRECISION NOT NULL,
    city        TEXT NOT NULL DEFAULT '',
    region      TEXT NOT NULL DEFAULT '',
    country     TEXT NOT NULL DEFAULT '',
    continent   TEXT NOT NULL DEFAULT '',
    postal_code TEXT NOT NULL DEFAULT '',
    timezone    TEXT NOT NULL DEFAULT '',
    isp         TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const createURLIndex = `
CREATE INDEX IF NOT EXISTS idx_ip_geolocation_url ON ip_geolocation (url) WHERE url IS NOT NULL`

func main() {
	var timeoutFlag int
	flag.IntVar(&timeoutFlag, "timeout", 30, "migration timeout in seconds")
	flag.Parse()

	_ = godotenv.Load()

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		exitWithError(errors.New("DATABASE_URL is required"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutFlag)*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		exitWithError(fmt.Errorf("failed to connect database: %w", err))
	}
	defer pool.Close()

	logger := infra.NewLogger("cli").With().Str("cmd", "migrate").Logger()

	for _, stmt := range []string{createGeolocationTable, createURLIndex} {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			exitWithError(fmt.Errorf("failed to apply migration: %w", err))
		}
	}

	logger.Info().Msg("migrations applied")
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
