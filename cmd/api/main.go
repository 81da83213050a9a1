package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"geoapi/internal/adapter/repo"
	"geoapi/internal/domain"
	"geoapi/internal/http/handlers"
	httpapi "geoapi/internal/http/httpapi"
	"geoapi/internal/infra"
	"geoapi/internal/provider/ipstack"
	"geoapi/internal/provider/mmdb"
	"geoapi/internal/service"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	store := repo.NewGeolocationRepo(dbpool, logger)

	locator, closeLocator, err := buildLocator(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("provider", cfg.GeoProvider).Msg("failed to initialize geolocation provider")
	}
	defer closeLocator()

	geo := service.NewGeolocation(store, locator, logger)
	app := handlers.NewApp(geo, store, locator, logger)

	router := httpapi.NewRouter(app, cfg, logger)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Str("provider", cfg.GeoProvider).Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

func buildLocator(cfg *infra.Config, logger infra.Logger) (domain.GeolocationLocator, func(), error) {
	switch cfg.GeoProvider {
	case "mmdb":
		loc, err := mmdb.Open(cfg.GeoIPDBPath, &logger)
		if err != nil {
			return nil, nil, err
		}
		return loc, func() { _ = loc.Close() }, nil
	default:
		client, err := ipstack.NewClient(ipstack.Options{
			APIKey:         cfg.IPStackAPIKey,
			BaseURL:        cfg.IPStackBaseURL,
			Logger:         &logger,
			RequestTimeout: cfg.LookupTimeout,
		})
		if err != nil {
			return nil, nil, err
		}
		return client, func() {}, nil
	}
}
