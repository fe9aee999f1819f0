package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"freight-pricing-service/internal/auth"
	"freight-pricing-service/internal/config"
	"freight-pricing-service/internal/db"
	httphandler "freight-pricing-service/internal/http"
	"freight-pricing-service/internal/http/middleware"
	"freight-pricing-service/internal/logger"
	"freight-pricing-service/internal/pricing"
	"freight-pricing-service/internal/refdata"
	"freight-pricing-service/internal/repository"
	"freight-pricing-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.Environment)

	mode, err := pricing.ParseEuroAdjustmentMode(cfg.Pricing.EuroAdjustmentMode)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("invalid pricing configuration")
	}

	database, err := db.New(cfg, appLogger, repository.Models()...)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to connect database")
	}

	businessRepo := repository.NewBusinessRepository(database)
	transportRepo := repository.NewTransportRepository(database)
	routeRepo := repository.NewRouteRepository(database)
	costRepo := repository.NewCostRepository(database)
	cargoRepo := repository.NewCargoRepository(database)
	offerRepo := repository.NewOfferRepository(database)
	historyRepo := repository.NewHistoryRepository(database)
	rateRepo := repository.NewRateRepository(database)

	refs := refdata.NewStore(refdata.Defaults().WithUnknownRate(cfg.Pricing.DefaultUnknownTollRate), appLogger)

	rateService := service.NewRateService(rateRepo, businessRepo, refs, appLogger)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := rateService.LoadReferenceData(ctx); err != nil {
		cancel()
		appLogger.Fatal().Err(err).Msg("failed to load reference data")
	}
	cancel()

	services := httphandler.Services{
		Catalog: service.NewCatalogService(businessRepo, transportRepo, refs, appLogger),
		Routes:  service.NewRouteService(routeRepo, businessRepo, transportRepo, cargoRepo, historyRepo, refs, appLogger),
		Costs:   service.NewCostService(costRepo, routeRepo, businessRepo, transportRepo, refs, mode, appLogger),
		Cargos:  service.NewCargoService(cargoRepo, businessRepo, historyRepo, appLogger),
		Offers:  service.NewOfferService(offerRepo, costRepo, routeRepo, cargoRepo, cfg.Pricing.DefaultMarginPercent, appLogger),
		Rates:   rateService,
	}

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)

	handler := httphandler.NewHandler(services, appLogger)
	authMiddleware := middleware.Auth(tokenParser, businessRepo, appLogger)
	router := httphandler.NewRouter(handler, authMiddleware, cfg, appLogger)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	appLogger.Info().Str("addr", addr).Str("euro_adjustment_mode", string(mode)).Msg("starting freight pricing service")

	if err := router.Run(addr); err != nil {
		appLogger.Error().Err(err).Msg("failed to start server")
		os.Exit(1)
	}
}
