package main

import (
	"venuebook/internal/venues/handler"
	"venuebook/internal/venues/repository"
	"venuebook/internal/venues/service"
	"venuebook/internal/venues/validator"
	"venuebook/pkg/app"
	"venuebook/pkg/config"
)

const ServiceName = "venues"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Venues service")
	venueService := initServices(cfg)
	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, handler.NewVenueHandler(venueService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.VenueService {
	venueValidator := validator.NewVenueValidator(cfg.Log)
	venueRepo := repository.NewMongoVenueRepository(cfg)
	venueService := service.NewVenueService(
		venueRepo,
		venueValidator,
		cfg,
	)

	cfg.Log.Info("Venue service initialized", "database", cfg.MongoDatabaseName)
	return venueService
}
