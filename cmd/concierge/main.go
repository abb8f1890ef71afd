package main

import (
	concierge "venuebook/internal/concierge/core"
	"venuebook/internal/concierge/handler"
	"venuebook/internal/concierge/service"
	"venuebook/pkg/app"
	"venuebook/pkg/config"
	"venuebook/pkg/sealer"
)

const ServiceName = "concierge"

func main() {
	cfg := config.Load(ServiceName)
	cfg.Log.Info("Starting Concierge service",
		"reservations_base_url", cfg.ReservationsBaseURL,
		"venues_base_url", cfg.VenuesBaseURL,
	)

	if cfg.SlotTokenKey == "" {
		cfg.Log.Fatal("SLOT_TOKEN_KEY must be set")
	}
	slotTokens, err := sealer.New(cfg.SlotTokenKey)
	if err != nil {
		cfg.Log.Fatal("Invalid SLOT_TOKEN_KEY", "error", err)
	}

	cfg.Client.SetReservationClient(cfg.ReservationsBaseURL, cfg.ServiceCallTimeout)
	cfg.Client.SetVenueClient(cfg.VenuesBaseURL, cfg.ServiceCallTimeout)

	conciergeService := service.NewConciergeService(&concierge.Backends{
		Reservations: cfg.Client.Reservations,
		Venues:       cfg.Client.Venues,
		SlotTokens:   slotTokens,
	}, cfg)

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, handler.NewConciergeHandler(conciergeService, cfg.Log))
	serverApp.Run()
}
