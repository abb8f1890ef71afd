package main

import (
	"venuebook/internal/reservations/handler"
	"venuebook/internal/reservations/repository"
	"venuebook/internal/reservations/service"
	"venuebook/internal/reservations/sweeper"
	"venuebook/internal/reservations/validator"
	venuerepo "venuebook/internal/venues/repository"
	"venuebook/pkg/app"
	"venuebook/pkg/config"
	"venuebook/pkg/kafka"
	kafka_config "venuebook/pkg/kafka/config"
	kafka_middleware "venuebook/pkg/kafka/middleware"
	"venuebook/pkg/notification"
)

const ServiceName = "reservations"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Reservations service")

	producer := initProducer(cfg)
	reservationService := initServices(cfg, notification.NewKafkaNotifier(producer, ServiceName))

	expirySweeper, err := sweeper.New(reservationService, cfg)
	if err != nil {
		cfg.Log.Fatal("Failed to configure expiry sweeper", "error", err)
	}

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, handler.NewReservationHandler(reservationService, cfg.Log))
	serverApp.AddWorker(expirySweeper)
	serverApp.AddWorker(&producerWorker{producer: producer, cfg: cfg})
	serverApp.Run()
}

func initProducer(cfg *config.Config) *kafka.Producer {
	kafkaCfg := kafka_config.Load(cfg.Log)
	producer, err := kafka.NewProducer(kafkaCfg, cfg.NotificationTopic, cfg.NotificationDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create notification producer", "error", err)
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	producer.Use(kafka_middleware.NewMetrics().Producer())

	cfg.Log.Info("Notification producer initialized", "topic", cfg.NotificationTopic)
	return producer
}

func initServices(cfg *config.Config, notifier notification.Notifier) service.ReservationService {
	reservationValidator := validator.NewReservationValidator(cfg.Log)
	reservationRepo := repository.NewMongoReservationRepository(cfg)
	lockRepo := repository.NewMongoLockRepository(cfg)
	venueRepo := venuerepo.NewMongoVenueRepository(cfg)

	reservationService, err := service.NewReservationService(
		reservationRepo,
		lockRepo,
		venueRepo,
		reservationValidator,
		notifier,
		cfg,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize reservation service", "error", err)
	}

	cfg.Log.Info("Reservation service initialized", "database", cfg.MongoDatabaseName)
	return reservationService
}

// producerWorker flushes and closes the producer after the sweeper stopped
// emitting expiry notifications.
type producerWorker struct {
	producer *kafka.Producer
	cfg      *config.Config
}

func (w *producerWorker) Start() {}

func (w *producerWorker) Stop() {
	if err := w.producer.Close(); err != nil {
		w.cfg.Log.Error("Failed to close notification producer", "error", err)
	}
}
