package main

import (
	"roombook/internal/bookings/events"
	"roombook/internal/bookings/handler"
	"roombook/internal/bookings/repository"
	"roombook/internal/bookings/service"
	"roombook/internal/bookings/validator"
	"roombook/pkg/app"
	"roombook/pkg/client"
	"roombook/pkg/config"
)

const ServiceName = config.ServiceBookings

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}
	cfg.LogConfiguration()
	cfg.SetMongo()

	cfg.Log.Info("Starting Bookings service")
	serverApp := app.NewApplication(cfg)

	bookingValidator := validator.NewBookingValidator(cfg.Log)
	bookingService := initServices(cfg, serverApp, bookingValidator)

	serverApp.SetApp(
		handler.NewBookingHandler(bookingService, bookingValidator, cfg.Log),
		app.WithRateLimit(),
		app.WithJSONBody(),
	)
	serverApp.Run()
}

func initServices(cfg *config.Config, serverApp *app.Application, bookingValidator *validator.BookingValidator) service.BookingService {
	bookingService := service.NewBookingService(
		repository.NewMongoBookingRepository(cfg),
		client.NewHotelClient(cfg.HotelBaseURL, cfg.HotelTimeout),
		initPublisher(cfg, serverApp),
		bookingValidator,
		cfg,
	)

	cfg.Log.Info("Booking service initialized",
		"database", cfg.MongoDatabaseName,
		"hotel_base_url", cfg.HotelBaseURL,
	)
	return bookingService
}

func initPublisher(cfg *config.Config, serverApp *app.Application) service.EventPublisher {
	if cfg.Kafka == nil || !cfg.Kafka.Enabled {
		cfg.Log.Info("Kafka disabled, booking events will not be published")
		return events.NopPublisher{}
	}

	publisher, err := events.NewKafkaPublisher(cfg)
	if err != nil {
		cfg.Log.Fatal("Failed to create booking events publisher", "error", err)
	}
	serverApp.OnShutdown("booking-events-producer", publisher.Close)
	return publisher
}
