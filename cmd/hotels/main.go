package main

import (
	"roombook/internal/hotels/handler"
	"roombook/internal/hotels/repository"
	"roombook/internal/hotels/service"
	"roombook/internal/hotels/validator"
	"roombook/pkg/app"
	"roombook/pkg/config"
	"roombook/pkg/kafka"
	kafka_middleware "roombook/pkg/kafka/middleware"
)

const ServiceName = "hotels"

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}
	cfg.LogConfiguration()
	cfg.SetMongo()

	cfg.Log.Info("Starting Hotels service")
	lockService, roomService := initServices(cfg)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewRoomHandler(lockService, roomService, cfg.Log))
	initBookingEventsConsumer(cfg, serverApp, roomService)
	serverApp.Run()
}

func initServices(cfg *config.Config) (service.RoomLockService, service.RoomService) {
	lockService := service.NewRoomLockService(
		repository.NewMongoLockRepository(cfg),
		repository.NewMongoHoldGuardRepository(cfg),
		validator.NewHoldValidator(cfg.Log),
		cfg,
	)
	roomService := service.NewRoomService(repository.NewMongoRoomRepository(cfg), cfg)

	cfg.Log.Info("Room services initialized", "database", cfg.MongoDatabaseName)
	return lockService, roomService
}

// initBookingEventsConsumer keeps room popularity counters in step with
// confirmed bookings when Kafka is enabled.
func initBookingEventsConsumer(cfg *config.Config, serverApp *app.Application, rooms service.RoomService) {
	if cfg.Kafka == nil || !cfg.Kafka.Enabled {
		cfg.Log.Info("Kafka disabled, room booking counters will not be updated")
		return
	}

	consumer, err := kafka.NewConsumer(
		cfg.Kafka,
		cfg.Kafka.BookingEventsTopic,
		cfg.Kafka.ConsumerGroupID,
		cfg.Kafka.BookingEventsDLQTopic,
		rooms.HandleBookingEvent,
		cfg.Log,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create booking events consumer", "error", err)
	}
	consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))

	serverApp.Go("booking-events-consumer", consumer.Start)
	serverApp.OnShutdown("booking-events-consumer", consumer.Close)
}
