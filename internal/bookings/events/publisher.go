// Package events publishes booking outcomes to Kafka.
package events

import (
	"context"
	"fmt"
	"time"

	"roombook/pkg/config"
	"roombook/pkg/kafka"
	kafka_middleware "roombook/pkg/kafka/middleware"
	"roombook/pkg/logger"
	"roombook/pkg/model"
)

const schemaVersion = "1"

// KafkaPublisher emits one event per booking that reached a terminal status,
// keyed by the booking request id.
type KafkaPublisher struct {
	producer *kafka.Producer
	source   string
}

func NewKafkaPublisher(cfg *config.Config) (*KafkaPublisher, error) {
	producer, err := kafka.NewProducer(cfg.Kafka, cfg.Kafka.BookingEventsTopic, cfg.Kafka.BookingEventsDLQTopic, cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create booking events producer: %w", err)
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))

	return &KafkaPublisher{
		producer: producer,
		source:   cfg.ServiceName,
	}, nil
}

func (p *KafkaPublisher) PublishBookingEvent(ctx context.Context, booking *model.Booking) error {
	msg, err := bookingMessage(ctx, booking, p.source, time.Now().UTC())
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, msg)
}

func bookingMessage(ctx context.Context, booking *model.Booking, source string, at time.Time) (kafka.Message, error) {
	eventType := model.EventTypeFor(booking.Status)
	builder := kafka.NewMessage().
		WithKey(booking.RequestID).
		WithEventID(model.BookingEventID(eventType, booking.RequestID)).
		WithEventType(eventType).
		WithCorrelationID(booking.CorrelationID).
		WithSchemaVersion(schemaVersion).
		WithSource(source)
	if requestID := logger.RequestID(ctx); requestID != "" {
		builder.WithHeader(logger.RequestIDAttr, requestID)
	}
	return builder.WithValue(model.NewBookingEvent(booking, at)).Build()
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

// NopPublisher drops events when Kafka is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishBookingEvent(context.Context, *model.Booking) error { return nil }
