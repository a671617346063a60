package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// BookingEvent is the payload published for every booking lifecycle change:
// booking_created, booking_rebooked, booking_cancelled, booking_completed.
type BookingEvent struct {
	Type          string    `json:"type"`
	Ref           string    `json:"ref"`
	BookingID     int       `json:"booking_id"`
	CustomerID    int       `json:"customer_id"`
	CustomerEmail string    `json:"customer_email"`
	FlightID      int       `json:"flight_id"`
	FlightNumber  string    `json:"flight_number"`
	Class         string    `json:"class"`
	Fee           float64   `json:"fee"`
	DepartureDate time.Time `json:"departure_date"`
}

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 50 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}
	return nil
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
