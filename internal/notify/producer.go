package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/lesnaya-zaimka/booking-service/internal/domain"
)

// ReservationCreatedEvent событие "создано бронирование" для консьюмера
// уведомлений персонала. Доставка best-effort, at-most-once: сбой публикации
// логируется и никогда не влияет на зафиксированное бронирование.
type ReservationCreatedEvent struct {
	ReservationID   int64     `json:"reservationId"`
	ResourceType    string    `json:"resourceType"`
	UnitID          *string   `json:"unitId,omitempty"`
	Variant         *string   `json:"variant,omitempty"`
	Date            string    `json:"date"`
	StartTime       string    `json:"startTime"`
	DurationMinutes int       `json:"durationMinutes"`
	Units           int       `json:"units"`
	Status          string    `json:"status"`
	Total           float64   `json:"total"`
	CustomerName    string    `json:"customerName"`
	CustomerPhone   string    `json:"customerPhone"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Producer издатель событий бронирований в Kafka
type Producer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer создает издателя событий
func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 50 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		},
		topic: topic,
	}
}

// PublishReservationCreated публикует событие о созданном бронировании
func (p *Producer) PublishReservationCreated(ctx context.Context, res *domain.Reservation) error {
	event := ReservationCreatedEvent{
		ReservationID:   res.ID,
		ResourceType:    string(res.ResourceType),
		UnitID:          res.UnitID,
		Variant:         res.Variant,
		Date:            res.Date.Format(domain.DateFormat),
		StartTime:       res.StartTime.String(),
		DurationMinutes: res.DurationMinutes,
		Units:           res.Units,
		Status:          string(res.Status),
		Total:           res.Price.Total,
		CustomerName:    res.CustomerName,
		CustomerPhone:   res.CustomerPhone,
		CreatedAt:       res.CreatedAt,
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("notify: marshal reservation created event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: p.topic,
		Key:   []byte(fmt.Sprintf("reservation-%d", res.ID)),
		Value: data,
		Time:  time.Now(),
	})
	if err != nil {
		return fmt.Errorf("notify: publish reservation created event: %w", err)
	}

	return nil
}

// Close закрывает writer
func (p *Producer) Close() error {
	return p.writer.Close()
}
