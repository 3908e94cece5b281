package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/fekuna/omnipos-pdv-service/internal/model"
	"github.com/google/uuid"
)

const EventTypeSaleCompleted = "SaleCompleted"

// Producer is satisfied by *broker.KafkaProducer.
type Producer interface {
	Publish(ctx context.Context, key, value []byte) error
}

type SaleCompletedEvent struct {
	EventID   string      `json:"event_id"`
	EventType string      `json:"event_type"`
	Payload   SalePayload `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

type SalePayload struct {
	ID            int64               `json:"id"`
	RequestID     *string             `json:"request_id,omitempty"`
	TotalAmount   model.Money         `json:"total_amount"`
	PaymentMethod model.PaymentMethod `json:"payment_method"`
	PaidAmount    *model.Money        `json:"paid_amount"`
	ChangeAmount  *model.Money        `json:"change_amount"`
	OperatorID    string              `json:"operator_id"`
	Items         []SaleItemPayload   `json:"items"`
	CreatedAt     time.Time           `json:"created_at"`
}

type SaleItemPayload struct {
	ProductID   int64       `json:"product_id"`
	Quantity    int         `json:"quantity"`
	PriceAtSale model.Money `json:"price_at_sale"`
}

type KafkaPublisher struct {
	producer Producer
	now      func() time.Time
}

func NewKafkaPublisher(producer Producer) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// PublishSaleCompleted emits one event keyed by sale id so every event for
// a sale lands on the same partition.
func (p *KafkaPublisher) PublishSaleCompleted(ctx context.Context, s *model.Sale) error {
	event := SaleCompletedEvent{
		EventID:   uuid.New().String(),
		EventType: EventTypeSaleCompleted,
		Timestamp: p.now(),
		Payload: SalePayload{
			ID:            s.ID,
			RequestID:     s.RequestID,
			TotalAmount:   s.TotalAmount,
			PaymentMethod: s.PaymentMethod,
			PaidAmount:    s.PaidAmount,
			ChangeAmount:  s.ChangeAmount,
			OperatorID:    s.OperatorID,
			Items:         make([]SaleItemPayload, 0, len(s.Items)),
			CreatedAt:     s.Timestamp,
		},
	}
	for _, item := range s.Items {
		event.Payload.Items = append(event.Payload.Items, SaleItemPayload{
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			PriceAtSale: item.PriceAtSale,
		})
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal sale event: %w", err)
	}
	key := []byte(strconv.FormatInt(s.ID, 10))
	if err := p.producer.Publish(ctx, key, value); err != nil {
		return fmt.Errorf("publish sale %d: %w", s.ID, err)
	}
	return nil
}
