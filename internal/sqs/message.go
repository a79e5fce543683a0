package sqs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/iyhunko/supermarket-pos/internal/model"
	"github.com/shopspring/decimal"
)

// StoreMessage is the envelope published for every outbox event.
type StoreMessage struct {
	EventID   string          `json:"event_id"`
	EventType string          `json:"event_type"`
	Sale      *SaleMessage    `json:"sale,omitempty"`
	Product   *ProductMessage `json:"product,omitempty"`
}

// SaleMessage describes a completed purchase.
type SaleMessage struct {
	SaleID         int64           `json:"sale_id"`
	ProductID      int64           `json:"product_id"`
	ProductName    string          `json:"product_name"`
	Qty            int             `json:"qty"`
	Total          decimal.Decimal `json:"total"`
	RemainingStock int             `json:"remaining_stock"`
	SoldAt         time.Time       `json:"sold_at"`
}

// ProductMessage describes a newly added product.
type ProductMessage struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	Discount  decimal.Decimal `json:"discount"`
}

// NewStoreMessage wraps the stored payload of an outbox event into the envelope
// matching its type.
func NewStoreMessage(eventID, eventType string, payload json.RawMessage) (StoreMessage, error) {
	msg := StoreMessage{EventID: eventID, EventType: eventType}

	switch eventType {
	case model.EventTypeSaleRecorded:
		var sale SaleMessage
		if err := json.Unmarshal(payload, &sale); err != nil {
			return StoreMessage{}, fmt.Errorf("failed to decode sale payload: %w", err)
		}
		msg.Sale = &sale
	case model.EventTypeProductCreated:
		var product ProductMessage
		if err := json.Unmarshal(payload, &product); err != nil {
			return StoreMessage{}, fmt.Errorf("failed to decode product payload: %w", err)
		}
		msg.Product = &product
	default:
		return StoreMessage{}, fmt.Errorf("unknown event type %q", eventType)
	}

	return msg, nil
}
