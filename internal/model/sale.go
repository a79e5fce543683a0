package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale is an immutable record of one completed purchase.
type Sale struct {
	ID          int64
	ProductID   int64
	ProductName string // filled by listings only
	Qty         int
	Total       decimal.Decimal
	SoldAt      time.Time
}

// InitMeta stamps the sale with the current time.
func (s *Sale) InitMeta() {
	s.SoldAt = time.Now()
}
