package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of decimal places kept for prices, discounts and totals.
const MoneyScale = 2

var hundred = decimal.NewFromInt(100)

// Product represents a catalog entry with its stock and optional image.
type Product struct {
	ID        int64
	Name      string
	Price     decimal.Decimal
	Stock     int
	Discount  decimal.Decimal // percentage, 0..100
	Image     []byte
	HasImage  bool
	CreatedAt time.Time
}

// InitMeta initializes the product metadata.
func (p *Product) InitMeta() {
	p.CreatedAt = time.Now()
	p.HasImage = len(p.Image) > 0
}

// FinalPrice is the unit price after the discount is applied.
func (p *Product) FinalPrice() decimal.Decimal {
	return p.Price.Sub(p.Price.Mul(p.Discount).Div(hundred))
}

// Total is the amount charged for qty units, rounded half away from zero to MoneyScale.
func (p *Product) Total(qty int) decimal.Decimal {
	return p.FinalPrice().Mul(decimal.NewFromInt(int64(qty))).Round(MoneyScale)
}

// Discounted reports whether a discount applies.
func (p *Product) Discounted() bool {
	return p.Discount.IsPositive()
}
