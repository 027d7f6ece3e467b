package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Part is an inventory item. A part is low on stock when Stock <= MinStock.
type Part struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	Name      string          `json:"name" gorm:"size:255;not null;index"`
	SKU       string          `json:"sku" gorm:"column:sku;uniqueIndex;size:64;not null"`
	Brand     string          `json:"brand" gorm:"size:100"`
	Stock     int             `json:"stock" gorm:"not null;default:0;check:chk_parts_stock,stock >= 0"`
	MinStock  int             `json:"min_stock" gorm:"not null;default:0;check:chk_parts_min_stock,min_stock >= 0"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null;default:0"`
	Location  string          `json:"location" gorm:"size:100"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// IsLow reports whether the part is at or below its replenishment threshold.
func (p *Part) IsLow() bool {
	return p.Stock <= p.MinStock
}

// Deficit is how many units are missing to reach the threshold. It may be
// zero or negative for parts that are not short.
func (p *Part) Deficit() int {
	return p.MinStock - p.Stock
}
