// Package events defines the domain events the shop emits and the publishers
// that deliver them to the message broker.
package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// Routing keys. Each key is also the name of a durable queue.
const (
	OrderCreated           = "order.created"
	OrderStatusChanged     = "order.status_changed"
	PartLowStock           = "part.low_stock"
	InvoiceCreated         = "invoice.created"
	PasswordResetRequested = "auth.password_reset"
)

// Envelope wraps every payload on the wire.
type Envelope struct {
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// OrderCreatedEvent is published after a repair order is committed.
type OrderCreatedEvent struct {
	OrderID    uint   `json:"order_id"`
	CustomerID uint   `json:"customer_id"`
	VehicleID  uint   `json:"vehicle_id"`
	Service    string `json:"service"`
	CreatedBy  uint   `json:"created_by_user_id"`
}

// OrderStatusChangedEvent is published when an order moves to a new status.
type OrderStatusChangedEvent struct {
	OrderID   uint   `json:"order_id"`
	From      string `json:"from"`
	To        string `json:"to"`
	ChangedBy uint   `json:"changed_by_user_id"`
}

// PartLowStockEvent is published when a part drops to or below its threshold.
type PartLowStockEvent struct {
	PartID   uint   `json:"part_id"`
	SKU      string `json:"sku"`
	Name     string `json:"name"`
	Stock    int    `json:"stock"`
	MinStock int    `json:"min_stock"`
	Deficit  int    `json:"deficit"`
}

// InvoiceCreatedEvent is published after an invoice is committed.
type InvoiceCreatedEvent struct {
	InvoiceID  uint            `json:"invoice_id"`
	Number     string          `json:"number"`
	CustomerID uint            `json:"customer_id"`
	Amount     decimal.Decimal `json:"amount"`
}

// PasswordResetRequestedEvent carries a raw reset token to the delivery
// channel (mailer or SMS gateway). It must never be returned over HTTP.
type PasswordResetRequestedEvent struct {
	UserID    uint      `json:"user_id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Redacted returns a copy that is safe to write to logs.
func (e PasswordResetRequestedEvent) Redacted() interface{} {
	e.Token = "[redacted]"
	return e
}
