package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus is the payment state of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "pending"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
)

// InvoiceStatuses lists every invoice status.
var InvoiceStatuses = []InvoiceStatus{InvoiceStatusPending, InvoiceStatusPaid, InvoiceStatusCancelled, InvoiceStatusOverdue}

// Invoice bills a customer, optionally for a specific order.
type Invoice struct {
	ID         uint            `json:"id" gorm:"primaryKey"`
	Number     string          `json:"number" gorm:"uniqueIndex;size:64;not null"`
	CustomerID uint            `json:"customer_id" gorm:"not null;index"`
	OrderID    *uint           `json:"order_id" gorm:"index"`
	IssueDate  time.Time       `json:"issue_date" gorm:"not null"`
	DueDate    *time.Time      `json:"due_date"`
	Amount     decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	Status     InvoiceStatus   `json:"status" gorm:"size:20;not null;default:pending;index"`
	PDFPath    string          `json:"pdf_path" gorm:"column:pdf_path;size:255"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`

	// Relations
	Customer *Customer `json:"customer,omitempty" gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"`
	Order    *Order    `json:"-" gorm:"foreignKey:OrderID;constraint:OnDelete:SET NULL"`
}
