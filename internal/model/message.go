package model

import "time"

// MessageThread groups messages, optionally about a customer and/or order.
// UpdatedAt moves forward on every new message.
type MessageThread struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	Title           string    `json:"title" gorm:"size:255;not null"`
	CustomerID      *uint     `json:"customer_id" gorm:"index"`
	OrderID         *uint     `json:"order_id" gorm:"index"`
	CreatedByUserID uint      `json:"created_by_user_id" gorm:"not null;index"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" gorm:"index"`

	// Relations
	Customer  *Customer `json:"-" gorm:"foreignKey:CustomerID;constraint:OnDelete:SET NULL"`
	Order     *Order    `json:"-" gorm:"foreignKey:OrderID;constraint:OnDelete:SET NULL"`
	CreatedBy *User     `json:"-" gorm:"foreignKey:CreatedByUserID"`
	Messages  []Message `json:"-" gorm:"foreignKey:ThreadID;constraint:OnDelete:CASCADE"`
}

// Message is a single entry in a thread, sent by a user or on behalf of a customer.
type Message struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	ThreadID         uint      `json:"thread_id" gorm:"not null;index"`
	SenderUserID     *uint     `json:"sender_user_id" gorm:"index"`
	SenderCustomerID *uint     `json:"sender_customer_id" gorm:"index"`
	Text             string    `json:"text" gorm:"type:text;not null"`
	CreatedAt        time.Time `json:"created_at"`

	// Relations
	SenderUser     *User     `json:"-" gorm:"foreignKey:SenderUserID;constraint:OnDelete:SET NULL"`
	SenderCustomer *Customer `json:"-" gorm:"foreignKey:SenderCustomerID;constraint:OnDelete:SET NULL"`
}

// ThreadSummary is a thread with its most recent message attached.
type ThreadSummary struct {
	MessageThread
	CustomerName  string     `json:"customer_name,omitempty"`
	LastMessage   *string    `json:"last_message"`
	LastMessageAt *time.Time `json:"last_message_at"`
	MessageCount  int64      `json:"message_count"`
}
