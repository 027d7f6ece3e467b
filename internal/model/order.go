package model

import "time"

// OrderStatus is the lifecycle state of a repair order.
type OrderStatus string

const (
	OrderStatusNew        OrderStatus = "new"
	OrderStatusInProgress OrderStatus = "in_progress"
	OrderStatusDone       OrderStatus = "done"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// OrderStatuses lists every order status in lifecycle order.
var OrderStatuses = []OrderStatus{OrderStatusNew, OrderStatusInProgress, OrderStatusDone, OrderStatusCancelled}

// Order is a repair job. Its vehicle always belongs to its customer.
type Order struct {
	ID              uint        `json:"id" gorm:"primaryKey"`
	Service         string      `json:"service" gorm:"size:255;not null"`
	Status          OrderStatus `json:"status" gorm:"size:20;not null;default:new;index"`
	Description     string      `json:"description" gorm:"type:text"`
	CustomerID      uint        `json:"customer_id" gorm:"not null;index"`
	VehicleID       uint        `json:"vehicle_id" gorm:"not null;index"`
	MechanicUserID  *uint       `json:"mechanic_user_id" gorm:"index"`
	CreatedByUserID uint        `json:"created_by_user_id" gorm:"not null;index"`
	StartAt         *time.Time  `json:"start_at"`
	EndAt           *time.Time  `json:"end_at"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`

	// Relations
	Customer  *Customer `json:"customer,omitempty" gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"`
	Vehicle   *Vehicle  `json:"vehicle,omitempty" gorm:"foreignKey:VehicleID;constraint:OnDelete:CASCADE"`
	Mechanic  *User     `json:"mechanic,omitempty" gorm:"foreignKey:MechanicUserID;constraint:OnDelete:SET NULL"`
	CreatedBy *User     `json:"-" gorm:"foreignKey:CreatedByUserID"`
}
