package model

import "time"

// AppointmentStatus is the lifecycle state of a calendar appointment.
type AppointmentStatus string

const (
	AppointmentStatusScheduled  AppointmentStatus = "scheduled"
	AppointmentStatusInProgress AppointmentStatus = "in_progress"
	AppointmentStatusDone       AppointmentStatus = "done"
	AppointmentStatusCancelled  AppointmentStatus = "cancelled"
)

// AppointmentStatuses lists every appointment status.
var AppointmentStatuses = []AppointmentStatus{
	AppointmentStatusScheduled,
	AppointmentStatusInProgress,
	AppointmentStatusDone,
	AppointmentStatusCancelled,
}

// Appointment is a calendar slot loosely linked to a customer, vehicle or order.
type Appointment struct {
	ID         uint              `json:"id" gorm:"primaryKey"`
	Title      string            `json:"title" gorm:"size:255;not null"`
	StartAt    time.Time         `json:"start_at" gorm:"not null;index"`
	EndAt      *time.Time        `json:"end_at"`
	Status     AppointmentStatus `json:"status" gorm:"size:20;not null;default:scheduled;index"`
	CustomerID *uint             `json:"customer_id" gorm:"index"`
	VehicleID  *uint             `json:"vehicle_id" gorm:"index"`
	OrderID    *uint             `json:"order_id" gorm:"index"`
	Notes      string            `json:"notes" gorm:"type:text"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`

	// Relations
	Customer *Customer `json:"customer,omitempty" gorm:"foreignKey:CustomerID;constraint:OnDelete:SET NULL"`
	Vehicle  *Vehicle  `json:"vehicle,omitempty" gorm:"foreignKey:VehicleID;constraint:OnDelete:SET NULL"`
	Order    *Order    `json:"-" gorm:"foreignKey:OrderID;constraint:OnDelete:SET NULL"`
}
