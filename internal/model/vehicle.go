package model

import "time"

// Vehicle belongs to exactly one customer at a time. Plates are globally unique.
type Vehicle struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	CustomerID    uint       `json:"customer_id" gorm:"not null;index"`
	Make          string     `json:"make" gorm:"size:100;not null"`
	Model         string     `json:"model" gorm:"size:100;not null"`
	Year          *int       `json:"year"`
	Plate         string     `json:"plate" gorm:"uniqueIndex;size:20;not null"`
	VIN           string     `json:"vin" gorm:"column:vin;size:17"`
	LastServiceAt *time.Time `json:"last_service_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// Relations
	Customer *Customer `json:"customer,omitempty" gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"`
}
