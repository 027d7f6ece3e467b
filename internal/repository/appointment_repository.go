package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"workshop/internal/model"
)

// AppointmentFilter narrows an appointment listing to a time window.
type AppointmentFilter struct {
	Query  string
	From   *time.Time
	To     *time.Time
	Status model.AppointmentStatus
}

// AppointmentRepository defines appointment persistence operations.
type AppointmentRepository interface {
	Create(ctx context.Context, appointment *model.Appointment) error
	FindByID(ctx context.Context, id uint) (*model.Appointment, error)
	Update(ctx context.Context, id uint, fields Fields) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter AppointmentFilter) ([]model.Appointment, error)
	CountByVehicle(ctx context.Context, vehicleID uint) (int64, error)
}

type appointmentRepository struct {
	db *gorm.DB
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(appointment).Error
}

func (r *appointmentRepository) FindByID(ctx context.Context, id uint) (*model.Appointment, error) {
	var appointment model.Appointment
	if err := r.db.WithContext(ctx).Preload("Customer").Preload("Vehicle").First(&appointment, id).Error; err != nil {
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) Update(ctx context.Context, id uint, fields Fields) error {
	return r.db.WithContext(ctx).Model(&model.Appointment{}).Where("id = ?", id).Updates(map[string]interface{}(fields)).Error
}

func (r *appointmentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Appointment{}, id).Error
}

func (r *appointmentRepository) List(ctx context.Context, filter AppointmentFilter) ([]model.Appointment, error) {
	var appointments []model.Appointment
	query := search(r.db.WithContext(ctx), filter.Query, "title", "notes")
	if filter.From != nil {
		query = query.Where("start_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("start_at < ?", *filter.To)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	err := query.Preload("Customer").Preload("Vehicle").Order("start_at ASC").Order("id ASC").Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) CountByVehicle(ctx context.Context, vehicleID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Appointment{}).Where("vehicle_id = ?", vehicleID).Count(&n).Error
	return n, err
}
