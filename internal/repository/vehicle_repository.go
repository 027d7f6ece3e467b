package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"workshop/internal/model"
)

// VehicleFilter narrows a vehicle listing.
type VehicleFilter struct {
	Query      string
	CustomerID *uint
}

// VehicleRepository defines vehicle persistence operations.
type VehicleRepository interface {
	Create(ctx context.Context, vehicle *model.Vehicle) error
	FindByID(ctx context.Context, id uint) (*model.Vehicle, error)
	// FindByIDForUpdate locks the row where the database supports it.
	FindByIDForUpdate(ctx context.Context, id uint) (*model.Vehicle, error)
	FindByPlate(ctx context.Context, plate string) (*model.Vehicle, error)
	Update(ctx context.Context, id uint, fields Fields) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter VehicleFilter) ([]model.Vehicle, error)
}

type vehicleRepository struct {
	db *gorm.DB
}

func (r *vehicleRepository) Create(ctx context.Context, vehicle *model.Vehicle) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(vehicle).Error
}

func (r *vehicleRepository) FindByID(ctx context.Context, id uint) (*model.Vehicle, error) {
	var vehicle model.Vehicle
	if err := r.db.WithContext(ctx).Preload("Customer").First(&vehicle, id).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *vehicleRepository) FindByIDForUpdate(ctx context.Context, id uint) (*model.Vehicle, error) {
	var vehicle model.Vehicle
	if err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&vehicle).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *vehicleRepository) FindByPlate(ctx context.Context, plate string) (*model.Vehicle, error) {
	var vehicle model.Vehicle
	if err := r.db.WithContext(ctx).Where("plate = ?", plate).First(&vehicle).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *vehicleRepository) Update(ctx context.Context, id uint, fields Fields) error {
	return r.db.WithContext(ctx).Model(&model.Vehicle{}).Where("id = ?", id).Updates(map[string]interface{}(fields)).Error
}

func (r *vehicleRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Vehicle{}, id).Error
}

func (r *vehicleRepository) List(ctx context.Context, filter VehicleFilter) ([]model.Vehicle, error) {
	var vehicles []model.Vehicle
	query := search(r.db.WithContext(ctx), filter.Query, "vehicles.make", "vehicles.model", "vehicles.plate", "vehicles.vin")
	if filter.CustomerID != nil {
		query = query.Where("vehicles.customer_id = ?", *filter.CustomerID)
	}
	if err := query.Preload("Customer").Order("vehicles.id DESC").Find(&vehicles).Error; err != nil {
		return nil, err
	}
	return vehicles, nil
}
