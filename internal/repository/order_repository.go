package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"workshop/internal/model"
)

// OrderFilter narrows an order listing. CreatedBy restricts the result to
// orders created by one user.
type OrderFilter struct {
	Query      string
	Status     model.OrderStatus
	CustomerID *uint
	VehicleID  *uint
	CreatedBy  *uint
}

// OrderRepository defines repair order persistence operations.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, id uint) (*model.Order, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*model.Order, error)
	Update(ctx context.Context, id uint, fields Fields) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter OrderFilter) ([]model.Order, error)
	CountByVehicle(ctx context.Context, vehicleID uint) (int64, error)
}

type orderRepository struct {
	db *gorm.DB
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(order).Error
}

func (r *orderRepository) FindByID(ctx context.Context, id uint) (*model.Order, error) {
	var order model.Order
	if err := r.withRelations(r.db.WithContext(ctx)).First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindByIDForUpdate(ctx context.Context, id uint) (*model.Order, error) {
	var order model.Order
	if err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) Update(ctx context.Context, id uint, fields Fields) error {
	return r.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", id).Updates(map[string]interface{}(fields)).Error
}

func (r *orderRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Order{}, id).Error
}

func (r *orderRepository) List(ctx context.Context, filter OrderFilter) ([]model.Order, error) {
	var orders []model.Order
	query := r.db.WithContext(ctx).Model(&model.Order{})
	if filter.Query != "" {
		query = query.
			Joins("LEFT JOIN customers ON customers.id = orders.customer_id").
			Joins("LEFT JOIN vehicles ON vehicles.id = orders.vehicle_id")
		query = search(query, filter.Query, "orders.service", "orders.description", "customers.name", "vehicles.plate")
	}
	if filter.Status != "" {
		query = query.Where("orders.status = ?", filter.Status)
	}
	if filter.CustomerID != nil {
		query = query.Where("orders.customer_id = ?", *filter.CustomerID)
	}
	if filter.VehicleID != nil {
		query = query.Where("orders.vehicle_id = ?", *filter.VehicleID)
	}
	if filter.CreatedBy != nil {
		query = query.Where("orders.created_by_user_id = ?", *filter.CreatedBy)
	}
	if err := r.withRelations(query).Order("orders.id DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) CountByVehicle(ctx context.Context, vehicleID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Order{}).Where("vehicle_id = ?", vehicleID).Count(&n).Error
	return n, err
}

func (r *orderRepository) withRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Customer").Preload("Vehicle").Preload("Mechanic")
}
