package repository

import (
	"context"

	"gorm.io/gorm"

	"workshop/internal/model"
)

// CustomerRepository defines customer persistence operations.
type CustomerRepository interface {
	Create(ctx context.Context, customer *model.Customer) error
	FindByID(ctx context.Context, id uint) (*model.Customer, error)
	Update(ctx context.Context, id uint, fields Fields) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, q string) ([]model.Customer, error)
}

type customerRepository struct {
	db *gorm.DB
}

func (r *customerRepository) Create(ctx context.Context, customer *model.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

func (r *customerRepository) FindByID(ctx context.Context, id uint) (*model.Customer, error) {
	var customer model.Customer
	if err := r.db.WithContext(ctx).First(&customer, id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) Update(ctx context.Context, id uint, fields Fields) error {
	return r.db.WithContext(ctx).Model(&model.Customer{}).Where("id = ?", id).Updates(map[string]interface{}(fields)).Error
}

func (r *customerRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Customer{}, id).Error
}

func (r *customerRepository) List(ctx context.Context, q string) ([]model.Customer, error) {
	var customers []model.Customer
	query := search(r.db.WithContext(ctx), q, "name", "email", "phone")
	if err := query.Order("id DESC").Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}
