package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"workshop/internal/model"
)

// InvoiceFilter narrows an invoice listing.
type InvoiceFilter struct {
	Query      string
	Status     model.InvoiceStatus
	CustomerID *uint
}

// InvoiceRepository defines invoice persistence operations.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *model.Invoice) error
	FindByID(ctx context.Context, id uint) (*model.Invoice, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*model.Invoice, error)
	FindByNumber(ctx context.Context, number string) (*model.Invoice, error)
	Update(ctx context.Context, id uint, fields Fields) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter InvoiceFilter) ([]model.Invoice, error)
}

type invoiceRepository struct {
	db *gorm.DB
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *model.Invoice) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(invoice).Error
}

func (r *invoiceRepository) FindByID(ctx context.Context, id uint) (*model.Invoice, error) {
	var invoice model.Invoice
	if err := r.db.WithContext(ctx).Preload("Customer").First(&invoice, id).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) FindByIDForUpdate(ctx context.Context, id uint) (*model.Invoice, error) {
	var invoice model.Invoice
	if err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&invoice).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) FindByNumber(ctx context.Context, number string) (*model.Invoice, error) {
	var invoice model.Invoice
	if err := r.db.WithContext(ctx).Where("number = ?", number).First(&invoice).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) Update(ctx context.Context, id uint, fields Fields) error {
	return r.db.WithContext(ctx).Model(&model.Invoice{}).Where("id = ?", id).Updates(map[string]interface{}(fields)).Error
}

func (r *invoiceRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Invoice{}, id).Error
}

func (r *invoiceRepository) List(ctx context.Context, filter InvoiceFilter) ([]model.Invoice, error) {
	var invoices []model.Invoice
	query := r.db.WithContext(ctx).Model(&model.Invoice{})
	if filter.Query != "" {
		query = query.Joins("LEFT JOIN customers ON customers.id = invoices.customer_id")
		query = search(query, filter.Query, "invoices.number", "customers.name")
	}
	if filter.Status != "" {
		query = query.Where("invoices.status = ?", filter.Status)
	}
	if filter.CustomerID != nil {
		query = query.Where("invoices.customer_id = ?", *filter.CustomerID)
	}
	if err := query.Preload("Customer").Order("invoices.id DESC").Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}
