package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"workshop/internal/model"
)

// PartRepository defines inventory persistence operations.
type PartRepository interface {
	Create(ctx context.Context, part *model.Part) error
	FindByID(ctx context.Context, id uint) (*model.Part, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*model.Part, error)
	FindBySKU(ctx context.Context, sku string) (*model.Part, error)
	Update(ctx context.Context, id uint, fields Fields) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, q string) ([]model.Part, error)
	// ListLowStock returns parts with stock <= min_stock, largest deficit first.
	ListLowStock(ctx context.Context) ([]model.Part, error)
	// DecrementStock removes qty units only if that many are available. It
	// reports false when the part is missing or short.
	DecrementStock(ctx context.Context, id uint, qty int) (bool, error)
	IncrementStock(ctx context.Context, id uint, qty int) (bool, error)
}

type partRepository struct {
	db *gorm.DB
}

func (r *partRepository) Create(ctx context.Context, part *model.Part) error {
	return r.db.WithContext(ctx).Create(part).Error
}

func (r *partRepository) FindByID(ctx context.Context, id uint) (*model.Part, error) {
	var part model.Part
	if err := r.db.WithContext(ctx).First(&part, id).Error; err != nil {
		return nil, err
	}
	return &part, nil
}

func (r *partRepository) FindByIDForUpdate(ctx context.Context, id uint) (*model.Part, error) {
	var part model.Part
	if err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&part).Error; err != nil {
		return nil, err
	}
	return &part, nil
}

func (r *partRepository) FindBySKU(ctx context.Context, sku string) (*model.Part, error) {
	var part model.Part
	if err := r.db.WithContext(ctx).Where("sku = ?", sku).First(&part).Error; err != nil {
		return nil, err
	}
	return &part, nil
}

func (r *partRepository) Update(ctx context.Context, id uint, fields Fields) error {
	return r.db.WithContext(ctx).Model(&model.Part{}).Where("id = ?", id).Updates(map[string]interface{}(fields)).Error
}

func (r *partRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Part{}, id).Error
}

func (r *partRepository) List(ctx context.Context, q string) ([]model.Part, error) {
	var parts []model.Part
	query := search(r.db.WithContext(ctx), q, "name", "sku", "brand", "location")
	if err := query.Order("id DESC").Find(&parts).Error; err != nil {
		return nil, err
	}
	return parts, nil
}

func (r *partRepository) ListLowStock(ctx context.Context) ([]model.Part, error) {
	var parts []model.Part
	err := r.db.WithContext(ctx).
		Where("stock <= min_stock").
		Order("(min_stock - stock) DESC").
		Order("id DESC").
		Find(&parts).Error
	if err != nil {
		return nil, err
	}
	return parts, nil
}

func (r *partRepository) DecrementStock(ctx context.Context, id uint, qty int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Part{}).
		Where("id = ? AND stock >= ?", id, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *partRepository) IncrementStock(ctx context.Context, id uint, qty int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Part{}).
		Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
