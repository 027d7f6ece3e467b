package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"workshop/internal/model"
)

// PasswordResetRepository stores single-use password reset tokens.
type PasswordResetRepository interface {
	Create(ctx context.Context, reset *model.PasswordReset) error
	// Consume marks an unused, unexpired token as used and returns it. It
	// returns gorm.ErrRecordNotFound when no such token exists.
	Consume(ctx context.Context, tokenHash string, now time.Time) (*model.PasswordReset, error)
	DeleteUnused(ctx context.Context, userID uint) error
}

type passwordResetRepository struct {
	db *gorm.DB
}

func (r *passwordResetRepository) Create(ctx context.Context, reset *model.PasswordReset) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(reset).Error
}

func (r *passwordResetRepository) Consume(ctx context.Context, tokenHash string, now time.Time) (*model.PasswordReset, error) {
	var reset model.PasswordReset
	err := r.db.WithContext(ctx).
		Where("token_hash = ? AND used_at IS NULL AND expires_at > ?", tokenHash, now).
		First(&reset).Error
	if err != nil {
		return nil, err
	}

	// Conditional update so two concurrent consumers cannot both win.
	res := r.db.WithContext(ctx).Model(&model.PasswordReset{}).
		Where("id = ? AND used_at IS NULL", reset.ID).
		UpdateColumn("used_at", now)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected != 1 {
		return nil, gorm.ErrRecordNotFound
	}
	reset.UsedAt = &now
	return &reset, nil
}

func (r *passwordResetRepository) DeleteUnused(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Where("user_id = ? AND used_at IS NULL", userID).Delete(&model.PasswordReset{}).Error
}
