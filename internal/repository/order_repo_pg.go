package repository

import (
	"context"

	"gorm.io/gorm"

	"dealping/seckill/internal/model"
)

type pgOrderRepository struct {
	db *gorm.DB
}

func NewPGOrderRepository(db *gorm.DB) OrderRepository {
	return &pgOrderRepository{db: db}
}

func (r *pgOrderRepository) Create(ctx context.Context, order *model.VoucherOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *pgOrderRepository) CountByUserAndVoucher(ctx context.Context, userID, voucherID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.VoucherOrder{}).
		Where("user_id = ? AND voucher_id = ?", userID, voucherID).
		Count(&count).Error
	return count, err
}
