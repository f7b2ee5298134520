package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"dealping/seckill/internal/model"
)

type pgVoucherRepository struct {
	db *gorm.DB
}

func NewPGVoucherRepository(db *gorm.DB) VoucherRepository {
	return &pgVoucherRepository{db: db}
}

func (r *pgVoucherRepository) GetByID(ctx context.Context, id uint64) (*model.SeckillVoucher, error) {
	var voucher model.SeckillVoucher
	if err := r.db.WithContext(ctx).First(&voucher, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &voucher, nil
}

func (r *pgVoucherRepository) Create(ctx context.Context, voucher *model.SeckillVoucher) error {
	return r.db.WithContext(ctx).Create(voucher).Error
}

func (r *pgVoucherRepository) DecrementStock(ctx context.Context, voucherID uint64) (bool, error) {
	// Conditional single-statement decrement; a read-then-write pair would
	// race under concurrent orders.
	res := r.db.WithContext(ctx).
		Model(&model.SeckillVoucher{}).
		Where("id = ? AND stock > 0", voucherID).
		UpdateColumn("stock", gorm.Expr("stock - 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
