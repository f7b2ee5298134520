package repository

import (
	"context"

	"dealping/seckill/internal/model"
)

type VoucherRepository interface {
	// GetByID returns (nil, nil) when no voucher exists with that id.
	GetByID(ctx context.Context, id uint64) (*model.SeckillVoucher, error)
	Create(ctx context.Context, voucher *model.SeckillVoucher) error
	// DecrementStock decrements the voucher's stock by one, guarded by
	// stock > 0 so the source of truth never goes negative. Returns false
	// when no row qualified.
	DecrementStock(ctx context.Context, voucherID uint64) (bool, error)
}
