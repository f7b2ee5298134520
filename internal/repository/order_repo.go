package repository

import (
	"context"

	"dealping/seckill/internal/model"
)

type OrderRepository interface {
	Create(ctx context.Context, order *model.VoucherOrder) error
	CountByUserAndVoucher(ctx context.Context, userID, voucherID uint64) (int64, error)
}
