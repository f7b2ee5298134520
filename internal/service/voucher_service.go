package service

import (
	"context"
	"fmt"
	"strconv"

	"dealping/seckill/internal/model"
	"dealping/seckill/internal/repository"
)

type VoucherService interface {
	// CreateSeckillVoucher persists the voucher and seeds its stock counter
	// in the cache store, which the admission check decrements.
	CreateSeckillVoucher(ctx context.Context, voucher *model.SeckillVoucher) error
}

type voucherService struct {
	vouchers repository.VoucherRepository
	store    repository.CacheStore
}

func NewVoucherService(vouchers repository.VoucherRepository, store repository.CacheStore) VoucherService {
	return &voucherService{vouchers: vouchers, store: store}
}

func (s *voucherService) CreateSeckillVoucher(ctx context.Context, voucher *model.SeckillVoucher) error {
	if err := s.vouchers.Create(ctx, voucher); err != nil {
		return fmt.Errorf("create voucher: %w", err)
	}
	stock := strconv.FormatInt(voucher.Stock, 10)
	if err := s.store.Set(ctx, stockKey(voucher.ID), []byte(stock), 0); err != nil {
		return fmt.Errorf("seed stock counter: %w", err)
	}
	return nil
}
