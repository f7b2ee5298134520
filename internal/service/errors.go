package service

import "errors"

var (
	ErrShopNotFound    = errors.New("shop not found")
	ErrVoucherNotFound = errors.New("voucher not found")
	ErrSaleNotStarted  = errors.New("sale has not started yet")
	ErrSaleEnded       = errors.New("sale has already ended")
	ErrSoldOut         = errors.New("voucher sold out")
	ErrDuplicateOrder  = errors.New("user already ordered this voucher")
	ErrIntakeSaturated = errors.New("order intake queue is full")
)
