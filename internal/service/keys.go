package service

import "fmt"

// Cache key layout. Lock keys get their prefix from pkg/lock.
func shopCacheKey(id uint64) string    { return fmt.Sprintf("cache:shop:%d", id) }
func voucherCacheKey(id uint64) string { return fmt.Sprintf("cache:voucher:%d", id) }
func stockKey(voucherID uint64) string { return fmt.Sprintf("seckill:stock:%d", voucherID) }
func buyersKey(voucherID uint64) string {
	return fmt.Sprintf("seckill:order:%d", voucherID)
}
func orderLockName(userID uint64) string { return fmt.Sprintf("order:%d", userID) }
