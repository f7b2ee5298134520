package model

import "time"

// VoucherOrder is written once at persistence time and never mutated.
// The id comes from the id worker, not from the database.
type VoucherOrder struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement:false" json:"id"`
	UserID    uint64    `gorm:"not null;uniqueIndex:idx_orders_user_voucher" json:"user_id"`
	VoucherID uint64    `gorm:"not null;uniqueIndex:idx_orders_user_voucher" json:"voucher_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (VoucherOrder) TableName() string { return "voucher_orders" }
