package model

import "time"

// SeckillVoucher is a limited-stock, time-boxed voucher. Stock here is the
// durable source of truth; the cache store mirrors it as a counter for the
// admission check.
type SeckillVoucher struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	ShopID    uint64    `gorm:"index;not null" json:"shop_id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Stock     int64     `gorm:"not null" json:"stock"`
	BeginTime time.Time `gorm:"not null" json:"begin_time"`
	EndTime   time.Time `gorm:"not null" json:"end_time"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SeckillVoucher) TableName() string { return "seckill_vouchers" }
