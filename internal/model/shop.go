package model

import "time"

type Shop struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	TypeID    uint64    `gorm:"index;not null" json:"type_id"`
	Images    string    `gorm:"size:1024" json:"images"`
	Area      string    `gorm:"size:64" json:"area"`
	Address   string    `gorm:"size:255" json:"address"`
	AvgPrice  int64     `json:"avg_price"`
	Sold      int64     `json:"sold"`
	Comments  int64     `json:"comments"`
	Score     int       `json:"score"`
	OpenHours string    `gorm:"size:64" json:"open_hours"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Shop) TableName() string { return "shops" }
