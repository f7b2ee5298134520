package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"dealping/seckill/internal/model"
)

type pgShopRepository struct {
	db *gorm.DB
}

func NewPGShopRepository(db *gorm.DB) ShopRepository {
	return &pgShopRepository{db: db}
}

func (r *pgShopRepository) GetByID(ctx context.Context, id uint64) (*model.Shop, error) {
	var shop model.Shop
	if err := r.db.WithContext(ctx).First(&shop, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &shop, nil
}

func (r *pgShopRepository) Update(ctx context.Context, shop *model.Shop) error {
	return r.db.WithContext(ctx).Save(shop).Error
}
