package repository

import (
	"context"

	"dealping/seckill/internal/model"
)

type ShopRepository interface {
	// GetByID returns (nil, nil) when no shop exists with that id.
	GetByID(ctx context.Context, id uint64) (*model.Shop, error)
	Update(ctx context.Context, shop *model.Shop) error
}
