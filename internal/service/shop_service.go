package service

import (
	"context"
	"time"

	"dealping/seckill/internal/model"
	"dealping/seckill/internal/repository"
	"dealping/seckill/pkg/cache"
)

type ShopService interface {
	GetByID(ctx context.Context, id uint64) (*model.Shop, error)
	Update(ctx context.Context, shop *model.Shop) error
	// Warmup seeds the hot-shop cache entry with a logical expiry. The
	// logical-expiry read path never loads a cold key by itself, so hot
	// shops must be warmed before the read path finds them.
	Warmup(ctx context.Context, id uint64, ttl time.Duration) error
}

type shopService struct {
	shops repository.ShopRepository
	cache *cache.Client
	ttl   time.Duration
}

func NewShopService(shops repository.ShopRepository, cacheClient *cache.Client, hotTTL time.Duration) ShopService {
	return &shopService{shops: shops, cache: cacheClient, ttl: hotTTL}
}

func (s *shopService) GetByID(ctx context.Context, id uint64) (*model.Shop, error) {
	shop, err := cache.GetWithLogicalExpiry(ctx, s.cache, shopCacheKey(id), s.ttl,
		func(ctx context.Context) (*model.Shop, error) {
			return s.shops.GetByID(ctx, id)
		})
	if err != nil {
		return nil, err
	}
	if shop == nil {
		return nil, ErrShopNotFound
	}
	return shop, nil
}

// Update writes the shop and then deletes its cache entry. Invalidation, not
// write-update: a concurrent writer could otherwise leave the cache holding
// the older of two values.
func (s *shopService) Update(ctx context.Context, shop *model.Shop) error {
	if err := s.shops.Update(ctx, shop); err != nil {
		return err
	}
	return s.cache.Delete(ctx, shopCacheKey(shop.ID))
}

func (s *shopService) Warmup(ctx context.Context, id uint64, ttl time.Duration) error {
	shop, err := s.shops.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if shop == nil {
		return ErrShopNotFound
	}
	if ttl <= 0 {
		ttl = s.ttl
	}
	return s.cache.SetWithLogicalExpiry(ctx, shopCacheKey(id), shop, ttl)
}
