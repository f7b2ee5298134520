package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"dealping/seckill/internal/model"
	"dealping/seckill/internal/repository"
	"dealping/seckill/pkg/cache"
	"dealping/seckill/pkg/idgen"
	"dealping/seckill/pkg/lock"
)

const persistTimeout = 10 * time.Second

type SeckillService interface {
	// Submit runs the purchase attempt for one user against one voucher and
	// returns the order id on acceptance. The order is persisted
	// asynchronously; the caller does not wait for durable storage.
	Submit(ctx context.Context, userID, voucherID uint64) (uint64, error)
	// Stop closes the intake queue and waits for the consumers to drain it.
	Stop()
}

// SeckillOptions sizes the asynchronous half of the pipeline.
type SeckillOptions struct {
	QueueSize    int
	Workers      int
	OrderLockTTL time.Duration
	VoucherTTL   time.Duration
}

type seckillService struct {
	store    repository.CacheStore
	vouchers repository.VoucherRepository
	orders   repository.OrderRepository
	cache    *cache.Client
	ids      *idgen.Worker
	logger   *zap.Logger
	opts     SeckillOptions

	drafts chan model.VoucherOrder
	wg     sync.WaitGroup
}

func NewSeckillService(
	store repository.CacheStore,
	vouchers repository.VoucherRepository,
	orders repository.OrderRepository,
	cacheClient *cache.Client,
	ids *idgen.Worker,
	logger *zap.Logger,
	opts SeckillOptions,
) SeckillService {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 1024
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.OrderLockTTL <= 0 {
		opts.OrderLockTTL = 5 * time.Second
	}
	if opts.VoucherTTL <= 0 {
		opts.VoucherTTL = 30 * time.Minute
	}

	s := &seckillService{
		store:    store,
		vouchers: vouchers,
		orders:   orders,
		cache:    cacheClient,
		ids:      ids,
		logger:   logger,
		opts:     opts,
		drafts:   make(chan model.VoucherOrder, opts.QueueSize),
	}
	for i := 0; i < opts.Workers; i++ {
		s.wg.Add(1)
		go s.consume()
	}
	return s
}

func (s *seckillService) Submit(ctx context.Context, userID, voucherID uint64) (uint64, error) {
	voucher, err := cache.Get(ctx, s.cache, voucherCacheKey(voucherID), s.opts.VoucherTTL,
		func(ctx context.Context) (*model.SeckillVoucher, error) {
			return s.vouchers.GetByID(ctx, voucherID)
		})
	if err != nil {
		return 0, err
	}
	if voucher == nil {
		return 0, ErrVoucherNotFound
	}

	// Window guard runs before the admission check ever touches stock.
	now := time.Now()
	if now.Before(voucher.BeginTime) {
		return 0, ErrSaleNotStarted
	}
	if now.After(voucher.EndTime) {
		return 0, ErrSaleEnded
	}

	// The id is allocated before admission so a generator failure cannot
	// consume stock without producing an order.
	orderID, err := s.ids.NextID(ctx, "order")
	if err != nil {
		return 0, err
	}

	code, err := s.store.ReserveStock(ctx, stockKey(voucherID), buyersKey(voucherID),
		strconv.FormatUint(userID, 10))
	if err != nil {
		return 0, fmt.Errorf("admission check: %w", err)
	}
	switch code {
	case repository.ReserveNoStock:
		return 0, ErrSoldOut
	case repository.ReserveDuplicate:
		return 0, ErrDuplicateOrder
	}

	draft := model.VoucherOrder{
		ID:        orderID,
		UserID:    userID,
		VoucherID: voucherID,
		CreatedAt: now,
	}
	select {
	case s.drafts <- draft:
	default:
		// The queue is sized to absorb a full burst; hitting this means the
		// consumers have fallen badly behind. Admission already recorded the
		// user, so the draft cannot be re-submitted.
		s.logger.Error("order intake queue full, draft dropped",
			zap.Uint64("order_id", draft.ID),
			zap.Uint64("user_id", draft.UserID),
			zap.Uint64("voucher_id", draft.VoucherID))
		return 0, ErrIntakeSaturated
	}

	return orderID, nil
}

func (s *seckillService) Stop() {
	close(s.drafts)
	s.wg.Wait()
}

// consume drains the intake queue. Receiving on the channel is the only
// intended blocking point in the pipeline.
func (s *seckillService) consume() {
	defer s.wg.Done()
	for draft := range s.drafts {
		s.persist(draft)
	}
}

// persist writes one accepted draft to durable storage under a per-user
// lock. The cache-side admission and the database write are not one
// transaction; the lock closes the residual window where a retry between
// the two could double-write.
func (s *seckillService) persist(draft model.VoucherOrder) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	fields := []zap.Field{
		zap.Uint64("order_id", draft.ID),
		zap.Uint64("user_id", draft.UserID),
		zap.Uint64("voucher_id", draft.VoucherID),
	}

	userLock := lock.New(s.store, orderLockName(draft.UserID))
	acquired, err := userLock.TryAcquire(ctx, s.opts.OrderLockTTL)
	if err != nil {
		s.logger.Error("order lock unavailable, draft dropped", append(fields, zap.Error(err))...)
		return
	}
	if !acquired {
		// Duplicate admission is already impossible, so contention here
		// means another in-flight worker holds this user. Drop, don't retry.
		s.logger.Warn("concurrent order persist for user, draft dropped", fields...)
		return
	}
	defer func() {
		if err := userLock.Release(ctx); err != nil {
			s.logger.Error("failed to release order lock", append(fields, zap.Error(err))...)
		}
	}()

	// Re-verify against the durable store; defense in depth in case the
	// admission script was bypassed or buggy.
	count, err := s.orders.CountByUserAndVoucher(ctx, draft.UserID, draft.VoucherID)
	if err != nil {
		s.logger.Error("order re-verification failed, draft dropped", append(fields, zap.Error(err))...)
		return
	}
	if count > 0 {
		s.logger.Error("order already persisted for user, draft dropped", fields...)
		return
	}

	decremented, err := s.vouchers.DecrementStock(ctx, draft.VoucherID)
	if err != nil {
		s.logger.Error("durable stock decrement failed, draft dropped", append(fields, zap.Error(err))...)
		return
	}
	if !decremented {
		s.logger.Error("no durable stock left after admission, draft dropped", fields...)
		return
	}

	if err := s.orders.Create(ctx, &draft); err != nil {
		s.logger.Error("order insert failed, draft dropped", append(fields, zap.Error(err))...)
		return
	}
	s.logger.Info("order persisted", fields...)
}
