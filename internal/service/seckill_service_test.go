package service

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"dealping/seckill/internal/model"
	"dealping/seckill/internal/repository"
	"dealping/seckill/pkg/cache"
	"dealping/seckill/pkg/idgen"
	"dealping/seckill/pkg/lock"
)

type fakeVoucherRepo struct {
	mu       sync.Mutex
	vouchers map[uint64]*model.SeckillVoucher
}

func newFakeVoucherRepo(vouchers ...*model.SeckillVoucher) *fakeVoucherRepo {
	r := &fakeVoucherRepo{vouchers: make(map[uint64]*model.SeckillVoucher)}
	for _, v := range vouchers {
		r.vouchers[v.ID] = v
	}
	return r
}

func (r *fakeVoucherRepo) GetByID(_ context.Context, id uint64) (*model.SeckillVoucher, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vouchers[id]
	if !ok {
		return nil, nil
	}
	copied := *v
	return &copied, nil
}

func (r *fakeVoucherRepo) Create(_ context.Context, voucher *model.SeckillVoucher) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vouchers[voucher.ID] = voucher
	return nil
}

func (r *fakeVoucherRepo) DecrementStock(_ context.Context, voucherID uint64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vouchers[voucherID]
	if !ok || v.Stock <= 0 {
		return false, nil
	}
	v.Stock--
	return true, nil
}

func (r *fakeVoucherRepo) stock(voucherID uint64) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.vouchers[voucherID].Stock
}

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders []model.VoucherOrder
}

func (r *fakeOrderRepo) Create(_ context.Context, order *model.VoucherOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = append(r.orders, *order)
	return nil
}

func (r *fakeOrderRepo) CountByUserAndVoucher(_ context.Context, userID, voucherID uint64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, o := range r.orders {
		if o.UserID == userID && o.VoucherID == voucherID {
			count++
		}
	}
	return count, nil
}

func (r *fakeOrderRepo) all() []model.VoucherOrder {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.VoucherOrder(nil), r.orders...)
}

type seckillFixture struct {
	svc      SeckillService
	store    repository.CacheStore
	vouchers *fakeVoucherRepo
	orders   *fakeOrderRepo
}

func newSeckillFixture(t *testing.T, vouchers ...*model.SeckillVoucher) *seckillFixture {
	t.Helper()

	store := repository.NewMemoryCacheStore()
	voucherRepo := newFakeVoucherRepo(vouchers...)
	orderRepo := &fakeOrderRepo{}
	logger := zap.NewNop()

	svc := NewSeckillService(
		store, voucherRepo, orderRepo,
		cache.NewClient(store, logger),
		idgen.NewWorker(store),
		logger,
		SeckillOptions{QueueSize: 64, Workers: 1},
	)

	// Mirror durable stock into the cache counter, as voucher creation does.
	ctx := context.Background()
	for _, v := range vouchers {
		stock := strconv.FormatInt(v.Stock, 10)
		if err := store.Set(ctx, stockKey(v.ID), []byte(stock), 0); err != nil {
			t.Fatalf("seed stock: %v", err)
		}
	}

	return &seckillFixture{svc: svc, store: store, vouchers: voucherRepo, orders: orderRepo}
}

func openVoucher(id uint64, stock int64) *model.SeckillVoucher {
	now := time.Now()
	return &model.SeckillVoucher{
		ID:        id,
		ShopID:    1,
		Title:     "test voucher",
		Stock:     stock,
		BeginTime: now.Add(-time.Hour),
		EndTime:   now.Add(time.Hour),
	}
}

func TestSeckillService_WindowGuard(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Now()

	t.Run("before the window opens", func(t *testing.T) {
		v := openVoucher(1, 10)
		v.BeginTime = now.Add(time.Hour)
		f := newSeckillFixture(t, v)
		defer f.svc.Stop()

		if _, err := f.svc.Submit(ctx, 7, 1); err != ErrSaleNotStarted {
			t.Fatalf("expected ErrSaleNotStarted, got %v", err)
		}
	})

	t.Run("after the window closes", func(t *testing.T) {
		v := openVoucher(1, 10)
		v.EndTime = now.Add(-time.Hour)
		f := newSeckillFixture(t, v)
		defer f.svc.Stop()

		if _, err := f.svc.Submit(ctx, 7, 1); err != ErrSaleEnded {
			t.Fatalf("expected ErrSaleEnded, got %v", err)
		}
	})

	t.Run("unknown voucher", func(t *testing.T) {
		f := newSeckillFixture(t)
		defer f.svc.Stop()

		if _, err := f.svc.Submit(ctx, 7, 99); err != ErrVoucherNotFound {
			t.Fatalf("expected ErrVoucherNotFound, got %v", err)
		}
	})
}

func TestSeckillService_StockOfOneSellsOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newSeckillFixture(t, openVoucher(1, 1))

	type outcome struct {
		orderID uint64
		err     error
	}
	results := make([]outcome, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := f.svc.Submit(ctx, uint64(100+i), 1)
			results[i] = outcome{orderID: id, err: err}
		}(i)
	}
	wg.Wait()
	f.svc.Stop()

	accepted, soldOut := 0, 0
	for _, r := range results {
		switch r.err {
		case nil:
			accepted++
			if r.orderID == 0 {
				t.Fatalf("accepted submit returned zero order id")
			}
		case ErrSoldOut:
			soldOut++
		default:
			t.Fatalf("unexpected error %v", r.err)
		}
	}
	if accepted != 1 || soldOut != 1 {
		t.Fatalf("expected 1 accepted and 1 sold out, got %d/%d", accepted, soldOut)
	}

	orders := f.orders.all()
	if len(orders) != 1 {
		t.Fatalf("expected exactly 1 persisted order, got %d", len(orders))
	}
	if got := f.vouchers.stock(1); got != 0 {
		t.Fatalf("expected durable stock 0, got %d", got)
	}
}

func TestSeckillService_SameUserAdmittedOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newSeckillFixture(t, openVoucher(1, 5))

	if _, err := f.svc.Submit(ctx, 42, 1); err != nil {
		t.Fatalf("expected first submit to succeed, got %v", err)
	}
	if _, err := f.svc.Submit(ctx, 42, 1); err != ErrDuplicateOrder {
		t.Fatalf("expected ErrDuplicateOrder, got %v", err)
	}
	f.svc.Stop()

	orders := f.orders.all()
	if len(orders) != 1 {
		t.Fatalf("expected exactly 1 persisted order, got %d", len(orders))
	}
	if orders[0].UserID != 42 || orders[0].VoucherID != 1 {
		t.Fatalf("unexpected order %+v", orders[0])
	}
}

func TestSeckillService_ContendedUserLockDropsDraft(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newSeckillFixture(t, openVoucher(1, 5))

	// Another in-flight worker already holds this user's order lock.
	held := lock.New(f.store, orderLockName(42))
	if ok, err := held.TryAcquire(ctx, time.Minute); err != nil || !ok {
		t.Fatalf("expected to pre-acquire lock, got %v/%v", ok, err)
	}

	if _, err := f.svc.Submit(ctx, 42, 1); err != nil {
		t.Fatalf("expected submit to succeed, got %v", err)
	}
	f.svc.Stop()

	if orders := f.orders.all(); len(orders) != 0 {
		t.Fatalf("expected draft to be dropped, found %d orders", len(orders))
	}
}

func TestSeckillService_DurableStockNeverGoesNegative(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	// The cache counter claims more stock than the database holds, as if the
	// admission counter had been mis-seeded.
	v := openVoucher(1, 1)
	f := newSeckillFixture(t, v)
	if err := f.store.Set(ctx, stockKey(1), []byte("2"), 0); err != nil {
		t.Fatalf("seed stock: %v", err)
	}

	if _, err := f.svc.Submit(ctx, 100, 1); err != nil {
		t.Fatalf("expected first submit to succeed, got %v", err)
	}
	if _, err := f.svc.Submit(ctx, 101, 1); err != nil {
		t.Fatalf("expected second submit to pass admission, got %v", err)
	}
	f.svc.Stop()

	// Only one draft survives the guarded decrement; stock stops at zero.
	if orders := f.orders.all(); len(orders) != 1 {
		t.Fatalf("expected exactly 1 persisted order, got %d", len(orders))
	}
	if got := f.vouchers.stock(1); got != 0 {
		t.Fatalf("expected durable stock 0, got %d", got)
	}
}
