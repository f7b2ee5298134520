package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"dealping/seckill/internal/config"
	"dealping/seckill/internal/handler"
	"dealping/seckill/internal/model"
	"dealping/seckill/internal/repository"
	"dealping/seckill/internal/service"
	"dealping/seckill/pkg/cache"
	"dealping/seckill/pkg/idgen"
	jwtpkg "dealping/seckill/pkg/jwt"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// 2. Initialize logger
	var logger *zap.Logger
	if cfg.Log.Format == "json" {
		logger, _ = zap.NewProduction()
	} else {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	// 3. Connect to PostgreSQL
	db, err := config.NewPostgresDB(cfg.Database.Postgres)
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}

	// 4. Auto-migrate if enabled
	if cfg.Database.Postgres.AutoMigrate {
		if err := model.AutoMigrate(db); err != nil {
			logger.Fatal("failed to auto-migrate", zap.Error(err))
		}
		logger.Info("database migration completed")
	}

	// 5. Initialize cache store (Redis or in-memory)
	var store repository.CacheStore
	switch cfg.State.Backend {
	case "redis":
		redisClient, err := config.NewRedisClient(cfg.Database.Redis)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		store = repository.NewRedisCacheStore(redisClient)
		logger.Info("using Redis cache store")
	case "memory":
		store = repository.NewMemoryCacheStore()
		logger.Info("using in-memory cache store")
	default:
		logger.Fatal("unknown state backend", zap.String("backend", cfg.State.Backend))
	}

	// 6. Initialize repositories
	shopRepo := repository.NewPGShopRepository(db)
	voucherRepo := repository.NewPGVoucherRepository(db)
	orderRepo := repository.NewPGOrderRepository(db)

	// 7. Shared infrastructure: cache client, id worker, JWT manager
	cacheClient := cache.NewClient(store, logger)
	idWorker := idgen.NewWorker(store)
	jwtManager := jwtpkg.NewManager(cfg.JWT.SigningKey, cfg.JWT.Issuer)

	// 8. Initialize services
	shopService := service.NewShopService(shopRepo, cacheClient, cfg.Cache.HotShopTTL)
	voucherService := service.NewVoucherService(voucherRepo, store)
	seckillService := service.NewSeckillService(
		store, voucherRepo, orderRepo, cacheClient, idWorker, logger,
		service.SeckillOptions{
			QueueSize:    cfg.Seckill.QueueSize,
			Workers:      cfg.Seckill.Workers,
			OrderLockTTL: cfg.Seckill.OrderLockTTL,
			VoucherTTL:   cfg.Seckill.VoucherTTL,
		},
	)

	// 9. Initialize handlers and router
	shopHandler := handler.NewShopHandler(shopService)
	voucherHandler := handler.NewVoucherHandler(voucherService)
	seckillHandler := handler.NewSeckillHandler(seckillService)
	router := handler.SetupRouter(cfg, logger, jwtManager, shopHandler, voucherHandler, seckillHandler)

	// 10. Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 11. Start server with graceful shutdown
	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// 12. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	// Drain the order intake queue before exiting so accepted drafts reach
	// the database.
	seckillService.Stop()
	logger.Info("server exited gracefully")
}
