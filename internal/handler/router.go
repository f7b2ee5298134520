package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dealping/seckill/internal/config"
	"dealping/seckill/internal/handler/middleware"
	jwtpkg "dealping/seckill/pkg/jwt"
)

func SetupRouter(
	cfg *config.Config,
	logger *zap.Logger,
	jwtManager *jwtpkg.Manager,
	shopHandler *ShopHandler,
	voucherHandler *VoucherHandler,
	seckillHandler *SeckillHandler,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORS))

	// Health check
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Public shop reads
	r.GET("/api/v1/shops/:id", shopHandler.Get)

	// Protected routes
	protected := r.Group("/api/v1")
	protected.Use(middleware.JWTAuth(jwtManager))
	{
		protected.PUT("/shops", shopHandler.Update)
		protected.POST("/shops/:id/warmup", shopHandler.Warmup)

		protected.POST("/vouchers", voucherHandler.Create)
		protected.POST("/vouchers/:id/seckill", seckillHandler.Submit)
	}

	return r
}
