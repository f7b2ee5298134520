package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"dealping/seckill/internal/model"
	"dealping/seckill/internal/service"
	"dealping/seckill/pkg/response"
)

type ShopHandler struct {
	shops service.ShopService
}

func NewShopHandler(shops service.ShopService) *ShopHandler {
	return &ShopHandler{shops: shops}
}

func (h *ShopHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid shop id")
		return
	}

	shop, err := h.shops.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrShopNotFound) {
			response.NotFound(c, "shop not found")
			return
		}
		response.InternalError(c, "failed to load shop")
		return
	}
	response.Success(c, shop)
}

func (h *ShopHandler) Update(c *gin.Context) {
	var shop model.Shop
	if err := c.ShouldBindJSON(&shop); err != nil {
		response.BadRequest(c, "invalid shop payload")
		return
	}
	if shop.ID == 0 {
		response.BadRequest(c, "shop id is required")
		return
	}

	if err := h.shops.Update(c.Request.Context(), &shop); err != nil {
		response.InternalError(c, "failed to update shop")
		return
	}
	response.Success(c, shop)
}

type warmupRequest struct {
	TTLSeconds int64 `json:"ttl_seconds"`
}

func (h *ShopHandler) Warmup(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid shop id")
		return
	}

	var req warmupRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "invalid warmup payload")
			return
		}
	}

	if err := h.shops.Warmup(c.Request.Context(), id, time.Duration(req.TTLSeconds)*time.Second); err != nil {
		if errors.Is(err, service.ErrShopNotFound) {
			response.NotFound(c, "shop not found")
			return
		}
		response.InternalError(c, "failed to warm up shop")
		return
	}
	response.Success(c, nil)
}
