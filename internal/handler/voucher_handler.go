package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"dealping/seckill/internal/model"
	"dealping/seckill/internal/service"
	"dealping/seckill/pkg/response"
)

type VoucherHandler struct {
	vouchers service.VoucherService
}

func NewVoucherHandler(vouchers service.VoucherService) *VoucherHandler {
	return &VoucherHandler{vouchers: vouchers}
}

type createVoucherRequest struct {
	ShopID    uint64    `json:"shop_id" binding:"required"`
	Title     string    `json:"title" binding:"required"`
	Stock     int64     `json:"stock" binding:"required,gt=0"`
	BeginTime time.Time `json:"begin_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
}

func (h *VoucherHandler) Create(c *gin.Context) {
	var req createVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid voucher payload")
		return
	}
	if !req.EndTime.After(req.BeginTime) {
		response.BadRequest(c, "end_time must be after begin_time")
		return
	}

	voucher := &model.SeckillVoucher{
		ShopID:    req.ShopID,
		Title:     req.Title,
		Stock:     req.Stock,
		BeginTime: req.BeginTime,
		EndTime:   req.EndTime,
	}
	if err := h.vouchers.CreateSeckillVoucher(c.Request.Context(), voucher); err != nil {
		response.InternalError(c, "failed to create voucher")
		return
	}
	response.Success(c, voucher)
}
