package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"dealping/seckill/internal/handler/middleware"
	"dealping/seckill/internal/service"
	"dealping/seckill/pkg/response"
)

type SeckillHandler struct {
	seckill service.SeckillService
}

func NewSeckillHandler(seckill service.SeckillService) *SeckillHandler {
	return &SeckillHandler{seckill: seckill}
}

func (h *SeckillHandler) Submit(c *gin.Context) {
	voucherID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid voucher id")
		return
	}
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "unauthenticated")
		return
	}

	orderID, err := h.seckill.Submit(c.Request.Context(), userID, voucherID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrVoucherNotFound):
			response.NotFound(c, "voucher not found")
		case errors.Is(err, service.ErrSaleNotStarted),
			errors.Is(err, service.ErrSaleEnded),
			errors.Is(err, service.ErrSoldOut),
			errors.Is(err, service.ErrDuplicateOrder):
			// Expected business outcomes, not server errors.
			response.Conflict(c, err.Error())
		case errors.Is(err, service.ErrIntakeSaturated):
			response.ServiceUnavailable(c, "try again later")
		default:
			response.InternalError(c, "seckill failed")
		}
		return
	}
	response.Success(c, gin.H{"order_id": orderID})
}
