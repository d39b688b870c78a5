package handler

import (
    "github.com/gin-gonic/gin"

    "github.com/d60-Lab/ticket-queue/internal/service"
    "github.com/d60-Lab/ticket-queue/pkg/response"
)

type paymentWebhookRequest struct {
    EventID string `json:"event_id" binding:"required"`
    UserID  string `json:"user_id" binding:"required"`
    Outcome string `json:"outcome" binding:"required,oneof=completed released"`
}

// PaymentWebhook 支付结果回调
// @Summary 支付确认回调（completed 落票，released 释放名额）
// @Tags 支付
// @Accept json
// @Produce json
// @Param request body paymentWebhookRequest true "支付结果"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 410 {object} response.Response
// @Router /api/v1/payments/webhook [post]
func (h *Handler) PaymentWebhook(c *gin.Context) {
    var req paymentWebhookRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        response.BadRequest(c, err.Error())
        return
    }

    entry, err := h.finalizer.Finalize(c.Request.Context(), req.EventID, req.UserID, service.Outcome(req.Outcome))
    if err != nil {
        renderError(c, err)
        return
    }
    h.invalidateStatus(c, req.EventID, req.UserID)
    response.Success(c, entry)
}
