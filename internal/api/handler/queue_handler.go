package handler

import (
    "github.com/gin-gonic/gin"

    "github.com/d60-Lab/ticket-queue/internal/api/middleware"
    "github.com/d60-Lab/ticket-queue/internal/service"
    "github.com/d60-Lab/ticket-queue/pkg/response"
)

// RequestSpot 申请购票名额
// @Summary 申请购票名额（有容量直接获得 offer，否则排队）
// @Tags 队列
// @Produce json
// @Param event_id path string true "活动ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/events/{event_id}/queue [post]
func (h *Handler) RequestSpot(c *gin.Context) {
    eventID := c.Param("event_id")
    userID := middleware.UserID(c)

    entry, err := h.queueSvc.RequestSpot(c.Request.Context(), eventID, userID)
    if err != nil {
        renderError(c, err)
        return
    }
    h.invalidateStatus(c, eventID, userID)
    response.Success(c, entry)
}

// RequestAdditionalSpot 已购用户追加购票
// @Summary 追加购票（复用同一原子分配路径，不绕过容量校验）
// @Tags 队列
// @Produce json
// @Param event_id path string true "活动ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/events/{event_id}/queue/additional [post]
func (h *Handler) RequestAdditionalSpot(c *gin.Context) {
    eventID := c.Param("event_id")
    userID := middleware.UserID(c)

    entry, err := h.queueSvc.RequestAdditionalSpot(c.Request.Context(), eventID, userID)
    if err != nil {
        renderError(c, err)
        return
    }
    h.invalidateStatus(c, eventID, userID)
    response.Success(c, entry)
}

// GetPosition 查询排队状态
// @Summary 查询当前排队位次 / offer 截止时间
// @Tags 队列
// @Produce json
// @Param event_id path string true "活动ID"
// @Success 200 {object} response.Response{data=service.QueueStatus}
// @Failure 404 {object} response.Response
// @Router /api/v1/events/{event_id}/queue [get]
func (h *Handler) GetPosition(c *gin.Context) {
    eventID := c.Param("event_id")
    userID := middleware.UserID(c)
    ctx := c.Request.Context()

    load := func() (*service.QueueStatus, error) {
        return h.queueSvc.GetPosition(ctx, eventID, userID)
    }

    var (
        st  *service.QueueStatus
        err error
    )
    if h.statusCache != nil {
        st, err = h.statusCache.GetStatus(ctx, eventID, userID, load)
    } else {
        st, err = load()
    }
    if err != nil {
        renderError(c, err)
        return
    }
    response.Success(c, st)
}

// Release 主动放弃名额
// @Summary 放弃 offer 或退出等待队列（幂等）
// @Tags 队列
// @Produce json
// @Param event_id path string true "活动ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/events/{event_id}/queue [delete]
func (h *Handler) Release(c *gin.Context) {
    eventID := c.Param("event_id")
    userID := middleware.UserID(c)

    if err := h.finalizer.Release(c.Request.Context(), eventID, userID); err != nil {
        renderError(c, err)
        return
    }
    h.invalidateStatus(c, eventID, userID)
    response.Success(c, nil)
}

// ListMyTickets 查询本人成交票
// @Summary 查询本人成交票
// @Tags 票
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/tickets [get]
func (h *Handler) ListMyTickets(c *gin.Context) {
    userID := middleware.UserID(c)
    tickets, err := h.ticketRepo.ListByUser(c.Request.Context(), userID, 100)
    if err != nil {
        response.InternalError(c, err)
        return
    }
    response.Success(c, tickets)
}

func (h *Handler) invalidateStatus(c *gin.Context, eventID, userID string) {
    if h.statusCache != nil {
        h.statusCache.Invalidate(c.Request.Context(), eventID, userID)
    }
}
