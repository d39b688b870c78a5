package handler

import (
    "errors"
    "strings"

    "github.com/gin-gonic/gin"
    "github.com/gin-gonic/gin/binding"
    "github.com/go-playground/validator/v10"
    "github.com/google/uuid"
    "gorm.io/gorm"

    "github.com/d60-Lab/ticket-queue/internal/model"
    "github.com/d60-Lab/ticket-queue/pkg/response"
)

func init() {
    if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
        _ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
            return strings.TrimSpace(fl.Field().String()) != ""
        })
    }
}

type createEventRequest struct {
    ID           string `json:"id"`
    Name         string `json:"name" binding:"required,notblank"`
    TotalTickets int    `json:"total_tickets" binding:"required,gt=0"`
}

// CreateEvent 登记活动容量
// @Summary 登记活动（容量来源，由主站调用）
// @Tags 活动
// @Accept json
// @Produce json
// @Param request body createEventRequest true "活动信息"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/events [post]
func (h *Handler) CreateEvent(c *gin.Context) {
    var req createEventRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        response.BadRequest(c, err.Error())
        return
    }
    if req.ID == "" {
        req.ID = uuid.New().String()
    }

    ev := &model.Event{ID: req.ID, Name: req.Name, TotalTickets: req.TotalTickets}
    if err := h.eventRepo.Create(c.Request.Context(), ev); err != nil {
        response.BadRequest(c, err.Error())
        return
    }
    response.Success(c, ev)
}

// GetEvent 查询活动容量账本
// @Summary 查询活动及当前售出数
// @Tags 活动
// @Produce json
// @Param event_id path string true "活动ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/events/{event_id} [get]
func (h *Handler) GetEvent(c *gin.Context) {
    ev, err := h.eventRepo.Get(c.Request.Context(), c.Param("event_id"))
    if err != nil {
        if errors.Is(err, gorm.ErrRecordNotFound) {
            response.NotFound(c, "event not found")
            return
        }
        response.InternalError(c, err)
        return
    }
    response.Success(c, ev)
}
