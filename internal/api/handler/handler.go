package handler

import (
    "errors"

    "github.com/gin-gonic/gin"

    "github.com/d60-Lab/ticket-queue/internal/cache"
    "github.com/d60-Lab/ticket-queue/internal/repository"
    "github.com/d60-Lab/ticket-queue/internal/service"
    "github.com/d60-Lab/ticket-queue/pkg/response"
)

type Handler struct {
    queueSvc    service.QueueService
    finalizer   service.FinalizerService
    eventRepo   repository.EventRepository
    ticketRepo  repository.TicketRepository
    statusCache *cache.StatusCache // 可为 nil，降级为直读
}

func New(queueSvc service.QueueService, finalizer service.FinalizerService, eventRepo repository.EventRepository, ticketRepo repository.TicketRepository, statusCache *cache.StatusCache) *Handler {
    return &Handler{
        queueSvc:    queueSvc,
        finalizer:   finalizer,
        eventRepo:   eventRepo,
        ticketRepo:  ticketRepo,
        statusCache: statusCache,
    }
}

// renderError 服务层错误到 HTTP 状态码的统一映射
func renderError(c *gin.Context, err error) {
    switch {
    case errors.Is(err, service.ErrEventNotFound), errors.Is(err, service.ErrEntryNotFound):
        response.NotFound(c, err.Error())
    case errors.Is(err, service.ErrOfferExpired):
        response.Gone(c, err.Error())
    case errors.Is(err, service.ErrAlreadyFinalized), errors.Is(err, service.ErrNotOffered):
        response.Conflict(c, err.Error())
    case errors.Is(err, service.ErrPurchaseRequired):
        response.BadRequest(c, err.Error())
    case errors.Is(err, service.ErrConcurrentModification):
        response.Conflict(c, err.Error())
    default:
        response.InternalError(c, err)
    }
}
