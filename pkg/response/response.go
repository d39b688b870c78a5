package response

import (
    "net/http"

    "github.com/gin-gonic/gin"
    "go.uber.org/zap"

    "github.com/d60-Lab/ticket-queue/pkg/logger"
)

// Response 统一返回包装
type Response struct {
    Code int    `json:"code"`
    Msg  string `json:"msg"`
    Data any    `json:"data,omitempty"`
}

func Success(c *gin.Context, data any) {
    c.JSON(http.StatusOK, Response{Code: 0, Msg: "ok", Data: data})
}

func BadRequest(c *gin.Context, msg string) {
    c.JSON(http.StatusBadRequest, Response{Code: http.StatusBadRequest, Msg: msg})
}

func Unauthorized(c *gin.Context, msg string) {
    c.JSON(http.StatusUnauthorized, Response{Code: http.StatusUnauthorized, Msg: msg})
}

func NotFound(c *gin.Context, msg string) {
    c.JSON(http.StatusNotFound, Response{Code: http.StatusNotFound, Msg: msg})
}

func Conflict(c *gin.Context, msg string) {
    c.JSON(http.StatusConflict, Response{Code: http.StatusConflict, Msg: msg})
}

func Gone(c *gin.Context, msg string) {
    c.JSON(http.StatusGone, Response{Code: http.StatusGone, Msg: msg})
}

func TooManyRequests(c *gin.Context, msg string) {
    c.JSON(http.StatusTooManyRequests, Response{Code: http.StatusTooManyRequests, Msg: msg})
}

func InternalError(c *gin.Context, err error) {
    logger.Error("internal error", zap.String("path", c.FullPath()), zap.Error(err))
    c.JSON(http.StatusInternalServerError, Response{Code: http.StatusInternalServerError, Msg: "internal error"})
}
