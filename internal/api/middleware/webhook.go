package middleware

import (
    "github.com/gin-gonic/gin"
    "golang.org/x/crypto/bcrypt"

    "github.com/d60-Lab/ticket-queue/pkg/response"
)

// WebhookAuth 校验支付回调的共享令牌；配置里只存 bcrypt 哈希
func WebhookAuth(tokenHash string) gin.HandlerFunc {
    return func(c *gin.Context) {
        token := c.GetHeader("X-Webhook-Token")
        if token == "" || tokenHash == "" {
            response.Unauthorized(c, "missing webhook token")
            c.Abort()
            return
        }
        if err := bcrypt.CompareHashAndPassword([]byte(tokenHash), []byte(token)); err != nil {
            response.Unauthorized(c, "invalid webhook token")
            c.Abort()
            return
        }
        c.Next()
    }
}
