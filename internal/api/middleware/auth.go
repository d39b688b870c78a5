package middleware

import (
    "fmt"
    "strings"

    "github.com/gin-gonic/gin"
    "github.com/golang-jwt/jwt/v5"

    "github.com/d60-Lab/ticket-queue/pkg/response"
)

const userIDKey = "user_id"

// Auth 解析 Bearer JWT（HS256），把 sub 写入上下文作为 userID
func Auth(secret string) gin.HandlerFunc {
    return func(c *gin.Context) {
        header := c.GetHeader("Authorization")
        if !strings.HasPrefix(header, "Bearer ") {
            response.Unauthorized(c, "missing bearer token")
            c.Abort()
            return
        }
        tokenStr := strings.TrimPrefix(header, "Bearer ")

        token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
            if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
                return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
            }
            return []byte(secret), nil
        })
        if err != nil || !token.Valid {
            response.Unauthorized(c, "invalid token")
            c.Abort()
            return
        }

        sub, err := token.Claims.GetSubject()
        if err != nil || sub == "" {
            response.Unauthorized(c, "token missing subject")
            c.Abort()
            return
        }
        c.Set(userIDKey, sub)
        c.Next()
    }
}

// UserID 取出 Auth 中间件写入的用户标识
func UserID(c *gin.Context) string {
    return c.GetString(userIDKey)
}
