package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-shop-api/internal/transport/http/response"
)

// Errors 唯一的顶层错误出口：handler/中间件只管 c.Error(err) + Abort，
// 这里统一映射成 {error, message}。未知错误带 method+path 记日志。
func Errors(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		status, body, known := response.FromError(err)
		if !known {
			l.Error("unknown error",
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
		}
		c.JSON(status, body)
	}
}

// Fail 中止本次请求并把错误交给 Errors 出口
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
