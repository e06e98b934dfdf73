package middleware

import (
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"

	"go-shop-api/internal/apperr"
)

// CtxToken 校验通过后 token 存放的 context key
const CtxToken = "sessionToken"

// 头部形状先按 schema 卡掉（"Basic" 前缀 + 36 位 token）。
// 名为 Basic 实为 bearer token，沿用既有客户端的约定。
var authHeaderRe = regexp.MustCompile(`^Basic [a-z0-9-]{36}$`)

// TokenValidator resolves a session token; failure kinds are
// tokenDoesNotExist and tokenExpired.
type TokenValidator interface {
	ValidateAuth(token string) error
}

// RequireAuth 永远排在存在性校验之前：未登录的调用方只能得到 401，
// 探测不到资源 id 是否存在。
func RequireAuth(auth TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if !authHeaderRe.MatchString(h) {
			Fail(c, apperr.Validation(`authorization header must match "Basic <session id>"`))
			return
		}
		token := strings.TrimPrefix(h, "Basic ")
		if err := auth.ValidateAuth(token); err != nil {
			Fail(c, err)
			return
		}
		c.Set(CtxToken, token)
		c.Next()
	}
}
