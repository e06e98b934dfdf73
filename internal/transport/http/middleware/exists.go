package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"go-shop-api/internal/apperr"
)

// IDAccessor 从请求的固定位置取资源 id，编译期就锁定取值方式，
// 不走字符串反射进请求对象。
type IDAccessor func(c *gin.Context) (uint, error)

// PathID 取路径参数并解析成正整数，不合法按结构校验失败处理
func PathID(name string) IDAccessor {
	return func(c *gin.Context) (uint, error) {
		raw := c.Param(name)
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return 0, apperr.Validation(name + " must be a positive integer")
		}
		return uint(id), nil
	}
}

// RequireExists 资源存在性预检：查不到就用 notFound 短路，handler 不会执行
func RequireExists(exists func(id uint) (bool, error), id IDAccessor, notFound *apperr.Error) gin.HandlerFunc {
	return func(c *gin.Context) {
		resID, err := id(c)
		if err != nil {
			Fail(c, err)
			return
		}
		ok, err := exists(resID)
		if err != nil {
			Fail(c, err)
			return
		}
		if !ok {
			Fail(c, notFound)
			return
		}
		c.Next()
	}
}
