package response

import (
	"errors"
	"net/http"

	"go-shop-api/internal/apperr"
)

// Body 所有失败响应的统一外形
type Body struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Unknown 不在错误清单里的失败，细节不外泄
var Unknown = Body{Error: string(apperr.KindUnknown), Message: "an unknown error occurred"}

// FromError 把领域错误映射成 (状态码, 响应体)。
// 不是 *apperr.Error 的一律按 unknown 处理，由调用方负责记日志。
func FromError(err error) (int, Body, bool) {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return ae.Status, Body{Error: string(ae.Kind), Message: ae.Message}, true
	}
	return http.StatusInternalServerError, Unknown, false
}
