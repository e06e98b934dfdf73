package apperr

import "net/http"

// Kind 是错误的机器可读标识，随响应体原样返回给客户端
type Kind string

const (
	KindEmailInUse        Kind = "emailInUse"
	KindUserDoesNotExist  Kind = "userDoesNotExist"
	KindWrongPassword     Kind = "wrongPassword"
	KindTokenDoesNotExist Kind = "tokenDoesNotExist"
	KindTokenExpired      Kind = "tokenExpired"
	KindProductNotFound   Kind = "productDoesNotExist"
	KindPhotoNotFound     Kind = "productPhotoDoesNotExist"
	KindFileTooBig        Kind = "fileIsTooBig"
	KindValidation        Kind = "validation"
	KindUnknown           Kind = "unknown"
)

// Error 领域错误：kind + 提示语 + HTTP 状态码。
// 服务层只负责抛出，统一由顶层中间件映射成响应。
type Error struct {
	Kind    Kind
	Message string
	Status  int
}

func (e *Error) Error() string { return string(e.Kind) + ": " + e.Message }

func New(kind Kind, message string, status int) *Error {
	return &Error{Kind: kind, Message: message, Status: status}
}

// 闭合的错误清单，勿在别处新建 Kind
var (
	ErrEmailInUse        = New(KindEmailInUse, "email is already in use", http.StatusBadRequest)
	ErrUserDoesNotExist  = New(KindUserDoesNotExist, "there is no user with the given email", http.StatusBadRequest)
	ErrWrongPassword     = New(KindWrongPassword, "wrong password", http.StatusBadRequest)
	ErrTokenDoesNotExist = New(KindTokenDoesNotExist, "you must be logged in to perform that action", http.StatusUnauthorized)
	ErrTokenExpired      = New(KindTokenExpired, "you must be logged in to perform that action", http.StatusUnauthorized)
	ErrProductNotFound   = New(KindProductNotFound, "there is no product with the given id", http.StatusBadRequest)
	ErrPhotoNotFound     = New(KindPhotoNotFound, "there is no product photo with the given id", http.StatusBadRequest)
	ErrFileTooBig        = New(KindFileTooBig, "file must be less than 2MB", http.StatusBadRequest)
)

// Validation 结构校验失败（绑定/schema 层面），统一 400
func Validation(message string) *Error {
	return New(KindValidation, message, http.StatusBadRequest)
}
