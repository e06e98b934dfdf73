package utils

import "github.com/google/uuid"

// NewID 36 位不可猜测的标识（会话 token、照片基名都用它）
func NewID() string { return uuid.NewString() }
