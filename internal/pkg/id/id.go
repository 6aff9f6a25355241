package id

import (
	"github.com/google/uuid"
)

// New 生成新的UUID（string格式）
func New() string {
	return uuid.New().String()
}

// Short 生成短 ID（UUID 前 8 位，用于归档路径与日志关联）
func Short() string {
	return uuid.New().String()[:8]
}
