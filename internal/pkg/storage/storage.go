package storage

import (
	"context"
	"io"
	"time"
)

// Storage 附件归档存储接口
type Storage interface {
	// Upload 上传文件，返回可访问 URL
	Upload(ctx context.Context, key string, data io.Reader, contentType string) (string, error)

	// GetPresignedDownloadURL 获取预签名下载URL
	GetPresignedDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error)

	// GetStorageType 获取存储类型
	GetStorageType() string
}

// StorageType 存储类型
type StorageType string

const (
	StorageTypeLocal StorageType = "local" // 本地文件系统
	StorageTypeOSS   StorageType = "oss"   // 阿里云OSS
)
