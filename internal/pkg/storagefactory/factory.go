package storagefactory

import (
	"fmt"

	"rushbot/internal/config"
	"rushbot/internal/pkg/storage"
	"rushbot/internal/pkg/storage/local"
	"rushbot/internal/pkg/storage/oss"
)

// NewStorage 根据配置创建存储实例
// type 为 "none" 时返回 (nil, nil)，表示不归档附件。
func NewStorage(cfg *config.StorageConfig) (storage.Storage, error) {
	switch cfg.Type {
	case "", "none":
		return nil, nil
	case "local":
		if cfg.Local == nil {
			return nil, fmt.Errorf("local storage config is required")
		}
		return local.NewLocalStorage(cfg.Local.BasePath, cfg.Local.BaseURL)
	case "oss":
		if cfg.OSS == nil {
			return nil, fmt.Errorf("OSS storage config is required")
		}
		return oss.NewOSSStorage(
			cfg.OSS.Endpoint,
			cfg.OSS.Bucket,
			cfg.OSS.AccessKeyID,
			cfg.OSS.AccessKeySecret,
			cfg.OSS.PresignExpiry,
		)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
