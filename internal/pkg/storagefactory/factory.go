package storagefactory

import (
	"context"
	"fmt"

	"yuzu/internal/config"
	"yuzu/internal/pkg/storage"
	"yuzu/internal/pkg/storage/local"
	"yuzu/internal/pkg/storage/minio"
	"yuzu/internal/pkg/storage/oss"
)

// NewStorage 根据配置创建存储实例
func NewStorage(ctx context.Context, cfg *config.StorageConfig) (storage.Storage, error) {
	switch cfg.Type {
	case "local":
		if cfg.Local == nil {
			return nil, fmt.Errorf("local storage config is required")
		}
		return local.NewLocalStorage(
			cfg.Local.BasePath,
			cfg.Local.BaseURL,
		)
	case "oss":
		if cfg.OSS == nil {
			return nil, fmt.Errorf("OSS storage config is required")
		}
		return oss.NewOSSStorage(
			cfg.OSS.Endpoint,
			cfg.OSS.Bucket,
			cfg.OSS.AccessKeyID,
			cfg.OSS.AccessKeySecret,
		)
	case "minio":
		if cfg.MinIO == nil {
			return nil, fmt.Errorf("MinIO storage config is required")
		}
		return minio.NewMinIOStorage(cfg.MinIO)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
