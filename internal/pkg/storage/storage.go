package storage

import (
	"context"
	"io"
	"time"
)

// Storage 存储接口
type Storage interface {
	// Upload 上传文件（服务端上传），返回可访问的URL
	Upload(ctx context.Context, key string, data io.Reader, contentType string) (string, error)

	// Download 下载文件
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// GetPresignedDownloadURL 获取预签名下载URL
	GetPresignedDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error)

	// Delete 删除文件
	Delete(ctx context.Context, key string) error

	// Exists 检查文件是否存在
	Exists(ctx context.Context, key string) (bool, error)

	// GetFileInfo 获取文件信息
	GetFileInfo(ctx context.Context, key string) (*FileInfo, error)

	// GetStorageType 获取存储类型
	GetStorageType() string
}

// FileInfo 文件信息
type FileInfo struct {
	Key          string
	Size         int64
	ContentType  string
	ETag         string
	LastModified time.Time
}

// StorageType 存储类型
type StorageType string

const (
	StorageTypeLocal StorageType = "local" // 本地文件系统
	StorageTypeOSS   StorageType = "oss"   // 阿里云OSS
	StorageTypeMinIO StorageType = "minio" // MinIO
)

// 对象 key 的命名空间，按用途和归属划分
func VideoKey(userID, id string) string {
	return "videos/" + userID + "/" + id + ".mp4"
}

func ThumbnailKey(userID, id string) string {
	return "thumbnails/" + userID + "/" + id + ".jpg"
}

func FrameKey(userID, storyID, id string) string {
	return "frames/" + userID + "/" + storyID + "/" + id + ".png"
}

func MergedVideoKey(userID, storyID, id string) string {
	return "merged_videos/" + userID + "/" + storyID + "/" + id + ".mp4"
}
