package generation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"yuzu/internal/config"
	"yuzu/internal/notify"
	"yuzu/internal/pkg/cache"
	"yuzu/internal/pkg/ffmpeg"
	"yuzu/internal/pkg/storage"
	"yuzu/internal/provider"
	repo "yuzu/internal/repository/generation"
)

// ErrMergeInProgress 故事已有合成任务在执行
var ErrMergeInProgress = errors.New("merge already in progress")

// ProviderFactory 厂商适配器工厂
type ProviderFactory interface {
	New(name string) (provider.Provider, error)
}

// MediaProcessor 媒体处理能力，由 FFmpeg 客户端实现
type MediaProcessor interface {
	GetVideoInfo(ctx context.Context, videoPath string) (*ffmpeg.VideoInfo, error)
	HasAudio(ctx context.Context, videoPath string) (bool, error)
	ExtractTailFrame(ctx context.Context, videoPath, outputPath string) error
	ExtractThumbnail(ctx context.Context, videoPath, outputPath string) error
	AddSilentAudio(ctx context.Context, inputPath, outputPath string) error
	CrossfadeConcat(ctx context.Context, inputPaths []string, durations []float64, fade float64, outputPath string) error
	ConcatVideos(ctx context.Context, videoPaths []string, outputPath string) error
}

// Deps 服务依赖
type Deps struct {
	Jobs      repo.JobRepository
	Stories   repo.StoryRepository
	Scenes    repo.SceneRepository
	Videos    repo.VideoRepository
	Providers ProviderFactory
	Storage   storage.Storage
	Media     MediaProcessor
	Notifier  notify.Notifier
	Cache     *cache.RedisCache // 可选，合成跨进程锁
	Worker    *config.WorkerConfig
	Merge     *config.MergeConfig

	// HTTPClient 下载厂商产出用，缺省 10 分钟超时
	HTTPClient *http.Client
}

// Service 视频生成服务
// 队列消费端的业务入口：单任务执行、故事编排、故事合成
type Service struct {
	jobs      repo.JobRepository
	stories   repo.StoryRepository
	scenes    repo.SceneRepository
	videos    repo.VideoRepository
	providers ProviderFactory
	store     storage.Storage
	media     MediaProcessor
	notifier  notify.Notifier
	cache     *cache.RedisCache
	worker    *config.WorkerConfig
	merge     *config.MergeConfig
	client    *http.Client
}

// NewService 创建视频生成服务
func NewService(d Deps) *Service {
	client := d.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Minute}
	}
	notifier := d.Notifier
	if notifier == nil {
		notifier = notify.NopNotifier{}
	}

	return &Service{
		jobs:      d.Jobs,
		stories:   d.Stories,
		scenes:    d.Scenes,
		videos:    d.Videos,
		providers: d.Providers,
		store:     d.Storage,
		media:     d.Media,
		notifier:  notifier,
		cache:     d.Cache,
		worker:    d.Worker,
		merge:     d.Merge,
		client:    client,
	}
}

// downloadToFile 把 URL 指向的内容落到本地文件，返回字节数
func (s *Service) downloadToFile(ctx context.Context, url, destPath string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("download video: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return 0, fmt.Errorf("download video: unexpected status %d", resp.StatusCode)
	}

	f, err := os.Create(destPath)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	return io.Copy(f, resp.Body)
}

// fetchStoredObject 从对象存储取文件落到本地
func (s *Service) fetchStoredObject(ctx context.Context, key, destPath string) error {
	r, err := s.store.Download(ctx, key)
	if err != nil {
		return fmt.Errorf("download object %s: %w", key, err)
	}
	defer r.Close()

	f, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(f, r)
	return err
}

// uploadFile 把本地文件上传到对象存储，返回可访问URL
func (s *Service) uploadFile(ctx context.Context, localPath, key, contentType string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	return s.store.Upload(ctx, key, f, contentType)
}

// waitFor 可中断的等待
func waitFor(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// truncate 截断过长的错误文本
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
