package provider

import (
	"fmt"
	"net/http"
	"time"

	"yuzu/internal/config"
)

// Factory 按名称构建厂商适配器
// 厂商集合是封闭的：kling, jimeng, vidu, cogvideo, comfyui
type Factory struct {
	cfg     *config.ProvidersConfig
	client  *http.Client
	fetcher *imageFetcher
}

// NewFactory 创建适配器工厂
// storageCfg 用于 MinIO 内外网地址改写（厂商要求内联图片时，本进程需要走内部地址取字节）
func NewFactory(cfg *config.ProvidersConfig, storageCfg *config.StorageConfig) *Factory {
	client := &http.Client{Timeout: 60 * time.Second}

	fetcher := &imageFetcher{client: client}
	if storageCfg != nil && storageCfg.MinIO != nil && storageCfg.MinIO.PublicEndpoint != "" {
		scheme := "http"
		if storageCfg.MinIO.UseSSL {
			scheme = "https"
		}
		fetcher.publicBase = scheme + "://" + storageCfg.MinIO.PublicEndpoint
		fetcher.internalBase = scheme + "://" + storageCfg.MinIO.Endpoint
	}

	return &Factory{
		cfg:     cfg,
		client:  client,
		fetcher: fetcher,
	}
}

// New 按名称创建适配器
// 未知名称返回 ErrUnknownProvider；除 comfyui 外凭证缺失直接报错
func (f *Factory) New(name string) (Provider, error) {
	switch name {
	case "kling":
		if f.cfg.Kling.AccessKey == "" || f.cfg.Kling.SecretKey == "" {
			return nil, fmt.Errorf("no API key configured for provider %s", name)
		}
		return NewKling(&f.cfg.Kling, f.client), nil
	case "jimeng":
		if f.cfg.Jimeng.APIKey == "" {
			return nil, fmt.Errorf("no API key configured for provider %s", name)
		}
		return NewJimeng(&f.cfg.Jimeng, f.client, f.fetcher), nil
	case "vidu":
		if f.cfg.Vidu.APIKey == "" {
			return nil, fmt.Errorf("no API key configured for provider %s", name)
		}
		return NewVidu(&f.cfg.Vidu, f.client), nil
	case "cogvideo":
		if f.cfg.CogVideo.APIKey == "" {
			return nil, fmt.Errorf("no API key configured for provider %s", name)
		}
		return NewCogVideo(&f.cfg.CogVideo, f.client, f.fetcher), nil
	case "comfyui":
		// 自托管，允许无凭证构建
		return NewComfyUI(&f.cfg.ComfyUI, f.client), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
}
