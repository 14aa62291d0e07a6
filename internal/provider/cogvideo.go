package provider

import (
	"context"
	"fmt"
	"net/http"

	"yuzu/internal/config"
	"yuzu/internal/model/generation"
)

const cogVideoDefaultBase = "https://open.bigmodel.cn/api/paas/v4"

const cogVideoModel = "cogvideox-3"

// CogVideo 智谱 CogVideoX 适配器
type CogVideo struct {
	baseURL string
	apiKey  string
	client  *http.Client
	fetcher *imageFetcher
}

// NewCogVideo 创建 CogVideo 适配器
func NewCogVideo(cfg *config.CogVideoConfig, client *http.Client, fetcher *imageFetcher) *CogVideo {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = cogVideoDefaultBase
	}
	return &CogVideo{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		client:  client,
		fetcher: fetcher,
	}
}

// Name 厂商名称
func (p *CogVideo) Name() string {
	return "cogvideo"
}

func (p *CogVideo) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + p.apiKey}
}

// mapSize 把画面比例映射为 CogVideoX 的 size 参数
func mapSize(aspectRatio string) string {
	switch aspectRatio {
	case "9:16":
		return "720x1280"
	case "1:1":
		return "1024x1024"
	default:
		return "1280x720"
	}
}

// Submit 提交生成任务，返回厂商任务ID
func (p *CogVideo) Submit(ctx context.Context, req *GenerationRequest) (string, error) {
	duration := 5
	if req.Duration == 5 || req.Duration == 10 {
		duration = req.Duration
	}

	payload := map[string]any{
		"model":      cogVideoModel,
		"prompt":     req.Prompt,
		"quality":    "quality",
		"with_audio": true,
		"size":       mapSize(req.AspectRatio),
		"fps":        30,
		"duration":   duration,
	}

	switch req.Kind {
	case generation.JobKindTextToVideo, generation.JobKindStoryScene:
	case generation.JobKindImageToVideo, generation.JobKindVideoToAnime:
		if req.InputImageURL != "" {
			dataURI, err := p.fetcher.FetchAsDataURI(ctx, req.InputImageURL)
			if err != nil {
				return "", fmt.Errorf("cogvideo inline image: %w", err)
			}
			payload["image_url"] = dataURI
		}
	default:
		return "", fmt.Errorf("unsupported job kind for cogvideo: %s", req.Kind)
	}

	data, status, err := postJSON(ctx, p.client, p.baseURL+"/videos/generations", p.headers(), payload)
	if err != nil {
		return "", fmt.Errorf("cogvideo submit: %w", err)
	}
	if status >= 400 {
		return "", fmt.Errorf("cogvideo submit: unexpected status %d: %s", status, str(data, "message"))
	}

	taskID := str(data, "id")
	if taskID == "" {
		return "", fmt.Errorf("cogvideo did not return an id")
	}
	return taskID, nil
}

// Poll 查询任务状态
// 查询接口返回 4xx/5xx 时携带的是任务级错误，按失败处理而不是按瞬时错误
func (p *CogVideo) Poll(ctx context.Context, providerJobID string) (*GenerationResult, error) {
	data, status, err := getJSON(ctx, p.client, p.baseURL+"/async-result/"+providerJobID, p.headers())
	if err != nil {
		return nil, fmt.Errorf("cogvideo poll: %w", err)
	}
	if status >= 400 {
		errMsg := str(data, "message")
		if errMsg == "" {
			errMsg = str(asMap(data["error"]), "message")
		}
		return &GenerationResult{
			Status:        StatusFailed,
			ProviderJobID: providerJobID,
			ErrorMessage:  fmt.Sprintf("ZhipuAI API error (%d): %s", status, errMsg),
		}, nil
	}

	switch str(data, "task_status") {
	case "SUCCESS":
		var videoURL string
		if l := asList(data["video_result"]); len(l) > 0 {
			videoURL = str(asMap(l[0]), "url")
		} else if m := asMap(data["video_result"]); m != nil {
			videoURL = str(m, "url")
		}
		return &GenerationResult{
			Status:        StatusCompleted,
			ProviderJobID: providerJobID,
			VideoURL:      videoURL,
			Progress:      100,
		}, nil
	case "FAIL":
		errMsg := str(data, "message")
		if errMsg == "" {
			errMsg = "Video generation failed"
		}
		return &GenerationResult{
			Status:        StatusFailed,
			ProviderJobID: providerJobID,
			ErrorMessage:  errMsg,
		}, nil
	default:
		return &GenerationResult{
			Status:        StatusProcessing,
			ProviderJobID: providerJobID,
			Progress:      50,
		}, nil
	}
}
