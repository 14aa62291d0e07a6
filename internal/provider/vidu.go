package provider

import (
	"context"
	"fmt"
	"net/http"

	"yuzu/internal/config"
	"yuzu/internal/model/generation"
)

const viduDefaultBase = "https://api.vidu.com/ent/v1"

const viduModel = "vidu2.0"

// Vidu 适配器
// 认证头是 "Token {key}" 而不是 Bearer
type Vidu struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewVidu 创建 Vidu 适配器
func NewVidu(cfg *config.ViduConfig, client *http.Client) *Vidu {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = viduDefaultBase
	}
	return &Vidu{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		client:  client,
	}
}

// Name 厂商名称
func (p *Vidu) Name() string {
	return "vidu"
}

func (p *Vidu) headers() map[string]string {
	return map[string]string{"Authorization": "Token " + p.apiKey}
}

// Submit 提交生成任务，返回厂商任务ID
func (p *Vidu) Submit(ctx context.Context, req *GenerationRequest) (string, error) {
	var payload map[string]any
	switch req.Kind {
	case generation.JobKindTextToVideo, generation.JobKindStoryScene:
		payload = map[string]any{
			"type":  "text2video",
			"model": viduModel,
			"style": "anime",
			"input": map[string]any{"prompt": req.Prompt},
		}
	case generation.JobKindImageToVideo, generation.JobKindVideoToAnime:
		payload = map[string]any{
			"type":  "img2video",
			"model": viduModel,
			"style": "anime",
			"input": map[string]any{
				"prompt":    req.Prompt,
				"image_url": req.InputImageURL,
			},
		}
	default:
		return "", fmt.Errorf("unsupported job kind for vidu: %s", req.Kind)
	}

	data, status, err := postJSON(ctx, p.client, p.baseURL+"/tasks", p.headers(), payload)
	if err != nil {
		return "", fmt.Errorf("vidu submit: %w", err)
	}
	if status >= 400 {
		return "", fmt.Errorf("vidu submit: unexpected status %d: %s", status, str(data, "err_msg"))
	}

	taskID := str(data, "task_id")
	if taskID == "" {
		taskID = str(data, "id")
	}
	if taskID == "" {
		return "", fmt.Errorf("vidu did not return a task_id")
	}
	return taskID, nil
}

// Poll 查询任务状态
func (p *Vidu) Poll(ctx context.Context, providerJobID string) (*GenerationResult, error) {
	data, status, err := getJSON(ctx, p.client, p.baseURL+"/tasks/"+providerJobID, p.headers())
	if err != nil {
		return nil, fmt.Errorf("vidu poll: %w", err)
	}
	if status >= 400 {
		return nil, fmt.Errorf("vidu poll: unexpected status %d", status)
	}

	switch str(data, "status") {
	case "success":
		// 优先结构化的 creations 列表，回落到平铺字段
		var videoURL string
		if creations := asList(data["creations"]); len(creations) > 0 {
			videoURL = str(asMap(creations[0]), "url")
		}
		if videoURL == "" {
			videoURL = str(data, "video_url")
		}
		return &GenerationResult{
			Status:        StatusCompleted,
			ProviderJobID: providerJobID,
			VideoURL:      videoURL,
			Progress:      100,
		}, nil
	case "fail":
		errMsg := str(data, "err_msg")
		if errMsg == "" {
			errMsg = "Generation failed"
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
