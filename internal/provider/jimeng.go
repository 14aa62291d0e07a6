package provider

import (
	"context"
	"fmt"
	"net/http"

	"yuzu/internal/config"
	"yuzu/internal/model/generation"
)

const jimengDefaultBase = "https://ark.cn-beijing.volces.com/api/v3"

// 火山方舟 Seedance 模型 ID
const jimengDefaultModel = "doubao-seedance-1-5-pro-251215"

// Jimeng 即梦适配器（火山方舟内容生成任务 API）
// 画面比例和时长以内联参数形式追加在提示词末尾；图片输入必须内联为 base64
type Jimeng struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
	fetcher *imageFetcher
}

// NewJimeng 创建即梦适配器
func NewJimeng(cfg *config.JimengConfig, client *http.Client, fetcher *imageFetcher) *Jimeng {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = jimengDefaultBase
	}
	model := cfg.Model
	if model == "" {
		model = jimengDefaultModel
	}
	return &Jimeng{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		model:   model,
		client:  client,
		fetcher: fetcher,
	}
}

// Name 厂商名称
func (p *Jimeng) Name() string {
	return "jimeng"
}

func (p *Jimeng) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + p.apiKey}
}

// appendVideoParams 在提示词末尾追加内联视频参数
func appendVideoParams(prompt string, req *GenerationRequest) string {
	ratio := req.AspectRatio
	if ratio == "" {
		ratio = "16:9"
	}
	dur := req.Duration
	if dur == 0 {
		dur = 5
	}
	return fmt.Sprintf("%s --ratio %s --dur %d --watermark false", prompt, ratio, dur)
}

// Submit 提交生成任务，返回厂商任务ID
func (p *Jimeng) Submit(ctx context.Context, req *GenerationRequest) (string, error) {
	text := appendVideoParams(req.Prompt, req)

	var content []map[string]any
	switch req.Kind {
	case generation.JobKindTextToVideo, generation.JobKindStoryScene:
		content = []map[string]any{
			{"type": "text", "text": text},
		}
	case generation.JobKindImageToVideo, generation.JobKindVideoToAnime:
		imageURL := req.InputImageURL
		if imageURL != "" {
			dataURI, err := p.fetcher.FetchAsDataURI(ctx, imageURL)
			if err != nil {
				return "", fmt.Errorf("jimeng inline image: %w", err)
			}
			imageURL = dataURI
		}
		content = []map[string]any{
			{"type": "image_url", "image_url": map[string]any{"url": imageURL}},
			{"type": "text", "text": text},
		}
	default:
		return "", fmt.Errorf("unsupported job kind for jimeng: %s", req.Kind)
	}

	payload := map[string]any{
		"model":   p.model,
		"content": content,
	}

	data, status, err := postJSON(ctx, p.client, p.baseURL+"/contents/generations/tasks", p.headers(), payload)
	if err != nil {
		return "", fmt.Errorf("jimeng submit: %w", err)
	}
	if status >= 400 {
		return "", fmt.Errorf("jimeng submit: unexpected status %d: %s", status, str(asMap(data["error"]), "message"))
	}

	taskID := str(data, "id")
	if taskID == "" {
		taskID = str(asMap(data["data"]), "id")
	}
	if taskID == "" {
		return "", fmt.Errorf("jimeng did not return an id")
	}
	return taskID, nil
}

// Poll 查询任务状态
func (p *Jimeng) Poll(ctx context.Context, providerJobID string) (*GenerationResult, error) {
	data, status, err := getJSON(ctx, p.client, p.baseURL+"/contents/generations/tasks/"+providerJobID, p.headers())
	if err != nil {
		return nil, fmt.Errorf("jimeng poll: %w", err)
	}
	if status >= 400 {
		return nil, fmt.Errorf("jimeng poll: unexpected status %d", status)
	}

	switch str(data, "status") {
	case "succeeded":
		// content 既可能是对象也可能是数组，优先结构化字段
		var videoURL string
		if m := asMap(data["content"]); m != nil {
			videoURL = str(m, "video_url")
		} else if l := asList(data["content"]); len(l) > 0 {
			first := asMap(l[0])
			videoURL = str(first, "video_url")
			if videoURL == "" {
				videoURL = str(first, "url")
			}
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
	case "failed", "expired":
		errMsg := str(asMap(data["error"]), "message")
		if errMsg == "" {
			errMsg = "Generation failed"
		}
		return &GenerationResult{
			Status:        StatusFailed,
			ProviderJobID: providerJobID,
			ErrorMessage:  errMsg,
		}, nil
	case "queued":
		return &GenerationResult{
			Status:        StatusProcessing,
			ProviderJobID: providerJobID,
			Progress:      30,
		}, nil
	default:
		// running/submitted 以及一切未识别状态
		return &GenerationResult{
			Status:        StatusProcessing,
			ProviderJobID: providerJobID,
			Progress:      60,
		}, nil
	}
}
