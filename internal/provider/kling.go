package provider

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"yuzu/internal/config"
	"yuzu/internal/model/generation"
)

const klingDefaultBase = "https://api.klingai.com/v1"

const klingModelName = "kling-v1-6"

// Kling 可灵适配器
// 认证方式是 AK/SK 签发的短时 JWT，每次请求现签
type Kling struct {
	baseURL   string
	accessKey string
	secretKey string
	client    *http.Client
}

// NewKling 创建可灵适配器
func NewKling(cfg *config.KlingConfig, client *http.Client) *Kling {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = klingDefaultBase
	}
	return &Kling{
		baseURL:   baseURL,
		accessKey: cfg.AccessKey,
		secretKey: cfg.SecretKey,
		client:    client,
	}
}

// Name 厂商名称
func (p *Kling) Name() string {
	return "kling"
}

// signToken 用 AK/SK 签发 30 分钟有效的 JWT
func (p *Kling) signToken() (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss": p.accessKey,
		"exp": now.Add(30 * time.Minute).Unix(),
		"nbf": now.Add(-5 * time.Second).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(p.secretKey))
}

func (p *Kling) headers() (map[string]string, error) {
	token, err := p.signToken()
	if err != nil {
		return nil, fmt.Errorf("sign kling token: %w", err)
	}
	return map[string]string{"Authorization": "Bearer " + token}, nil
}

// Submit 提交生成任务，返回厂商任务ID
func (p *Kling) Submit(ctx context.Context, req *GenerationRequest) (string, error) {
	var endpoint string
	var payload map[string]any

	switch req.Kind {
	case generation.JobKindTextToVideo, generation.JobKindStoryScene:
		endpoint = p.baseURL + "/videos/text2video"
		payload = p.txt2vidPayload(req)
	case generation.JobKindImageToVideo:
		endpoint = p.baseURL + "/videos/image2video"
		payload = p.img2vidPayload(req)
	case generation.JobKindVideoToAnime:
		endpoint = p.baseURL + "/videos/image2video"
		payload = p.vid2animePayload(req)
	default:
		return "", fmt.Errorf("unsupported job kind for kling: %s", req.Kind)
	}

	headers, err := p.headers()
	if err != nil {
		return "", err
	}

	data, status, err := postJSON(ctx, p.client, endpoint, headers, payload)
	if err != nil {
		return "", fmt.Errorf("kling submit: %w", err)
	}
	if status >= 400 {
		return "", fmt.Errorf("kling submit: unexpected status %d: %s", status, str(data, "message"))
	}

	taskID := str(asMap(data["data"]), "task_id")
	if taskID == "" {
		return "", fmt.Errorf("kling did not return a task_id")
	}
	return taskID, nil
}

// Poll 查询任务状态
func (p *Kling) Poll(ctx context.Context, providerJobID string) (*GenerationResult, error) {
	headers, err := p.headers()
	if err != nil {
		return nil, err
	}

	data, status, err := getJSON(ctx, p.client, p.baseURL+"/videos/"+providerJobID, headers)
	if err != nil {
		return nil, fmt.Errorf("kling poll: %w", err)
	}
	if status >= 400 {
		return nil, fmt.Errorf("kling poll: unexpected status %d", status)
	}

	taskData := asMap(data["data"])

	switch str(taskData, "task_status") {
	case "succeed":
		var videoURL string
		if videos := asList(asMap(taskData["task_result"])["videos"]); len(videos) > 0 {
			videoURL = str(asMap(videos[0]), "url")
		}
		return &GenerationResult{
			Status:        StatusCompleted,
			ProviderJobID: providerJobID,
			VideoURL:      videoURL,
			Progress:      100,
		}, nil
	case "failed":
		errMsg := str(taskData, "task_status_msg")
		if errMsg == "" {
			errMsg = "Generation failed"
		}
		return &GenerationResult{
			Status:        StatusFailed,
			ProviderJobID: providerJobID,
			ErrorMessage:  errMsg,
		}, nil
	default:
		// 未识别的状态一律按处理中对待
		return &GenerationResult{
			Status:        StatusProcessing,
			ProviderJobID: providerJobID,
			Progress:      parseProgress(taskData["progress"], 0),
		}, nil
	}
}

func (p *Kling) txt2vidPayload(req *GenerationRequest) map[string]any {
	payload := map[string]any{
		"prompt":       req.Prompt,
		"duration":     fmt.Sprintf("%d", req.Duration),
		"aspect_ratio": req.AspectRatio,
		"model_name":   klingModelName,
	}
	if req.NegativePrompt != "" {
		payload["negative_prompt"] = req.NegativePrompt
	}
	return payload
}

func (p *Kling) img2vidPayload(req *GenerationRequest) map[string]any {
	payload := p.txt2vidPayload(req)
	payload["image"] = req.InputImageURL
	if req.SubjectRefURL != "" {
		payload["subject_reference"] = req.SubjectRefURL
	}
	return payload
}

func (p *Kling) vid2animePayload(req *GenerationRequest) map[string]any {
	payload := map[string]any{
		"prompt":       req.Prompt,
		"image":        req.InputImageURL,
		"duration":     fmt.Sprintf("%d", req.Duration),
		"aspect_ratio": req.AspectRatio,
		"model_name":   klingModelName,
		"cfg_scale":    req.StyleStrength,
	}
	return payload
}
