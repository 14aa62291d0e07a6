package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"yuzu/internal/config"
	"yuzu/internal/model/generation"
	"yuzu/internal/pkg/id"
)

// ComfyUI 自托管适配器，无凭证
// 提交的是完整的工作流图；产出通过 /view 接口取回
type ComfyUI struct {
	baseURL  string
	clientID string
	client   *http.Client
}

// NewComfyUI 创建 ComfyUI 适配器
func NewComfyUI(cfg *config.ComfyUIConfig, client *http.Client) *ComfyUI {
	return &ComfyUI{
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		clientID: strings.ReplaceAll(id.New(), "-", ""),
		client:   client,
	}
}

// Name 厂商名称
func (p *ComfyUI) Name() string {
	return "comfyui"
}

// Submit 提交工作流，返回 prompt_id
func (p *ComfyUI) Submit(ctx context.Context, req *GenerationRequest) (string, error) {
	payload := map[string]any{
		"prompt":    p.buildWorkflow(req),
		"client_id": p.clientID,
	}

	data, status, err := postJSON(ctx, p.client, p.baseURL+"/prompt", nil, payload)
	if err != nil {
		return "", fmt.Errorf("comfyui submit: %w", err)
	}
	if status >= 400 {
		return "", fmt.Errorf("comfyui submit: unexpected status %d", status)
	}

	promptID := str(data, "prompt_id")
	if promptID == "" {
		return "", fmt.Errorf("comfyui did not return a prompt_id")
	}
	return promptID, nil
}

// Poll 查询工作流执行状态
// 历史记录里还没有该 prompt_id 时说明仍在排队
func (p *ComfyUI) Poll(ctx context.Context, providerJobID string) (*GenerationResult, error) {
	data, status, err := getJSON(ctx, p.client, p.baseURL+"/history/"+providerJobID, nil)
	if err != nil {
		return nil, fmt.Errorf("comfyui poll: %w", err)
	}
	if status >= 400 {
		return nil, fmt.Errorf("comfyui poll: unexpected status %d", status)
	}

	history := asMap(data[providerJobID])
	if history == nil {
		return &GenerationResult{
			Status:        StatusProcessing,
			ProviderJobID: providerJobID,
			Progress:      30,
		}, nil
	}

	statusInfo := asMap(history["status"])
	completed, _ := statusInfo["completed"].(bool)
	statusStr := str(statusInfo, "status_str")

	switch {
	case completed || statusStr == "success":
		return &GenerationResult{
			Status:        StatusCompleted,
			ProviderJobID: providerJobID,
			VideoURL:      p.extractVideoURL(asMap(history["outputs"])),
			Progress:      100,
		}, nil
	case statusStr == "error":
		var msgs []string
		for _, m := range asList(statusInfo["messages"]) {
			if m != nil {
				msgs = append(msgs, fmt.Sprintf("%v", m))
			}
		}
		errText := strings.Join(msgs, "; ")
		if errText == "" {
			errText = "ComfyUI workflow failed"
		}
		return &GenerationResult{
			Status:        StatusFailed,
			ProviderJobID: providerJobID,
			ErrorMessage:  errText,
		}, nil
	default:
		return &GenerationResult{
			Status:        StatusProcessing,
			ProviderJobID: providerJobID,
			Progress:      50,
		}, nil
	}
}

// extractVideoURL 遍历输出节点，找到生成的视频文件
func (p *ComfyUI) extractVideoURL(outputs map[string]any) string {
	for _, nodeOutput := range outputs {
		node := asMap(nodeOutput)
		if videos := asList(node["videos"]); len(videos) > 0 {
			v := asMap(videos[0])
			vtype := str(v, "type")
			if vtype == "" {
				vtype = "output"
			}
			return p.viewURL(str(v, "filename"), str(v, "subfolder"), vtype)
		}
		if gifs := asList(node["gifs"]); len(gifs) > 0 {
			g := asMap(gifs[0])
			return p.viewURL(str(g, "filename"), str(g, "subfolder"), "output")
		}
	}
	return ""
}

func (p *ComfyUI) viewURL(filename, subfolder, vtype string) string {
	q := url.Values{}
	q.Set("filename", filename)
	q.Set("subfolder", subfolder)
	q.Set("type", vtype)
	return p.baseURL + "/view?" + q.Encode()
}

// comfyAspectDims 画面比例到潜空间尺寸的映射
func comfyAspectDims(aspectRatio string) (int, int) {
	switch aspectRatio {
	case "9:16":
		return 576, 1024
	case "1:1":
		return 768, 768
	case "4:3":
		return 896, 672
	case "3:4":
		return 672, 896
	default:
		return 1024, 576
	}
}

// buildWorkflow 构建 Wan2.1 动画风格工作流
// 图生视频时用 LoadImage+VAEEncode 替换空潜空间节点
func (p *ComfyUI) buildWorkflow(req *GenerationRequest) map[string]any {
	negativePrompt := req.NegativePrompt
	if negativePrompt == "" {
		negativePrompt = "low quality, blurry, distorted, deformed, ugly, bad anatomy, " +
			"watermark, text, logo, signature"
	}

	width, height := comfyAspectDims(req.AspectRatio)

	denoise := 1.0
	if req.Kind != generation.JobKindTextToVideo {
		denoise = req.StyleStrength
	}

	workflow := map[string]any{
		"1": map[string]any{
			"class_type": "CheckpointLoaderSimple",
			"inputs": map[string]any{
				"ckpt_name": "wan2.1_anime.safetensors",
			},
		},
		"2": map[string]any{
			"class_type": "CLIPTextEncode",
			"inputs": map[string]any{
				"text": req.Prompt,
				"clip": []any{"1", 1},
			},
		},
		"3": map[string]any{
			"class_type": "CLIPTextEncode",
			"inputs": map[string]any{
				"text": negativePrompt,
				"clip": []any{"1", 1},
			},
		},
		"4": map[string]any{
			"class_type": "EmptyLatentImage",
			"inputs": map[string]any{
				"width":      width,
				"height":     height,
				"batch_size": req.Duration * 8,
			},
		},
		"5": map[string]any{
			"class_type": "KSampler",
			"inputs": map[string]any{
				"model":        []any{"1", 0},
				"positive":     []any{"2", 0},
				"negative":     []any{"3", 0},
				"latent_image": []any{"4", 0},
				"seed":         -1,
				"steps":        20,
				"cfg":          7.0,
				"sampler_name": "euler_ancestral",
				"scheduler":    "normal",
				"denoise":      denoise,
			},
		},
		"6": map[string]any{
			"class_type": "VAEDecode",
			"inputs": map[string]any{
				"samples": []any{"5", 0},
				"vae":     []any{"1", 2},
			},
		},
		"7": map[string]any{
			"class_type": "VHS_VideoCombine",
			"inputs": map[string]any{
				"images":          []any{"6", 0},
				"frame_rate":      8,
				"loop_count":      0,
				"filename_prefix": "anime_gen",
				"format":          "video/h264-mp4",
				"pingpong":        false,
				"save_output":     true,
			},
		},
	}

	if req.InputImageURL != "" &&
		(req.Kind == generation.JobKindImageToVideo || req.Kind == generation.JobKindVideoToAnime) {
		workflow["10"] = map[string]any{
			"class_type": "LoadImage",
			"inputs": map[string]any{
				"image": req.InputImageURL,
			},
		}
		workflow["11"] = map[string]any{
			"class_type": "VAEEncode",
			"inputs": map[string]any{
				"pixels": []any{"10", 0},
				"vae":    []any{"1", 2},
			},
		}
		asMap(workflow["5"])["inputs"].(map[string]any)["latent_image"] = []any{"11", 0}
		delete(workflow, "4")
	}

	return workflow
}
