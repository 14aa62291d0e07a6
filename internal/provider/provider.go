package provider

import (
	"context"
	"errors"

	"yuzu/internal/model/generation"
)

// Status 适配器归一化后的任务状态，只有三种
type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// ErrUnknownProvider 厂商名称不在固定集合内
var ErrUnknownProvider = errors.New("unknown provider")

// GenerationRequest 单次生成请求，构建后不可变
type GenerationRequest struct {
	Kind           generation.JobKind
	Prompt         string
	StylePreset    string
	InputImageURL  string  // 图生视频/转绘的输入
	SubjectRefURL  string  // 主体参考图（可选）
	NegativePrompt string
	Duration       int     // 秒，1-15
	AspectRatio    string  // 16:9 / 9:16 / 1:1 / 4:3 / 3:4
	StyleStrength  float64 // 0.0-1.0
}

// GenerationResult 单次轮询结果
// completed 而缺 VideoURL 属于厂商违约，由执行器按失败处理
type GenerationResult struct {
	Status        Status
	ProviderJobID string
	VideoURL      string
	ErrorMessage  string
	Progress      int // 0-100
}

// Provider 厂商适配器契约
// Submit 返回厂商侧任务ID；Poll 把厂商状态词表映射到三种归一化状态，
// 无法识别的状态一律映射为 processing，绝不误判为 failed
type Provider interface {
	Name() string
	Submit(ctx context.Context, req *GenerationRequest) (string, error)
	Poll(ctx context.Context, providerJobID string) (*GenerationResult, error)
}
