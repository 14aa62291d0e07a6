package generation

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// 元数据缺省值，构建 GenerationRequest 时对缺失的 key 生效
const (
	DefaultStyleStrength = 0.7
	DefaultDuration      = 5
	DefaultAspectRatio   = "16:9"
	DefaultStylePreset   = "ghibli"
)

// Job 生成任务实体
// 创建由 API 层负责；入队之后 status/progress/error 只由执行器修改
type Job struct {
	ID             string         `bson:"id" json:"id"`                             // 任务ID（UUID）
	UserID         string         `bson:"user_id" json:"user_id"`                   // 用户ID
	Kind           JobKind        `bson:"kind" json:"kind"`                         // 任务类型
	Provider       string         `bson:"provider" json:"provider"`                 // 厂商名称
	Status         JobStatus      `bson:"status" json:"status"`                     // 生命周期状态
	ProviderJobID  string         `bson:"provider_job_id,omitempty" json:"provider_job_id,omitempty"`
	Prompt         string         `bson:"prompt" json:"prompt"`                     // 增强后的提示词
	StylePreset    string         `bson:"style_preset,omitempty" json:"style_preset,omitempty"`
	InputImageURL  string         `bson:"input_image_url,omitempty" json:"input_image_url,omitempty"`
	OutputVideoURL string         `bson:"output_video_url,omitempty" json:"output_video_url,omitempty"`
	ThumbnailURL   string         `bson:"thumbnail_url,omitempty" json:"thumbnail_url,omitempty"`
	Metadata       map[string]any `bson:"metadata,omitempty" json:"metadata,omitempty"` // duration/aspect_ratio/链接故事等自由字段
	Progress       int            `bson:"progress" json:"progress"`                 // 0-100
	ErrorMessage   string         `bson:"error_message,omitempty" json:"error_message,omitempty"`
	CreatedAt      time.Time      `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `bson:"updated_at" json:"updated_at"`
}

// Collection 返回集合名称
func (j *Job) Collection() string {
	return "generation_jobs"
}

// EnsureIndexes 创建和维护索引
func (j *Job) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(j.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetName("idx_id").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_user_created"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_status"),
		},
		{
			Keys:    bson.D{{Key: "provider", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_provider_status"),
		},
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}

// MetaString 读取字符串元数据
func (j *Job) MetaString(key, fallback string) string {
	if j.Metadata == nil {
		return fallback
	}
	if v, ok := j.Metadata[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// MetaInt 读取整数元数据（bson 解码可能产生 int32/int64/float64）
func (j *Job) MetaInt(key string, fallback int) int {
	if j.Metadata == nil {
		return fallback
	}
	switch v := j.Metadata[key].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return fallback
	}
}

// MetaFloat 读取浮点元数据
func (j *Job) MetaFloat(key string, fallback float64) float64 {
	if j.Metadata == nil {
		return fallback
	}
	switch v := j.Metadata[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return fallback
	}
}

// MetaBool 读取布尔元数据
func (j *Job) MetaBool(key string) bool {
	if j.Metadata == nil {
		return false
	}
	v, _ := j.Metadata[key].(bool)
	return v
}

// Duration 任务时长（秒），缺省 5，限制在 1-15
func (j *Job) Duration() int {
	d := j.MetaInt("duration", DefaultDuration)
	if d < 1 {
		d = 1
	}
	if d > 15 {
		d = 15
	}
	return d
}

// AspectRatio 画面比例，缺省 16:9
func (j *Job) AspectRatio() string {
	return j.MetaString("aspect_ratio", DefaultAspectRatio)
}

// StyleStrength 风格强度，缺省 0.7
func (j *Job) StyleStrength() float64 {
	return j.MetaFloat("style_strength", DefaultStyleStrength)
}

// NegativePrompt 负向提示词，缺省空
func (j *Job) NegativePrompt() string {
	return j.MetaString("negative_prompt", "")
}

// Chained 是否为接力生成的场景任务
func (j *Job) Chained() bool {
	return j.MetaBool("chained")
}
