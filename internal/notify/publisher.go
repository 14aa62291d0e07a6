package notify

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// JobUpdate 任务状态推送载荷
type JobUpdate struct {
	JobID        string `json:"job_id"`
	Status       string `json:"status"`
	Progress     int    `json:"progress"`
	Error        string `json:"error,omitempty"`
	VideoURL     string `json:"video_url,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

// Notifier 任务状态通知接口
type Notifier interface {
	PublishJobUpdate(ctx context.Context, userID string, update *JobUpdate)
}

// RedisNotifier 基于 Redis Pub/Sub 的通知器
// 推送是尽力而为的：发布失败只记日志，绝不影响任务执行
type RedisNotifier struct {
	client *redis.Client
}

// NewRedisNotifier 创建 Redis 通知器
func NewRedisNotifier(client *redis.Client) *RedisNotifier {
	return &RedisNotifier{client: client}
}

// ChannelForUser 用户维度的推送频道名
func ChannelForUser(userID string) string {
	return "job_updates:" + userID
}

// PublishJobUpdate 推送任务状态变更
func (n *RedisNotifier) PublishJobUpdate(ctx context.Context, userID string, update *JobUpdate) {
	payload, err := json.Marshal(update)
	if err != nil {
		log.Error().Err(err).Str("job_id", update.JobID).Msg("序列化任务推送失败")
		return
	}

	if err := n.client.Publish(ctx, ChannelForUser(userID), payload).Err(); err != nil {
		log.Warn().Err(err).
			Str("job_id", update.JobID).
			Str("user_id", userID).
			Msg("任务推送发布失败")
	}
}

// NopNotifier 空通知器，未配置 Redis 时使用
type NopNotifier struct{}

// PublishJobUpdate 丢弃推送
func (NopNotifier) PublishJobUpdate(ctx context.Context, userID string, update *JobUpdate) {}
