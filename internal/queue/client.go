package queue

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"yuzu/internal/config"
)

// Client 任务入队封装
type Client struct {
	client *asynq.Client
}

// NewClient 创建任务队列客户端
func NewClient(cfg *config.RedisConfig) *Client {
	return &Client{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
	}
}

// EnqueueJob 投递单个生成任务
func (c *Client) EnqueueJob(ctx context.Context, jobID string) error {
	task, err := NewJobTask(jobID)
	if err != nil {
		return fmt.Errorf("build job task: %w", err)
	}

	info, err := c.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("enqueue job task: %w", err)
	}

	log.Info().Str("job_id", jobID).Str("task_id", info.ID).Msg("生成任务已入队")
	return nil
}

// EnqueueStory 投递故事编排任务
func (c *Client) EnqueueStory(ctx context.Context, storyID string) error {
	task, err := NewStoryTask(storyID)
	if err != nil {
		return fmt.Errorf("build story task: %w", err)
	}

	info, err := c.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("enqueue story task: %w", err)
	}

	log.Info().Str("story_id", storyID).Str("task_id", info.ID).Msg("故事编排任务已入队")
	return nil
}

// EnqueueMerge 投递故事合成任务
func (c *Client) EnqueueMerge(ctx context.Context, storyID string) error {
	task, err := NewMergeTask(storyID)
	if err != nil {
		return fmt.Errorf("build merge task: %w", err)
	}

	info, err := c.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("enqueue merge task: %w", err)
	}

	log.Info().Str("story_id", storyID).Str("task_id", info.ID).Msg("故事合成任务已入队")
	return nil
}

// Close 关闭队列客户端
func (c *Client) Close() error {
	return c.client.Close()
}
