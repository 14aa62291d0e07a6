package queue

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

// 任务类型
const (
	TypeGenerationJob = "generation:job"   // 单个生成任务
	TypeStoryRun      = "generation:story" // 整个故事的场景编排
	TypeStoryMerge    = "generation:merge" // 故事成片合成
)

// JobPayload 单任务载荷
type JobPayload struct {
	JobID string `json:"job_id"`
}

// StoryPayload 故事载荷，编排与合成共用
type StoryPayload struct {
	StoryID string `json:"story_id"`
}

// 生成任务的重试是厂商侧瞬时故障的兜底，不是业务重试
const (
	jobMaxRetry   = 2
	storyMaxRetry = 1
	mergeMaxRetry = 1

	// 轮询预算之外留出下载、转码与上传的时间
	jobTimeout   = 30 * time.Minute
	storyTimeout = 3 * time.Hour
	mergeTimeout = 30 * time.Minute
)

// NewJobTask 构建单个生成任务
func NewJobTask(jobID string) (*asynq.Task, error) {
	payload, err := json.Marshal(JobPayload{JobID: jobID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeGenerationJob, payload,
		asynq.MaxRetry(jobMaxRetry),
		asynq.Timeout(jobTimeout),
	), nil
}

// NewStoryTask 构建故事编排任务
func NewStoryTask(storyID string) (*asynq.Task, error) {
	payload, err := json.Marshal(StoryPayload{StoryID: storyID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeStoryRun, payload,
		asynq.MaxRetry(storyMaxRetry),
		asynq.Timeout(storyTimeout),
	), nil
}

// NewMergeTask 构建故事合成任务
func NewMergeTask(storyID string) (*asynq.Task, error) {
	payload, err := json.Marshal(StoryPayload{StoryID: storyID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeStoryMerge, payload,
		asynq.MaxRetry(mergeMaxRetry),
		asynq.Timeout(mergeTimeout),
	), nil
}
