package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"yuzu/internal/config"
	"yuzu/internal/service/generation"
)

// Processor 队列任务的业务处理入口
type Processor interface {
	ProcessJob(ctx context.Context, jobID string) error
	ProcessStory(ctx context.Context, storyID string) error
	MergeStory(ctx context.Context, storyID string) error
}

// Server 任务队列消费端
type Server struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

// NewServer 创建队列消费端
// 重试间隔固定 10 秒：厂商侧故障大多是限流或短暂不可用，指数退避没有意义
func NewServer(redisCfg *config.RedisConfig, workerCfg *config.WorkerConfig, processor Processor) *Server {
	server := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     redisCfg.Addr,
			Password: redisCfg.Password,
			DB:       redisCfg.DB,
		},
		asynq.Config{
			Concurrency: workerCfg.Concurrency,
			RetryDelayFunc: func(n int, err error, t *asynq.Task) time.Duration {
				return 10 * time.Second
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Error().Err(err).Str("type", task.Type()).Msg("队列任务执行失败")
			}),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeGenerationJob, handleJob(processor))
	mux.HandleFunc(TypeStoryRun, handleStory(processor))
	mux.HandleFunc(TypeStoryMerge, handleMerge(processor))

	return &Server{server: server, mux: mux}
}

// Start 启动消费循环
func (s *Server) Start() error {
	return s.server.Start(s.mux)
}

// Shutdown 优雅停机，等待在途任务完成
func (s *Server) Shutdown() {
	s.server.Shutdown()
}

func handleJob(processor Processor) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var p JobPayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			return fmt.Errorf("unmarshal job payload: %v: %w", err, asynq.SkipRetry)
		}
		return processor.ProcessJob(ctx, p.JobID)
	}
}

func handleStory(processor Processor) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var p StoryPayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			return fmt.Errorf("unmarshal story payload: %v: %w", err, asynq.SkipRetry)
		}
		return processor.ProcessStory(ctx, p.StoryID)
	}
}

func handleMerge(processor Processor) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var p StoryPayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			return fmt.Errorf("unmarshal merge payload: %v: %w", err, asynq.SkipRetry)
		}

		err := processor.MergeStory(ctx, p.StoryID)
		// 已有合成在跑时直接放弃，不能靠重试挤进去
		if errors.Is(err, generation.ErrMergeInProgress) {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}
}
