package generation

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"yuzu/internal/model/generation"
)

// JobRepository 生成任务仓库接口
type JobRepository interface {
	Create(ctx context.Context, j *generation.Job) error
	FindByID(ctx context.Context, id string) (*generation.Job, error)
	UpdateStatus(ctx context.Context, id string, status generation.JobStatus, errorMsg string) error
	UpdateProgress(ctx context.Context, id string, progress int) error
	UpdateProviderJobID(ctx context.Context, id string, providerJobID string) error
	UpdatePrompt(ctx context.Context, id string, prompt string) error
	Complete(ctx context.Context, id string, outputVideoURL, thumbnailURL string) error
	SetChainedInput(ctx context.Context, id string, frameURL string) error
}

// JobRepo 生成任务仓库实现
type JobRepo struct {
	coll *mongo.Collection
}

// NewJobRepo 创建生成任务仓库
func NewJobRepo(db *mongo.Database) *JobRepo {
	var j generation.Job
	return &JobRepo{coll: db.Collection(j.Collection())}
}

// Create 创建任务记录
func (r *JobRepo) Create(ctx context.Context, j *generation.Job) error {
	now := time.Now()
	j.CreatedAt = now
	j.UpdatedAt = now
	if j.Status == "" {
		j.Status = generation.JobStatusQueued
	}
	_, err := r.coll.InsertOne(ctx, j)
	return err
}

// FindByID 根据ID查询任务
func (r *JobRepo) FindByID(ctx context.Context, id string) (*generation.Job, error) {
	var j generation.Job
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&j); err != nil {
		return nil, err
	}
	return &j, nil
}

// UpdateStatus 更新任务状态
// errorMsg 为空时清掉上一次失败残留的错误文本，重试成功的任务不能带着旧错误
func (r *JobRepo) UpdateStatus(ctx context.Context, id string, status generation.JobStatus, errorMsg string) error {
	update := bson.M{
		"status":        status,
		"error_message": errorMsg,
		"updated_at":    time.Now(),
	}
	_, err := r.coll.UpdateOne(
		ctx,
		bson.M{"id": id},
		bson.M{"$set": update},
	)
	return err
}

// UpdateProgress 更新任务进度
func (r *JobRepo) UpdateProgress(ctx context.Context, id string, progress int) error {
	_, err := r.coll.UpdateOne(
		ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{
			"progress":   progress,
			"updated_at": time.Now(),
		}},
	)
	return err
}

// UpdateProviderJobID 记录厂商侧任务ID
func (r *JobRepo) UpdateProviderJobID(ctx context.Context, id string, providerJobID string) error {
	_, err := r.coll.UpdateOne(
		ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{
			"provider_job_id": providerJobID,
			"updated_at":      time.Now(),
		}},
	)
	return err
}

// UpdatePrompt 更新增强后的提示词
// 同时落增强标记，任务重试时不会二次叠加风格标签
func (r *JobRepo) UpdatePrompt(ctx context.Context, id string, prompt string) error {
	_, err := r.coll.UpdateOne(
		ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{
			"prompt":            prompt,
			"metadata.enhanced": true,
			"updated_at":        time.Now(),
		}},
	)
	return err
}

// Complete 写入成功终态（状态、产出引用、进度100）
func (r *JobRepo) Complete(ctx context.Context, id string, outputVideoURL, thumbnailURL string) error {
	update := bson.M{
		"status":           generation.JobStatusCompleted,
		"output_video_url": outputVideoURL,
		"progress":         100,
		"error_message":    "",
		"updated_at":       time.Now(),
	}
	if thumbnailURL != "" {
		update["thumbnail_url"] = thumbnailURL
	}
	_, err := r.coll.UpdateOne(
		ctx,
		bson.M{"id": id},
		bson.M{"$set": update},
	)
	return err
}

// SetChainedInput 接力改写：任务切换为图生视频，输入为上一场景的参考帧
func (r *JobRepo) SetChainedInput(ctx context.Context, id string, frameURL string) error {
	_, err := r.coll.UpdateOne(
		ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{
			"kind":             generation.JobKindImageToVideo,
			"input_image_url":  frameURL,
			"metadata.chained": true,
			"updated_at":       time.Now(),
		}},
	)
	return err
}
