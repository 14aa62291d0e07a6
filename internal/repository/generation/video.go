package generation

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"yuzu/internal/model/generation"
)

// VideoRepository 产出视频仓库接口
type VideoRepository interface {
	Create(ctx context.Context, v *generation.Video) error
	FindByID(ctx context.Context, id string) (*generation.Video, error)
	FindByJobID(ctx context.Context, jobID string) (*generation.Video, error)
}

// VideoRepo 产出视频仓库实现
type VideoRepo struct {
	coll *mongo.Collection
}

// NewVideoRepo 创建产出视频仓库
func NewVideoRepo(db *mongo.Database) *VideoRepo {
	var v generation.Video
	return &VideoRepo{coll: db.Collection(v.Collection())}
}

// Create 创建视频记录
func (r *VideoRepo) Create(ctx context.Context, v *generation.Video) error {
	v.CreatedAt = time.Now()
	_, err := r.coll.InsertOne(ctx, v)
	return err
}

// FindByID 根据ID查询视频
func (r *VideoRepo) FindByID(ctx context.Context, id string) (*generation.Video, error) {
	var v generation.Video
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&v); err != nil {
		return nil, err
	}
	return &v, nil
}

// FindByJobID 根据来源任务ID查询视频
func (r *VideoRepo) FindByJobID(ctx context.Context, jobID string) (*generation.Video, error) {
	var v generation.Video
	if err := r.coll.FindOne(ctx, bson.M{"job_id": jobID}).Decode(&v); err != nil {
		return nil, err
	}
	return &v, nil
}
