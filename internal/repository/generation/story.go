package generation

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"yuzu/internal/model/generation"
)

// StoryRepository 故事仓库接口
type StoryRepository interface {
	Create(ctx context.Context, s *generation.Story) error
	FindByID(ctx context.Context, id string) (*generation.Story, error)
	UpdateMergedStatus(ctx context.Context, id string, status generation.MergeStatus) error
	CompleteMerge(ctx context.Context, id string, mergedVideoURL string) error
}

// StoryRepo 故事仓库实现
type StoryRepo struct {
	coll *mongo.Collection
}

// NewStoryRepo 创建故事仓库
func NewStoryRepo(db *mongo.Database) *StoryRepo {
	var s generation.Story
	return &StoryRepo{coll: db.Collection(s.Collection())}
}

// Create 创建故事记录
func (r *StoryRepo) Create(ctx context.Context, s *generation.Story) error {
	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now
	if s.MergedStatus == "" {
		s.MergedStatus = generation.MergeStatusNotStarted
	}
	_, err := r.coll.InsertOne(ctx, s)
	return err
}

// FindByID 根据ID查询故事
func (r *StoryRepo) FindByID(ctx context.Context, id string) (*generation.Story, error) {
	var s generation.Story
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateMergedStatus 更新合成状态
func (r *StoryRepo) UpdateMergedStatus(ctx context.Context, id string, status generation.MergeStatus) error {
	_, err := r.coll.UpdateOne(
		ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{
			"merged_status": status,
			"updated_at":    time.Now(),
		}},
	)
	return err
}

// CompleteMerge 写入合成成功终态
func (r *StoryRepo) CompleteMerge(ctx context.Context, id string, mergedVideoURL string) error {
	_, err := r.coll.UpdateOne(
		ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{
			"merged_status":    generation.MergeStatusCompleted,
			"merged_video_url": mergedVideoURL,
			"updated_at":       time.Now(),
		}},
	)
	return err
}
