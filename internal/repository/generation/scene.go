package generation

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"yuzu/internal/model/generation"
)

// SceneRepository 场景仓库接口
type SceneRepository interface {
	Create(ctx context.Context, s *generation.Scene) error
	FindByID(ctx context.Context, id string) (*generation.Scene, error)
	FindByStoryID(ctx context.Context, storyID string) ([]*generation.Scene, error)
	UpdateStatus(ctx context.Context, id string, status generation.JobStatus) error
}

// SceneRepo 场景仓库实现
type SceneRepo struct {
	coll *mongo.Collection
}

// NewSceneRepo 创建场景仓库
func NewSceneRepo(db *mongo.Database) *SceneRepo {
	var s generation.Scene
	return &SceneRepo{coll: db.Collection(s.Collection())}
}

// Create 创建场景记录
func (r *SceneRepo) Create(ctx context.Context, s *generation.Scene) error {
	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now
	if s.Status == "" {
		s.Status = generation.JobStatusQueued
	}
	_, err := r.coll.InsertOne(ctx, s)
	return err
}

// FindByID 根据ID查询场景
func (r *SceneRepo) FindByID(ctx context.Context, id string) (*generation.Scene, error) {
	var s generation.Scene
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// FindByStoryID 查询故事的全部场景，按顺序索引排序
func (r *SceneRepo) FindByStoryID(ctx context.Context, storyID string) ([]*generation.Scene, error) {
	filter := bson.M{"story_id": storyID}
	opts := options.Find().SetSort(bson.M{"order_index": 1})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var scenes []*generation.Scene
	if err := cursor.All(ctx, &scenes); err != nil {
		return nil, err
	}
	return scenes, nil
}

// UpdateStatus 更新场景状态
func (r *SceneRepo) UpdateStatus(ctx context.Context, id string, status generation.JobStatus) error {
	_, err := r.coll.UpdateOne(
		ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{
			"status":     status,
			"updated_at": time.Now(),
		}},
	)
	return err
}
