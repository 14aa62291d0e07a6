package generation

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Story 故事实体
// merged_status 只由视频合成器修改（运维人员可重置以重试合成）
type Story struct {
	ID             string      `bson:"id" json:"id"`           // 故事ID（UUID）
	UserID         string      `bson:"user_id" json:"user_id"` // 用户ID
	Title          string      `bson:"title,omitempty" json:"title,omitempty"`
	Mode           StoryMode   `bson:"mode" json:"mode"` // independent / coherent
	MergedStatus   MergeStatus `bson:"merged_status" json:"merged_status"`
	MergedVideoURL string      `bson:"merged_video_url,omitempty" json:"merged_video_url,omitempty"`
	CreatedAt      time.Time   `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time   `bson:"updated_at" json:"updated_at"`
}

// Collection 返回集合名称
func (s *Story) Collection() string {
	return "stories"
}

// EnsureIndexes 创建和维护索引
func (s *Story) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(s.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetName("idx_id").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_user_created"),
		},
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}
