package generation

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Video 产出视频实体
// 任务成功完成时由执行器创建
type Video struct {
	ID           string    `bson:"id" json:"id"`           // 视频ID（UUID）
	UserID       string    `bson:"user_id" json:"user_id"` // 用户ID
	JobID        string    `bson:"job_id" json:"job_id"`   // 来源任务ID
	URL          string    `bson:"url" json:"url"`
	ThumbnailURL string    `bson:"thumbnail_url,omitempty" json:"thumbnail_url,omitempty"`
	ObjectKey    string    `bson:"object_key" json:"object_key"` // 对象存储 key
	FileSize     int64     `bson:"file_size" json:"file_size"`   // 字节数
	Duration     float64   `bson:"duration,omitempty" json:"duration,omitempty"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
}

// Collection 返回集合名称
func (v *Video) Collection() string {
	return "videos"
}

// EnsureIndexes 创建和维护索引
func (v *Video) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(v.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetName("idx_id").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "job_id", Value: 1}},
			Options: options.Index().SetName("idx_job_id"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_user_created"),
		},
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}
