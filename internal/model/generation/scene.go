package generation

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Scene 故事场景实体
// 连贯模式下，编排器接力时会改写场景任务的类型和输入
type Scene struct {
	ID            string    `bson:"id" json:"id"`             // 场景ID（UUID）
	StoryID       string    `bson:"story_id" json:"story_id"` // 所属故事ID
	OrderIndex    int       `bson:"order_index" json:"order_index"`
	Prompt        string    `bson:"prompt" json:"prompt"` // 场景原始提示词
	CharacterName string    `bson:"character_name,omitempty" json:"character_name,omitempty"`
	CharacterDesc string    `bson:"character_desc,omitempty" json:"character_desc,omitempty"`
	JobID         string    `bson:"job_id,omitempty" json:"job_id,omitempty"` // 关联的生成任务ID
	Status        JobStatus `bson:"status" json:"status"`                     // 与任务状态保持一致
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at" json:"updated_at"`
}

// Collection 返回集合名称
func (s *Scene) Collection() string {
	return "story_scenes"
}

// EnsureIndexes 创建和维护索引
func (s *Scene) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(s.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetName("idx_id").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "story_id", Value: 1}, {Key: "order_index", Value: 1}},
			Options: options.Index().SetName("idx_story_order"),
		},
		{
			Keys:    bson.D{{Key: "job_id", Value: 1}},
			Options: options.Index().SetName("idx_job_id"),
		},
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}
