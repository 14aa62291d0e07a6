package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"yuzu/internal/model/generation"
)

// EnsureIndexes 创建所有模型的索引
// 这是一个统一的入口，用于在 worker 启动时创建所有模型的索引
func EnsureIndexes(db *mongo.Database) error {
	ctx := context.Background()

	models := []Model{
		&generation.Job{},
		&generation.Story{},
		&generation.Scene{},
		&generation.Video{},
	}

	return EnsureAllIndexes(ctx, db, models...)
}
