package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"scene-index-service/config"
	"scene-index-service/models"
)

// Cached viewport results expire quickly; the revision key makes stale
// entries unreachable before that.
const viewportTTL = 30 * time.Second

var RedisClient *redis.Client

// InitRedis initializes the shared Redis client.
func InitRedis() error {
	cfg := config.Cfg.Redis
	RedisClient = redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx := context.Background()
	_, err := RedisClient.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %v", err)
	}

	log.Println("Connected to Redis successfully.")
	return nil
}

// SceneRevision returns the scene's current revision counter. A missing
// key counts as revision zero.
func SceneRevision(ctx context.Context, sceneID int64) int64 {
	rev, err := RedisClient.Get(ctx, revisionKey(sceneID)).Int64()
	if err != nil {
		return 0
	}
	return rev
}

// BumpSceneRevision invalidates all cached viewports for a scene by
// advancing its revision counter.
func BumpSceneRevision(ctx context.Context, sceneID int64) {
	if err := RedisClient.Incr(ctx, revisionKey(sceneID)).Err(); err != nil {
		log.Printf("Failed to bump revision for scene %d: %v", sceneID, err)
	}
}

// ViewportKey builds the cache key for an LOD viewport query. The scene
// revision is part of the key, so mutations never serve stale results.
func ViewportKey(sceneID, revision int64, x, y, width, height, zoom float64) string {
	return fmt.Sprintf("scenes:%d:rev:%d:lod:%g:%g:%g:%g:%g",
		sceneID, revision, x, y, width, height, zoom)
}

// GetViewport fetches a cached LOD query result.
func GetViewport(ctx context.Context, key string) ([]*models.VectorObject, bool) {
	data, err := RedisClient.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var objects []*models.VectorObject
	if err := json.Unmarshal(data, &objects); err != nil {
		return nil, false
	}
	return objects, true
}

// SetViewport stores an LOD query result.
func SetViewport(ctx context.Context, key string, objects []*models.VectorObject) {
	data, err := json.Marshal(objects)
	if err != nil {
		return
	}
	if err := RedisClient.Set(ctx, key, data, viewportTTL).Err(); err != nil {
		log.Printf("Failed to cache viewport %s: %v", key, err)
	}
}

func revisionKey(sceneID int64) string {
	return fmt.Sprintf("scenes:%d:rev", sceneID)
}
