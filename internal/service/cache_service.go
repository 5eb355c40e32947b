package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// 顶层评论页缓存时长
	topLevelCacheTTL = 5 * time.Minute

	leaderboardKey = "reputation:leaderboard"
)

// CacheService 基于 Redis 的旁路缓存与声望排行榜
// client 为空时所有操作退化为 no-op，核心流程不依赖缓存可用
type CacheService struct {
	rdb *redis.Client
}

func NewCacheService(rdb *redis.Client) *CacheService {
	return &CacheService{rdb: rdb}
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	UserID int64 `json:"user_id"`
	Score  int   `json:"score"`
}

// UpdateLeaderboard 写入用户声望分到排行榜
func (c *CacheService) UpdateLeaderboard(ctx context.Context, userID int64, score int) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.ZAdd(ctx, leaderboardKey, redis.Z{
		Score:  float64(score),
		Member: userID,
	}).Err()
}

// TopRanked 查询排行榜前 n 名
func (c *CacheService) TopRanked(ctx context.Context, n int64) ([]LeaderboardEntry, error) {
	if c.rdb == nil {
		return nil, nil
	}
	zs, err := c.rdb.ZRevRangeWithScores(ctx, leaderboardKey, 0, n-1).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]LeaderboardEntry, 0, len(zs))
	for _, z := range zs {
		var userID int64
		if _, err := fmt.Sscanf(fmt.Sprint(z.Member), "%d", &userID); err != nil {
			continue
		}
		entries = append(entries, LeaderboardEntry{UserID: userID, Score: int(z.Score)})
	}
	return entries, nil
}

// GetTopLevelPage 读取顶层评论页缓存，未命中返回 (nil, nil)
func (c *CacheService) GetTopLevelPage(ctx context.Context, key string) ([]byte, error) {
	if c.rdb == nil {
		return nil, nil
	}
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return data, err
}

// SetTopLevelPage 写入顶层评论页缓存
func (c *CacheService) SetTopLevelPage(ctx context.Context, key string, data interface{}) error {
	if c.rdb == nil {
		return nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, b, topLevelCacheTTL).Err()
}

// InvalidateMedia 使某个媒体的评论页缓存失效（版本号自增，旧键自然过期）
func (c *CacheService) InvalidateMedia(ctx context.Context, mediaType string, mediaID int64) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Incr(ctx, mediaVersionKey(mediaType, mediaID)).Err()
}

// MediaVersion 读取媒体评论缓存的当前版本号
func (c *CacheService) MediaVersion(ctx context.Context, mediaType string, mediaID int64) int64 {
	if c.rdb == nil {
		return 0
	}
	v, err := c.rdb.Get(ctx, mediaVersionKey(mediaType, mediaID)).Int64()
	if err != nil {
		return 0
	}
	return v
}

// PageKey 构造带版本号的评论页缓存键
func (c *CacheService) PageKey(mediaType string, mediaID, version int64, sort string, page, pageSize int) string {
	return fmt.Sprintf("comments:%s:%d:v%d:%s:%d:%d", mediaType, mediaID, version, sort, page, pageSize)
}

func mediaVersionKey(mediaType string, mediaID int64) string {
	return fmt.Sprintf("comments:%s:%d:version", mediaType, mediaID)
}
