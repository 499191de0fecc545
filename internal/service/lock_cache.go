package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const lockedModulesTTL = 10 * time.Minute

// LockedModuleCache 缓存每用户的锁定模块集合。
// 新的测评台账写入后必须显式失效，其余时间按TTL过期
type LockedModuleCache struct {
	rdb *redis.Client
}

func NewLockedModuleCache(rdb *redis.Client) *LockedModuleCache {
	return &LockedModuleCache{rdb: rdb}
}

func lockedModulesKey(userID uint) string {
	return fmt.Sprintf("locked_modules:%d", userID)
}

// Get 返回缓存的锁定模块集合。第二个返回值为false时表示未命中或缓存不可用
func (c *LockedModuleCache) Get(ctx context.Context, userID uint) ([]uint, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}

	members, err := c.rdb.SMembers(ctx, lockedModulesKey(userID)).Result()
	if err != nil || len(members) == 0 {
		return nil, false
	}

	ids := make([]uint, 0, len(members))
	for _, m := range members {
		// 空集合哨兵，区分"无锁定模块"与"未缓存"
		if m == "-" {
			continue
		}
		id, err := strconv.ParseUint(m, 10, 32)
		if err != nil {
			return nil, false
		}
		ids = append(ids, uint(id))
	}
	return ids, true
}

func (c *LockedModuleCache) Set(ctx context.Context, userID uint, moduleIDs []uint) {
	if c == nil || c.rdb == nil {
		return
	}

	key := lockedModulesKey(userID)
	members := make([]interface{}, 0, len(moduleIDs)+1)
	members = append(members, "-")
	for _, id := range moduleIDs {
		members = append(members, strconv.FormatUint(uint64(id), 10))
	}

	pipe := c.rdb.TxPipeline()
	pipe.Del(ctx, key)
	pipe.SAdd(ctx, key, members...)
	pipe.Expire(ctx, key, lockedModulesTTL)
	pipe.Exec(ctx)
}

// Invalidate 在写入新的 AssessmentResponse 后调用
func (c *LockedModuleCache) Invalidate(ctx context.Context, userID uint) {
	if c == nil || c.rdb == nil {
		return
	}
	c.rdb.Del(ctx, lockedModulesKey(userID))
}
