package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/palemoky/daifugo/internal/game/engine"
	"github.com/palemoky/daifugo/internal/game/status"
)

const (
	// Redis key 前缀，格式 table:{id}:{kind}
	tableKeyPrefix = "table:"

	snapshotSuffix = ":snapshot"
	rolesSuffix    = ":roles"
	roundsSuffix   = ":rounds"

	// 牌桌数据过期时间
	tableExpiration = 2 * time.Hour
)

// RedisStore 牌桌的热数据：最新快照、身份和每局结果
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore 创建 Redis 存储
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func tableKey(tableID, suffix string) string {
	return tableKeyPrefix + tableID + suffix
}

// Ping 检查连接
func (rs *RedisStore) Ping(ctx context.Context) error {
	return rs.client.Ping(ctx).Err()
}

// --- 快照 ---

// SaveSnapshot 保存牌桌的公开状态
func (rs *RedisStore) SaveSnapshot(ctx context.Context, tableID string, pub status.PublicStatus) error {
	data, err := json.Marshal(pub)
	if err != nil {
		return fmt.Errorf("序列化快照失败: %w", err)
	}
	return rs.client.Set(ctx, tableKey(tableID, snapshotSuffix), data, tableExpiration).Err()
}

// LoadSnapshot 读取牌桌的公开状态，不存在时返回 nil
func (rs *RedisStore) LoadSnapshot(ctx context.Context, tableID string) (*status.PublicStatus, error) {
	data, err := rs.client.Get(ctx, tableKey(tableID, snapshotSuffix)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var pub status.PublicStatus
	if err := json.Unmarshal(data, &pub); err != nil {
		return nil, fmt.Errorf("反序列化快照失败: %w", err)
	}
	return &pub, nil
}

// --- 每局结果 ---

// RecordRound 实现 engine.Recorder：追加结果并覆盖身份表
func (rs *RedisStore) RecordRound(ctx context.Context, result engine.RoundResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("序列化结算失败: %w", err)
	}

	rolesKey := tableKey(result.GameID, rolesSuffix)
	roundsKey := tableKey(result.GameID, roundsSuffix)

	roles := make(map[string]any, len(result.Roles))
	for id, role := range result.Roles {
		roles[strconv.Itoa(id)] = int(role)
	}

	_, err = rs.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, roundsKey, data)
		pipe.Expire(ctx, roundsKey, tableExpiration)
		pipe.Del(ctx, rolesKey)
		if len(roles) > 0 {
			pipe.HSet(ctx, rolesKey, roles)
			pipe.Expire(ctx, rolesKey, tableExpiration)
		}
		return nil
	})
	return err
}

// Rounds 按顺序返回已记录的结果
func (rs *RedisStore) Rounds(ctx context.Context, tableID string) ([]engine.RoundResult, error) {
	items, err := rs.client.LRange(ctx, tableKey(tableID, roundsSuffix), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	results := make([]engine.RoundResult, 0, len(items))
	for _, item := range items {
		var r engine.RoundResult
		if err := json.Unmarshal([]byte(item), &r); err != nil {
			return nil, fmt.Errorf("反序列化结算失败: %w", err)
		}
		results = append(results, r)
	}
	return results, nil
}

// Roles 返回最近一局结束后的身份，key 为玩家 ID
func (rs *RedisStore) Roles(ctx context.Context, tableID string) (map[int]status.RoleRank, error) {
	data, err := rs.client.HGetAll(ctx, tableKey(tableID, rolesSuffix)).Result()
	if err != nil {
		return nil, err
	}

	roles := make(map[int]status.RoleRank, len(data))
	for k, v := range data {
		id, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("非法的玩家 ID %q", k)
		}
		role, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("非法的身份 %q", v)
		}
		roles[id] = status.RoleRank(role)
	}
	return roles, nil
}

// DeleteTable 删除牌桌的所有数据
func (rs *RedisStore) DeleteTable(ctx context.Context, tableID string) error {
	return rs.client.Del(ctx,
		tableKey(tableID, snapshotSuffix),
		tableKey(tableID, rolesSuffix),
		tableKey(tableID, roundsSuffix),
	).Err()
}
