package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/palemoky/daifugo/internal/game/engine"
	"github.com/palemoky/daifugo/internal/game/status"
)

const createRoundResults = `
CREATE TABLE IF NOT EXISTS round_results (
	id           BIGSERIAL PRIMARY KEY,
	game_id      TEXT        NOT NULL,
	round        INTEGER     NOT NULL,
	finish_order INTEGER[]   NOT NULL,
	roles        JSONB       NOT NULL,
	ended_at     TIMESTAMPTZ NOT NULL,
	UNIQUE (game_id, round)
)`

// HistoryStore 牌局历史，保存在 Postgres
type HistoryStore struct {
	pool *pgxpool.Pool
}

// NewHistoryStore 连接数据库
func NewHistoryStore(ctx context.Context, dsn string) (*HistoryStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("连接 postgres 失败: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping 失败: %w", err)
	}
	return &HistoryStore{pool: pool}, nil
}

// Migrate 建表
func (h *HistoryStore) Migrate(ctx context.Context) error {
	_, err := h.pool.Exec(ctx, createRoundResults)
	return err
}

// RecordRound 实现 engine.Recorder，同一局重复记录时忽略
func (h *HistoryStore) RecordRound(ctx context.Context, result engine.RoundResult) error {
	roles, err := json.Marshal(result.Roles)
	if err != nil {
		return err
	}

	order := make([]int32, len(result.FinishOrder))
	for i, id := range result.FinishOrder {
		order[i] = int32(id)
	}

	_, err = h.pool.Exec(ctx, `
		INSERT INTO round_results (game_id, round, finish_order, roles, ended_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (game_id, round) DO NOTHING
	`, result.GameID, result.Round, order, string(roles), result.EndedAt)
	return err
}

// RecentRounds 最近结束的若干局，新的在前
func (h *HistoryStore) RecentRounds(ctx context.Context, limit int) ([]engine.RoundResult, error) {
	rows, err := h.pool.Query(ctx, `
		SELECT game_id, round, finish_order, roles, ended_at
		FROM round_results
		ORDER BY ended_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (engine.RoundResult, error) {
		var (
			r     engine.RoundResult
			order []int32
			roles []byte
		)
		if err := row.Scan(&r.GameID, &r.Round, &order, &roles, &r.EndedAt); err != nil {
			return r, err
		}
		r.FinishOrder = make([]int, len(order))
		for i, id := range order {
			r.FinishOrder[i] = int(id)
		}
		r.Roles = make(map[int]status.RoleRank)
		if err := json.Unmarshal(roles, &r.Roles); err != nil {
			return r, fmt.Errorf("roles: %w", err)
		}
		return r, nil
	})
}

// Close 关闭连接池
func (h *HistoryStore) Close() {
	h.pool.Close()
}
