// Package admin 管理接口：停止报名、强制结束、查询牌桌状态和历史结算。
//
// 所有接口都需要 HS256 签名的 Bearer 令牌，令牌的 role 声明必须为 admin。
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/form3tech-oss/jwt-go"
	"go.uber.org/zap"

	"github.com/palemoky/daifugo/internal/apperrors"
	"github.com/palemoky/daifugo/internal/game/engine"
	"github.com/palemoky/daifugo/internal/game/status"
)

const (
	roleClaim = "role"
	roleAdmin = "admin"

	requestTimeout = 5 * time.Second

	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
)

// Table 管理接口需要的牌桌操作
type Table interface {
	ID() string
	StopAccepting(ctx context.Context) error
	Snapshot(ctx context.Context) (status.PublicStatus, error)
	Exit()
}

// SnapshotLoader 牌桌结束后从缓存读取最后的状态
type SnapshotLoader interface {
	LoadSnapshot(ctx context.Context, tableID string) (*status.PublicStatus, error)
}

// RoundLoader 当前牌桌每一局的结算
type RoundLoader interface {
	Rounds(ctx context.Context, tableID string) ([]engine.RoundResult, error)
}

// HistoryLoader 所有牌桌最近的结算
type HistoryLoader interface {
	RecentRounds(ctx context.Context, limit int) ([]engine.RoundResult, error)
}

// StatusResponse GET /admin/status 的响应
type StatusResponse struct {
	TableID string              `json:"table_id"`
	Source  string              `json:"source"` // live 或 cache
	Status  status.PublicStatus `json:"status"`
}

// Handler 管理接口
type Handler struct {
	secret    []byte
	ttl       time.Duration
	table     Table
	snapshots SnapshotLoader
	rounds    RoundLoader
	history   HistoryLoader
	log       *zap.Logger
	mux       *http.ServeMux
}

// New 创建管理接口，secret 不能为空
func New(secret string, ttl time.Duration, table Table, snapshots SnapshotLoader, log *zap.Logger) (*Handler, error) {
	if secret == "" {
		return nil, errors.New("admin: jwt secret is required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	h := &Handler{
		secret:    []byte(secret),
		ttl:       ttl,
		table:     table,
		snapshots: snapshots,
		log:       log,
		mux:       http.NewServeMux(),
	}
	h.mux.HandleFunc("POST /admin/stop-accepting", h.authorize(h.handleStopAccepting))
	h.mux.HandleFunc("POST /admin/exit", h.authorize(h.handleExit))
	h.mux.HandleFunc("GET /admin/status", h.authorize(h.handleStatus))
	h.mux.HandleFunc("GET /admin/rounds", h.authorize(h.handleRounds))
	h.mux.HandleFunc("GET /admin/history", h.authorize(h.handleHistory))
	return h, nil
}

// SetRoundSource 设置 /admin/rounds 的数据来源
func (h *Handler) SetRoundSource(rounds RoundLoader) {
	h.rounds = rounds
}

// SetHistorySource 设置 /admin/history 的数据来源，未设置时返回 503
func (h *Handler) SetHistorySource(history HistoryLoader) {
	h.history = history
}

// ServeHTTP 实现 http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// IssueToken 签发管理令牌
func (h *Handler) IssueToken(subject string) (string, error) {
	return IssueToken(h.secret, subject, h.ttl, time.Now())
}

// IssueToken 用 secret 签发管理令牌
func IssueToken(secret []byte, subject string, ttl time.Duration, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":     subject,
		"iat":     now.Unix(),
		"exp":     now.Add(ttl).Unix(),
		roleClaim: roleAdmin,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// verify 校验令牌，返回 subject
func (h *Handler) verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return h.secret, nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token")
	}
	if role, _ := claims[roleClaim].(string); role != roleAdmin {
		return "", errors.New("not an admin token")
	}
	sub, _ := claims["sub"].(string)
	return sub, nil
}

func (h *Handler) authorize(next func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		tokenString, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || tokenString == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		subject, err := h.verify(tokenString)
		if err != nil {
			h.log.Warn("管理令牌无效", zap.String("remote", r.RemoteAddr), zap.Error(err))
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next(w, r, subject)
	}
}

func (h *Handler) handleStopAccepting(w http.ResponseWriter, r *http.Request, subject string) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.table.StopAccepting(ctx); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	h.log.Info("管理员停止报名", zap.String("admin", subject), zap.String("table", h.table.ID()))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleExit(w http.ResponseWriter, _ *http.Request, subject string) {
	h.table.Exit()
	h.log.Info("管理员结束牌桌", zap.String("admin", subject), zap.String("table", h.table.ID()))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request, _ string) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	resp := StatusResponse{TableID: h.table.ID(), Source: "live"}
	pub, err := h.table.Snapshot(ctx)
	switch {
	case err == nil:
		resp.Status = pub
	case errors.Is(err, apperrors.ErrGameEnded) && h.snapshots != nil:
		cached, loadErr := h.snapshots.LoadSnapshot(ctx, h.table.ID())
		if loadErr != nil || cached == nil {
			writeError(w, http.StatusNotFound, "no snapshot")
			return
		}
		resp.Source = "cache"
		resp.Status = *cached
	default:
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	writeJSON(w, resp)
}

func (h *Handler) handleRounds(w http.ResponseWriter, r *http.Request, _ string) {
	if h.rounds == nil {
		writeError(w, http.StatusServiceUnavailable, "round store not configured")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	rounds, err := h.rounds.Rounds(ctx, h.table.ID())
	if err != nil {
		h.log.Warn("读取结算失败", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "load rounds failed")
		return
	}
	writeJSON(w, rounds)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request, _ string) {
	if h.history == nil {
		writeError(w, http.StatusServiceUnavailable, "history store not configured")
		return
	}

	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	rounds, err := h.history.RecentRounds(ctx, limit)
	if err != nil {
		h.log.Warn("读取历史失败", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "load history failed")
		return
	}
	writeJSON(w, rounds)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
