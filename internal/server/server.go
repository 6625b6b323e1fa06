package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"github.com/palemoky/daifugo/internal/config"
	"github.com/palemoky/daifugo/internal/game/card"
	"github.com/palemoky/daifugo/internal/game/status"
	"github.com/palemoky/daifugo/internal/protocol"
	"github.com/palemoky/daifugo/internal/protocol/codec"
)

// Table 服务器需要的牌桌操作，由 engine.Engine 实现
type Table interface {
	ID() string
	Join(ctx context.Context) (int, error)
	SubmitCards(ctx context.Context, playerID int, cards []card.Card) error
	Snapshot(ctx context.Context) (status.PublicStatus, error)
	Done() <-chan struct{}
}

// SnapshotStore 保存牌桌快照，可选
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, tableID string, pub status.PublicStatus) error
}

// Deps 服务器依赖
type Deps struct {
	Config    *config.Config
	Table     Table
	Hub       *Hub
	Codec     codec.Codec
	Snapshots SnapshotStore
	Admin     http.Handler // 挂载在 /admin/ 下，可选
	Logger    *zap.Logger
}

const (
	// 单次牌桌调用的超时
	requestTimeout = 5 * time.Second

	// 牌桌结束后，等待最后的通知发出再关闭
	shutdownDelay = 2 * time.Second
)

// Server WebSocket 服务器
type Server struct {
	config    *config.Config
	table     Table
	hub       *Hub
	codec     codec.Codec
	snapshots SnapshotStore
	admin     http.Handler
	log       *zap.Logger

	upgrader       websocket.Upgrader
	originChecker  *OriginChecker
	messageLimiter *MessageRateLimiter
	handlers       map[protocol.MessageType]handlerFunc

	// 连接控制
	maxConnections int
	semaphore      chan struct{}

	// 服务生命周期，由 Run 取消
	ctx    context.Context
	cancel context.CancelFunc
}

// New 创建服务器实例
func New(deps Deps) (*Server, error) {
	if deps.Config == nil || deps.Table == nil || deps.Hub == nil {
		return nil, errors.New("server: config, table and hub are required")
	}
	if deps.Config.Game.TablePasswordHash != "" {
		if _, err := bcrypt.Cost([]byte(deps.Config.Game.TablePasswordHash)); err != nil {
			return nil, fmt.Errorf("table_password_hash 不是 bcrypt 哈希: %w", err)
		}
	}

	c := deps.Codec
	if c == nil {
		var err error
		if c, err = codec.New(deps.Config.Server.Codec); err != nil {
			return nil, err
		}
	}

	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		config:         deps.Config,
		table:          deps.Table,
		hub:            deps.Hub,
		codec:          c,
		snapshots:      deps.Snapshots,
		admin:          deps.Admin,
		log:            log,
		originChecker:  NewOriginChecker(deps.Config.Server.AllowedOrigins),
		messageLimiter: NewMessageRateLimiter(deps.Config.Server.MessageLimit),
		maxConnections: deps.Config.Server.MaxConnections,
		semaphore:      make(chan struct{}, deps.Config.Server.MaxConnections),
		ctx:            ctx,
		cancel:         cancel,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.originChecker.Check,
	}
	s.initHandlers()

	log.Info("服务器已创建",
		zap.String("table", deps.Table.ID()),
		zap.String("codec", c.Name()),
		zap.Int("max_connections", s.maxConnections),
		zap.Int("message_limit", deps.Config.Server.MessageLimit))
	return s, nil
}

// Handler 返回 HTTP 路由
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	if s.admin != nil {
		mux.Handle("/admin/", s.admin)
	}
	return mux
}

// Run 启动服务器，ctx 取消或牌桌结束后关闭
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("服务器启动", zap.String("addr", "ws://"+addr+"/ws"), zap.Int("cpus", runtime.NumCPU()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		s.monitorStats(s.ctx)
		return nil
	})
	g.Go(func() error {
		select {
		case <-gctx.Done():
		case <-s.table.Done():
			s.log.Info("牌桌已结束，准备关闭服务器", zap.Duration("delay", shutdownDelay))
			select {
			case <-time.After(shutdownDelay):
			case <-gctx.Done():
			}
		}
		return s.shutdown(httpServer)
	})

	err := g.Wait()
	s.cancel()
	return err
}

// shutdown 关闭所有连接和 HTTP 服务
func (s *Server) shutdown(httpServer *http.Server) error {
	s.cancel()
	s.hub.CloseAll()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	s.log.Info("服务器已关闭")
	return nil
}
