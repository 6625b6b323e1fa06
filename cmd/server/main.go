package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/palemoky/daifugo/internal/config"
	"github.com/palemoky/daifugo/internal/game/engine"
	"github.com/palemoky/daifugo/internal/logger"
	"github.com/palemoky/daifugo/internal/server"
	"github.com/palemoky/daifugo/internal/server/admin"
	"github.com/palemoky/daifugo/internal/server/health"
	"github.com/palemoky/daifugo/internal/server/storage"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	issueToken := flag.String("issue-token", "", "为指定的管理员签发令牌后退出")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	if *issueToken != "" {
		if cfg.Admin.JWTSecret == "" {
			log.Fatal("未配置 admin.jwt_secret，无法签发令牌")
		}
		token, err := admin.IssueToken([]byte(cfg.Admin.JWTSecret), *issueToken, cfg.Admin.TokenTTLDuration(), time.Now())
		if err != nil {
			log.Fatalf("签发令牌失败: %v", err)
		}
		fmt.Println(token)
		return
	}

	zlog, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, zlog); err != nil {
		zlog.Error("服务器异常退出", zap.Error(err))
		_ = zlog.Sync()
		os.Exit(1)
	}
}

// loadConfig 配置文件不存在时使用默认配置，环境变量仍然生效
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if !errors.Is(err, os.ErrNotExist) {
		return cfg, err
	}

	log.Printf("配置文件 %s 不存在，使用默认配置", path)
	cfg = config.Default()
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	// Redis：快照和结算
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() { _ = rdb.Close() }()

	redisStore := storage.NewRedisStore(rdb)
	if err := redisStore.Ping(ctx); err != nil {
		return fmt.Errorf("连接 Redis 失败: %w", err)
	}
	log.Info("Redis 已连接", zap.String("addr", cfg.Redis.Addr))

	recorders := storage.Recorders{redisStore}

	// Postgres：可选的历史记录
	var history *storage.HistoryStore
	if cfg.Postgres.DSN != "" {
		h, err := storage.NewHistoryStore(ctx, cfg.Postgres.DSN)
		if err != nil {
			return fmt.Errorf("连接 Postgres 失败: %w", err)
		}
		defer h.Close()
		if err := h.Migrate(ctx); err != nil {
			return fmt.Errorf("迁移失败: %w", err)
		}
		history = h
		recorders = append(recorders, h)
		log.Info("历史记录已启用")
	}

	hub := server.NewHub(log.Named("hub"))
	table, err := engine.New(engine.Config{
		PlayerCount:   cfg.Game.PlayerCount,
		MinPlayers:    cfg.Game.MinPlayers,
		Rounds:        cfg.Game.Rounds,
		TurnTimeout:   cfg.Game.TurnTimeoutDuration(),
		TradeTimeout:  cfg.Game.TradeTimeoutDuration(),
		AcceptTimeout: cfg.Game.AcceptTimeoutDuration(),
	}, engine.Deps{
		Notifier: hub,
		Recorder: recorders,
		Logger:   log.Named("engine"),
	})
	if err != nil {
		return err
	}

	var adminHandler *admin.Handler
	if cfg.Admin.JWTSecret != "" {
		adminHandler, err = admin.New(cfg.Admin.JWTSecret, cfg.Admin.TokenTTLDuration(), table, redisStore, log.Named("admin"))
		if err != nil {
			return err
		}
		adminHandler.SetRoundSource(redisStore)
		if history != nil {
			adminHandler.SetHistorySource(history)
		}
	} else {
		log.Warn("未配置 admin.jwt_secret，管理接口已禁用")
	}

	deps := server.Deps{
		Config:    cfg,
		Table:     table,
		Hub:       hub,
		Snapshots: redisStore,
		Logger:    log.Named("server"),
	}
	if adminHandler != nil {
		deps.Admin = adminHandler
	}
	srv, err := server.New(deps)
	if err != nil {
		return err
	}

	// srvDone 在 WebSocket 服务退出后关闭，用于停止健康检查服务
	srvDone := make(chan struct{})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return table.Run(gctx)
	})

	if cfg.GRPC.Port > 0 {
		healthSrv := health.New(log.Named("health"))
		lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.GRPC.Port))
		if err != nil {
			table.Exit()
			_ = g.Wait()
			return fmt.Errorf("监听健康检查端口失败: %w", err)
		}
		g.Go(func() error {
			healthSrv.Watch(gctx, table.Done())
			return nil
		})
		g.Go(func() error {
			log.Info("健康检查服务启动", zap.String("addr", lis.Addr().String()))
			return healthSrv.GRPC().Serve(lis)
		})
		g.Go(func() error {
			select {
			case <-gctx.Done():
			case <-srvDone:
			}
			healthSrv.Stop()
			return nil
		})
	}

	g.Go(func() error {
		defer close(srvDone)
		return srv.Run(gctx)
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
