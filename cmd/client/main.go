package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/palemoky/daifugo/internal/client"
	"github.com/palemoky/daifugo/internal/logger"
	"github.com/palemoky/daifugo/internal/ui"
)

func main() {
	serverAddr := flag.String("server", "localhost:1780", "服务器地址")
	password := flag.String("password", "", "牌桌密码")
	codecName := flag.String("codec", "json", "编码格式，必须与服务器一致 (json|proto)")
	flag.Parse()

	zlog, logPath, err := logger.NewClientLogger()
	if err != nil {
		log.Printf("无法创建调试日志，日志将被丢弃: %v", err)
		zlog = zap.NewNop()
	}
	defer func() { _ = zlog.Sync() }()

	serverURL := fmt.Sprintf("ws://%s/ws", *serverAddr)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	conn, err := client.Dial(ctx, serverURL, *codecName, zlog)
	cancel()
	if err != nil {
		log.Fatalf("无法连接到服务器 %s: %v", serverURL, err)
	}
	defer conn.Close()
	zlog.Info("已连接", zap.String("server", serverURL), zap.String("log", logPath))

	heartbeatCtx, stopHeartbeat := context.WithCancel(context.Background())
	defer stopHeartbeat()
	conn.StartHeartbeat(heartbeatCtx)

	p := tea.NewProgram(ui.New(conn, *password), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("启动客户端时出错: %v", err)
	}
}
