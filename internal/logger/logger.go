package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/palemoky/daifugo/internal/config"
)

// maxLogSize 客户端日志超过该大小时轮转
const maxLogSize = 10 * 1024 * 1024

// New 根据配置创建服务端日志，json 编码用于生产，console 编码带颜色
func New(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Encoding == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, fmt.Errorf("创建日志目录失败: %w", err)
		}
		zapCfg.OutputPaths = append(zapCfg.OutputPaths, cfg.File)
	}

	return zapCfg.Build()
}

// NewClientLogger 创建客户端调试日志，写入 ~/.daifugo/debug.log。
// 终端界面占用标准输出，所以客户端只写文件。
func NewClientLogger() (*zap.Logger, string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get home directory: %w", err)
	}

	logDir := filepath.Join(homeDir, ".daifugo")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, "", fmt.Errorf("failed to create log directory: %w", err)
	}

	logPath := filepath.Join(logDir, "debug.log")
	rotate(logPath)

	zapCfg := zap.NewDevelopmentConfig()
	zapCfg.OutputPaths = []string{logPath}
	zapCfg.ErrorOutputPaths = []string{logPath}
	log, err := zapCfg.Build()
	if err != nil {
		return nil, "", err
	}
	return log, logPath, nil
}

func rotate(path string) {
	info, err := os.Stat(path)
	if err != nil || info.Size() <= maxLogSize {
		return
	}
	_ = os.Rename(path, fmt.Sprintf("%s.%d", path, info.ModTime().Unix()))
}

// LogPanic 记录 recover() 得到的 panic 及堆栈。
// recover 必须由 defer 的函数直接调用，所以这里只负责记录
func LogPanic(log *zap.Logger, r any) {
	log.Error("panic recovered", zap.Any("panic", r), zap.Stack("stack"))
}
