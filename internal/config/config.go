package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix 环境变量前缀，例如 DAIFUGO_SERVER_PORT
const EnvPrefix = "DAIFUGO"

// Config 服务端配置
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	GRPC     GRPCConfig     `yaml:"grpc"`
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
	Game     GameConfig     `yaml:"game"`
	Admin    AdminConfig    `yaml:"admin"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig WebSocket 服务器配置
type ServerConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	Codec          string   `yaml:"codec"` // json 或 proto
	MaxConnections int      `yaml:"max_connections"`
	AllowedOrigins []string `yaml:"allowed_origins"` // 包含 "*" 时不检查来源
	MessageLimit   int      `yaml:"message_limit"`   // 每个连接每秒最多消息数
}

// GRPCConfig 健康检查服务配置，端口为 0 时不启动
type GRPCConfig struct {
	Port int `yaml:"port"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// PostgresConfig 牌局历史库，DSN 为空时不启用
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// GameConfig 牌桌配置
type GameConfig struct {
	PlayerCount       int    `yaml:"player_count"`
	MinPlayers        int    `yaml:"min_players"`
	Rounds            int    `yaml:"rounds"`
	TurnTimeout       int    `yaml:"turn_timeout"`        // 出牌超时（秒），0 不限
	TradeTimeout      int    `yaml:"trade_timeout"`       // 交换超时（秒），0 不限
	AcceptTimeout     int    `yaml:"accept_timeout"`      // 等待玩家超时（秒），0 不限
	TablePasswordHash string `yaml:"table_password_hash"` // bcrypt 哈希，空表示不需要密码
}

// AdminConfig 管理接口配置，密钥为空时不开放管理接口
type AdminConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	TokenTTL  int    `yaml:"token_ttl"` // 令牌有效期（分钟）
}

// LogConfig 日志配置
type LogConfig struct {
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding"` // json 或 console
	File     string `yaml:"file"`
}

// TurnTimeoutDuration 返回出牌超时时长
func (c *GameConfig) TurnTimeoutDuration() time.Duration {
	return time.Duration(c.TurnTimeout) * time.Second
}

// TradeTimeoutDuration 返回交换超时时长
func (c *GameConfig) TradeTimeoutDuration() time.Duration {
	return time.Duration(c.TradeTimeout) * time.Second
}

// AcceptTimeoutDuration 返回等待玩家超时时长
func (c *GameConfig) AcceptTimeoutDuration() time.Duration {
	return time.Duration(c.AcceptTimeout) * time.Second
}

// TokenTTLDuration 返回管理令牌有效期
func (c *AdminConfig) TokenTTLDuration() time.Duration {
	return time.Duration(c.TokenTTL) * time.Minute
}

// Load 加载配置文件，再用环境变量覆盖
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults 填充被显式置零的字段
func (c *Config) applyDefaults() {
	d := Default()
	if c.Server.Host == "" {
		c.Server.Host = d.Server.Host
	}
	if c.Server.Port == 0 {
		c.Server.Port = d.Server.Port
	}
	if c.Server.Codec == "" {
		c.Server.Codec = d.Server.Codec
	}
	if c.Server.MaxConnections == 0 {
		c.Server.MaxConnections = d.Server.MaxConnections
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = d.Server.AllowedOrigins
	}
	if c.Server.MessageLimit == 0 {
		c.Server.MessageLimit = d.Server.MessageLimit
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = d.Redis.Addr
	}
	if c.Game.PlayerCount == 0 {
		c.Game.PlayerCount = d.Game.PlayerCount
	}
	if c.Game.MinPlayers == 0 {
		c.Game.MinPlayers = d.Game.MinPlayers
	}
	if c.Game.Rounds == 0 {
		c.Game.Rounds = d.Game.Rounds
	}
	if c.Admin.TokenTTL == 0 {
		c.Admin.TokenTTL = d.Admin.TokenTTL
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Encoding == "" {
		c.Log.Encoding = d.Log.Encoding
	}
}

// ApplyEnv 用 DAIFUGO_ 前缀的环境变量覆盖配置，键名中的点换成下划线
func (c *Config) ApplyEnv() error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	strs := map[string]*string{
		"server.host":              &c.Server.Host,
		"server.codec":             &c.Server.Codec,
		"redis.addr":               &c.Redis.Addr,
		"redis.password":           &c.Redis.Password,
		"postgres.dsn":             &c.Postgres.DSN,
		"game.table_password_hash": &c.Game.TablePasswordHash,
		"admin.jwt_secret":         &c.Admin.JWTSecret,
		"log.level":                &c.Log.Level,
		"log.encoding":             &c.Log.Encoding,
		"log.file":                 &c.Log.File,
	}
	for key, dst := range strs {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}

	// 多个来源用空格分隔
	if v.IsSet("server.allowed_origins") {
		c.Server.AllowedOrigins = strings.Fields(v.GetString("server.allowed_origins"))
	}

	ints := map[string]*int{
		"server.port":            &c.Server.Port,
		"server.message_limit":   &c.Server.MessageLimit,
		"server.max_connections": &c.Server.MaxConnections,
		"grpc.port":              &c.GRPC.Port,
		"redis.db":               &c.Redis.DB,
		"game.player_count":      &c.Game.PlayerCount,
		"game.min_players":       &c.Game.MinPlayers,
		"game.rounds":            &c.Game.Rounds,
		"game.turn_timeout":      &c.Game.TurnTimeout,
		"game.trade_timeout":     &c.Game.TradeTimeout,
		"game.accept_timeout":    &c.Game.AcceptTimeout,
		"admin.token_ttl":        &c.Admin.TokenTTL,
	}
	for key, dst := range ints {
		if !v.IsSet(key) {
			continue
		}
		raw := strings.TrimSpace(v.GetString(key))
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("环境变量 %s_%s 不是整数: %q", EnvPrefix, strings.ToUpper(strings.ReplaceAll(key, ".", "_")), raw)
		}
		*dst = n
	}
	return nil
}

// Validate 检查配置是否合法
func (c *Config) Validate() error {
	switch {
	case c.Server.Port <= 0 || c.Server.Port > 65535:
		return fmt.Errorf("server.port 不合法: %d", c.Server.Port)
	case c.Server.Codec != "json" && c.Server.Codec != "proto":
		return fmt.Errorf("server.codec 只能是 json 或 proto: %q", c.Server.Codec)
	case c.Server.MessageLimit < 1:
		return fmt.Errorf("server.message_limit 至少为 1: %d", c.Server.MessageLimit)
	case c.GRPC.Port < 0 || c.GRPC.Port > 65535:
		return fmt.Errorf("grpc.port 不合法: %d", c.GRPC.Port)
	case c.Game.PlayerCount < 2:
		return fmt.Errorf("game.player_count 至少为 2: %d", c.Game.PlayerCount)
	case c.Game.MinPlayers < 2 || c.Game.MinPlayers > c.Game.PlayerCount:
		return fmt.Errorf("game.min_players 必须在 2 和 player_count 之间: %d", c.Game.MinPlayers)
	case c.Game.Rounds < 1:
		return fmt.Errorf("game.rounds 至少为 1: %d", c.Game.Rounds)
	case c.Game.TurnTimeout < 0 || c.Game.TradeTimeout < 0 || c.Game.AcceptTimeout < 0:
		return fmt.Errorf("game 超时不能为负数")
	case c.Log.Encoding != "json" && c.Log.Encoding != "console":
		return fmt.Errorf("log.encoding 只能是 json 或 console: %q", c.Log.Encoding)
	}
	return nil
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           1780,
			Codec:          "json",
			MaxConnections: 64,
			AllowedOrigins: []string{"*"},
			MessageLimit:   20,
		},
		GRPC: GRPCConfig{
			Port: 1781,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Game: GameConfig{
			PlayerCount:   5,
			MinPlayers:    2,
			Rounds:        1,
			TurnTimeout:   30,
			TradeTimeout:  30,
			AcceptTimeout: 0,
		},
		Admin: AdminConfig{
			TokenTTL: 60,
		},
		Log: LogConfig{
			Level:    "info",
			Encoding: "console",
		},
	}
}
