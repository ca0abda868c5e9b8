package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config はアプリケーション全体の設定を保持する構造体
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Content ContentConfig `yaml:"content"`
	Admin   AdminConfig   `yaml:"admin"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig はHTTPサーバーの設定
type ServerConfig struct {
	Host string `yaml:"host"` // リッスンするホスト
	Port int    `yaml:"port"` // リッスンするポート番号 (0 はランダムポート)

	// タイムアウト設定
	ReadTimeout  time.Duration `yaml:"read_timeout"`  // ヘッダー受信のタイムアウト (0 は無制限)
	WriteTimeout time.Duration `yaml:"write_timeout"` // レスポンス送信のタイムアウト (0 は無制限)

	// 受信バッファ設定
	ReadChunk      int `yaml:"read_chunk"`       // 1回の読み込みサイズ
	MaxHeaderBytes int `yaml:"max_header_bytes"` // ヘッダー終端までの最大バイト数
}

// ContentConfig は配信コンテンツの設定
type ContentConfig struct {
	Root             string `yaml:"root"`               // コンテンツルートディレクトリ
	SniffUnknownMime bool   `yaml:"sniff_unknown_mime"` // 未知の拡張子を内容から判定する
}

// AdminConfig はステータスAPIの設定
type AdminConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

// LogConfig はログ出力の設定
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Default はデフォルト設定を返す
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "127.0.0.1",
			Port:           10000,
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   30 * time.Second,
			ReadChunk:      16,
			MaxHeaderBytes: 1 << 20,
		},
		Content: ContentConfig{
			Root: "webroot",
		},
		Admin: AdminConfig{
			Enabled: false,
			Host:    "127.0.0.1",
			Port:    10001,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load は設定を読み込む
// 優先順位: デフォルト値 < 設定ファイル < 環境変数
func Load() (*Config, error) {
	return LoadFile(os.Getenv("CONFIG_FILE"))
}

// LoadFile は指定されたYAMLファイルを使って設定を読み込む
// path が空の場合はファイルを読まない
func LoadFile(path string) (*Config, error) {
	// .env があれば環境変数に取り込む（既存の環境変数は上書きしない）
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf(".envの読み込みに失敗: %w", err)
	}

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("設定ファイルの読み込みに失敗: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("設定ファイルの解析に失敗: %w", err)
		}
	}

	cfg.Server.Host = getEnvOrDefault("SERVER_HOST", cfg.Server.Host)
	cfg.Server.Port = getEnvAsIntOrDefault("SERVER_PORT", cfg.Server.Port)
	cfg.Content.Root = getEnvOrDefault("CONTENT_ROOT", cfg.Content.Root)
	cfg.Admin.Enabled = getEnvAsBoolOrDefault("ADMIN_ENABLED", cfg.Admin.Enabled)
	cfg.Admin.Port = getEnvAsIntOrDefault("ADMIN_PORT", cfg.Admin.Port)
	cfg.Log.Level = getEnvOrDefault("LOG_LEVEL", cfg.Log.Level)

	// 設定の検証
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("設定の検証に失敗: %w", err)
	}

	return cfg, nil
}

// Validate は設定の妥当性を検証する
func (c *Config) Validate() error {
	// サーバー設定の検証
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("無効なポート番号: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 {
		return fmt.Errorf("タイムアウトが負の値です")
	}
	if c.Server.ReadChunk <= 0 {
		return fmt.Errorf("無効な読み込みサイズ: %d", c.Server.ReadChunk)
	}
	if c.Server.MaxHeaderBytes <= 0 {
		return fmt.Errorf("無効な最大ヘッダーサイズ: %d", c.Server.MaxHeaderBytes)
	}

	// コンテンツ設定の検証
	if c.Content.Root == "" {
		return fmt.Errorf("コンテンツルートが設定されていません")
	}

	// ステータスAPI設定の検証
	if c.Admin.Enabled {
		if c.Admin.Port < 0 || c.Admin.Port > 65535 {
			return fmt.Errorf("無効な管理ポート番号: %d", c.Admin.Port)
		}
		if c.Admin.Port != 0 && c.AdminAddress() == c.ServerAddress() {
			return fmt.Errorf("管理アドレスがサーバーアドレスと重複しています: %s", c.AdminAddress())
		}
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}

	return nil
}

// ServerAddress はサーバーのリッスンアドレスを返す
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// AdminAddress はステータスAPIのリッスンアドレスを返す
func (c *Config) AdminAddress() string {
	return fmt.Sprintf("%s:%d", c.Admin.Host, c.Admin.Port)
}

// SlogLevel はログレベル文字列を slog.Level に変換する
func (l LogConfig) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("無効なログレベル: %s", l.Level)
	}
}

// getEnvOrDefault は環境変数を取得し、設定されていない場合はデフォルト値を返す
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault は環境変数を整数として取得し、設定されていない場合はデフォルト値を返す
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
