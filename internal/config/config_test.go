package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestConfigLoad は設定の読み込みをテストする
func TestConfigLoad(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("設定の読み込みに失敗しました: %v", err)
	}

	if cfg == nil {
		t.Fatal("設定がnilです")
	}

	// サーバー設定の検証
	if cfg.Server.Host == "" {
		t.Error("サーバーホストが設定されていません")
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		t.Errorf("無効なポート番号: %d", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout <= 0 {
		t.Error("読み込みタイムアウトが設定されていません")
	}
	if cfg.Server.ReadChunk != 16 {
		t.Errorf("読み込みサイズが想定外です: got %d, want 16", cfg.Server.ReadChunk)
	}

	// コンテンツ設定の検証
	if cfg.Content.Root != "webroot" {
		t.Errorf("コンテンツルートが想定外です: got %s, want webroot", cfg.Content.Root)
	}
	if cfg.Admin.Enabled {
		t.Error("ステータスAPIはデフォルトで無効であるべきです")
	}
}

// TestConfigValidation は設定の検証をテストする
func TestConfigValidation(t *testing.T) {
	testCases := []struct {
		name      string
		modify    func(c *Config)
		expectErr bool
	}{
		{
			name:      "正常な設定",
			modify:    func(c *Config) {},
			expectErr: false,
		},
		{
			name:      "ランダムポート",
			modify:    func(c *Config) { c.Server.Port = 0 },
			expectErr: false,
		},
		{
			name:      "無効なポート番号",
			modify:    func(c *Config) { c.Server.Port = 99999 },
			expectErr: true,
		},
		{
			name:      "コンテンツルートなし",
			modify:    func(c *Config) { c.Content.Root = "" },
			expectErr: true,
		},
		{
			name:      "読み込みサイズ0",
			modify:    func(c *Config) { c.Server.ReadChunk = 0 },
			expectErr: true,
		},
		{
			name:      "最大ヘッダーサイズ0",
			modify:    func(c *Config) { c.Server.MaxHeaderBytes = 0 },
			expectErr: true,
		},
		{
			name:      "負のタイムアウト",
			modify:    func(c *Config) { c.Server.ReadTimeout = -time.Second },
			expectErr: true,
		},
		{
			name:      "無効なログレベル",
			modify:    func(c *Config) { c.Log.Level = "verbose" },
			expectErr: true,
		},
		{
			name: "管理アドレスの重複",
			modify: func(c *Config) {
				c.Admin.Enabled = true
				c.Admin.Host = c.Server.Host
				c.Admin.Port = c.Server.Port
			},
			expectErr: true,
		},
		{
			name: "管理アドレス無効時は重複を無視",
			modify: func(c *Config) {
				c.Admin.Host = c.Server.Host
				c.Admin.Port = c.Server.Port
			},
			expectErr: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.modify(cfg)
			err := cfg.Validate()
			if tc.expectErr && err == nil {
				t.Error("エラーが期待されましたが、エラーが発生しませんでした")
			}
			if !tc.expectErr && err != nil {
				t.Errorf("予期しないエラーが発生しました: %v", err)
			}
		})
	}
}

// TestServerAddress はサーバーアドレスの生成をテストする
func TestServerAddress(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{
			Host: "192.168.1.100",
			Port: 9090,
		},
		Admin: AdminConfig{
			Host: "127.0.0.1",
			Port: 9091,
		},
	}

	if got := cfg.ServerAddress(); got != "192.168.1.100:9090" {
		t.Errorf("サーバーアドレスが一致しません: got %s, want 192.168.1.100:9090", got)
	}
	if got := cfg.AdminAddress(); got != "127.0.0.1:9091" {
		t.Errorf("管理アドレスが一致しません: got %s, want 127.0.0.1:9091", got)
	}
}

// TestEnvironmentVariables は環境変数の処理をテストする
func TestEnvironmentVariables(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("SERVER_HOST", "test.example.com")
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("CONTENT_ROOT", "/srv/www")
	t.Setenv("ADMIN_ENABLED", "true")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("設定の読み込みに失敗しました: %v", err)
	}

	if cfg.Server.Host != "test.example.com" {
		t.Errorf("環境変数のホストが反映されていません: got %s, want test.example.com", cfg.Server.Host)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("環境変数のポートが反映されていません: got %d, want 9999", cfg.Server.Port)
	}
	if cfg.Content.Root != "/srv/www" {
		t.Errorf("環境変数のコンテンツルートが反映されていません: got %s", cfg.Content.Root)
	}
	if !cfg.Admin.Enabled {
		t.Error("環境変数のADMIN_ENABLEDが反映されていません")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("環境変数のログレベルが反映されていません: got %s", cfg.Log.Level)
	}
}

// TestLoadFile はYAML設定ファイルの読み込みをテストする
func TestLoadFile(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("CONTENT_ROOT", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`server:
  port: 12345
  read_timeout: 5s
content:
  root: public
  sniff_unknown_mime: true
admin:
  enabled: true
  port: 12346
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("設定ファイルの作成に失敗しました: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("設定の読み込みに失敗しました: %v", err)
	}

	if cfg.Server.Port != 12345 {
		t.Errorf("ポートが反映されていません: got %d, want 12345", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("読み込みタイムアウトが反映されていません: got %v", cfg.Server.ReadTimeout)
	}
	if cfg.Content.Root != "public" || !cfg.Content.SniffUnknownMime {
		t.Errorf("コンテンツ設定が反映されていません: %+v", cfg.Content)
	}
	// ファイルに書かれていない値はデフォルトのまま
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("ホストのデフォルト値が失われています: got %s", cfg.Server.Host)
	}
	if !cfg.Admin.Enabled || cfg.Admin.Port != 12346 {
		t.Errorf("管理設定が反映されていません: %+v", cfg.Admin)
	}
}

// TestLoadFileMissing は存在しない設定ファイルがエラーになることをテストする
func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("エラーが期待されましたが、エラーが発生しませんでした")
	}
}
