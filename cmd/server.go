// Package main はwebrootサーバーコマンドの実装です
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"webroot/internal/config"
	"webroot/internal/server"
)

func main() {
	// コマンドラインオプション
	var (
		configFile = flag.String("config", "", "YAML設定ファイルのパス")
		host       = flag.String("host", "", "サーバーのホスト (デフォルト: 127.0.0.1)")
		port       = flag.Int("port", -1, "サーバーのポート (デフォルト: 10000)")
		root       = flag.String("root", "", "コンテンツルート (デフォルト: webroot)")
		adminPort  = flag.Int("admin-port", -1, "ステータスAPIのポート。指定するとステータスAPIを有効にする")
		sniff      = flag.Bool("sniff", false, "未知の拡張子のMIMEタイプを内容から判定する")
		verbose    = flag.Bool("v", false, "デバッグログを出力する")
		help       = flag.Bool("help", false, "ヘルプを表示")
	)

	flag.Parse()

	// ヘルプ表示
	if *help {
		fmt.Println("webroot")
		fmt.Println()
		fmt.Println("使用方法:")
		fmt.Println("  server [オプション]")
		fmt.Println()
		fmt.Println("オプション:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	// 設定を読み込む
	path := *configFile
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		slog.Error("設定の読み込みに失敗しました", slog.Any("error", err))
		os.Exit(1)
	}

	// コマンドラインオプションで設定を上書き
	if *host != "" {
		cfg.Server.Host = *host
	}
	if *port >= 0 {
		cfg.Server.Port = *port
	}
	if *root != "" {
		cfg.Content.Root = *root
	}
	if *adminPort >= 0 {
		cfg.Admin.Enabled = true
		cfg.Admin.Port = *adminPort
	}
	if *sniff {
		cfg.Content.SniffUnknownMime = true
	}
	if *verbose {
		cfg.Log.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("設定が不正です", slog.Any("error", err))
		os.Exit(1)
	}

	level, _ := cfg.Log.SlogLevel()
	logger := server.NewLogger(os.Stderr, level)

	srv := server.New(cfg, logger)

	logger.Info("webroot サーバーを起動します", slog.String("addr", cfg.ServerAddress()))
	if err := srv.Start(context.Background()); err != nil {
		logger.Error("サーバーの起動に失敗しました", slog.Any("error", err))
		os.Exit(1)
	}
}
