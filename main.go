package main

import (
	"context"
	"log/slog"
	"os"

	"webroot/internal/config"
	"webroot/internal/server"
)

func main() {
	// 設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		slog.Error("設定の読み込みに失敗しました", slog.Any("error", err))
		os.Exit(1)
	}

	// ロガーを作成
	level, _ := cfg.Log.SlogLevel()
	logger := server.NewLogger(os.Stderr, level)

	// サーバーを作成
	srv := server.New(cfg, logger)

	// サーバーを起動
	if err := srv.Start(context.Background()); err != nil {
		logger.Error("サーバーの起動に失敗しました", slog.Any("error", err))
		os.Exit(1)
	}
}
