package server

import (
	"io"
	"log/slog"
)

// NewLogger は指定レベル以上を w にテキスト形式で出力するロガーを作成する
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
