package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthResponse はヘルスチェックのレスポンス
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// ServerInfo は配信サーバーの情報
type ServerInfo struct {
	Address string `json:"address"`
	Root    string `json:"root"`
}

// RequestStats はレスポンス件数の集計
type RequestStats struct {
	Total    uint64            `json:"total"`
	Failures uint64            `json:"failures"`
	ByStatus map[string]uint64 `json:"by_status"`
}

// StatusResponse はシステム状態のレスポンス
type StatusResponse struct {
	Status    string       `json:"status"`
	Server    ServerInfo   `json:"server"`
	Requests  RequestStats `json:"requests"`
	Uptime    string       `json:"uptime"`
	Timestamp time.Time    `json:"timestamp"`
}

// AdminHandler はステータスAPIのハンドラ
type AdminHandler struct {
	server *Server
}

// NewAdminHandler は新しいAdminHandlerを作成する
func NewAdminHandler(s *Server) *AdminHandler {
	return &AdminHandler{server: s}
}

// HealthCheck はヘルスチェックエンドポイントの実装
func (h *AdminHandler) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
	}

	c.JSON(http.StatusOK, response)
}

// GetStatus はシステム状態取得エンドポイントの実装
func (h *AdminHandler) GetStatus(c *gin.Context) {
	snapshot := h.server.Stats().Snapshot()

	byStatus := make(map[string]uint64, len(snapshot.ByStatus))
	for status, n := range snapshot.ByStatus {
		byStatus[strconv.Itoa(status)] = n
	}

	// 未起動の場合は設定上のアドレスを返す
	address := h.server.config.ServerAddress()
	if addr := h.server.Addr(); addr != nil {
		address = addr.String()
	}

	response := StatusResponse{
		Status: "running",
		Server: ServerInfo{
			Address: address,
			Root:    h.server.resolver.Root(),
		},
		Requests: RequestStats{
			Total:    snapshot.Total,
			Failures: snapshot.Failures,
			ByStatus: byStatus,
		},
		Uptime:    h.server.Uptime().Round(time.Second).String(),
		Timestamp: time.Now(),
	}

	c.JSON(http.StatusOK, response)
}

// NewAdminRouter はステータスAPIのルーティングを設定したginエンジンを返す
func NewAdminRouter(h *AdminHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", h.HealthCheck)
	router.GET("/api/status", h.GetStatus)

	return router
}

// startAdmin はステータスAPIを別ゴルーチンで起動する
func (s *Server) startAdmin() error {
	ln, err := net.Listen("tcp", s.config.AdminAddress())
	if err != nil {
		return fmt.Errorf("ステータスAPIの起動に失敗: %w", err)
	}

	admin := &http.Server{
		Handler:      NewAdminRouter(NewAdminHandler(s)),
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
	}

	s.mu.Lock()
	s.admin = admin
	s.mu.Unlock()

	go func() {
		s.logger.Info("ステータスAPIを起動しています", slog.String("addr", ln.Addr().String()))
		if err := admin.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("ステータスAPIが停止しました", slog.Any("error", err))
		}
	}()

	return nil
}

// shutdownAdmin はステータスAPIをグレースフルに停止する
func (s *Server) shutdownAdmin() {
	s.mu.Lock()
	admin := s.admin
	s.admin = nil
	s.mu.Unlock()

	if admin == nil {
		return
	}

	// 5秒のタイムアウトを設定
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := admin.Shutdown(ctx); err != nil {
		s.logger.Error("ステータスAPIのシャットダウンに失敗しました", slog.Any("error", err))
	}
}
