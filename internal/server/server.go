package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"sync"
	"syscall"
	"time"

	"webroot/internal/config"
	"webroot/internal/request"
	"webroot/internal/resolver"
	"webroot/internal/response"

	"github.com/google/uuid"
)

// Server はコンテンツルートを配信するHTTPサーバーを管理する構造体
type Server struct {
	config    *config.Config
	resolver  *resolver.Resolver
	logger    *slog.Logger
	stats     *Stats
	startedAt time.Time

	mu       sync.Mutex
	listener net.Listener
	active   net.Conn // 処理中の接続
	closing  bool
	admin    *http.Server
}

// New は新しいServerインスタンスを作成する
func New(cfg *config.Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		config:    cfg,
		resolver:  resolver.New(cfg.Content.Root, resolver.WithMimeSniffing(cfg.Content.SniffUnknownMime)),
		logger:    logger,
		stats:     NewStats(),
	}
}

// Stats はリクエスト統計を返す
func (s *Server) Stats() *Stats {
	return s.stats
}

// Addr は実際にリッスンしているアドレスを返す。未起動の場合はnil
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Uptime は Serve を開始してからの経過時間を返す。未起動の場合は0
func (s *Server) Uptime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.startedAt.IsZero() {
		return 0
	}
	return time.Since(s.startedAt)
}

// Start はサーバーを起動し、コンテキストのキャンセルかシグナルを受けるまでブロックする
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.ServerAddress())
	if err != nil {
		return fmt.Errorf("サーバーの起動に失敗: %w", err)
	}
	s.logger.Info("サーバーを起動しています",
		slog.String("addr", ln.Addr().String()),
		slog.String("root", s.config.Content.Root))

	return s.run(ctx, ln)
}

// run は ln で配信を始め、コンテキストのキャンセルかシグナルで停止する
func (s *Server) run(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	if s.config.Admin.Enabled {
		if err := s.startAdmin(); err != nil {
			_ = ln.Close()
			return err
		}
	}

	serveCh := make(chan error, 1)
	go func() {
		serveCh <- s.Serve(ln)
	}()

	// シグナルハンドリング
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	// コンテキストかシグナルを待つ
	select {
	case <-ctx.Done():
		s.logger.Info("コンテキストがキャンセルされました")
	case sig := <-sigCh:
		s.logger.Info("シグナルを受信しました", slog.String("signal", sig.String()))
	case err := <-serveCh:
		_ = ln.Close()
		s.shutdownAdmin()
		return err
	}

	if err := s.Shutdown(); err != nil {
		return err
	}
	// 処理中の接続が終わるまで待つ
	return <-serveCh
}

// Serve は ln で接続を1つずつ受け付けて処理する
// ln が閉じられると nil を返す
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	s.listener = ln
	s.closing = false
	s.startedAt = time.Now()
	s.mu.Unlock()

	for {
		s.logger.Debug("接続を待っています")
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				s.logger.Warn("接続の受け付けに失敗しました", slog.Any("error", err))
				continue
			}
			return fmt.Errorf("接続の受け付けに失敗: %w", err)
		}

		s.handleConnection(conn)
	}
}

// Shutdown はリスナーとステータスAPIを閉じる
// 受信待ちの接続があれば読み書きを即座に打ち切る
func (s *Server) Shutdown() error {
	s.logger.Info("サーバーをシャットダウンしています...")

	s.mu.Lock()
	ln := s.listener
	s.closing = true
	if s.active != nil {
		_ = s.active.SetDeadline(time.Now())
	}
	s.mu.Unlock()

	if ln != nil {
		if err := ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			return fmt.Errorf("サーバーのシャットダウンに失敗: %w", err)
		}
	}
	s.shutdownAdmin()

	s.logger.Info("サーバーが正常にシャットダウンされました")
	return nil
}

// handleConnection は1接続分のリクエストを受信し、レスポンスを1つ書き込んで接続を閉じる
// ここで起きた失敗は接続単位で完結し、サーバーは次の接続を受け付け続ける
func (s *Server) handleConnection(conn net.Conn) {
	log := s.logger.With(
		slog.String("conn_id", uuid.NewString()),
		slog.String("remote", conn.RemoteAddr().String()),
	)
	log.Info("接続を受け付けました")

	// Shutdown が設定する期限を上書きしないよう、登録より前に設定する
	if timeout := s.config.Server.ReadTimeout; timeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(timeout))
	}

	if !s.track(conn) {
		log.Info("シャットダウン中のため接続を閉じます")
		_ = conn.Close()
		return
	}

	defer func() {
		s.untrack()
		if r := recover(); r != nil {
			s.stats.RecordFailure()
			log.Error("リクエストの処理中にパニックが発生しました",
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
		}
		if err := conn.Close(); err != nil {
			log.Warn("接続のクローズに失敗しました", slog.Any("error", err))
		}
	}()

	var res *response.Response
	raw, err := request.ReadHeader(conn, s.config.Server.ReadChunk, s.config.Server.MaxHeaderBytes, func(b []byte) {
		log.Debug("受信しました", slog.String("data", string(b)))
	})
	if err != nil {
		if s.isClosing() {
			log.Info("シャットダウンのため受信を中断しました")
			return
		}
		log.Error("リクエストの受信に失敗しました", slog.Any("error", err))
		res = response.InternalError()
	} else {
		log.Debug("リクエストを受信しました", slog.String("request", raw))
		res = s.respond(log, raw)
	}

	if timeout := s.config.Server.WriteTimeout; timeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(timeout))
	}
	if _, err := res.WriteTo(conn); err != nil {
		s.stats.RecordFailure()
		log.Error("レスポンスの送信に失敗しました", slog.Any("error", err))
		return
	}

	s.stats.Record(res.Status)
	log.Info("レスポンスを送信しました", slog.Int("status", res.Status), slog.Int("bytes", len(res.Body)))
}

// track は処理中の接続として conn を登録する。シャットダウン中なら false を返す
func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closing {
		return false
	}
	s.active = conn
	return true
}

func (s *Server) untrack() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.active = nil
}

func (s *Server) isClosing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.closing
}

// respond はリクエスト文字列を解析・解決し、送信するレスポンスを決める
func (s *Server) respond(log *slog.Logger, raw string) *response.Response {
	req, err := request.Parse(raw)
	if err != nil {
		if errors.Is(err, request.ErrMethodNotAllowed) {
			log.Info("サポートされていないメソッドです", slog.String("method", req.Method))
			return response.MethodNotAllowed()
		}
		log.Error("リクエストの解析に失敗しました", slog.Any("error", err))
		return response.InternalError()
	}
	log = log.With(slog.String("method", req.Method), slog.String("path", req.Path))

	content, err := s.resolver.Resolve(req.Path)
	if err != nil {
		if errors.Is(err, resolver.ErrNotFound) {
			log.Info("ファイルが見つかりません")
			return response.NotFound()
		}
		log.Error("URIの解決に失敗しました", slog.Any("error", err))
		return response.InternalError()
	}

	return response.OK(content.Body, content.MimeType)
}
