package server

import (
	"sync"
)

// Stats は送信したレスポンスの件数をステータスコード毎に数える
type Stats struct {
	mu       sync.RWMutex
	byStatus map[int]uint64
	total    uint64
	failures uint64
}

// StatsSnapshot はある時点の統計のコピー
type StatsSnapshot struct {
	Total    uint64
	Failures uint64 // レスポンスを送れなかった接続の数
	ByStatus map[int]uint64
}

// NewStats は新しいStatsを作成する
func NewStats() *Stats {
	return &Stats{
		byStatus: make(map[int]uint64),
	}
}

// Record は送信したレスポンスを1件記録する
func (s *Stats) Record(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byStatus[status]++
	s.total++
}

// RecordFailure はレスポンスを送れなかった接続を1件記録する
func (s *Stats) RecordFailure() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failures++
}

// Snapshot は現在の統計のコピーを返す
func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byStatus := make(map[int]uint64, len(s.byStatus))
	for status, n := range s.byStatus {
		byStatus[status] = n
	}

	return StatsSnapshot{
		Total:    s.total,
		Failures: s.failures,
		ByStatus: byStatus,
	}
}
