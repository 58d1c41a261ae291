package transport

import (
	"context"
	"sync"

	"PogoMap-App/internal/domain/model"
)

// Session プレイヤーの現在位置を保持し、RPCClient 経由でリクエストを送る
type Session struct {
	client   *RPCClient
	position model.Coordinate
	mu       sync.RWMutex
}

// NewSession 初期位置を指定してセッションを作成
func NewSession(client *RPCClient, position model.Coordinate) *Session {
	return &Session{
		client:   client,
		position: position,
	}
}

// Position 現在位置を取得
func (s *Session) Position() model.Coordinate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.position
}

// SetPosition 現在位置を更新
func (s *Session) SetPosition(position model.Coordinate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.position = position
}

// SendRequest リクエストを送信してレスポンスを待つ
func (s *Session) SendRequest(ctx context.Context, requestType model.RequestType, payload []byte) ([]byte, error) {
	return s.client.Do(ctx, requestType, payload)
}
