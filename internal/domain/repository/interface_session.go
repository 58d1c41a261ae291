package repository

import (
	"context"

	"PogoMap-App/internal/domain/model"
)

// Session 現在位置の保持とゲームサーバーへのリクエスト送信を担うセッション
type Session interface {
	// Position 現在位置を取得
	Position() model.Coordinate

	// SetPosition 現在位置を更新
	SetPosition(position model.Coordinate)

	// SendRequest リクエストを送信し、レスポンスのバイト列が届くまでブロックする
	// セッションが無効な場合は model.ErrLoginFailed、通信失敗時は model.ErrTransport を返す
	SendRequest(ctx context.Context, requestType model.RequestType, payload []byte) ([]byte, error)
}

// Codec リクエスト・レスポンスのエンコードとデコード
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}
