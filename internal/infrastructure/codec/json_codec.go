package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// JSONCodec ゲームサーバーとのメッセージをJSONでエンコード・デコードする
type JSONCodec struct{}

// NewJSONCodec 新しいJSONCodecを作成
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Marshal メッセージをバイト列に変換
func (c *JSONCodec) Marshal(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("JSONマーシャル失敗: %w", err)
	}
	return data, nil
}

// Unmarshal バイト列をメッセージに変換
// 空のレスポンスや末尾の余分なデータは不正なレスポンスとして扱う
func (c *JSONCodec) Unmarshal(data []byte, v any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("JSONアンマーシャル失敗: 空のレスポンス")
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("JSONアンマーシャル失敗: %w", err)
	}
	if decoder.More() {
		return fmt.Errorf("JSONアンマーシャル失敗: 余分なデータがあります")
	}
	return nil
}
