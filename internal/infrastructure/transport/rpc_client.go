package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"PogoMap-App/internal/domain/model"
)

// DefaultTimeout ゲームサーバーへの1往復のタイムアウト
const DefaultTimeout = 10 * time.Second

// RPCClient ゲームサーバーのRPCエンドポイントにリクエストを送るクライアント
//
// 同時に送られたリクエストは1往復ずつ順番に処理する。リトライはしない。
type RPCClient struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
	mu         sync.Mutex
}

// NewRPCClient 新しいRPCClientを生成する
func NewRPCClient(baseURL, authToken string, timeout time.Duration) *RPCClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &RPCClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		authToken:  authToken,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SetAuthToken 認証トークンを差し替える
func (c *RPCClient) SetAuthToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.authToken = token
}

// Do リクエストを送信してレスポンスのペイロードを返す
func (c *RPCClient) Do(ctx context.Context, requestType model.RequestType, payload []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.authToken == "" {
		return nil, fmt.Errorf("認証トークンが設定されていません: %w", model.ErrLoginFailed)
	}

	// 1. エンベロープを構築
	requestID := uuid.New().String()
	body, err := json.Marshal(rpcRequest{
		RequestID:   requestID,
		RequestType: int(requestType),
		Payload:     json.RawMessage(payload),
	})
	if err != nil {
		return nil, fmt.Errorf("リクエストの構築に失敗: %w", err)
	}

	// 2. HTTPリクエストを作成・実行
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rpc", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("リクエストの作成に失敗: %v: %w", err, model.ErrTransport)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.authToken)
	req.Header.Set("X-Request-Id", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("❌ %s 送信失敗 (request_id=%s): %v", requestType, requestID, err)
		return nil, fmt.Errorf("%s の送信に失敗: %v: %w", requestType, err, model.ErrTransport)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("セッションが無効です (%s): %w", resp.Status, model.ErrLoginFailed)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("サーバーからエラーステータスが返されました: %s: %w", resp.Status, model.ErrTransport)
	}

	// 3. エンベロープをパース
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("レスポンスの読み込みに失敗: %v: %w", err, model.ErrTransport)
	}
	var envelope rpcResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("エンベロープのパースに失敗: %v: %w", err, model.ErrTransport)
	}
	if envelope.RequestID != "" && envelope.RequestID != requestID {
		return nil, fmt.Errorf("request_idが一致しません (%s != %s): %w", envelope.RequestID, requestID, model.ErrTransport)
	}
	if envelope.Error != "" {
		if envelope.StatusCode == http.StatusUnauthorized {
			return nil, fmt.Errorf("%s: %w", envelope.Error, model.ErrLoginFailed)
		}
		return nil, fmt.Errorf("%s: %w", envelope.Error, model.ErrTransport)
	}

	log.Printf("✅ %s 完了 (%v)", requestType, time.Since(start))
	return envelope.Payload, nil
}

// --- RPCエンドポイントのエンベロープ ---

type rpcRequest struct {
	RequestID   string          `json:"request_id"`
	RequestType int             `json:"request_type"`
	Payload     json.RawMessage `json:"payload"`
}

type rpcResponse struct {
	RequestID  string          `json:"request_id"`
	StatusCode int             `json:"status_code"`
	Error      string          `json:"error,omitempty"`
	Payload    json.RawMessage `json:"payload"`
}
