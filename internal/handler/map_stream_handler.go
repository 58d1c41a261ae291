package handler

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"PogoMap-App/internal/domain/service"
	apimodel "PogoMap-App/model"
)

const (
	defaultStreamInterval = 5 * time.Second
	minStreamInterval     = 500 * time.Millisecond
	streamWriteTimeout    = 10 * time.Second
)

// MapStreamHandler マップの要約をWebSocketで定期配信する
type MapStreamHandler struct {
	world    *service.WorldView
	upgrader websocket.Upgrader
}

func NewMapStreamHandler(world *service.WorldView) *MapStreamHandler {
	return &MapStreamHandler{
		world: world,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Stream GET /map/stream?interval_ms= - 接続中は interval ごとに取得結果の要約を送る
func (h *MapStreamHandler) Stream(c *gin.Context) {
	interval := defaultStreamInterval
	if raw := c.Query("interval_ms"); raw != "" {
		ms, err := strconv.Atoi(raw)
		if err != nil || ms <= 0 {
			badRequest(c, "invalid_parameter", "Invalid interval_ms value")
			return
		}
		interval = time.Duration(ms) * time.Millisecond
		if interval < minStreamInterval {
			interval = minStreamInterval
		}
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ WebSocketへのアップグレード失敗: %v", err)
		return
	}
	defer conn.Close()
	log.Printf("📡 マップ配信開始 (間隔: %v)", interval)

	// クライアントからの受信は切断検知のみに使う
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ctx := c.Request.Context()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if !h.push(c, conn) {
			return
		}

		select {
		case <-done:
			log.Printf("📡 マップ配信終了: クライアント切断")
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// push 1回分の要約を送る。書き込みに失敗したら false
func (h *MapStreamHandler) push(c *gin.Context, conn *websocket.Conn) bool {
	var message any
	objects, err := h.world.GetWorldObjects(c.Request.Context())
	if err != nil {
		log.Printf("⚠️ 配信用のマップ取得に失敗: %v", err)
		message = apimodel.ErrorResponse{Error: "fetch_failed", Message: err.Error()}
	} else {
		message = apimodel.NewStreamSummary(h.world.Position(), objects, time.Now().UnixMilli())
	}

	if err := conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout)); err != nil {
		log.Printf("⚠️ 書き込み期限の設定に失敗: %v", err)
		return false
	}
	if err := conn.WriteJSON(message); err != nil {
		log.Printf("⚠️ マップ配信の送信に失敗: %v", err)
		return false
	}
	return true
}
