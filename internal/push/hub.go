// Package push 向所有已连接订阅方广播命名事件的推送通道
// 新连接的订阅方会立即收到各事件的最近一次载荷（先缓存后实时）
package push

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

// 单个订阅方的发送缓冲；写不进去说明订阅方过慢，直接断开
const subscriberBuffer = 16

// envelope 推送消息的统一外层
type envelope struct {
	Event     string      `json:"event"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

type subscriber struct {
	msgs chan []byte
}

// Hub 订阅方集合与事件缓存
type Hub struct {
	log *zap.Logger

	mu     sync.RWMutex
	subs   map[*subscriber]struct{}
	latest map[string][]byte // 事件名 -> 最近一次序列化后的消息
}

// NewHub 创建推送中心
func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		log:    log,
		subs:   make(map[*subscriber]struct{}),
		latest: make(map[string][]byte),
	}
}

// Publish 广播一条命名事件
// 序列化失败只记日志；慢订阅方丢弃本条消息而不阻塞发布方
func (h *Hub) Publish(event string, payload interface{}) {
	msg, err := json.Marshal(envelope{
		Event:     event,
		Data:      payload,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		h.log.Error("序列化推送消息失败", zap.String("event", event), zap.Error(err))
		return
	}

	h.mu.Lock()
	h.latest[event] = msg
	subs := make([]*subscriber, 0, len(h.subs))
	for s := range h.subs {
		subs = append(subs, s)
	}
	h.mu.Unlock()

	for _, s := range subs {
		select {
		case s.msgs <- msg:
		default:
			h.log.Warn("订阅方消费过慢，丢弃消息", zap.String("event", event))
		}
	}
}

// SubscriberCount 当前连接数
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// ServeHTTP 接入一个 WebSocket 订阅方
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.log.Warn("WebSocket 握手失败", zap.Error(err))
		return
	}
	defer conn.CloseNow()

	sub := &subscriber{msgs: make(chan []byte, subscriberBuffer)}

	// 连接即补发各事件的最近载荷
	h.mu.Lock()
	for _, msg := range h.latest {
		select {
		case sub.msgs <- msg:
		default:
		}
	}
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.subs, sub)
		h.mu.Unlock()
	}()

	// 不接收业务消息，只保活并感知对端关闭
	ctx := conn.CloseRead(r.Context())

	for {
		select {
		case msg := <-sub.msgs:
			if err := writeTimeout(ctx, conn, msg); err != nil {
				return
			}
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		}
	}
}

func writeTimeout(ctx context.Context, conn *websocket.Conn, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, msg)
}
