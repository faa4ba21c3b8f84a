package push

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

func dialHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("连接推送通道失败: %v", err)
	}
	t.Cleanup(func() { conn.CloseNow() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) envelope {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("读取推送消息失败: %v", err)
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("解析推送消息失败: %v", err)
	}
	return env
}

func TestHub_ReplaysLatestOnConnect(t *testing.T) {
	t.Parallel()

	hub := NewHub(zap.NewNop())
	hub.Publish("sheetDataUpdated", map[string]int{"rows": 3})

	// 连接晚于发布，仍应收到最近一次载荷
	conn := dialHub(t, hub)
	env := readEnvelope(t, conn)
	if env.Event != "sheetDataUpdated" {
		t.Fatalf("event = %q, want sheetDataUpdated", env.Event)
	}
	if env.Timestamp.IsZero() {
		t.Fatalf("envelope should carry a timestamp")
	}
}

func TestHub_BroadcastsToSubscriber(t *testing.T) {
	t.Parallel()

	hub := NewHub(zap.NewNop())
	conn := dialHub(t, hub)

	// 等待订阅登记完成后再发布
	deadline := time.Now().Add(5 * time.Second)
	for hub.SubscriberCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("subscriber never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	hub.Publish("leadReportsUpdated", []string{"7781"})

	env := readEnvelope(t, conn)
	if env.Event != "leadReportsUpdated" {
		t.Fatalf("event = %q, want leadReportsUpdated", env.Event)
	}
}
