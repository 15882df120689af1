package api

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/zjzjy/LQBench/internal/simulator"
)

// subscriber 包装一个订阅连接。gorilla/websocket 只允许一个并发写者，
// 并行批次的多个用例会同时往同一个连接推事件，写必须串行。
type subscriber struct {
	conn     *websocket.Conn
	connLock sync.Mutex
}

func (s *subscriber) writeJSON(v any) error {
	s.connLock.Lock()
	defer s.connLock.Unlock()
	return s.conn.WriteJSON(v)
}

// hub 按批次管理 WebSocket 订阅者，把模拟事件实时推给前端。
// 写失败的连接直接摘除，慢消费者不会拖住模拟。
type hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[*websocket.Conn]*subscriber // batchID -> conns
}

func newHub() *hub {
	return &hub{subscribers: make(map[string]map[*websocket.Conn]*subscriber)}
}

func (h *hub) subscribe(batchID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subscribers[batchID] == nil {
		h.subscribers[batchID] = make(map[*websocket.Conn]*subscriber)
	}
	h.subscribers[batchID][conn] = &subscriber{conn: conn}
}

func (h *hub) unsubscribe(batchID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subscribers[batchID], conn)
	if len(h.subscribers[batchID]) == 0 {
		delete(h.subscribers, batchID)
	}
}

func (h *hub) broadcast(batchID string, event simulator.Event) {
	h.mu.RLock()
	subs := make([]*subscriber, 0, len(h.subscribers[batchID]))
	for _, sub := range h.subscribers[batchID] {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	for _, sub := range subs {
		if err := sub.writeJSON(event); err != nil {
			log.Printf("[api] drop slow subscriber on batch %s: %v", batchID, err)
			h.unsubscribe(batchID, sub.conn)
			_ = sub.conn.Close()
		}
	}
}

// batchSink 把某个批次的模拟事件转发到 hub，实现 simulator.EventSink。
type batchSink struct {
	hub     *hub
	batchID string
}

func (s *batchSink) Emit(e simulator.Event) {
	s.hub.broadcast(s.batchID, e)
}
