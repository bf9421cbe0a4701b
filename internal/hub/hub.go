// Package hub 提供监护人实时通知中心
//
// 注册表为 guardianID -> 活动连接，单个 guardianID 至多持有一个连接：
// 重连时替换旧句柄（旧句柄直接丢弃，Hub 不主动关闭）。
// 每个订阅者有独立的发送队列与写协程，单个慢连接不会阻塞广播扇出；
// 投递失败即视为死连接，移除订阅者，失败不向调用方传播。
package hub

import (
	"sync"

	"go.uber.org/zap"
)

// sendQueueSize 每个订阅者的发送队列容量，写满即视为连接失效
const sendQueueSize = 16

// Conn 推送连接句柄（*websocket.Conn 满足该接口）
type Conn interface {
	WriteJSON(v interface{}) error
}

// subscriber 单个监护人订阅
type subscriber struct {
	guardianID string
	conn       Conn
	send       chan interface{}
	done       chan struct{}
	stopOnce   sync.Once
}

// stop 停止写协程（幂等）
func (s *subscriber) stop() {
	s.stopOnce.Do(func() {
		close(s.done)
	})
}

// Hub 监护人订阅注册表
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]*subscriber
	logger      *zap.Logger
}

// NewHub 创建通知中心
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		subscribers: make(map[string]*subscriber),
		logger:      logger,
	}
}

// Connect 注册连接，替换同一 guardianID 的旧连接
// 旧连接的写协程停止，句柄丢弃（由对端自行感知断开）
func (h *Hub) Connect(guardianID string, conn Conn) {
	sub := &subscriber{
		guardianID: guardianID,
		conn:       conn,
		send:       make(chan interface{}, sendQueueSize),
		done:       make(chan struct{}),
	}

	h.mu.Lock()
	old := h.subscribers[guardianID]
	h.subscribers[guardianID] = sub
	h.mu.Unlock()

	if old != nil {
		old.stop()
		h.logger.Info("Replaced existing subscriber connection",
			zap.String("guardian_id", guardianID),
		)
	}

	go h.pump(sub)

	h.logger.Info("Guardian subscribed",
		zap.String("guardian_id", guardianID),
	)
}

// Disconnect 注销连接（幂等，不存在时为 no-op）
func (h *Hub) Disconnect(guardianID string) {
	h.mu.Lock()
	sub, ok := h.subscribers[guardianID]
	if ok {
		delete(h.subscribers, guardianID)
	}
	h.mu.Unlock()

	if ok {
		sub.stop()
		h.logger.Info("Guardian unsubscribed",
			zap.String("guardian_id", guardianID),
		)
	}
}

// DisconnectConn 仅当注册表中仍持有该连接时注销
// 旧连接被替换后，其读协程的收尾调用不会误删新连接
func (h *Hub) DisconnectConn(guardianID string, conn Conn) {
	h.mu.Lock()
	sub, ok := h.subscribers[guardianID]
	if ok && sub.conn == conn {
		delete(h.subscribers, guardianID)
	} else {
		ok = false
	}
	h.mu.Unlock()

	if ok {
		sub.stop()
		h.logger.Info("Guardian unsubscribed",
			zap.String("guardian_id", guardianID),
		)
	}
}

// SendPersonal 向指定监护人投递消息
// 未注册时静默忽略；投递失败时移除订阅者，错误不向调用方传播
func (h *Hub) SendPersonal(guardianID string, msg interface{}) {
	h.mu.RLock()
	sub, ok := h.subscribers[guardianID]
	h.mu.RUnlock()

	if !ok {
		return
	}
	h.enqueue(sub, msg)
}

// Broadcast 向所有在线订阅者投递消息
// 单个订阅者失败只移除该订阅者，不中断其余投递；无跨订阅者顺序保证
func (h *Hub) Broadcast(msg interface{}) {
	h.mu.RLock()
	subs := make([]*subscriber, 0, len(h.subscribers))
	for _, sub := range h.subscribers {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	for _, sub := range subs {
		h.enqueue(sub, msg)
	}
}

// Count 当前在线订阅者数量
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// enqueue 消息入队（非阻塞）
// 队列已满说明连接过慢或已死，移除订阅者
func (h *Hub) enqueue(sub *subscriber, msg interface{}) {
	select {
	case sub.send <- msg:
	default:
		h.logger.Warn("Send queue full, removing subscriber",
			zap.String("guardian_id", sub.guardianID),
		)
		h.remove(sub)
		sub.stop()
	}
}

// pump 订阅者写协程：串行写出队列消息，写失败即移除订阅者
func (h *Hub) pump(sub *subscriber) {
	for {
		select {
		case <-sub.done:
			return
		case msg := <-sub.send:
			if err := sub.conn.WriteJSON(msg); err != nil {
				h.logger.Warn("Failed to deliver message, removing subscriber",
					zap.String("guardian_id", sub.guardianID),
					zap.Error(err),
				)
				h.remove(sub)
				return
			}
		}
	}
}

// remove 从注册表移除订阅者（仅当映射中仍是同一个实例时）
func (h *Hub) remove(sub *subscriber) {
	h.mu.Lock()
	if cur, ok := h.subscribers[sub.guardianID]; ok && cur == sub {
		delete(h.subscribers, sub.guardianID)
	}
	h.mu.Unlock()
}
