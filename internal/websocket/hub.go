package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"edubridge-chat-be/internal/dto"
	"edubridge-chat-be/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const stateChannel = "chat_state_events"

// Hub fans engine snapshots out to every connected shell. With Redis
// configured, snapshots travel through a pub/sub channel so all instances
// deliver them; without it, delivery is local only.
type Hub struct {
	clients map[*Client]bool

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	// Redis connection for cross-instance fan-out (optional)
	rdb *redis.Client

	// Dedicated Logger
	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	// Start Redis Subscriber if Redis is available
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"clients": h.clientCount()})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
			h.logger.Info("Hub", "Client unregistered", map[string]interface{}{"clients": h.clientCount()})
		}
	}
}

// BroadcastState pushes a store snapshot to every shell. When Redis is
// wired, the snapshot goes through the channel once and every instance
// (this one included) delivers it locally, which avoids double sends.
func (h *Hub) BroadcastState(snapshot *dto.StoreSnapshotResponse) {
	data, err := json.Marshal(map[string]interface{}{
		"type": "chat.state",
		"data": snapshot,
	})
	if err != nil {
		h.logger.Error("Hub", "Failed to marshal state snapshot", map[string]interface{}{"error": err.Error()})
		return
	}

	if h.rdb != nil {
		if err := h.rdb.Publish(context.Background(), stateChannel, data).Err(); err != nil {
			h.logger.Warn("Hub", "Redis publish failed, delivering locally", map[string]interface{}{"error": err.Error()})
			h.deliverLocal(data)
		}
		return
	}

	h.deliverLocal(data)
}

func (h *Hub) deliverLocal(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("Hub", "Client Send buffer full, dropping client", nil)
			go func(c *Client) { h.unregister <- c }(client)
		}
	}
}

func (h *Hub) clientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, stateChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		h.deliverLocal([]byte(msg.Payload))
	}
}
