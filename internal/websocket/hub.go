package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"procuredoc-be/internal/dto"
	"procuredoc-be/internal/pkg/logger"
	"procuredoc-be/internal/stream"

	"github.com/redis/go-redis/v9"
)

const relayChannel = "job_progress_events"

// Hub fans job progress out to websocket clients. Clients subscribe to one
// job id; the hub attaches to the broker stream for that job and relays every
// envelope. With Redis configured the envelopes are also published to a relay
// channel so clients connected to another instance still receive them.
type Hub struct {
	// jobID -> connected clients (a job can have several watchers)
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	broker *stream.Broker
	rdb    *redis.Client
	logger logger.ILogger
}

func NewHub(broker *stream.Broker, rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		clients:    make(map[string][]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broker:     broker,
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			first := len(h.clients[client.JobID]) == 0
			h.clients[client.JobID] = append(h.clients[client.JobID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"job_id": client.JobID})

			// The first watcher taps the broker stream so the submitter's own
			// consumer keeps receiving. No stream means the run is already
			// over (or never existed); tell the watcher right away.
			if first {
				if ch := h.broker.Attach(client.JobID); ch != nil {
					go h.relay(client.JobID, ch)
				} else {
					done, _ := json.Marshal(map[string]string{"type": "end", "job_id": client.JobID})
					h.deliverLocal(client.JobID, done)
				}
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.JobID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.JobID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.JobID]) == 0 {
					delete(h.clients, client.JobID)
				}
			}
			h.mu.Unlock()
		}
	}
}

// relay consumes one broker stream until it closes, pushing every envelope to
// the job's local clients and to the Redis relay channel.
func (h *Hub) relay(jobID string, ch <-chan dto.ProgressEnvelope) {
	for envelope := range ch {
		data, err := json.Marshal(envelope)
		if err != nil {
			continue
		}
		h.deliverLocal(jobID, data)

		if h.rdb != nil {
			payload, _ := json.Marshal(map[string]interface{}{
				"job_id":  jobID,
				"message": json.RawMessage(data),
			})
			h.rdb.Publish(context.Background(), relayChannel, payload)
		}
	}

	// Stream closed: tell watchers the run is over and drop them.
	done, _ := json.Marshal(map[string]string{"type": "end", "job_id": jobID})
	h.deliverLocal(jobID, done)

	h.mu.Lock()
	for _, client := range h.clients[jobID] {
		close(client.Send)
	}
	delete(h.clients, jobID)
	h.mu.Unlock()
}

func (h *Hub) deliverLocal(jobID string, data []byte) {
	h.mu.RLock()
	clients := h.clients[jobID]
	h.mu.RUnlock()

	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("Hub", "Client send buffer full, dropping message", map[string]interface{}{
				"job_id": jobID,
			})
		}
	}
}

func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, relayChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload struct {
			JobID   string          `json:"job_id"`
			Message json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis relay parse error: %v", err)
			continue
		}
		h.deliverLocal(payload.JobID, payload.Message)
	}
}
