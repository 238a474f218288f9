package inspector

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pathbind-dev/pathbind/pkg/pathbind"
)

// BatchMessage is one flushed batch as sent to stream subscribers.
type BatchMessage struct {
	Engine string    `json:"engine"`
	Paths  []string  `json:"paths"`
	Count  int       `json:"count"`
	At     time.Time `json:"at"`
}

// BatchStream fans flushed-batch notifications out to WebSocket
// subscribers.
type BatchStream struct {
	clients  map[*websocket.Conn]bool
	mu       sync.RWMutex
	upgrader websocket.Upgrader
}

// NewBatchStream creates a stream with the given connection settings.
func NewBatchStream(cfg StreamConfig) *BatchStream {
	s := &BatchStream{
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
		},
	}
	if cfg.AllowAnyOrigin {
		s.upgrader.CheckOrigin = func(r *http.Request) bool { return true }
	}
	return s
}

// HandleWebSocket upgrades the request and holds the connection until the
// client goes away.
func (s *BatchStream) HandleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return
	}

	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	s.mu.Lock()
	delete(s.clients, conn)
	s.mu.Unlock()
	conn.Close()
}

// NotifyBatch broadcasts one flushed batch.
func (s *BatchStream) NotifyBatch(engine string, refs []*pathbind.StatePropertyRef) {
	if s.ClientCount() == 0 {
		return
	}
	msg := BatchMessage{
		Engine: engine,
		Paths:  make([]string, len(refs)),
		Count:  len(refs),
		At:     time.Now(),
	}
	for i, ref := range refs {
		msg.Paths[i] = ref.Pattern()
	}
	s.broadcast(msg)
}

func (s *BatchStream) broadcast(msg BatchMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	s.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(s.clients))
	for client := range s.clients {
		clients = append(clients, client)
	}
	s.mu.RUnlock()

	for _, client := range clients {
		if err := client.WriteMessage(websocket.TextMessage, data); err != nil {
			s.mu.Lock()
			delete(s.clients, client)
			s.mu.Unlock()
			client.Close()
		}
	}
}

// ClientCount returns the number of connected subscribers.
func (s *BatchStream) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Close drops every subscriber.
func (s *BatchStream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for client := range s.clients {
		client.Close()
		delete(s.clients, client)
	}
}
