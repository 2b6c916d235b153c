package dashboard

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"TreasuryDash/api/constants"
	"TreasuryDash/internal/logger"

	"github.com/google/uuid"
)

// Event types pushed to dashboard clients.
const (
	EventConnected = "connected"
	EventPing      = "ping"
	EventSnapshot  = "snapshot"
	EventAlert     = "alert"
)

// Event is one server-sent message.
type Event struct {
	Type string      `json:"type"`
	Time time.Time   `json:"time"`
	Data interface{} `json:"data,omitempty"`
}

type SSEClient struct {
	id   string
	send chan []byte
	done chan struct{}
}

// SSEServer fans dashboard events out to every connected browser. Each
// connection has its own writer goroutine fed by a buffered channel; a
// client that cannot keep up is dropped.
type SSEServer struct {
	mu           sync.RWMutex
	clients      map[string]*SSEClient
	pingInterval time.Duration
	stopCh       chan struct{}
	stopOnce     sync.Once
}

const clientBuffer = 16

func NewSSEServer() *SSEServer {
	return NewSSEServerWithPing(30 * time.Second)
}

func NewSSEServerWithPing(interval time.Duration) *SSEServer {
	s := &SSEServer{
		clients:      make(map[string]*SSEClient),
		pingInterval: interval,
		stopCh:       make(chan struct{}),
	}
	go s.pingClients()
	return s
}

// HandleSSE streams events to one client until it disconnects or the
// server stops.
func (s *SSEServer) HandleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, constants.ErrStreamUnsupported, http.StatusInternalServerError)
		return
	}

	w.Header().Set(constants.ContentTypeText, constants.ContentTypeSSE)
	w.Header().Set(constants.HeaderCacheControl, "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set(constants.HeaderAccessControlAllowOrigin, "*")
	w.Header().Set(constants.HeaderAccessControlAllowHeaders, constants.HeaderCacheControl)

	client := &SSEClient{
		id:   uuid.New().String(),
		send: make(chan []byte, clientBuffer),
		done: make(chan struct{}),
	}
	s.mu.Lock()
	s.clients[client.id] = client
	s.mu.Unlock()

	log := logger.WithComponent("sse")
	log.Info().Str("client", client.id).Str("remote", r.RemoteAddr).Msg("Dashboard client connected")
	defer func() {
		s.remove(client)
		log.Info().Str("client", client.id).Msg("Dashboard client disconnected")
	}()

	if err := writeEvent(w, flusher, Event{Type: EventConnected, Time: time.Now().UTC(), Data: map[string]string{"client": client.id}}); err != nil {
		return
	}

	for {
		select {
		case msg := <-client.send:
			if _, err := fmt.Fprintf(w, "data: %s\n\n", msg); err != nil {
				return
			}
			flusher.Flush()
		case <-client.done:
			return
		case <-r.Context().Done():
			return
		case <-s.stopCh:
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, flusher http.Flusher, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}

// Broadcast queues ev for every client and returns how many received it.
func (s *SSEServer) Broadcast(eventType string, data interface{}) int {
	msg, err := json.Marshal(Event{Type: eventType, Time: time.Now().UTC(), Data: data})
	if err != nil {
		logger.WithComponent("sse").Error().Err(err).Str("type", eventType).Msg("Cannot encode event")
		return 0
	}

	var slow []*SSEClient
	sent := 0
	s.mu.RLock()
	for _, c := range s.clients {
		select {
		case c.send <- msg:
			sent++
		default:
			slow = append(slow, c)
		}
	}
	s.mu.RUnlock()

	for _, c := range slow {
		logger.WithComponent("sse").Warn().Str("client", c.id).Msg("Dropping slow dashboard client")
		s.remove(c)
	}
	return sent
}

func (s *SSEServer) remove(c *SSEClient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clients[c.id] == c {
		delete(s.clients, c.id)
		close(c.done)
	}
}

func (s *SSEServer) pingClients() {
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Broadcast(EventPing, nil)
		case <-s.stopCh:
			return
		}
	}
}

// ClientCount returns the number of connected clients
func (s *SSEServer) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *SSEServer) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		s.mu.Lock()
		for id, c := range s.clients {
			close(c.done)
			delete(s.clients, id)
		}
		s.mu.Unlock()
	})
}
