package display

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Event types pushed to display clients.
const (
	eventSegment = "segment"
	eventInterim = "interim"
	eventPaused  = "paused"
)

// Control actions a client may send back.
const (
	ControlPause  = "pause"
	ControlResume = "resume"
	ControlStop   = "stop"
)

type displayEvent struct {
	Type      string `json:"type"`
	Source    string `json:"source,omitempty"`
	Primary   string `json:"primary,omitempty"`
	Secondary string `json:"secondary,omitempty"`
	Text      string `json:"text,omitempty"`
	Paused    bool   `json:"paused,omitempty"`
}

type controlMessage struct {
	Action string `json:"action"`
}

// Hub broadcasts display events to websocket clients and relays their
// control actions back to the session. New clients receive the recent
// segment history so a reconnecting screen is not blank.
type Hub struct {
	addr     string
	maxLines int
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[string]*hubClient
	history []displayEvent
	paused  bool

	server   *http.Server
	listener net.Listener
	wg       sync.WaitGroup
	control  chan string
	shutdown chan struct{}
}

type hubClient struct {
	id   string
	conn *websocket.Conn
	send chan displayEvent
}

func NewHub(addr string, maxLines int) *Hub {
	if maxLines <= 0 {
		maxLines = 3
	}
	return &Hub{
		addr:     addr,
		maxLines: maxLines,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients:  make(map[string]*hubClient),
		control:  make(chan string, 8),
		shutdown: make(chan struct{}),
	}
}

// Control delivers pause/resume/stop actions sent by display clients.
func (h *Hub) Control() <-chan string {
	return h.control
}

// Addr returns the bound listen address, available after Start.
func (h *Hub) Addr() string {
	if h.listener == nil {
		return h.addr
	}
	return h.listener.Addr().String()
}

func (h *Hub) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.handleWS)
	mux.HandleFunc("/", h.handleIndex)

	h.server = &http.Server{Addr: h.addr, Handler: mux}

	ln, err := net.Listen("tcp", h.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", h.addr, err)
	}
	h.listener = ln

	log.Printf("Display server listening on http://%s", ln.Addr())
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		if err := h.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Printf("Display server error: %v", err)
		}
	}()
	return nil
}

func (h *Hub) Stop() {
	close(h.shutdown)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if h.server != nil {
		h.server.Shutdown(ctx)
	}

	h.mu.Lock()
	for _, c := range h.clients {
		close(c.send)
		c.conn.Close()
	}
	h.clients = make(map[string]*hubClient)
	h.mu.Unlock()

	h.wg.Wait()
}

func (h *Hub) ShowSegment(source, primary, secondary string) {
	ev := displayEvent{Type: eventSegment, Source: source, Primary: primary, Secondary: secondary}
	h.mu.Lock()
	h.history = append(h.history, ev)
	if len(h.history) > h.maxLines {
		h.history = h.history[len(h.history)-h.maxLines:]
	}
	h.mu.Unlock()
	h.broadcast(ev)
}

func (h *Hub) ShowInterim(text string) {
	h.broadcast(displayEvent{Type: eventInterim, Text: text})
}

func (h *Hub) SetPaused(paused bool) {
	h.mu.Lock()
	h.paused = paused
	h.mu.Unlock()
	h.broadcast(displayEvent{Type: eventPaused, Paused: paused})
}

func (h *Hub) broadcast(ev displayEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.clients {
		select {
		case c.send <- ev:
		default:
			// Slow client: drop the event rather than stall the session.
		}
	}
}

func (h *Hub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Display upgrade failed: %v", err)
		return
	}

	client := &hubClient{
		id:   uuid.New().String(),
		conn: conn,
		send: make(chan displayEvent, 32),
	}

	h.mu.Lock()
	select {
	case <-h.shutdown:
		// Stop already swept the client map; this late arrival would
		// never be torn down.
		h.mu.Unlock()
		conn.Close()
		return
	default:
	}
	h.clients[client.id] = client
	// Replay state so the new screen catches up immediately.
	client.send <- displayEvent{Type: eventPaused, Paused: h.paused}
	for _, ev := range h.history {
		select {
		case client.send <- ev:
		default:
		}
	}
	h.wg.Add(2)
	h.mu.Unlock()

	log.Printf("Display client %s connected from %s", client.id[:8], r.RemoteAddr)

	go h.writeLoop(client)
	go h.readLoop(client)
}

func (h *Hub) writeLoop(c *hubClient) {
	defer h.wg.Done()
	for ev := range c.send {
		if err := c.conn.WriteJSON(ev); err != nil {
			return
		}
	}
}

func (h *Hub) readLoop(c *hubClient) {
	defer h.wg.Done()
	defer h.dropClient(c)

	for {
		var msg controlMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}
		switch msg.Action {
		case ControlPause, ControlResume, ControlStop:
			select {
			case h.control <- msg.Action:
			case <-h.shutdown:
				return
			}
		default:
			log.Printf("Display client %s sent unknown action %q", c.id[:8], msg.Action)
		}
	}
}

func (h *Hub) dropClient(c *hubClient) {
	h.mu.Lock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		close(c.send)
	}
	h.mu.Unlock()
	c.conn.Close()
}

func (h *Hub) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(indexPage))
}
