package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/lgmendez/diasync/internal/diagram"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsFrame is the JSON message exchanged on the event channel. It mirrors
// the client side in internal/channel.
type wsFrame struct {
	Type      string          `json:"type"`
	DiagramID string          `json:"diagramId,omitempty"`
	Change    json.RawMessage `json:"change,omitempty"`
	Diagram   json.RawMessage `json:"diagram,omitempty"`
}

// wsClient is one connected event-channel consumer.
type wsClient struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *wsClient) send(frame wsFrame) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(frame)
}

// Hub tracks room membership for per-diagram push updates. A client may
// join any number of rooms; the one-room-at-a-time discipline is the
// client's concern, not enforced here.
type Hub struct {
	store *Store

	mu    sync.Mutex
	rooms map[string]map[*wsClient]bool
}

// NewHub creates an empty hub broadcasting diagrams from store.
func NewHub(store *Store) *Hub {
	return &Hub{
		store: store,
		rooms: make(map[string]map[*wsClient]bool),
	}
}

// HandleWS upgrades the request and serves the event-channel protocol
// until the connection drops.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("server: websocket upgrade: %v", err)
		return
	}
	client := &wsClient{conn: conn}
	defer func() {
		h.dropClient(client)
		conn.Close()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("server: websocket read: %v", err)
			}
			return
		}

		var frame wsFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			log.Printf("server: dropping malformed frame: %v", err)
			continue
		}

		switch frame.Type {
		case "joinRoom":
			h.join(frame.DiagramID, client)
		case "leaveRoom":
			h.leave(frame.DiagramID, client)
		case "diagramChange":
			// A client-side edit notification: rebroadcast the
			// authoritative copy to the room.
			d, err := h.store.GetDiagram(r.Context(), frame.DiagramID)
			if err != nil {
				log.Printf("server: change for unknown diagram %s: %v", frame.DiagramID, err)
				continue
			}
			h.Broadcast(frame.DiagramID, d)
		}
	}
}

// Broadcast pushes a diagramUpdate frame to every client joined to the
// diagram's room. Send failures drop the client from all rooms.
func (h *Hub) Broadcast(diagramID string, d diagram.Diagram) {
	payload, err := json.Marshal(d)
	if err != nil {
		log.Printf("server: marshalling broadcast: %v", err)
		return
	}
	frame := wsFrame{Type: "diagramUpdate", DiagramID: diagramID, Diagram: payload}

	h.mu.Lock()
	clients := make([]*wsClient, 0, len(h.rooms[diagramID]))
	for c := range h.rooms[diagramID] {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		if err := c.send(frame); err != nil {
			log.Printf("server: websocket write: %v", err)
			h.dropClient(c)
		}
	}
}

func (h *Hub) join(diagramID string, c *wsClient) {
	if diagramID == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[diagramID] == nil {
		h.rooms[diagramID] = make(map[*wsClient]bool)
	}
	h.rooms[diagramID][c] = true
}

func (h *Hub) leave(diagramID string, c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.rooms[diagramID], c)
	if len(h.rooms[diagramID]) == 0 {
		delete(h.rooms, diagramID)
	}
}

func (h *Hub) dropClient(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, members := range h.rooms {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, id)
		}
	}
}
