// Package channel is the websocket client for per-diagram push updates.
// It owns room membership (at most one joined room) and delivers raw
// diagram-update payloads to a registered handler. It makes no delivery
// guarantees beyond what the connection provides: a dropped connection
// silently drops future pushes and the next full refresh is the recovery
// path.
package channel

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Message types on the wire. Inbound frames carry diagramUpdate; the rest
// are outbound.
const (
	typeJoinRoom      = "joinRoom"
	typeLeaveRoom     = "leaveRoom"
	typeDiagramChange = "diagramChange"
	typeDiagramUpdate = "diagramUpdate"
)

// envelope is the JSON frame exchanged with the server.
type envelope struct {
	Type      string          `json:"type"`
	DiagramID string          `json:"diagramId,omitempty"`
	Change    json.RawMessage `json:"change,omitempty"`
	Diagram   json.RawMessage `json:"diagram,omitempty"`
}

// UpdateHandler receives the raw diagram payload of a push update. The
// handler runs on the socket's read goroutine and must not block.
type UpdateHandler func(raw json.RawMessage)

// Socket is a connected diagram event channel. All methods are safe for
// concurrent use; writes to the connection are serialized.
type Socket struct {
	conn *websocket.Conn

	writeMu sync.Mutex

	mu      sync.Mutex
	room    string
	handler UpdateHandler
	closed  bool
}

// Dial connects to the diagram event channel at wsURL and starts the read
// loop. The bearer token, when non-empty, is sent as an Authorization
// header during the handshake.
func Dial(wsURL, token string) (*Socket, error) {
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dialing %s: %w (status %d)", wsURL, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dialing %s: %w", wsURL, err)
	}

	s := &Socket{conn: conn}
	go s.readLoop()
	return s, nil
}

// OnUpdate registers the handler for inbound diagram updates. Only one
// handler is active at a time; registering nil detaches it, which is how a
// shutting-down consumer guards against late pushes.
func (s *Socket) OnUpdate(h UpdateHandler) {
	s.mu.Lock()
	s.handler = h
	s.mu.Unlock()
}

// Join subscribes to push events for one diagram. A previously joined room
// is left first so subscriptions never leak.
func (s *Socket) Join(diagramID string) error {
	s.mu.Lock()
	prev := s.room
	s.room = diagramID
	s.mu.Unlock()

	if prev != "" && prev != diagramID {
		if err := s.send(envelope{Type: typeLeaveRoom, DiagramID: prev}); err != nil {
			return fmt.Errorf("leaving room %s: %w", prev, err)
		}
	}
	if err := s.send(envelope{Type: typeJoinRoom, DiagramID: diagramID}); err != nil {
		return fmt.Errorf("joining room %s: %w", diagramID, err)
	}
	return nil
}

// Leave unsubscribes from the diagram's room. Leaving a room that is not
// joined is a no-op.
func (s *Socket) Leave(diagramID string) error {
	s.mu.Lock()
	if s.room != diagramID {
		s.mu.Unlock()
		return nil
	}
	s.room = ""
	s.mu.Unlock()

	if err := s.send(envelope{Type: typeLeaveRoom, DiagramID: diagramID}); err != nil {
		return fmt.Errorf("leaving room %s: %w", diagramID, err)
	}
	return nil
}

// EmitChange fires a local edit notification to the channel. Best effort:
// the error is returned for logging but callers are not expected to retry.
func (s *Socket) EmitChange(diagramID string, change any) error {
	raw, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("marshalling change: %w", err)
	}
	return s.send(envelope{Type: typeDiagramChange, DiagramID: diagramID, Change: raw})
}

// Close detaches the handler and closes the connection.
func (s *Socket) Close() error {
	s.mu.Lock()
	s.closed = true
	s.handler = nil
	s.mu.Unlock()
	return s.conn.Close()
}

func (s *Socket) send(msg envelope) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(msg)
}

func (s *Socket) readLoop() {
	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if !closed && websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("channel: read: %v", err)
			}
			return
		}

		var msg envelope
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Printf("channel: dropping malformed frame: %v", err)
			continue
		}
		if msg.Type != typeDiagramUpdate {
			continue
		}

		s.mu.Lock()
		h := s.handler
		s.mu.Unlock()
		if h != nil {
			h(msg.Diagram)
		}
	}
}
