package channel

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// testServer is a minimal event-channel endpoint that records inbound
// frames and lets tests push frames back to the client.
type testServer struct {
	srv *httptest.Server

	mu       sync.Mutex
	conn     *websocket.Conn
	received []envelope
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{}
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

	ts.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		ts.mu.Lock()
		ts.conn = conn
		ts.mu.Unlock()

		for {
			var msg envelope
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			ts.mu.Lock()
			ts.received = append(ts.received, msg)
			ts.mu.Unlock()
		}
	}))
	t.Cleanup(ts.srv.Close)
	return ts
}

func (ts *testServer) wsURL() string {
	return "ws" + strings.TrimPrefix(ts.srv.URL, "http")
}

func (ts *testServer) push(t *testing.T, msg envelope) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for {
		ts.mu.Lock()
		conn := ts.conn
		ts.mu.Unlock()
		if conn != nil {
			if err := conn.WriteJSON(msg); err != nil {
				t.Fatalf("push: %v", err)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("no client connected")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func (ts *testServer) waitFrames(t *testing.T, n int) []envelope {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for {
		ts.mu.Lock()
		got := make([]envelope, len(ts.received))
		copy(got, ts.received)
		ts.mu.Unlock()
		if len(got) >= n {
			return got
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d frames, got %d: %+v", n, len(got), got)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestJoinLeavesPreviousRoomFirst(t *testing.T) {
	ts := newTestServer(t)
	s, err := Dial(ts.wsURL(), "")
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer s.Close()

	if err := s.Join("d1"); err != nil {
		t.Fatalf("Join d1: %v", err)
	}
	if err := s.Join("d2"); err != nil {
		t.Fatalf("Join d2: %v", err)
	}

	frames := ts.waitFrames(t, 3)
	want := []struct{ typ, id string }{
		{typeJoinRoom, "d1"},
		{typeLeaveRoom, "d1"},
		{typeJoinRoom, "d2"},
	}
	for i, w := range want {
		if frames[i].Type != w.typ || frames[i].DiagramID != w.id {
			t.Errorf("frame %d: got %s/%s, want %s/%s", i, frames[i].Type, frames[i].DiagramID, w.typ, w.id)
		}
	}
}

func TestRejoiningSameRoomDoesNotLeave(t *testing.T) {
	ts := newTestServer(t)
	s, err := Dial(ts.wsURL(), "")
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer s.Close()

	s.Join("d1")
	s.Join("d1")

	frames := ts.waitFrames(t, 2)
	for _, f := range frames {
		if f.Type == typeLeaveRoom {
			t.Errorf("unexpected leaveRoom frame: %+v", f)
		}
	}
}

func TestLeaveUnjoinedRoomIsNoOp(t *testing.T) {
	ts := newTestServer(t)
	s, err := Dial(ts.wsURL(), "")
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer s.Close()

	s.Join("d1")
	if err := s.Leave("d2"); err != nil {
		t.Fatalf("Leave: %v", err)
	}
	if err := s.EmitChange("d1", map[string]string{"op": "ping"}); err != nil {
		t.Fatalf("EmitChange: %v", err)
	}

	frames := ts.waitFrames(t, 2)
	if frames[1].Type != typeDiagramChange {
		t.Errorf("got frame %+v, leave of an unjoined room should send nothing", frames[1])
	}
}

func TestOnUpdateDeliversRawPayload(t *testing.T) {
	ts := newTestServer(t)
	s, err := Dial(ts.wsURL(), "")
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer s.Close()

	updates := make(chan json.RawMessage, 1)
	s.OnUpdate(func(raw json.RawMessage) { updates <- raw })
	s.Join("d1")

	ts.push(t, envelope{Type: typeDiagramUpdate, Diagram: json.RawMessage(`{"id":"d1","name":"pushed"}`)})

	select {
	case raw := <-updates:
		var got struct{ Name string }
		if err := json.Unmarshal(raw, &got); err != nil {
			t.Fatalf("unmarshalling update: %v", err)
		}
		if got.Name != "pushed" {
			t.Errorf("got name %q, want %q", got.Name, "pushed")
		}
	case <-time.After(time.Second):
		t.Fatal("no update delivered")
	}
}

func TestNonUpdateFramesIgnored(t *testing.T) {
	ts := newTestServer(t)
	s, err := Dial(ts.wsURL(), "")
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer s.Close()

	updates := make(chan json.RawMessage, 2)
	s.OnUpdate(func(raw json.RawMessage) { updates <- raw })

	ts.push(t, envelope{Type: "presence", DiagramID: "d1"})
	ts.push(t, envelope{Type: typeDiagramUpdate, Diagram: json.RawMessage(`{"id":"d1"}`)})

	select {
	case raw := <-updates:
		var got struct{ ID string }
		json.Unmarshal(raw, &got)
		if got.ID != "d1" {
			t.Errorf("unexpected payload %s", raw)
		}
	case <-time.After(time.Second):
		t.Fatal("no update delivered")
	}
	if len(updates) != 0 {
		t.Error("non-update frame reached the handler")
	}
}

func TestDetachedHandlerDropsLatePushes(t *testing.T) {
	ts := newTestServer(t)
	s, err := Dial(ts.wsURL(), "")
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer s.Close()

	updates := make(chan json.RawMessage, 1)
	s.OnUpdate(func(raw json.RawMessage) { updates <- raw })
	s.OnUpdate(nil)

	ts.push(t, envelope{Type: typeDiagramUpdate, Diagram: json.RawMessage(`{"id":"d1"}`)})

	select {
	case <-updates:
		t.Fatal("detached handler still received a push")
	case <-time.After(100 * time.Millisecond):
	}
}
