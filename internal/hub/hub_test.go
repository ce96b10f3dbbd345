package hub

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// testHub wires a hub behind an httptest WebSocket endpoint. Server-side
// client handles are delivered on registered as connections arrive.
type testHub struct {
	hub        *Hub
	srv        *httptest.Server
	registered chan *Client
}

func newTestHub(t *testing.T) *testHub {
	t.Helper()

	h := New()
	th := &testHub{hub: h, registered: make(chan *Client, 16)}

	upgrader := websocket.Upgrader{}
	th.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		th.registered <- h.Register(conn)
	}))
	t.Cleanup(th.srv.Close)

	return th
}

// dial connects one subscriber and returns its client-side conn plus the
// server-side handle.
func (th *testHub) dial(t *testing.T) (*websocket.Conn, *Client) {
	t.Helper()

	wsURL := strings.Replace(th.srv.URL, "http", "ws", 1)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	select {
	case c := <-th.registered:
		return conn, c
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for registration")
		return nil, nil
	}
}

func readOne(t *testing.T, conn *websocket.Conn) []byte {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestBroadcast_FanOutIdenticalPayloads(t *testing.T) {
	th := newTestHub(t)

	conns := make([]*websocket.Conn, 3)
	for i := range conns {
		conns[i], _ = th.dial(t)
	}
	if got := th.hub.Count(); got != 3 {
		t.Fatalf("count = %d, want 3", got)
	}

	env := Envelope{Type: TypeState, Data: []map[string]any{{"id": 1, "status": "online"}}}
	th.hub.Broadcast(env)

	want, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for i, conn := range conns {
		got := readOne(t, conn)
		if !bytes.Equal(got, want) {
			t.Errorf("subscriber %d got %s, want %s", i, got, want)
		}
	}
}

func TestBroadcast_RemovedSubscriberDoesNotBlockTheRest(t *testing.T) {
	th := newTestHub(t)

	conn1, _ := th.dial(t)
	_, client2 := th.dial(t)
	conn3, _ := th.dial(t)

	th.hub.Unregister(client2)
	if got := th.hub.Count(); got != 2 {
		t.Fatalf("count after unregister = %d, want 2", got)
	}

	th.hub.Broadcast(Envelope{Type: TypeUpdate, Data: []int{1}})

	for i, conn := range []*websocket.Conn{conn1, conn3} {
		msg := readOne(t, conn)
		if !strings.Contains(string(msg), `"update"`) {
			t.Errorf("remaining subscriber %d got %s", i, msg)
		}
	}
}

func TestBroadcast_WriteFailureRemovesSubscriber(t *testing.T) {
	th := newTestHub(t)

	conn1, _ := th.dial(t)
	conn2, _ := th.dial(t)

	// Kill one subscriber's transport out from under the hub.
	conn2.Close()

	// Writes to the dead connection fail asynchronously in its writer
	// goroutine; keep broadcasting until the hub notices.
	deadline := time.Now().Add(3 * time.Second)
	for th.hub.Count() > 1 {
		if time.Now().After(deadline) {
			t.Fatalf("hub never removed dead subscriber, count = %d", th.hub.Count())
		}
		th.hub.Broadcast(Envelope{Type: TypeState, Data: []int{}})
		time.Sleep(20 * time.Millisecond)
	}

	// The healthy subscriber kept receiving throughout.
	msg := readOne(t, conn1)
	if !strings.Contains(string(msg), TypeState) {
		t.Errorf("healthy subscriber got %s", msg)
	}
}

func TestUnregister_Idempotent(t *testing.T) {
	th := newTestHub(t)

	_, client := th.dial(t)
	th.hub.Unregister(client)
	th.hub.Unregister(client) // must not panic on double close

	if got := th.hub.Count(); got != 0 {
		t.Errorf("count = %d, want 0", got)
	}
}
