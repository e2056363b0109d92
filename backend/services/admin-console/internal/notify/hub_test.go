package notify

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readNotification(t *testing.T, conn *websocket.Conn) Notification {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var n Notification
	if err := json.Unmarshal(data, &n); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return n
}

func TestHubBroadcastsToSubscribers(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(http.HandlerFunc(NewServer(hub, time.Second, time.Second, nil).HandleWS))
	t.Cleanup(srv.Close)

	first := dial(t, srv)
	second := dial(t, srv)
	waitFor(t, func() bool { return hub.Count() == 2 })

	hub.Notify(KindSuccess, "Station created successfully")
	for _, conn := range []*websocket.Conn{first, second} {
		n := readNotification(t, conn)
		if n.Kind != KindSuccess || n.Message != "Station created successfully" {
			t.Fatalf("unexpected notification %+v", n)
		}
		if n.At.IsZero() {
			t.Fatalf("expected timestamp to be set")
		}
	}

	hub.SessionExpired()
	n := readNotification(t, first)
	if n.Kind != KindSessionExpired || n.Redirect != "/login" {
		t.Fatalf("unexpected session notification %+v", n)
	}
}

func TestHubDropsClosedSubscribers(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(http.HandlerFunc(NewServer(hub, time.Second, time.Second, nil).HandleWS))
	t.Cleanup(srv.Close)

	conn := dial(t, srv)
	waitFor(t, func() bool { return hub.Count() == 1 })

	conn.Close()
	waitFor(t, func() bool { return hub.Count() == 0 })

	// Publishing with nobody listening is a no-op.
	hub.Notify(KindInfo, "nobody home")
}

func TestHubCloseDisconnectsSubscribers(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(http.HandlerFunc(NewServer(hub, time.Second, time.Second, nil).HandleWS))
	t.Cleanup(srv.Close)

	conn := dial(t, srv)
	waitFor(t, func() bool { return hub.Count() == 1 })

	hub.Close()
	if hub.Count() != 0 {
		t.Fatalf("expected no subscribers after close")
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatalf("expected connection to be closed")
	}
}
