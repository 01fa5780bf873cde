package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	ws "github.com/coder/websocket"

	"github.com/dukerupert/homestead/internal/auth"
	"github.com/dukerupert/homestead/internal/invitation"
)

// mockClient creates a Client with a send channel but no real connection.
func mockClient(hub *Hub, personID int64) *Client {
	return &Client{
		hub:      hub,
		personID: personID,
		send:     make(chan []byte, sendBufferSize),
	}
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case data := <-c.send:
		var got Message
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		return got
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for message")
		return Message{}
	}
}

func assertEmpty(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data := <-c.send:
		t.Errorf("unexpected message for person %d: %s", c.personID, data)
	default:
	}
}

func TestRegisterUnregister(t *testing.T) {
	hub := NewHub(slog.Default())

	c1 := mockClient(hub, 1)
	c2 := mockClient(hub, 1)
	c3 := mockClient(hub, 2)

	hub.Register(c1)
	hub.Register(c2)
	hub.Register(c3)

	if got := hub.ClientCount(); got != 3 {
		t.Fatalf("expected 3 clients, got %d", got)
	}

	hub.Unregister(c1)
	if got := hub.ClientCount(); got != 2 {
		t.Fatalf("expected 2 clients after unregister, got %d", got)
	}

	hub.Unregister(c2)
	hub.Unregister(c3)
	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestDoubleUnregister(t *testing.T) {
	hub := NewHub(slog.Default())
	c := mockClient(hub, 1)
	hub.Register(c)
	hub.Unregister(c)
	// Should not panic
	hub.Unregister(c)

	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestNotifyRoutesToSenderAndRecipient(t *testing.T) {
	hub := NewHub(slog.Default())

	sender := mockClient(hub, 1)
	recipient := mockClient(hub, 2)
	recipientPhone := mockClient(hub, 2)
	bystander := mockClient(hub, 3)
	for _, c := range []*Client{sender, recipient, recipientPhone, bystander} {
		hub.Register(c)
	}

	at := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	hub.Notify(context.Background(), invitation.Event{
		Type:         invitation.EventCreated,
		HouseholdID:  5,
		FromPersonID: 1,
		ToPersonID:   2,
		ActorID:      1,
		InviteeEmail: "bob@x.com",
		At:           at,
	})

	for _, c := range []*Client{sender, recipient, recipientPhone} {
		got := receive(t, c)
		if got.Type != "invitation_created" {
			t.Errorf("type = %s, want invitation_created", got.Type)
		}
		if got.HouseholdID != 5 || got.FromPersonID != 1 || got.ToPersonID != 2 {
			t.Errorf("message = %+v", got)
		}
		if !got.At.Equal(at) {
			t.Errorf("at = %v, want %v", got.At, at)
		}
	}
	assertEmpty(t, bystander)
}

func TestNotifyOmitsEmail(t *testing.T) {
	hub := NewHub(slog.Default())
	c := mockClient(hub, 2)
	hub.Register(c)

	hub.Notify(context.Background(), invitation.Event{
		Type: invitation.EventCreated, FromPersonID: 1, ToPersonID: 2, InviteeEmail: "bob@x.com",
	})

	data := <-c.send
	if strings.Contains(string(data), "bob@x.com") {
		t.Errorf("email leaked into frame: %s", data)
	}
}

func TestSendToDeduplicatesPeople(t *testing.T) {
	hub := NewHub(slog.Default())
	c := mockClient(hub, 1)
	hub.Register(c)

	hub.SendTo([]byte(`{}`), 1, 1)

	<-c.send
	assertEmpty(t, c)
}

func TestNotifyEmptyHub(t *testing.T) {
	hub := NewHub(slog.Default())
	// Should not panic
	hub.Notify(context.Background(), invitation.Event{Type: invitation.EventDeclined, FromPersonID: 1, ToPersonID: 2})
}

func TestSendToFullBuffer(t *testing.T) {
	hub := NewHub(slog.Default())

	c := mockClient(hub, 1)
	hub.Register(c)

	for i := 0; i < sendBufferSize; i++ {
		hub.SendTo([]byte(`{}`), 1)
	}

	// This should drop the message, not panic or block
	hub.SendTo([]byte(`{"dropped":true}`), 1)

	count := 0
	for {
		select {
		case <-c.send:
			count++
		default:
			goto done
		}
	}
done:
	if count != sendBufferSize {
		t.Errorf("expected %d messages, got %d", sendBufferSize, count)
	}

	hub.Unregister(c)
}

func TestConcurrentAccess(t *testing.T) {
	hub := NewHub(slog.Default())
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := mockClient(hub, int64(i%3))
			hub.Register(c)
			hub.Notify(context.Background(), invitation.Event{Type: invitation.EventAccepted, FromPersonID: 0, ToPersonID: 1})
			for {
				select {
				case <-c.send:
				default:
					hub.Unregister(c)
					return
				}
			}
		}()
	}

	wg.Wait()

	if got := hub.ClientCount(); got != 0 {
		t.Errorf("expected 0 clients after concurrent test, got %d", got)
	}
}

func TestHandleWebSocketStreamsEvents(t *testing.T) {
	hub := NewHub(slog.Default())
	handler := HandleWebSocket(hub, nil, slog.Default())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := auth.WithAuth(r.Context(), auth.AuthContext{PersonID: 2, SessionID: 1})
		handler(w, r.WithContext(ctx))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := ws.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.Notify(ctx, invitation.Event{Type: invitation.EventCancelled, HouseholdID: 9, FromPersonID: 1, ToPersonID: 2, ActorID: 1})

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got Message
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Type != "invitation_cancelled" || got.HouseholdID != 9 {
		t.Errorf("message = %+v", got)
	}

	conn.Close(ws.StatusNormalClosure, "")
}

func TestHandleWebSocketRequiresPerson(t *testing.T) {
	hub := NewHub(slog.Default())
	rec := httptest.NewRecorder()
	HandleWebSocket(hub, nil, slog.Default())(rec, httptest.NewRequest("GET", "/ws", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
