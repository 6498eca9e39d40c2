package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"
)

// mockClient creates a Client with a send channel but no real connection.
func mockClient(hub *Hub, familyID int64) *Client {
	return &Client{
		hub:      hub,
		conn:     nil,
		familyID: familyID,
		send:     make(chan []byte, sendBufferSize),
	}
}

func TestRegisterUnregister(t *testing.T) {
	hub := NewHub(slog.Default())

	c1 := mockClient(hub, 1)
	c2 := mockClient(hub, 1)

	hub.Register(c1)
	hub.Register(c2)

	if got := hub.ClientCount(1); got != 2 {
		t.Fatalf("expected 2 clients, got %d", got)
	}

	hub.Unregister(c1)

	if got := hub.ClientCount(1); got != 1 {
		t.Fatalf("expected 1 client after unregister, got %d", got)
	}

	hub.Unregister(c2)

	if got := hub.ClientCount(1); got != 0 {
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

	if got := hub.ClientCount(1); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestBroadcastReachesOwnFamilyOnly(t *testing.T) {
	hub := NewHub(slog.Default())

	smith1 := mockClient(hub, 1)
	smith2 := mockClient(hub, 1)
	jones := mockClient(hub, 2)
	hub.Register(smith1)
	hub.Register(smith2)
	hub.Register(jones)

	hub.Broadcast(1, "message", map[string]any{"content": "hello"})

	for _, c := range []*Client{smith1, smith2} {
		select {
		case data := <-c.send:
			var got Message
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got.Event != "message" {
				t.Errorf("event = %q, want message", got.Event)
			}
			var payload map[string]any
			if err := json.Unmarshal(got.Data, &payload); err != nil {
				t.Fatalf("unmarshal payload: %v", err)
			}
			if payload["content"] != "hello" {
				t.Errorf("payload = %v", payload)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatal("timeout waiting for message")
		}
	}

	select {
	case data := <-jones.send:
		t.Fatalf("other family received message: %s", data)
	default:
	}
}

func TestBroadcastEmptyRoom(t *testing.T) {
	hub := NewHub(slog.Default())
	// Should not panic
	hub.Broadcast(42, "message", nil)
}

func TestBroadcastFullBuffer(t *testing.T) {
	hub := NewHub(slog.Default())

	c := mockClient(hub, 1)
	hub.Register(c)

	// Fill the send buffer
	for i := 0; i < sendBufferSize; i++ {
		hub.Broadcast(1, "fill", i)
	}

	// This should drop the message, not panic or block
	hub.Broadcast(1, "dropped", nil)

	// Drain to verify buffer was full
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

func TestEmptyRoomDropped(t *testing.T) {
	hub := NewHub(slog.Default())
	c := mockClient(hub, 1)
	hub.Register(c)
	hub.Unregister(c)

	hub.mu.RLock()
	defer hub.mu.RUnlock()
	if _, ok := hub.rooms[1]; ok {
		t.Error("empty room should have been removed")
	}
}

func TestConcurrentAccess(t *testing.T) {
	hub := NewHub(slog.Default())
	var wg sync.WaitGroup

	// Goroutines register, broadcast, and unregister across two rooms
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			familyID := int64(i%2 + 1)
			c := mockClient(hub, familyID)
			hub.Register(c)
			hub.Broadcast(familyID, "concurrent", i)
			for {
				select {
				case <-c.send:
				default:
					hub.Unregister(c)
					return
				}
			}
		}(i)
	}

	wg.Wait()

	if got := hub.ClientCount(1) + hub.ClientCount(2); got != 0 {
		t.Errorf("expected 0 clients after concurrent test, got %d", got)
	}
}
