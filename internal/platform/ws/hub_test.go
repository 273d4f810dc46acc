package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vovakirdan/logic-reflect/internal/puzzle"
	"github.com/vovakirdan/logic-reflect/internal/run"
)

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	server := httptest.NewServer(hub)
	t.Cleanup(func() {
		cancel()
		server.Close()
	})
	return hub, "ws" + strings.TrimPrefix(server.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return msg
}

func testLevel(t *testing.T) *puzzle.Level {
	t.Helper()
	lvl, err := puzzle.LevelFromLayout("01", "S.cE")
	if err != nil {
		t.Fatal(err)
	}
	lvl.Name = "First Steps"
	return lvl
}

func TestHubStreamsRun(t *testing.T) {
	hub, url := startHub(t)
	lvl := testLevel(t)

	// Announced before anyone connects, replayed on registration
	hub.SetLevel(lvl, []puzzle.PlacedTool{{At: puzzle.C(1, 0), Kind: puzzle.ToolMirror}})
	// Let the hub loop record it
	time.Sleep(20 * time.Millisecond)

	conn := dial(t, url)
	msg := readMessage(t, conn)
	if msg.Type != TypeLevel || msg.Level == nil {
		t.Fatalf("first message = %+v, expected the level", msg)
	}
	if msg.Level.Name != "First Steps" || len(msg.Level.Layout) != 1 || msg.Level.Layout[0] != "S.cE" {
		t.Errorf("level = %+v", msg.Level)
	}
	if len(msg.Level.Tools) != 1 {
		t.Errorf("tools = %+v", msg.Level.Tools)
	}

	sched := run.NewManualScheduler()
	ctl := run.New(lvl, run.Options{Scheduler: sched, Sink: hub})
	ctl.Play()
	sched.Advance(3 * run.DefaultTickInterval)

	var frames int
	var result *run.Result
	for result == nil {
		msg := readMessage(t, conn)
		switch msg.Type {
		case TypeFrame:
			frames++
		case TypeResult:
			result = msg.Result
		}
	}
	if frames == 0 {
		t.Error("no frames streamed")
	}
	if result.Level != "01" || result.Coins != 1 {
		t.Errorf("result = %+v", result)
	}
}

func TestHubRawJSON(t *testing.T) {
	hub, url := startHub(t)
	hub.SetLevel(testLevel(t), nil)
	time.Sleep(20 * time.Millisecond)

	conn := dial(t, url)
	readMessage(t, conn)

	hub.Outcome(run.Result{Status: run.Fail, Reason: "obstacle", Level: "01"})
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"type":"result"`, `"status":"FAIL"`, `"reason":"obstacle"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("%s missing from %s", want, data)
		}
	}
}

func TestHubLateClientGetsLastFrame(t *testing.T) {
	hub, url := startHub(t)
	hub.SetLevel(testLevel(t), nil)
	hub.Snapshot(run.Frame{Collector: puzzle.Collector{X: 2, Visible: true}, Status: run.Running})
	time.Sleep(20 * time.Millisecond)

	conn := dial(t, url)
	if msg := readMessage(t, conn); msg.Type != TypeLevel {
		t.Fatalf("first message type = %s", msg.Type)
	}
	msg := readMessage(t, conn)
	if msg.Type != TypeFrame || msg.Frame == nil || msg.Frame.Collector.X != 2 {
		t.Errorf("second message = %+v", msg)
	}
}

func TestHubDropsFullQueue(t *testing.T) {
	hub := NewHub(nil)
	// No Run loop: the queue fills and publishing must not block
	done := make(chan struct{})
	go func() {
		for i := 0; i < broadcastBuffer+10; i++ {
			hub.Snapshot(run.Frame{})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Snapshot blocked on a full queue")
	}
}

func TestHubWaitForClient(t *testing.T) {
	hub, url := startHub(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := hub.WaitForClient(ctx); err == nil {
		t.Fatal("WaitForClient returned before anyone connected")
	}

	dial(t, url)
	ctx2, cancel2 := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel2()
	if err := hub.WaitForClient(ctx2); err != nil {
		t.Errorf("WaitForClient: %v", err)
	}
}

func TestHubShutdownReleasesClients(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	server := httptest.NewServer(hub)
	defer server.Close()
	url := "ws" + strings.TrimPrefix(server.URL, "http")

	hub.SetLevel(testLevel(t), nil)
	time.Sleep(20 * time.Millisecond)
	conn := dial(t, url)
	readMessage(t, conn)

	cancel()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("client still open after shutdown")
	}

	released := make(chan struct{})
	go func() {
		hub.pumps.Wait()
		close(released)
	}()
	select {
	case <-released:
	case <-time.After(2 * time.Second):
		t.Fatal("client goroutines still blocked after shutdown")
	}

	// Late peers are turned away instead of waiting on a stopped hub
	late, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial after shutdown: %v", err)
	}
	defer late.Close()
	late.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := late.ReadMessage(); err == nil {
		t.Error("late client was served by a stopped hub")
	}
}
