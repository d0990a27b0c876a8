package network

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/amalg/go-digger/internal/game"
)

func newTestServer(t *testing.T) (*Server, *game.Engine, string) {
	t.Helper()

	config := game.DefaultConfig()
	config.WorldHeight = 40
	config.Seed = 7

	logger := log.New()
	logger.SetOutput(io.Discard)

	engine := game.NewEngine(config, game.NewManualClock(0), logger)
	s := NewServer("127.0.0.1:0", engine, logger)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		s.Stop()
		ts.Close()
	})

	return s, engine, strings.TrimPrefix(ts.URL, "http://")
}

func waitForViewers(t *testing.T, s *Server, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for s.ViewerCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d viewers, have %d", want, s.ViewerCount())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestWatchWelcome(t *testing.T) {
	_, engine, addr := newTestServer(t)

	c, err := NewClient(addr, "viewer")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer c.Close()

	if c.ViewerID() != "v1" {
		t.Errorf("expected viewer id v1, got %q", c.ViewerID())
	}
	if c.Config().WorldHeight != engine.Config.WorldHeight {
		t.Errorf("expected host config, got world height %d", c.Config().WorldHeight)
	}

	// The current frame follows the welcome.
	select {
	case snap := <-c.StateChan():
		if snap.Width != engine.Config.WorldWidth || snap.Rows() == 0 {
			t.Errorf("unexpected initial frame %dx%d", snap.Width, snap.Rows())
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for initial frame")
	}
}

func TestWatchReceivesSteps(t *testing.T) {
	s, engine, addr := newTestServer(t)

	c, err := NewClient(addr, "viewer")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer c.Close()
	<-c.StateChan()
	waitForViewers(t, s, 1)

	for i := 0; i < 5; i++ {
		engine.Step(game.PlayerInput{})
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case snap, ok := <-c.StateChan():
			if !ok {
				t.Fatalf("feed closed: %v", c.Err())
			}
			if snap.Ticks == 5 {
				if snap.Player.Position.Y != engine.State().Position.Y {
					t.Errorf("expected y=%g, got %g", engine.State().Position.Y, snap.Player.Position.Y)
				}
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for tick 5")
		}
	}
}

func TestViewerCountDropsOnClose(t *testing.T) {
	s, _, addr := newTestServer(t)

	c, err := NewClient(addr, "viewer")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	waitForViewers(t, s, 1)

	c.Close()
	waitForViewers(t, s, 0)
}

func TestSnapshotEndpoint(t *testing.T) {
	_, engine, addr := newTestServer(t)
	engine.Step(game.PlayerInput{})

	resp, err := http.Get("http://" + addr + URISnapshot)
	if err != nil {
		t.Fatalf("get snapshot: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var snap game.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.Ticks != 1 {
		t.Errorf("expected tick 1, got %d", snap.Ticks)
	}
}

func TestSnapshotRejectsPost(t *testing.T) {
	_, _, addr := newTestServer(t)

	resp, err := http.Post("http://"+addr+URISnapshot, "application/json", nil)
	if err != nil {
		t.Fatalf("post snapshot: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for POST, got %d", resp.StatusCode)
	}
}

func TestWatchRejectsMissingJoin(t *testing.T) {
	s, _, addr := newTestServer(t)

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+addr+URIWatch, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := writeMessage(conn, MsgState, StateMsg{}); err != nil {
		t.Fatalf("write: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	env, err := readMessage(conn)
	if err != nil {
		t.Fatalf("expected an error reply, got %v", err)
	}
	if env.Type != MsgError {
		t.Fatalf("expected %s, got %s", MsgError, env.Type)
	}
	var msg ErrorMsg
	if err := DecodePayload(env, &msg); err != nil || msg.Message != "expected join message" {
		t.Errorf("unexpected error payload %+v (%v)", msg, err)
	}

	// The host hangs up after the error.
	if _, err := readMessage(conn); err == nil {
		t.Error("expected the connection to be closed")
	}
	if s.ViewerCount() != 0 {
		t.Errorf("rejected viewer must not be registered, have %d", s.ViewerCount())
	}
}
