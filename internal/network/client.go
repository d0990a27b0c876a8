package network

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/amalg/go-digger/internal/game"
)

// Client connects to a spectator feed and yields frames as they arrive.
type Client struct {
	conn     *websocket.Conn
	viewerID string
	config   game.GameConfig
	stateCh  chan game.Snapshot
	done     chan struct{}
	mu       sync.Mutex
	err      error
}

// NewClient dials a host and joins its feed. addr is either host:port or a
// full ws:// URL.
func NewClient(addr, name string) (*Client, error) {
	url := addr
	if !strings.HasPrefix(url, "ws://") && !strings.HasPrefix(url, "wss://") {
		url = "ws://" + addr + URIWatch
	}

	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", addr, err)
	}
	conn.SetReadLimit(maxMessageSize)

	c := &Client{
		conn:    conn,
		stateCh: make(chan game.Snapshot, 1),
		done:    make(chan struct{}),
	}

	// Send join message
	if err := writeMessage(conn, MsgJoin, JoinMsg{Name: name}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("send join: %w", err)
	}

	// Read welcome message
	env, err := readMessage(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("read welcome: %w", err)
	}

	if env.Type == MsgError {
		var errMsg ErrorMsg
		DecodePayload(env, &errMsg)
		conn.Close()
		return nil, fmt.Errorf("server error: %s", errMsg.Message)
	}

	if env.Type != MsgWelcome {
		conn.Close()
		return nil, fmt.Errorf("expected welcome, got %s", env.Type)
	}

	var welcome WelcomeMsg
	if err := DecodePayload(env, &welcome); err != nil {
		conn.Close()
		return nil, fmt.Errorf("decode welcome: %w", err)
	}

	c.viewerID = welcome.ViewerID
	c.config = welcome.Config

	go c.receiveLoop()

	return c, nil
}

// ViewerID returns the ID the host assigned to this viewer.
func (c *Client) ViewerID() string {
	return c.viewerID
}

// Config returns the host's game configuration.
func (c *Client) Config() game.GameConfig {
	return c.config
}

// StateChan yields frames. Only the newest unread frame is kept. The channel
// is closed when the connection ends.
func (c *Client) StateChan() <-chan game.Snapshot {
	return c.stateCh
}

// Err reports why the feed ended, once StateChan is closed.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Close disconnects from the host.
func (c *Client) Close() {
	select {
	case <-c.done:
	default:
		close(c.done)
	}
	c.conn.Close()
}

func (c *Client) receiveLoop() {
	defer close(c.stateCh)

	for {
		env, err := readMessage(c.conn)
		if err != nil {
			select {
			case <-c.done:
			default:
				c.setErr(err)
			}
			return
		}

		switch env.Type {
		case MsgState:
			var stateMsg StateMsg
			if err := DecodePayload(env, &stateMsg); err != nil {
				continue
			}
			c.push(stateMsg.Snapshot)
		case MsgError:
			var errMsg ErrorMsg
			DecodePayload(env, &errMsg)
			c.setErr(fmt.Errorf("server error: %s", errMsg.Message))
			return
		}
	}
}

// push hands a frame to the consumer, replacing any frame it has not read.
func (c *Client) push(snap game.Snapshot) {
	select {
	case c.stateCh <- snap:
	default:
		select {
		case <-c.stateCh:
		default:
		}
		select {
		case c.stateCh <- snap:
		default:
		}
	}
}

func (c *Client) setErr(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err == nil {
		c.err = err
	}
}
