package network

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/matryer/way"
	log "github.com/sirupsen/logrus"

	"github.com/amalg/go-digger/internal/game"
)

const (
	// URIWatch upgrades to the spectator websocket.
	URIWatch = "/watch"
	// URISnapshot returns the current frame as JSON.
	URISnapshot = "/snapshot"

	joinTimeout  = 5 * time.Second
	writeTimeout = 2 * time.Second
)

// Server streams read-only frames of a running game to spectators.
type Server struct {
	engine   *game.Engine
	addr     string
	listener net.Listener
	http     *http.Server
	router   *way.Router
	upgrader websocket.Upgrader
	clients  map[string]*clientConn
	nextID   uint64
	mu       sync.RWMutex
	done     chan struct{}
	log      log.FieldLogger
}

// clientConn represents a connected spectator.
type clientConn struct {
	conn     *websocket.Conn
	viewerID string
	name     string
	send     chan game.Snapshot // Holds at most the latest frame
}

// NewServer creates a spectator server for engine. Frames are pushed from the
// engine's frame callback.
func NewServer(addr string, engine *game.Engine, logger log.FieldLogger) *Server {
	if logger == nil {
		logger = log.StandardLogger()
	}

	s := &Server{
		engine:  engine,
		addr:    addr,
		clients: make(map[string]*clientConn),
		done:    make(chan struct{}),
		log:     logger.WithField("component", "server"),
	}
	s.routes()

	// The engine hands the callback its own copy of the frame.
	engine.OnFrame(s.broadcastState)

	return s
}

func (s *Server) routes() {
	s.router = way.NewRouter()
	s.router.HandleFunc("GET", URIWatch, s.handleWatch)
	s.router.HandleFunc("GET", URISnapshot, s.handleSnapshot)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins accepting connections.
func (s *Server) Start() error {
	var err error
	s.listener, err = net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	s.http = &http.Server{Handler: s.router}
	s.log.Infof("Listening on %s", s.listener.Addr())

	go func() {
		if err := s.http.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.WithError(err).Error("HTTP server stopped")
		}
	}()

	return nil
}

// Addr returns the bound listen address, or the configured one before Start.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Stop shuts down the server and disconnects every spectator.
func (s *Server) Stop() {
	select {
	case <-s.done:
		return
	default:
		close(s.done)
	}

	s.engine.OnFrame(nil)
	if s.http != nil {
		s.http.Close()
	}

	s.mu.Lock()
	for id, cc := range s.clients {
		cc.conn.Close()
		delete(s.clients, id)
	}
	s.mu.Unlock()
}

// ViewerCount returns the number of connected spectators.
func (s *Server) ViewerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap := s.engine.Snapshot(0)
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		s.log.WithError(err).Warn("Failed to write snapshot")
	}
}

func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		s.log.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)

	// Read join message
	conn.SetReadDeadline(time.Now().Add(joinTimeout))
	env, err := readMessage(conn)
	if err != nil {
		s.log.WithError(err).Warn("Failed to read join message")
		return
	}
	conn.SetReadDeadline(time.Time{})

	if env.Type != MsgJoin {
		s.log.Warnf("Expected join message, got %s", env.Type)
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := writeMessage(conn, MsgError, ErrorMsg{Message: "expected join message"}); err != nil {
			s.log.WithError(err).Warn("Failed to send join error")
		}
		return
	}

	var joinMsg JoinMsg
	if err := DecodePayload(env, &joinMsg); err != nil {
		s.log.WithError(err).Warn("Failed to decode join message")
		return
	}

	s.mu.Lock()
	s.nextID++
	cc := &clientConn{
		conn:     conn,
		viewerID: fmt.Sprintf("v%d", s.nextID),
		name:     joinMsg.Name,
		send:     make(chan game.Snapshot, 1),
	}
	s.mu.Unlock()

	// Send welcome message and the current frame
	welcome := WelcomeMsg{
		ViewerID: cc.viewerID,
		Config:   s.engine.Config,
	}
	if err := writeMessage(conn, MsgWelcome, welcome); err != nil {
		s.log.WithError(err).Warn("Failed to send welcome")
		return
	}
	if err := writeMessage(conn, MsgState, StateMsg{Snapshot: s.engine.Snapshot(0)}); err != nil {
		s.log.WithError(err).Warn("Failed to send initial state")
		return
	}

	// Register client
	s.mu.Lock()
	s.clients[cc.viewerID] = cc
	s.mu.Unlock()
	s.log.WithFields(log.Fields{"viewer": cc.viewerID, "name": cc.name}).Info("Spectator joined")

	go s.writeLoop(cc)

	// Spectators never send anything after joining; reading keeps control
	// frames flowing and notices the disconnect.
	for {
		if _, _, err := conn.NextReader(); err != nil {
			s.removeClient(cc.viewerID)
			return
		}
	}
}

// writeLoop forwards queued frames to one spectator.
// It only consumes, so a slow socket never blocks the game loop.
func (s *Server) writeLoop(cc *clientConn) {
	for {
		select {
		case <-s.done:
			return
		case snap, ok := <-cc.send:
			if !ok {
				return
			}
			cc.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := writeMessage(cc.conn, MsgState, StateMsg{Snapshot: snap}); err != nil {
				s.log.WithError(err).Warnf("Failed to send state to %s", cc.viewerID)
				s.removeClient(cc.viewerID)
				return
			}
		}
	}
}

func (s *Server) removeClient(viewerID string) {
	s.mu.Lock()
	cc, ok := s.clients[viewerID]
	if ok {
		delete(s.clients, viewerID)
		close(cc.send)
		cc.conn.Close()
	}
	s.mu.Unlock()

	if ok {
		s.log.WithField("viewer", viewerID).Info("Spectator removed")
	}
}

// broadcastState queues a frame for every spectator, replacing any frame a
// slow spectator has not picked up yet.
func (s *Server) broadcastState(snap game.Snapshot) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, cc := range s.clients {
		select {
		case cc.send <- snap:
		default:
			// Slow consumer: drop the stale frame
			select {
			case <-cc.send:
			default:
			}
			select {
			case cc.send <- snap:
			default:
			}
		}
	}
}
