package network

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/gorilla/websocket"

	"github.com/amalg/go-digger/internal/game"
)

// MsgType identifies the type of network message.
type MsgType string

const (
	MsgJoin    MsgType = "join"
	MsgWelcome MsgType = "welcome"
	MsgState   MsgType = "state"
	MsgError   MsgType = "error"
)

// maxMessageSize bounds a single websocket message (1MB).
const maxMessageSize = 1 << 20

// Envelope wraps all messages with a type discriminator for deserialization.
type Envelope struct {
	Type    MsgType         `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// --- Viewer → Host Messages ---

// JoinMsg is sent by a viewer to start watching.
type JoinMsg struct {
	Name string `json:"name"`
}

// --- Host → Viewer Messages ---

// WelcomeMsg is sent to a viewer after joining.
type WelcomeMsg struct {
	ViewerID string          `json:"viewer_id"`
	Config   game.GameConfig `json:"config"`
}

// StateMsg carries one frame of the visible world.
type StateMsg struct {
	Snapshot game.Snapshot `json:"snapshot"`
}

// ErrorMsg notifies a viewer of an error.
type ErrorMsg struct {
	Message string `json:"message"`
}

// Encode serializes a message and writes it to the writer as one JSON
// document. Framing is left to the transport.
func Encode(w io.Writer, msgType MsgType, payload interface{}) error {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	env := Envelope{
		Type:    msgType,
		Payload: json.RawMessage(payloadBytes),
	}

	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	if len(body) > maxMessageSize {
		return fmt.Errorf("message too large: %d bytes", len(body))
	}

	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("write body: %w", err)
	}

	return nil
}

// Decode reads one JSON envelope from the reader.
func Decode(r io.Reader) (*Envelope, error) {
	body, err := io.ReadAll(io.LimitReader(r, maxMessageSize+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxMessageSize {
		return nil, fmt.Errorf("message too large: more than %d bytes", maxMessageSize)
	}

	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}

	return &env, nil
}

// DecodePayload unmarshals the payload from an envelope into the target struct.
func DecodePayload(env *Envelope, target interface{}) error {
	return json.Unmarshal(env.Payload, target)
}

// writeMessage sends one envelope as a websocket text message.
func writeMessage(conn *websocket.Conn, msgType MsgType, payload interface{}) error {
	w, err := conn.NextWriter(websocket.TextMessage)
	if err != nil {
		return fmt.Errorf("next writer: %w", err)
	}
	if err := Encode(w, msgType, payload); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// readMessage reads the next websocket message as an envelope.
func readMessage(conn *websocket.Conn) (*Envelope, error) {
	_, r, err := conn.NextReader()
	if err != nil {
		return nil, fmt.Errorf("next reader: %w", err)
	}
	return Decode(r)
}
