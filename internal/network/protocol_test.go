package network

import (
	"bytes"
	"strings"
	"testing"

	"github.com/amalg/go-digger/internal/game"
)

func TestEncodeDecode(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, MsgJoin, JoinMsg{Name: "alice"}); err != nil {
		t.Fatalf("encode: %v", err)
	}

	env, err := Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Type != MsgJoin {
		t.Errorf("expected type %s, got %s", MsgJoin, env.Type)
	}

	var join JoinMsg
	if err := DecodePayload(env, &join); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if join.Name != "alice" {
		t.Errorf("expected name alice, got %q", join.Name)
	}
}

func TestEncodeStateCarriesTiles(t *testing.T) {
	snap := game.Snapshot{
		Width:    2,
		Height:   10,
		TileSize: 40,
		FirstRow: 3,
		Tiles: []game.Tile{
			{Cell: 6, Type: game.Ground, HP: 10, MaxHP: 10},
			{Cell: 7, Type: game.Gold, HP: 4, MaxHP: 10},
		},
	}

	var buf bytes.Buffer
	if err := Encode(&buf, MsgState, StateMsg{Snapshot: snap}); err != nil {
		t.Fatalf("encode: %v", err)
	}
	env, err := Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	var got StateMsg
	if err := DecodePayload(env, &got); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	tile, ok := got.Snapshot.TileAt(3, 1)
	if !ok || tile.Type != game.Gold || tile.HP != 4 {
		t.Errorf("expected damaged gold at row 3 col 1, got %+v ok=%v", tile, ok)
	}
}

func TestEncodeTooLarge(t *testing.T) {
	var buf bytes.Buffer
	err := Encode(&buf, MsgError, ErrorMsg{Message: strings.Repeat("x", maxMessageSize)})
	if err == nil {
		t.Fatal("expected oversized message to be rejected")
	}
	if buf.Len() != 0 {
		t.Errorf("expected nothing written, got %d bytes", buf.Len())
	}
}

func TestDecodeTooLarge(t *testing.T) {
	body := strings.Repeat(" ", maxMessageSize+1)
	if _, err := Decode(strings.NewReader(body)); err == nil {
		t.Fatal("expected oversized message to be rejected")
	}
}

func TestDecodeGarbage(t *testing.T) {
	if _, err := Decode(strings.NewReader("not json")); err == nil {
		t.Fatal("expected error for invalid envelope")
	}
}
