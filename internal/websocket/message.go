package websocket

import (
	"encoding/json"
	"errors"
	"fmt"

	"GGPoker/internal/game/table"
)

// TypeGameState is the discriminator of a full table snapshot push.
const TypeGameState = "game_state"

var ErrMalformedMessage = errors.New("malformed message")

// Envelope is the wire shape of every inbound frame.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Inbound is one decoded frame: either GameState or Unrecognized.
type Inbound interface {
	inbound()
}

type GameState struct {
	Snapshot table.Snapshot
}

// Unrecognized carries any frame that is not a usable snapshot. Err is set
// (wrapping ErrMalformedMessage) when the frame could not be parsed at all.
type Unrecognized struct {
	Type string
	Raw  string
	Err  error
}

func (GameState) inbound()    {}
func (Unrecognized) inbound() {}

func Decode(raw []byte) Inbound {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Unrecognized{Raw: string(raw), Err: fmt.Errorf("%w: %v", ErrMalformedMessage, err)}
	}
	if env.Type != TypeGameState {
		return Unrecognized{Type: env.Type, Raw: string(raw)}
	}

	var snap table.Snapshot
	if err := json.Unmarshal(env.Data, &snap); err != nil {
		return Unrecognized{Type: env.Type, Raw: string(raw), Err: fmt.Errorf("%w: game_state payload: %v", ErrMalformedMessage, err)}
	}
	return GameState{Snapshot: snap}
}
