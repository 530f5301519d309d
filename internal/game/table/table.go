package table

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

type Round string

const (
	RoundPreflop  Round = "PREFLOP"
	RoundFlop     Round = "FLOP"
	RoundTurn     Round = "TURN"
	RoundRiver    Round = "RIVER"
	RoundShowdown Round = "SHOWDOWN"
)

// Action is the last move a player made, as reported by the server.
type Action string

const (
	ActionNone  Action = "NONE"
	ActionFold  Action = "FOLD"
	ActionCheck Action = "CHECK"
	ActionCall  Action = "CALL"
	ActionBet   Action = "BET"
	ActionRaise Action = "RAISE"
)

type Pot struct {
	Amount int `json:"amount"`
}

// PlayerState is one seat as seen by the local client. HoleCards is empty
// for everyone but the local player.
type PlayerState struct {
	Stack        int    `json:"stack"`
	Bet          int    `json:"bet"`
	TotalBet     int    `json:"totalBet"`
	Folded       bool   `json:"folded"`
	AllIn        bool   `json:"allIn"`
	IsDealer     bool   `json:"isDealer"`
	IsSmallBlind bool   `json:"isSmallBlind"`
	IsBigBlind   bool   `json:"isBigBlind"`
	HoleCards    []Card `json:"holeCards,omitempty"`
	LastAction   Action `json:"lastAction"`
}

// Active reports whether the player can still act this hand.
func (p PlayerState) Active() bool {
	return !p.Folded && !p.AllIn
}

// Snapshot is the full table state pushed by the server. A newer snapshot
// replaces the previous one wholesale; nothing in this package mutates one.
type Snapshot struct {
	HandNumber     int     `json:"handNumber"`
	CurrentRound   Round   `json:"currentRound"`
	CommunityCards []Card  `json:"communityCards"`
	Pot            []Pot   `json:"pot"`
	CurrentBet     int     `json:"currentBet"`
	MinRaise       int     `json:"minRaise"`
	Players        Players `json:"players"`
}

func (s Snapshot) TotalPot() int {
	total := 0
	for _, p := range s.Pot {
		total += p.Amount
	}
	return total
}

func (s Snapshot) Player(id string) (PlayerState, bool) {
	return s.Players.Get(id)
}

// GameLog lists the last action of every player who has acted, in seat order.
func (s Snapshot) GameLog() []string {
	var lines []string
	for _, seat := range s.Players.Seats() {
		act := Action(strings.ToUpper(string(seat.State.LastAction)))
		if act == "" || act == ActionNone {
			continue
		}
		line := fmt.Sprintf("%s: %s", seat.ID, act)
		if seat.State.Bet > 0 {
			line += fmt.Sprintf(" $%d", seat.State.Bet)
		}
		lines = append(lines, line)
	}
	return lines
}

type Seat struct {
	ID    string
	State PlayerState
}

// Players is a player-id keyed map that remembers the order the server sent
// the keys in, which is the seating order.
type Players struct {
	order []string
	byID  map[string]PlayerState
}

func NewPlayers(seats ...Seat) Players {
	p := Players{byID: make(map[string]PlayerState, len(seats))}
	for _, s := range seats {
		p.set(s.ID, s.State)
	}
	return p
}

func (p *Players) set(id string, st PlayerState) {
	if _, ok := p.byID[id]; !ok {
		p.order = append(p.order, id)
	}
	p.byID[id] = st
}

func (p Players) Get(id string) (PlayerState, bool) {
	st, ok := p.byID[id]
	return st, ok
}

func (p Players) Len() int {
	return len(p.order)
}

func (p Players) IDs() []string {
	return append([]string(nil), p.order...)
}

func (p Players) Seats() []Seat {
	seats := make([]Seat, 0, len(p.order))
	for _, id := range p.order {
		seats = append(seats, Seat{ID: id, State: p.byID[id]})
	}
	return seats
}

func (p *Players) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*p = Players{}
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("players: expected object, got %v", tok)
	}

	out := Players{byID: make(map[string]PlayerState)}
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return err
		}
		id, ok := kt.(string)
		if !ok {
			return fmt.Errorf("players: unexpected key %v", kt)
		}
		var st PlayerState
		if err := dec.Decode(&st); err != nil {
			return fmt.Errorf("players[%s]: %w", id, err)
		}
		out.set(id, st)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*p = out
	return nil
}

func (p Players) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range p.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(p.byID[id])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
