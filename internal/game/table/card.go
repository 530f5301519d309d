package table

import (
	"encoding/json"
	"strconv"
	"strings"
)

type Suit string

const (
	Spades   Suit = "SPADES"
	Hearts   Suit = "HEARTS"
	Diamonds Suit = "DIAMONDS"
	Clubs    Suit = "CLUBS"
)

// suitAliases maps every spelling the server is known to send (upper-cased)
// onto the canonical suit. The game server historically spelled hearts "HARTS".
var suitAliases = map[string]Suit{
	"SPADES": Spades, "SPADE": Spades, "S": Spades, "♠": Spades,
	"HEARTS": Hearts, "HEART": Hearts, "HARTS": Hearts, "HART": Hearts, "H": Hearts, "♥": Hearts,
	"DIAMONDS": Diamonds, "DIAMOND": Diamonds, "D": Diamonds, "♦": Diamonds,
	"CLUBS": Clubs, "CLUB": Clubs, "C": Clubs, "♣": Clubs,
}

var suitSymbols = map[Suit]string{
	Spades:   "♠",
	Hearts:   "♥",
	Diamonds: "♦",
	Clubs:    "♣",
}

var valueLabels = map[int]string{
	1:  "A",
	11: "J",
	12: "Q",
	13: "K",
}

// NormalizeSuit resolves a server spelling to a canonical suit. Unknown
// spellings are returned unchanged.
func NormalizeSuit(s string) Suit {
	if suit, ok := suitAliases[strings.ToUpper(strings.TrimSpace(s))]; ok {
		return suit
	}
	return Suit(s)
}

func (s *Suit) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*s = NormalizeSuit(raw)
	return nil
}

// Symbol returns the glyph for s, or s itself when it is not a known suit.
func (s Suit) Symbol() string {
	if sym, ok := suitSymbols[NormalizeSuit(string(s))]; ok {
		return sym
	}
	return string(s)
}

func (s Suit) Red() bool {
	n := NormalizeSuit(string(s))
	return n == Hearts || n == Diamonds
}

// Card value runs 1..13 with 1 as the ace.
type Card struct {
	Value int  `json:"value"`
	Suit  Suit `json:"suit"`
}

func ValueLabel(v int) string {
	if l, ok := valueLabels[v]; ok {
		return l
	}
	return strconv.Itoa(v)
}

// Label renders the card as value + suit symbol, e.g. "A♥" or "10♣".
func (c Card) Label() string {
	return ValueLabel(c.Value) + c.Suit.Symbol()
}

func (c Card) String() string {
	return c.Label()
}
