package table

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// payload as sent by the game server: capitalized card/pot fields and the
// misspelled hearts suit.
const serverSnapshot = `{
  "handNumber": 7,
  "currentRound": "FLOP",
  "communityCards": [{"Value":1,"Suit":"HARTS"},{"Value":11,"Suit":"SPADES"},{"Value":7,"Suit":"CLUBS"}],
  "pot": [{"Amount":120},{"Amount":80}],
  "currentBet": 100,
  "minRaise": 200,
  "players": {
    "0xCCC": {"stack":900,"bet":100,"totalBet":100,"lastAction":"RAISE","isDealer":true},
    "0xAAA": {"stack":500,"bet":40,"totalBet":40,"holeCards":[{"Value":13,"Suit":"DIAMONDS"},{"Value":12,"Suit":"HEARTS"}],"lastAction":"CALL","isBigBlind":true},
    "0xBBB": {"stack":0,"folded":true,"lastAction":"FOLD"}
  }
}`

func TestSnapshotDecodeServerPayload(t *testing.T) {
	var s Snapshot
	require.NoError(t, json.Unmarshal([]byte(serverSnapshot), &s))

	assert.Equal(t, 7, s.HandNumber)
	assert.Equal(t, RoundFlop, s.CurrentRound)
	assert.Equal(t, 200, s.TotalPot())
	assert.Equal(t, 100, s.CurrentBet)
	assert.Equal(t, 200, s.MinRaise)

	require.Len(t, s.CommunityCards, 3)
	assert.Equal(t, Card{Value: 1, Suit: Hearts}, s.CommunityCards[0])

	// seat order follows key order, not sort order
	assert.Equal(t, []string{"0xCCC", "0xAAA", "0xBBB"}, s.Players.IDs())

	me, ok := s.Player("0xAAA")
	require.True(t, ok)
	assert.Equal(t, 40, me.TotalBet)
	assert.True(t, me.IsBigBlind)
	assert.Equal(t, "K♦", me.HoleCards[0].Label())

	_, ok = s.Player("0xZZZ")
	assert.False(t, ok)
}

func TestTotalPot(t *testing.T) {
	cases := []struct {
		name string
		pot  []Pot
		want int
	}{
		{"nil", nil, 0},
		{"empty", []Pot{}, 0},
		{"single", []Pot{{Amount: 50}}, 50},
		{"side pots", []Pot{{Amount: 300}, {Amount: 120}, {Amount: 5}}, 425},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Snapshot{Pot: tc.pot}.TotalPot())
		})
	}
}

func TestCardLabels(t *testing.T) {
	assert.Equal(t, "A", ValueLabel(1))
	assert.Equal(t, "J", ValueLabel(11))
	assert.Equal(t, "Q", ValueLabel(12))
	assert.Equal(t, "K", ValueLabel(13))
	assert.Equal(t, "7", ValueLabel(7))
	assert.Equal(t, "10", ValueLabel(10))

	assert.Equal(t, "A♠", Card{Value: 1, Suit: Spades}.Label())
	assert.Equal(t, "7♣", Card{Value: 7, Suit: Clubs}.String())
}

func TestHeartsSpellingsShareSymbol(t *testing.T) {
	for _, spelling := range []string{"HEARTS", "HARTS", "hearts", "Harts", " HEART ", "H", "♥"} {
		assert.Equal(t, Hearts, NormalizeSuit(spelling), spelling)
		assert.Equal(t, "♥", Suit(spelling).Symbol(), spelling)
		assert.True(t, Suit(spelling).Red(), spelling)
	}

	var c Card
	require.NoError(t, json.Unmarshal([]byte(`{"value":12,"suit":"HARTS"}`), &c))
	assert.Equal(t, Hearts, c.Suit)
	assert.Equal(t, "Q♥", c.Label())
}

func TestUnknownSuitRendersVerbatim(t *testing.T) {
	s := NormalizeSuit("STARS")
	assert.Equal(t, Suit("STARS"), s)
	assert.Equal(t, "STARS", s.Symbol())
	assert.False(t, s.Red())
}

func TestPlayersRoundTripKeepsOrder(t *testing.T) {
	p := NewPlayers(
		Seat{ID: "z", State: PlayerState{Stack: 1}},
		Seat{ID: "a", State: PlayerState{Stack: 2}},
	)
	b, err := json.Marshal(p)
	require.NoError(t, err)
	assert.True(t, strings.Index(string(b), `"z"`) < strings.Index(string(b), `"a"`))

	var back Players
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, []string{"z", "a"}, back.IDs())
	st, _ := back.Get("a")
	assert.Equal(t, 2, st.Stack)
}

func TestPlayersNullAndBadInput(t *testing.T) {
	var s Snapshot
	require.NoError(t, json.Unmarshal([]byte(`{"players":null}`), &s))
	assert.Equal(t, 0, s.Players.Len())

	assert.Error(t, json.Unmarshal([]byte(`{"players":[1,2]}`), &s))
}

func TestGameLog(t *testing.T) {
	var s Snapshot
	require.NoError(t, json.Unmarshal([]byte(serverSnapshot), &s))
	assert.Equal(t, []string{
		"0xCCC: RAISE $100",
		"0xAAA: CALL $40",
		"0xBBB: FOLD",
	}, s.GameLog())
}

func TestRenderMentionsSeats(t *testing.T) {
	var s Snapshot
	require.NoError(t, json.Unmarshal([]byte(serverSnapshot), &s))
	out := Render(s, "0xAAA")
	assert.Contains(t, out, "Hand #7")
	assert.Contains(t, out, "Pot: $200")
	assert.Contains(t, out, "0xBBB")
	assert.Contains(t, out, "FOLDED")
}
