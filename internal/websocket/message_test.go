package websocket

import (
	"errors"
	"testing"
	"time"

	"GGPoker/internal/game/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	cases := []struct {
		name      string
		raw       string
		snapshot  bool
		malformed bool
		typ       string
	}{
		{"game state", `{"type":"game_state","data":{"handNumber":3,"players":{}}}`, true, false, "game_state"},
		{"other type", `{"type":"chat","data":"hello"}`, false, false, "chat"},
		{"no type", `{"data":{}}`, false, false, ""},
		{"not json", `Player 0xA joined`, false, true, ""},
		{"json scalar", `42`, false, true, ""},
		{"bad payload", `{"type":"game_state","data":{"handNumber":"three"}}`, false, true, "game_state"},
		{"missing payload", `{"type":"game_state"}`, false, true, "game_state"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			switch m := Decode([]byte(tc.raw)).(type) {
			case GameState:
				assert.True(t, tc.snapshot, "unexpected snapshot")
			case Unrecognized:
				assert.False(t, tc.snapshot, "expected a snapshot")
				assert.Equal(t, tc.raw, m.Raw)
				assert.Equal(t, tc.typ, m.Type)
				assert.Equal(t, tc.malformed, errors.Is(m.Err, ErrMalformedMessage))
			default:
				t.Fatalf("unexpected variant %T", m)
			}
		})
	}
}

func TestDecodeGameStatePayload(t *testing.T) {
	raw := `{"type":"game_state","data":{"handNumber":2,"currentBet":100,"minRaise":200,
		"communityCards":[{"Value":13,"Suit":"HARTS"}],
		"players":{"0xA":{"stack":500,"totalBet":40}}}}`
	m, ok := Decode([]byte(raw)).(GameState)
	require.True(t, ok)
	assert.Equal(t, 100, m.Snapshot.CurrentBet)
	assert.Equal(t, table.Hearts, m.Snapshot.CommunityCards[0].Suit)
	p, ok := m.Snapshot.Player("0xA")
	require.True(t, ok)
	assert.Equal(t, 40, p.TotalBet)
}

func TestRealtimeURL(t *testing.T) {
	cases := []struct {
		base, port, path string
		want             string
	}{
		{"http://localhost:3000", "3001", "/ws", "ws://localhost:3001/ws"},
		{"https://poker.example.com", "3001", "/ws", "wss://poker.example.com:3001/ws"},
		{"https://poker.example.com:8443", "", "/ws", "wss://poker.example.com:8443/ws"},
		{"http://[::1]:3000", "3001", "/realtime", "ws://[::1]:3001/realtime"},
		{"wss://rt.example.com", "", "/ws", "wss://rt.example.com/ws"},
	}
	for _, tc := range cases {
		got, err := RealtimeURL(tc.base, tc.port, tc.path)
		require.NoError(t, err, tc.base)
		assert.Equal(t, tc.want, got)
	}

	_, err := RealtimeURL("ftp://example.com", "", "/ws")
	assert.Error(t, err)
	_, err = RealtimeURL("http://", "3001", "/ws")
	assert.Error(t, err)
}

func TestBackoff(t *testing.T) {
	b := Backoff{Base: 100 * time.Millisecond, Max: time.Second, Retries: 6}

	for n := 1; n <= 6; n++ {
		d, ok := b.Next(n)
		require.True(t, ok, "attempt %d", n)
		ceil := b.Base << (n - 1)
		if ceil > b.Max {
			ceil = b.Max
		}
		assert.GreaterOrEqual(t, d, ceil/2, "attempt %d", n)
		assert.LessOrEqual(t, d, ceil, "attempt %d", n)
	}

	_, ok := b.Next(7)
	assert.False(t, ok)
	_, ok = b.Next(0)
	assert.False(t, ok)

	_, ok = Backoff{}.Next(1)
	assert.False(t, ok, "zero policy never reconnects")
}
