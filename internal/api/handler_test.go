package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"GGPoker/internal/game/dispatcher"
	"GGPoker/internal/game/manager"
	"GGPoker/internal/game/table"
	"GGPoker/internal/session"
	"GGPoker/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gameServer answers token validation and records action paths.
type gameServer struct {
	mu    sync.Mutex
	paths []string
}

func (g *gameServer) seen() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.paths...)
}

func setup(t *testing.T) (*gameServer, *manager.Manager, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	g := &gameServer{}
	r := gin.New()
	r.POST("/api/whop/validate", func(c *gin.Context) {
		var req AuthRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Token != "tok" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": "0xME"})
	})
	record := func(c *gin.Context) {
		g.mu.Lock()
		g.paths = append(g.paths, c.Request.URL.Path)
		g.mu.Unlock()
		c.JSON(http.StatusOK, "OK")
	}
	for _, p := range []string{"/fold", "/check", "/call", "/ready", "/bet/:value"} {
		r.GET(p, record)
	}
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	m := manager.New(session.NewMemoryStore(), manager.Config{
		BaseURL:     srv.URL,
		AuthPath:    "/api/whop/validate",
		RealtimeURL: "ws://127.0.0.1:1/ws",
		PingPeriod:  -1,
		Logger:      utils.Discard(),
	})
	t.Cleanup(func() { _ = m.Close() })

	m.Store.Replace(table.Snapshot{
		HandNumber: 1,
		CurrentBet: 100,
		MinRaise:   200,
		Pot:        []table.Pot{{Amount: 140}},
		Players: table.NewPlayers(
			table.Seat{ID: "0xOPP", State: table.PlayerState{Stack: 800, TotalBet: 100}},
			table.Seat{ID: "0xME", State: table.PlayerState{Stack: 500, TotalBet: 40}},
		),
	})
	return g, m, NewRouter(m)
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	_, _, r := setup(t)
	w := do(r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestActionRequiresAuth(t *testing.T) {
	g, _, r := setup(t)

	w := do(r, http.MethodPost, "/action/fold", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = do(r, http.MethodPost, "/ready", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, g.seen())
}

func TestAuthAndState(t *testing.T) {
	_, _, r := setup(t)

	w := do(r, http.MethodPost, "/auth", `{"token":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodPost, "/auth", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/auth", `{"token":"tok"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"playerId":"0xME"`)

	w = do(r, http.MethodGet, "/state", "")
	require.Equal(t, http.StatusOK, w.Code)
	var v manager.View
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	assert.True(t, v.Authenticated)
	require.NotNil(t, v.Facts)
	assert.Equal(t, 60, v.Facts.CallAmount)
	assert.Equal(t, 140, v.Facts.TotalPot)
	require.NotNil(t, v.Snapshot)
	assert.Equal(t, []string{"0xOPP", "0xME"}, v.Snapshot.Players.IDs())
}

func TestActionStatuses(t *testing.T) {
	g, _, r := setup(t)
	require.Equal(t, http.StatusOK, do(r, http.MethodPost, "/auth", `{"token":"tok"}`).Code)

	cases := []struct {
		path, body string
		code       int
	}{
		{"/action/raise?amount=150", "", http.StatusUnprocessableEntity},
		{"/action/raise?amount=abc", "", http.StatusBadRequest},
		{"/action/check", "", http.StatusConflict},
		{"/action/shove", "", http.StatusBadRequest},
		{"/action/raise", `{"amount":200}`, http.StatusOK},
		{"/action/CALL", "", http.StatusOK},
		{"/ready", "", http.StatusOK},
	}
	for _, tc := range cases {
		w := do(r, http.MethodPost, tc.path, tc.body)
		assert.Equal(t, tc.code, w.Code, "%s %s", tc.path, w.Body.String())
	}
	assert.Equal(t, []string{"/bet/200", "/call", "/ready"}, g.seen())
}

func TestLogoutThenAct(t *testing.T) {
	g, _, r := setup(t)
	require.Equal(t, http.StatusOK, do(r, http.MethodPost, "/auth", `{"token":"tok"}`).Code)
	require.Equal(t, http.StatusOK, do(r, http.MethodPost, "/logout", "").Code)

	w := do(r, http.MethodPost, "/action/call", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, g.seen())
}

func TestLogAndNotices(t *testing.T) {
	_, m, r := setup(t)
	m.Store.Append("hello")
	_, _ = m.Act(context.Background(), dispatcher.Request{Action: dispatcher.Ready})

	w := do(r, http.MethodGet, "/log", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"messages":["hello"]}`, w.Body.String())

	w = do(r, http.MethodGet, "/notices", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Please authenticate first")
}
