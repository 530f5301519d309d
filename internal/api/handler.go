package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"GGPoker/internal/game/dispatcher"
	"GGPoker/internal/game/manager"
	"GGPoker/internal/session"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handler exposes one client context over local HTTP so a separate view
// (browser, script) can drive the table.
type Handler struct {
	m *manager.Manager
}

func NewHandler(m *manager.Manager) *Handler {
	return &Handler{m: m}
}

type AuthRequest struct {
	Token string `json:"token" binding:"required"`
}

type ActionBody struct {
	Amount int `json:"amount"`
}

func NewRouter(m *manager.Manager) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type"},
	}))

	h := NewHandler(m)
	r.GET("/health", h.Health)
	r.GET("/state", h.State)
	r.GET("/log", h.Log)
	r.GET("/notices", h.Notices)
	r.POST("/auth", h.Auth)
	r.POST("/logout", h.Logout)
	r.POST("/ready", h.Ready)
	r.POST("/action/:name", h.Action)
	return r
}

// GET /health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "channel": h.m.Channel.Status().String()})
}

// GET /state
func (h *Handler) State(c *gin.Context) {
	c.JSON(http.StatusOK, h.m.View())
}

// GET /log
func (h *Handler) Log(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"messages": h.m.Store.Messages()})
}

// GET /notices
func (h *Handler) Notices(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"notices": h.m.Notices()})
}

// POST /auth  body: {token}
func (h *Handler) Auth(c *gin.Context) {
	var req AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s, err := h.m.Authenticate(c.Request.Context(), req.Token)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": true, "playerId": s.PlayerID})
}

// POST /logout
func (h *Handler) Logout(c *gin.Context) {
	if err := h.m.Logout(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// POST /ready
func (h *Handler) Ready(c *gin.Context) {
	h.act(c, dispatcher.Request{Action: dispatcher.Ready})
}

// POST /action/:name?amount=N  or body: {amount}
func (h *Handler) Action(c *gin.Context) {
	a, err := dispatcher.ParseAction(c.Param("name"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req := dispatcher.Request{Action: a}

	if q := c.Query("amount"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be an integer"})
			return
		}
		req.Amount = n
	} else {
		var body ActionBody
		if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		req.Amount = body.Amount
	}
	h.act(c, req)
}

func (h *Handler) act(c *gin.Context, req dispatcher.Request) {
	sent, err := h.m.Act(c.Request.Context(), req)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sent": sent})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrNotAuthenticated), errors.Is(err, session.ErrAuthenticationFailed):
		return http.StatusUnauthorized
	case errors.Is(err, dispatcher.ErrInvalidAmount):
		return http.StatusUnprocessableEntity
	case errors.Is(err, dispatcher.ErrIllegalState):
		return http.StatusConflict
	case errors.Is(err, dispatcher.ErrUnknownAction):
		return http.StatusBadRequest
	case errors.Is(err, manager.ErrClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}
