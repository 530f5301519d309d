package dispatcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"GGPoker/internal/game/table"
	"GGPoker/internal/session"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

type Action string

const (
	Fold  Action = "fold"
	Check Action = "check"
	Call  Action = "call"
	Bet   Action = "bet"
	Raise Action = "raise"
	Ready Action = "ready"
)

var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrIllegalState   = errors.New("action not available")
	ErrUnknownAction  = errors.New("unknown action")
	ErrActionRejected = errors.New("action rejected")
)

func ParseAction(s string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	switch a {
	case Fold, Check, Call, Bet, Raise, Ready:
		return a, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

// Request is one user intent. Amount is only read for bet and raise.
type Request struct {
	Action Action `json:"action"`
	Amount int    `json:"amount,omitempty"`
}

// Path is the server endpoint for a validated request.
func (r Request) Path() string {
	switch r.Action {
	case Bet, Raise:
		return "/bet/" + strconv.Itoa(r.Amount)
	default:
		return "/" + string(r.Action)
	}
}

// RejectedError is a non-success answer from the game server.
type RejectedError struct {
	Action     Action
	StatusCode int
	Status     string
	Message    string
}

func (e *RejectedError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s rejected: %s: %s", e.Action, e.Status, e.Message)
	}
	return fmt.Sprintf("%s rejected: %s", e.Action, e.Status)
}

func (e *RejectedError) Is(target error) bool {
	return target == ErrActionRejected
}

// Validate checks req against the snapshot for playerID and resolves it to
// what will actually be sent: call gets its implicit amount, bet and raise
// are renamed after the current bet. snap is nil when no game state has
// arrived yet.
func Validate(req Request, snap *table.Snapshot, playerID string) (Request, error) {
	switch req.Action {
	case Ready:
		return Request{Action: Ready}, nil
	case Fold, Check, Call, Bet, Raise:
	default:
		return Request{}, fmt.Errorf("%w: %q", ErrUnknownAction, req.Action)
	}

	if snap == nil {
		return Request{}, fmt.Errorf("%w: no game in progress", ErrIllegalState)
	}
	p, ok := snap.Player(playerID)
	switch {
	case !ok:
		return Request{}, fmt.Errorf("%w: not seated", ErrIllegalState)
	case p.Folded:
		return Request{}, fmt.Errorf("%w: already folded", ErrIllegalState)
	case p.AllIn:
		return Request{}, fmt.Errorf("%w: already all in", ErrIllegalState)
	}

	switch req.Action {
	case Check:
		if !CanCheck(*snap, p) {
			return Request{}, fmt.Errorf("%w: cannot check, %d to call", ErrIllegalState, CallAmount(*snap, p))
		}
		return Request{Action: Check}, nil
	case Call:
		owe := CallAmount(*snap, p)
		if owe <= 0 {
			return Request{}, fmt.Errorf("%w: nothing to call", ErrIllegalState)
		}
		return Request{Action: Call, Amount: owe}, nil
	case Bet, Raise:
		if req.Amount < snap.MinRaise {
			return Request{}, fmt.Errorf("%w: %d is below the minimum of %d", ErrInvalidAmount, req.Amount, snap.MinRaise)
		}
		if req.Amount > p.Stack {
			return Request{}, fmt.Errorf("%w: %d exceeds stack of %d", ErrInvalidAmount, req.Amount, p.Stack)
		}
		return Request{Action: BetAction(*snap), Amount: req.Amount}, nil
	}
	return Request{Action: Fold}, nil
}

// Authorizer hands out the bearer credential for outbound requests.
type Authorizer interface {
	AuthorizationHeaderValue() (string, error)
}

type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *log.Logger
}

// Dispatcher turns validated intents into requests against the game server.
// It never touches local state; the next snapshot is the only feedback.
type Dispatcher struct {
	auth    Authorizer
	baseURL string
	client  *http.Client
	log     *log.Logger
}

func New(auth Authorizer, opts Options) *Dispatcher {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Dispatcher{
		auth:    auth,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		client:  opts.HTTPClient,
		log:     opts.Logger.With("component", "dispatcher"),
	}
}

// Dispatch validates req and sends it. Nothing goes on the wire unless the
// session is authenticated and the request passes Validate.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request, snap *table.Snapshot, playerID string) (Request, error) {
	header, err := d.auth.AuthorizationHeaderValue()
	if err != nil {
		if !errors.Is(err, session.ErrNotAuthenticated) {
			err = fmt.Errorf("%w: %v", session.ErrNotAuthenticated, err)
		}
		return Request{}, err
	}

	resolved, err := Validate(req, snap, playerID)
	if err != nil {
		d.log.Debug("rejected locally", "action", req.Action, "amount", req.Amount, "err", err)
		return Request{}, err
	}
	return resolved, d.send(ctx, resolved, header)
}

func (d *Dispatcher) send(ctx context.Context, req Request, header string) error {
	id := uuid.NewString()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+req.Path(), nil)
	if err != nil {
		return err
	}
	httpReq.Header.Set("Authorization", header)
	httpReq.Header.Set("X-Request-ID", id)

	resp, err := d.client.Do(httpReq)
	if err != nil {
		d.log.Error("action request failed", "action", req.Action, "request", id, "err", err)
		return fmt.Errorf("%s: %w", req.Action, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rej := &RejectedError{
			Action:     req.Action,
			StatusCode: resp.StatusCode,
			Status:     http.StatusText(resp.StatusCode),
			Message:    serverMessage(resp.Body),
		}
		if rej.Status == "" {
			rej.Status = resp.Status
		}
		d.log.Warn("action rejected", "action", req.Action, "request", id, "status", resp.StatusCode, "msg", rej.Message)
		return rej
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	d.log.Info("action sent", "action", req.Action, "amount", req.Amount, "request", id)
	return nil
}

// serverMessage pulls the "error" field out of a JSON error body, if any.
func serverMessage(body io.Reader) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(body, 64<<10)).Decode(&payload); err != nil {
		return ""
	}
	return payload.Error
}
