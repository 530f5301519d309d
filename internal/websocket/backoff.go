package websocket

import (
	"math/rand"
	"time"
)

// Backoff is the reconnect policy: exponential delays from Base, capped at
// Max, with the upper half jittered. Retries == 0 disables reconnecting.
type Backoff struct {
	Base    time.Duration
	Max     time.Duration
	Retries int
}

var DefaultBackoff = Backoff{Base: 500 * time.Millisecond, Max: 10 * time.Second, Retries: 5}

// Next returns the delay before reconnect attempt n (1-based), or false once
// the attempts are used up.
func (b Backoff) Next(n int) (time.Duration, bool) {
	if n < 1 || n > b.Retries || b.Base <= 0 {
		return 0, false
	}
	d := b.Base
	for i := 1; i < n && (b.Max <= 0 || d < b.Max); i++ {
		d *= 2
	}
	if b.Max > 0 && d > b.Max {
		d = b.Max
	}
	half := d / 2
	return half + time.Duration(rand.Int63n(int64(d-half+1))), true
}
