package http

import "time"

// rateLimiter caps how many inbound frames a single connection may submit per
// minute. Frames over the cap are dropped silently, consistent with the
// relay's handling of other bad input. A zero limit disables the cap.
type rateLimiter struct {
	limit   int
	counter int
	reset   *time.Ticker
}

func newRateLimiter(limit int) *rateLimiter {
	if limit <= 0 {
		return &rateLimiter{limit: 0}
	}
	return &rateLimiter{
		limit: limit,
		reset: time.NewTicker(time.Minute),
	}
}

// allow is only called from the connection's read loop; the counter needs no
// synchronization with startReset because resets go through the same ticker
// channel select.
func (r *rateLimiter) allow() bool {
	if r == nil || r.limit <= 0 {
		return true
	}
	select {
	case <-r.reset.C:
		r.counter = 0
	default:
	}
	r.counter++
	return r.counter <= r.limit
}

// startReset stops the ticker once the connection is gone.
func (r *rateLimiter) startReset(stop <-chan struct{}) {
	if r == nil || r.reset == nil {
		return
	}
	go func() {
		<-stop
		r.reset.Stop()
	}()
}
