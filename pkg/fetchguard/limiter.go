package fetchguard

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// hostTTL is how long an idle host keeps its limiter before it is pruned.
const hostTTL = 5 * time.Minute

type hostEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// hostLimiters throttles outbound requests per remote host so one noisy
// origin cannot be hammered by a burst of image fetches.
type hostLimiters struct {
	mu        sync.Mutex
	hosts     map[string]*hostEntry
	limit     rate.Limit
	burst     int
	lastPrune time.Time
}

func newHostLimiters(rps float64, burst int) *hostLimiters {
	if burst < 1 {
		burst = 1
	}
	return &hostLimiters{
		hosts:     make(map[string]*hostEntry),
		limit:     rate.Limit(rps),
		burst:     burst,
		lastPrune: time.Now(),
	}
}

func (h *hostLimiters) get(host string) *rate.Limiter {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := time.Now()
	if now.Sub(h.lastPrune) > hostTTL {
		for k, e := range h.hosts {
			if now.Sub(e.lastSeen) > hostTTL {
				delete(h.hosts, k)
			}
		}
		h.lastPrune = now
	}

	e, ok := h.hosts[host]
	if !ok {
		e = &hostEntry{limiter: rate.NewLimiter(h.limit, h.burst)}
		h.hosts[host] = e
	}
	e.lastSeen = now
	return e.limiter
}

// wait blocks until host may be contacted or ctx is done.
func (h *hostLimiters) wait(ctx context.Context, host string) error {
	return h.get(host).Wait(ctx)
}

func (h *hostLimiters) size() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.hosts)
}
