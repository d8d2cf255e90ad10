package appinfo

import (
	"errors"
	"sync/atomic"
	"time"

	"imgguard/pkg/remotepattern"
)

var (
	StartTime = time.Now()

	AllowedCount   atomic.Int64
	DeniedCount    atomic.Int64
	MalformedCount atomic.Int64
)

// Snapshot is a point-in-time copy of the decision counters.
type Snapshot struct {
	Allowed   int64  `json:"allowed"`
	Denied    int64  `json:"denied"`
	Malformed int64  `json:"malformed"`
	Total     int64  `json:"total"`
	Uptime    string `json:"uptime"`
}

// RecordDecision counts the outcome of one allowlist check. A malformed URL is
// also a denial, so it bumps both counters.
func RecordDecision(err error) {
	switch {
	case err == nil:
		AllowedCount.Add(1)
	case errors.Is(err, remotepattern.ErrMalformedURL):
		MalformedCount.Add(1)
		DeniedCount.Add(1)
	default:
		DeniedCount.Add(1)
	}
}

func Stats() Snapshot {
	allowed := AllowedCount.Load()
	denied := DeniedCount.Load()
	return Snapshot{
		Allowed:   allowed,
		Denied:    denied,
		Malformed: MalformedCount.Load(),
		Total:     allowed + denied,
		Uptime:    time.Since(StartTime).Round(time.Second).String(),
	}
}

// Reset zeroes the counters and restarts the uptime clock.
func Reset() {
	AllowedCount.Store(0)
	DeniedCount.Store(0)
	MalformedCount.Store(0)
	StartTime = time.Now()
}
