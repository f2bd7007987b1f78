package timesync

import (
	"sync"
	"time"
)

// Cooldown is the window following a failed synchronization attempt during
// which further attempts are suppressed.
const Cooldown = 5 * time.Minute

// Gate tracks the cooldown state shared between synchronizers. The original
// authenticator kept this in a process-wide static, so a failed sync on one
// account suppresses attempts for every account hitting the same service;
// the package-level shared gate preserves that, while hosts that want
// per-region or per-instance scope can construct their own.
type Gate struct {
	mu       sync.Mutex
	armed    bool
	failedAt time.Time
}

var sharedGate = NewGate()

// NewGate returns a gate with no active cooldown.
func NewGate() *Gate {
	return &Gate{}
}

// SharedGate returns the process-wide gate used when a Synchronizer is
// constructed without an explicit one.
func SharedGate() *Gate {
	return sharedGate
}

// Allow reports whether a synchronization attempt may proceed at now.
// The gate stays armed after the window elapses; a subsequent success
// clears it, a subsequent failure re-arms it with a fresh timestamp.
func (g *Gate) Allow(now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.armed {
		return true
	}
	return now.Sub(g.failedAt) >= Cooldown
}

// Arm records a failed attempt at now, starting a new cooldown window.
func (g *Gate) Arm(now time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.armed = true
	g.failedAt = now
}

// Clear resets the gate after a successful synchronization.
func (g *Gate) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.armed = false
	g.failedAt = time.Time{}
}
