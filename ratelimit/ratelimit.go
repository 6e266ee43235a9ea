// Package ratelimit enforces the two independent per-sender bounds: a
// per-minute hit ceiling and a 24-hour cumulative value cap, each with
// lazy window resets. The two rules are evaluated independently and are
// not atomic with each other; see Limiter.Enforce for the exact commit
// ordering.
package ratelimit

import (
	"math/big"
	"sync"

	"github.com/ethdenver2026/relayer/relayerr"
)

const (
	minuteWindowSeconds = 60
	dayWindowSeconds    = 86400
)

// tokenBaseUnitMultiplier converts whole tokens to base units for an
// 18-decimal token (1 token = 10^18 base units).
var tokenBaseUnitMultiplier = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

type windowCounter struct {
	windowStartSec int64
	amount         *big.Int
	hits           uint32
}

// Config is the static rate-limit configuration. A zero value for
// either field disables that bound.
type Config struct {
	PerAddrPerMin uint32
	DailyCapToken uint64
}

func (c Config) dailyCapBaseUnits() *big.Int {
	if c.DailyCapToken == 0 {
		return nil
	}
	return new(big.Int).Mul(new(big.Int).SetUint64(c.DailyCapToken), tokenBaseUnitMultiplier)
}

// Limiter holds the mutable per-sender window state, keyed by lowercase
// hex sender address.
type Limiter struct {
	mu        sync.Mutex
	perMinute map[string]*windowCounter
	daily     map[string]*windowCounter
}

func New() *Limiter {
	return &Limiter{
		perMinute: make(map[string]*windowCounter),
		daily:     make(map[string]*windowCounter),
	}
}

// Enforce applies both rules for sender at nowSec against amount. The
// per-minute rule checks the hit ceiling before incrementing (so a
// rejected per-minute hit is never counted); the daily rule always
// increments first and then compares the post-increment cumulative
// amount against the cap. A request that trips only the daily cap
// therefore still leaves its per-minute hit counted: the two rules are
// evaluated independently and neither commit is rolled back if the
// other rule later rejects.
func (l *Limiter) Enforce(cfg Config, sender string, amount *big.Int, nowSec int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if cfg.PerAddrPerMin > 0 {
		window := nowSec / minuteWindowSeconds
		counter, ok := l.perMinute[sender]
		if !ok {
			counter = &windowCounter{amount: new(big.Int)}
			l.perMinute[sender] = counter
		}
		if counter.windowStartSec != window {
			counter.windowStartSec = window
			counter.amount = new(big.Int)
			counter.hits = 0
		}
		if counter.hits >= cfg.PerAddrPerMin {
			return relayerr.RateLimited()
		}
		counter.hits++
		counter.amount.Add(counter.amount, amount)
	}

	if cap := cfg.dailyCapBaseUnits(); cap != nil {
		window := nowSec / dayWindowSeconds
		counter, ok := l.daily[sender]
		if !ok {
			counter = &windowCounter{amount: new(big.Int)}
			l.daily[sender] = counter
		}
		if counter.windowStartSec != window {
			counter.windowStartSec = window
			counter.amount = new(big.Int)
			counter.hits = 0
		}
		counter.hits++
		counter.amount.Add(counter.amount, amount)
		if counter.amount.Cmp(cap) > 0 {
			return relayerr.RateLimited()
		}
	}

	return nil
}
