// Package volume gates system-volume commands behind a value-aware rate
// limiter. The OS primitive is a subprocess call and therefore slow;
// repeated identical commands waste cycles and can glitch audibly, so only
// changed values pass through immediately.
package volume

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultMinInterval throttles repeated identical commands.
const DefaultMinInterval = 250 * time.Millisecond

// ErrUnsupported means no volume backend exists for this platform.
var ErrUnsupported = errors.New("volume control not supported on this platform")

// Actuator is the OS volume primitive. The control loop never calls it
// directly; everything goes through Limiter.Set.
type Actuator interface {
	Current() (int, error)
	Command(pct int) error
}

// SetResult reports what Limiter.Set did with a command.
type SetResult int

const (
	Suppressed SetResult = iota
	Applied
)

func (r SetResult) String() string {
	if r == Applied {
		return "applied"
	}
	return "suppressed"
}

// Limiter remembers the last committed value and its timestamp. Suppression
// applies only to a repeat of that exact value inside minInterval; a changed
// value is never delayed.
type Limiter struct {
	actuator    Actuator
	minInterval time.Duration
	clock       clockwork.Clock

	mu        sync.Mutex
	lastValue int
	lastAt    time.Time
	committed bool
}

func NewLimiter(a Actuator, minInterval time.Duration, clock clockwork.Clock) *Limiter {
	if minInterval <= 0 {
		minInterval = DefaultMinInterval
	}
	return &Limiter{actuator: a, minInterval: minInterval, clock: clock}
}

// Set clamps pct into [0,100] and forwards it to the actuator unless the
// same value was committed within minInterval. force bypasses suppression
// and is meant for deliberate resets (disable toggle, shutdown restore).
// On actuator error nothing is recorded, so the next attempt is not
// suppressed.
func (l *Limiter) Set(pct int, force bool) (SetResult, error) {
	if pct < 0 {
		pct = 0
	} else if pct > 100 {
		pct = 100
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if !force && l.committed && l.lastValue == pct && l.clock.Since(l.lastAt) < l.minInterval {
		return Suppressed, nil
	}

	if err := l.actuator.Command(pct); err != nil {
		return Suppressed, fmt.Errorf("volume command %d: %w", pct, err)
	}

	l.lastValue = pct
	l.lastAt = l.clock.Now()
	l.committed = true
	return Applied, nil
}

// Current reads the live volume from the actuator.
func (l *Limiter) Current() (int, error) {
	return l.actuator.Current()
}
