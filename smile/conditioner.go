package smile

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	// DefaultBeta weights new samples in the EMA. Higher reacts faster,
	// lower smooths harder.
	DefaultBeta = 0.7

	// DefaultFaceTimeout is how long a detection dropout is bridged before
	// the signal degrades to Absent.
	DefaultFaceTimeout = 800 * time.Millisecond
)

// Conditioner smooths raw per-frame scores with an exponential moving
// average. Brief detection dropouts echo the last smoothed value so a few
// missed frames don't force a false OFF transition; past the timeout the
// output is Absent. Observe runs on the poll goroutine while Reset arrives
// from the control path, so the accumulator lives behind a mutex.
type Conditioner struct {
	beta    float64
	timeout time.Duration
	clock   clockwork.Clock

	mu       sync.Mutex
	accum    float64
	lastSeen time.Time
}

func NewConditioner(beta float64, timeout time.Duration, clock clockwork.Clock) *Conditioner {
	if beta <= 0 || beta > 1 {
		beta = DefaultBeta
	}
	if timeout <= 0 {
		timeout = DefaultFaceTimeout
	}
	return &Conditioner{
		beta:     beta,
		timeout:  timeout,
		clock:    clock,
		lastSeen: clock.Now(),
	}
}

// Observe folds one detector frame into the accumulator. ok=false means no
// face was detected this cycle. The accumulator and the dropout timer only
// move on the present branch.
func (c *Conditioner) Observe(raw float64, ok bool) Score {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !ok {
		if c.clock.Since(c.lastSeen) > c.timeout {
			return Absent()
		}
		return ScoreOf(c.accum)
	}

	if raw < 0 {
		raw = 0
	} else if raw > 1 {
		raw = 1
	}
	c.accum = c.beta*raw + (1-c.beta)*c.accum
	c.lastSeen = c.clock.Now()
	return ScoreOf(c.accum)
}

// Reset clears the accumulator and restarts the dropout timer. Re-enable
// and calibration both reset so a stale accumulator cannot leak into the
// next cycle.
func (c *Conditioner) Reset() {
	c.mu.Lock()
	c.accum = 0
	c.lastSeen = c.clock.Now()
	c.mu.Unlock()
}
