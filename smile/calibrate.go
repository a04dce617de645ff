package smile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	DefaultSessionDur = 5 * time.Second
	DefaultCadence    = 50 * time.Millisecond // ~20 Hz sampling
	DefaultLeadIn     = 3 * time.Second

	// marginFraction carves the hysteresis gap out of the observed
	// neutral-to-smiling range so the live thresholds sit strictly inside
	// the calibrated extremes.
	marginFraction = 0.15
)

// ErrNoFace means a sampling session finished without a single present
// sample; nothing can be derived from it.
var ErrNoFace = errors.New("no face detected during calibration")

// SampleFunc yields one conditioned sample. ok=false means no subject this
// poll.
type SampleFunc func() (raw float64, ok bool)

// Phase identifies which expression a calibration session captures.
type Phase int

const (
	PhaseNeutral Phase = iota
	PhaseSmiling
)

func (p Phase) String() string {
	if p == PhaseSmiling {
		return "smiling"
	}
	return "neutral"
}

// Progress reports calibration advancement to the presentation layer.
// During the lead-in countdown Remaining counts down to the sampling start;
// afterwards it counts down the session itself.
type Progress struct {
	Phase     Phase
	LeadIn    bool
	Remaining time.Duration
	Samples   int
}

// Calibration is a successful two-session result.
type Calibration struct {
	Neutral float64
	Smiling float64
	On      float64
	Off     float64
}

// Calibrator drives two timed sampling sessions (neutral expression, then
// smiling) and derives hysteresis thresholds with a safety margin. Each
// session starts with a lead-in countdown so the user can put on the
// expression; there is no stdin to block on in menu-bar mode.
type Calibrator struct {
	Clock   clockwork.Clock
	Cadence time.Duration
	LeadIn  time.Duration
	Notify  func(Progress)
}

func NewCalibrator(clock clockwork.Clock) *Calibrator {
	return &Calibrator{
		Clock:   clock,
		Cadence: DefaultCadence,
		LeadIn:  DefaultLeadIn,
	}
}

// Run captures both sessions and derives thresholds. A session with zero
// present samples or a degenerate spread aborts the whole run; no partial
// result is ever returned.
func (c *Calibrator) Run(ctx context.Context, sample SampleFunc, sessionDur time.Duration) (Calibration, error) {
	if sessionDur <= 0 {
		sessionDur = DefaultSessionDur
	}

	neutral, err := c.captureSession(ctx, PhaseNeutral, sample, sessionDur)
	if err != nil {
		return Calibration{}, err
	}
	smiling, err := c.captureSession(ctx, PhaseSmiling, sample, sessionDur)
	if err != nil {
		return Calibration{}, err
	}

	on, off, err := DeriveThresholds(neutral, smiling)
	if err != nil {
		return Calibration{}, err
	}
	return Calibration{Neutral: neutral, Smiling: smiling, On: on, Off: off}, nil
}

// captureSession polls sample at the configured cadence for dur and returns
// the arithmetic mean of the present samples.
func (c *Calibrator) captureSession(ctx context.Context, phase Phase, sample SampleFunc, dur time.Duration) (float64, error) {
	for left := c.LeadIn; left > 0; left -= time.Second {
		c.notify(Progress{Phase: phase, LeadIn: true, Remaining: left})
		step := time.Second
		if left < step {
			step = left
		}
		if err := c.sleep(ctx, step); err != nil {
			return 0, err
		}
	}

	var sum float64
	var n int
	start := c.Clock.Now()
	for {
		elapsed := c.Clock.Since(start)
		if elapsed >= dur {
			break
		}
		if raw, ok := sample(); ok {
			sum += raw
			n++
		}
		c.notify(Progress{Phase: phase, Remaining: dur - elapsed, Samples: n})
		if err := c.sleep(ctx, c.Cadence); err != nil {
			return 0, err
		}
	}

	if n == 0 {
		return 0, fmt.Errorf("%w (%s session)", ErrNoFace, phase)
	}
	return sum / float64(n), nil
}

func (c *Calibrator) notify(p Progress) {
	if c.Notify != nil {
		c.Notify(p)
	}
}

func (c *Calibrator) sleep(ctx context.Context, d time.Duration) error {
	timer := c.Clock.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.Chan():
		return nil
	}
}

// DeriveThresholds places the off threshold 15% of the spread above the
// neutral mean and the on threshold 15% below the smiling mean. A run where
// smiling does not clear neutral cannot produce a valid hysteresis pair and
// fails instead of guessing.
func DeriveThresholds(neutral, smiling float64) (on, off float64, err error) {
	margin := (smiling - neutral) * marginFraction
	off = neutral + margin
	on = smiling - margin
	if off >= on {
		return 0, 0, fmt.Errorf("degenerate calibration (neutral=%.3f smiling=%.3f): %w", neutral, smiling, ErrThresholdOrder)
	}
	return on, off, nil
}
