// Package smile holds the signal-conditioning and debouncing core: EMA
// smoothing with a face-loss timeout, the hysteresis state machine, and the
// two-session threshold calibration.
package smile

// Score is the conditioned output of one polling cycle: either a smoothed
// happiness probability in [0,1] or Absent (no subject seen for longer than
// the face timeout).
type Score struct {
	v       float64
	present bool
}

func ScoreOf(v float64) Score { return Score{v: v, present: true} }

func Absent() Score { return Score{} }

func (s Score) IsAbsent() bool { return !s.present }

// Value returns the numeric score. Absent reads as 0.0: no subject means
// not smiling as far as thresholding is concerned.
func (s Score) Value() float64 {
	if !s.present {
		return 0
	}
	return s.v
}
