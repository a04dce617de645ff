package smile

import (
	"errors"
	"fmt"
	"sync"
)

// State is the debounced binary smile state.
type State int

const (
	NotSmiling State = iota
	Smiling
)

func (s State) String() string {
	if s == Smiling {
		return "smiling"
	}
	return "not_smiling"
}

// ErrThresholdOrder rejects threshold pairs without a hysteresis gap.
var ErrThresholdOrder = errors.New("off threshold must be below on threshold")

// Thresholds are the hysteresis parameters: asymmetric on/off score
// thresholds plus consecutive-cycle confirmation counts.
type Thresholds struct {
	On        float64
	Off       float64
	OnFrames  int
	OffFrames int
}

func (t Thresholds) Validate() error {
	if t.Off >= t.On {
		return fmt.Errorf("%w (on=%.3f off=%.3f)", ErrThresholdOrder, t.On, t.Off)
	}
	if t.OnFrames < 1 || t.OffFrames < 1 {
		return fmt.Errorf("confirmation frames must be positive (on=%d off=%d)", t.OnFrames, t.OffFrames)
	}
	return nil
}

// Machine debounces the conditioned score into a binary state. Thresholds
// reject noise amplitude; the consecutive-frame counters reject noise
// duration. Without the gap between Off and On the machine would flicker at
// a single boundary, so invalid pairs are refused outright.
type Machine struct {
	mu         sync.Mutex
	th         Thresholds
	state      State
	onCounter  int
	offCounter int
}

func NewMachine(th Thresholds) (*Machine, error) {
	if err := th.Validate(); err != nil {
		return nil, err
	}
	return &Machine{th: th}, nil
}

// Update folds one conditioned score into the machine and reports the
// current state plus whether this cycle crossed a transition edge. Edge
// reporting lets the control loop command the actuator once per transition
// instead of every cycle.
func (m *Machine) Update(s Score) (State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	score := s.Value()
	prev := m.state

	switch m.state {
	case NotSmiling:
		if score >= m.th.On {
			m.onCounter++
			m.offCounter = 0
			if m.onCounter >= m.th.OnFrames {
				m.state = Smiling
				m.onCounter = 0
			}
		} else {
			m.onCounter = 0
		}
	case Smiling:
		if score <= m.th.Off {
			m.offCounter++
			m.onCounter = 0
			if m.offCounter >= m.th.OffFrames {
				m.state = NotSmiling
				m.offCounter = 0
			}
		} else {
			m.offCounter = 0
		}
	}

	return m.state, m.state != prev
}

// State reads the current state without advancing the counters.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// SetThresholds swaps in a new parameter set atomically with respect to
// Update. Invalid pairs are rejected and the live thresholds stay in effect.
func (m *Machine) SetThresholds(th Thresholds) error {
	if err := th.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	m.th = th
	m.mu.Unlock()
	return nil
}

func (m *Machine) Thresholds() Thresholds {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.th
}
