package smile

import (
	"errors"
	"testing"
)

func testThresholds() Thresholds {
	return Thresholds{On: 0.5, Off: 0.15, OnFrames: 3, OffFrames: 5}
}

func feedScores(t *testing.T, m *Machine, scores []float64) (State, int) {
	t.Helper()
	state := m.State()
	changes := 0
	for _, v := range scores {
		var changed bool
		state, changed = m.Update(ScoreOf(v))
		if changed {
			changes++
		}
	}
	return state, changes
}

func TestNewMachineRejectsInvertedThresholds(t *testing.T) {
	_, err := NewMachine(Thresholds{On: 0.3, Off: 0.5, OnFrames: 1, OffFrames: 1})
	if !errors.Is(err, ErrThresholdOrder) {
		t.Fatalf("expected ErrThresholdOrder, got %v", err)
	}
	_, err = NewMachine(Thresholds{On: 0.5, Off: 0.5, OnFrames: 1, OffFrames: 1})
	if !errors.Is(err, ErrThresholdOrder) {
		t.Fatalf("equal thresholds must be rejected, got %v", err)
	}
}

func TestNewMachineRejectsZeroFrames(t *testing.T) {
	_, err := NewMachine(Thresholds{On: 0.5, Off: 0.1, OnFrames: 0, OffFrames: 5})
	if err == nil {
		t.Fatal("expected error for zero on frames")
	}
}

func TestTransitionOnThirdConfirmingFrame(t *testing.T) {
	m, err := NewMachine(testThresholds())
	if err != nil {
		t.Fatal(err)
	}

	if st, changed := m.Update(ScoreOf(0.6)); changed || st != NotSmiling {
		t.Fatalf("frame 1: got (%v, %v)", st, changed)
	}
	if st, changed := m.Update(ScoreOf(0.6)); changed || st != NotSmiling {
		t.Fatalf("frame 2: got (%v, %v)", st, changed)
	}
	st, changed := m.Update(ScoreOf(0.6))
	if !changed || st != Smiling {
		t.Fatalf("frame 3: expected transition to Smiling, got (%v, %v)", st, changed)
	}
}

func TestTransitionBackOnFifthFrame(t *testing.T) {
	m, _ := NewMachine(testThresholds())
	feedScores(t, m, []float64{0.6, 0.6, 0.6})

	for i := 0; i < 4; i++ {
		if st, changed := m.Update(ScoreOf(0.1)); changed || st != Smiling {
			t.Fatalf("off frame %d: premature transition (%v, %v)", i+1, st, changed)
		}
	}
	st, changed := m.Update(ScoreOf(0.1))
	if !changed || st != NotSmiling {
		t.Fatalf("off frame 5: expected transition to NotSmiling, got (%v, %v)", st, changed)
	}
}

func TestIsolatedSpikeDoesNotToggle(t *testing.T) {
	m, _ := NewMachine(testThresholds())

	// Spikes shorter than OnFrames reset the counter.
	scores := []float64{0.6, 0.6, 0.1, 0.6, 0.6, 0.1, 0.6, 0.6}
	st, changes := feedScores(t, m, scores)
	if changes != 0 || st != NotSmiling {
		t.Fatalf("interrupted runs must not toggle: state=%v changes=%d", st, changes)
	}
}

func TestIsolatedDipDoesNotToggle(t *testing.T) {
	m, _ := NewMachine(testThresholds())
	feedScores(t, m, []float64{0.6, 0.6, 0.6})

	// Dips shorter than OffFrames reset the off counter.
	scores := []float64{0.1, 0.1, 0.1, 0.1, 0.6, 0.1, 0.1, 0.1, 0.1}
	st, changes := feedScores(t, m, scores)
	if changes != 0 || st != Smiling {
		t.Fatalf("interrupted dips must not toggle: state=%v changes=%d", st, changes)
	}
}

func TestMidbandScoreHoldsState(t *testing.T) {
	m, _ := NewMachine(testThresholds())

	// Between Off and On nothing moves in either state.
	if st, changes := feedScores(t, m, []float64{0.3, 0.3, 0.3, 0.3, 0.3, 0.3}); changes != 0 || st != NotSmiling {
		t.Fatalf("midband from NotSmiling: state=%v changes=%d", st, changes)
	}
	feedScores(t, m, []float64{0.6, 0.6, 0.6})
	if st, changes := feedScores(t, m, []float64{0.3, 0.3, 0.3, 0.3, 0.3, 0.3}); changes != 0 || st != Smiling {
		t.Fatalf("midband from Smiling: state=%v changes=%d", st, changes)
	}
}

func TestAbsentCountsAsNotSmiling(t *testing.T) {
	m, _ := NewMachine(testThresholds())
	feedScores(t, m, []float64{0.6, 0.6, 0.6})

	var st State
	var changed bool
	for i := 0; i < 5; i++ {
		st, changed = m.Update(Absent())
	}
	if !changed || st != NotSmiling {
		t.Fatalf("5 absent cycles should release the smile: (%v, %v)", st, changed)
	}
}

func TestSetThresholdsRejectsAndKeepsOld(t *testing.T) {
	m, _ := NewMachine(testThresholds())

	err := m.SetThresholds(Thresholds{On: 0.2, Off: 0.4, OnFrames: 3, OffFrames: 5})
	if !errors.Is(err, ErrThresholdOrder) {
		t.Fatalf("expected ErrThresholdOrder, got %v", err)
	}
	if got := m.Thresholds(); got != testThresholds() {
		t.Fatalf("rejected update must leave thresholds intact, got %+v", got)
	}

	// State is untouched as well.
	if st := m.State(); st != NotSmiling {
		t.Fatalf("state changed on rejected update: %v", st)
	}
}

func TestSetThresholdsApplies(t *testing.T) {
	m, _ := NewMachine(testThresholds())

	th := Thresholds{On: 0.78, Off: 0.22, OnFrames: 3, OffFrames: 5}
	if err := m.SetThresholds(th); err != nil {
		t.Fatal(err)
	}
	if got := m.Thresholds(); got != th {
		t.Fatalf("got %+v, want %+v", got, th)
	}

	// 0.6 was above the old On but is below the new one.
	if st, changes := feedScores(t, m, []float64{0.6, 0.6, 0.6, 0.6}); changes != 0 || st != NotSmiling {
		t.Fatalf("new thresholds not in effect: state=%v changes=%d", st, changes)
	}
}

func TestCountersResetAfterTransition(t *testing.T) {
	m, _ := NewMachine(Thresholds{On: 0.5, Off: 0.15, OnFrames: 2, OffFrames: 2})

	feedScores(t, m, []float64{0.6, 0.6}) // -> Smiling
	feedScores(t, m, []float64{0.1, 0.1}) // -> NotSmiling

	// A fresh run is needed again; one qualifying frame is not enough.
	if st, changed := m.Update(ScoreOf(0.6)); changed || st != NotSmiling {
		t.Fatalf("counter must restart after transition: (%v, %v)", st, changed)
	}
	if st, changed := m.Update(ScoreOf(0.6)); !changed || st != Smiling {
		t.Fatalf("expected transition on second frame: (%v, %v)", st, changed)
	}
}
