package volume

import (
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

func newTestLimiter() (*Limiter, *FakeActuator, *clockwork.FakeClock) {
	clock := clockwork.NewFakeClock()
	act := NewFake(50)
	return NewLimiter(act, DefaultMinInterval, clock), act, clock
}

func TestRepeatedIdenticalCommandSuppressed(t *testing.T) {
	l, act, _ := newTestLimiter()

	res, err := l.Set(50, false)
	require.NoError(t, err)
	require.Equal(t, Applied, res)

	res, err = l.Set(50, false)
	require.NoError(t, err)
	require.Equal(t, Suppressed, res)

	require.Equal(t, []int{50}, act.Commands())
}

func TestChangedValuePassesImmediately(t *testing.T) {
	l, act, _ := newTestLimiter()

	_, err := l.Set(50, false)
	require.NoError(t, err)
	res, err := l.Set(80, false)
	require.NoError(t, err)
	require.Equal(t, Applied, res)

	require.Equal(t, []int{50, 80}, act.Commands())
}

func TestRepeatAllowedAfterInterval(t *testing.T) {
	l, act, clock := newTestLimiter()

	_, _ = l.Set(50, false)
	clock.Advance(DefaultMinInterval)
	res, err := l.Set(50, false)
	require.NoError(t, err)
	require.Equal(t, Applied, res)
	require.Len(t, act.Commands(), 2)
}

func TestForceBypassesSuppression(t *testing.T) {
	l, act, _ := newTestLimiter()

	_, _ = l.Set(50, false)
	res, err := l.Set(50, true)
	require.NoError(t, err)
	require.Equal(t, Applied, res)
	require.Equal(t, []int{50, 50}, act.Commands())
}

func TestSetClampsValue(t *testing.T) {
	l, act, _ := newTestLimiter()

	_, err := l.Set(250, false)
	require.NoError(t, err)
	_, err = l.Set(-10, false)
	require.NoError(t, err)
	require.Equal(t, []int{100, 0}, act.Commands())
}

func TestClampedRepeatIsSuppressed(t *testing.T) {
	l, act, _ := newTestLimiter()

	_, _ = l.Set(150, false)
	res, err := l.Set(100, false)
	require.NoError(t, err)
	require.Equal(t, Suppressed, res, "150 clamps to 100 and counts as the same value")
	require.Equal(t, []int{100}, act.Commands())
}

func TestActuatorErrorNotCommitted(t *testing.T) {
	l, act, _ := newTestLimiter()

	boom := errors.New("device busy")
	act.FailNext(boom)

	res, err := l.Set(30, false)
	require.ErrorIs(t, err, boom)
	require.Equal(t, Suppressed, res)

	// The failed attempt must not arm suppression for the retry.
	res, err = l.Set(30, false)
	require.NoError(t, err)
	require.Equal(t, Applied, res)
	require.Equal(t, []int{30}, act.Commands())
}

func TestSuppressionWindowRollsForward(t *testing.T) {
	l, act, clock := newTestLimiter()

	_, _ = l.Set(50, false)
	clock.Advance(100 * time.Millisecond)
	_, _ = l.Set(50, false) // suppressed, does not refresh the window
	clock.Advance(160 * time.Millisecond)

	res, err := l.Set(50, false)
	require.NoError(t, err)
	require.Equal(t, Applied, res, "window is measured from the last commit, not the last attempt")
	require.Len(t, act.Commands(), 2)
}

func TestCurrentPassesThrough(t *testing.T) {
	l, act, _ := newTestLimiter()
	act.SetLevel(73)

	got, err := l.Current()
	require.NoError(t, err)
	require.Equal(t, 73, got)
}
