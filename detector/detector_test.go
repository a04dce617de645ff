package detector

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSoftmaxSumsToOne(t *testing.T) {
	probs := softmax([]float64{1.2, -0.5, 0.3, 2.8, 0.0, -1.1, 0.7, 0.1})
	var sum float64
	for _, p := range probs {
		require.GreaterOrEqual(t, p, 0.0)
		sum += p
	}
	require.InDelta(t, 1.0, sum, 1e-9)
}

func TestSoftmaxDominantLogit(t *testing.T) {
	probs := softmax([]float64{0, 0, 0, 10, 0, 0, 0, 0})
	require.Greater(t, probs[3], 0.99)
}

func TestSoftmaxLargeLogitsStable(t *testing.T) {
	probs := softmax([]float64{1000, 999, 998})
	for _, p := range probs {
		require.False(t, math.IsNaN(p))
		require.False(t, math.IsInf(p, 0))
	}
	require.Greater(t, probs[0], probs[1])
}

func TestSoftmaxEmpty(t *testing.T) {
	require.Nil(t, softmax(nil))
}

func TestFakeQueueThenSticky(t *testing.T) {
	f := NewFake()
	f.SetScore(0.5)
	f.Push(Frame{Score: 0.9}, Frame{NoFace: true})

	v, ok := f.RawScore()
	require.True(t, ok)
	require.Equal(t, 0.9, v)

	_, ok = f.RawScore()
	require.False(t, ok)

	v, ok = f.RawScore()
	require.True(t, ok)
	require.Equal(t, 0.5, v, "queue drained, sticky frame applies")
	require.Zero(t, f.Pending())
}

func TestFakeStartsWithNoFace(t *testing.T) {
	f := NewFake()
	_, ok := f.RawScore()
	require.False(t, ok)
}
