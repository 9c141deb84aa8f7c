package insert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v int) *int { return &v }

func TestDefaultDeviationIsTenPercent(t *testing.T) {
	s, ok := New(ptr(200), nil)
	require.True(t, ok)
	assert.Equal(t, 200.0, s.Length)
	assert.Equal(t, 20.0, s.StdDev)

	s, _ = New(ptr(209), nil)
	assert.Equal(t, 20.0, s.StdDev)
	assert.Equal(t, 20.0, DefaultSD(209))
}

func TestExplicitDeviationWins(t *testing.T) {
	s, ok := New(ptr(300), ptr(45))
	require.True(t, ok)
	assert.Equal(t, 45.0, s.StdDev)
}

func TestInactiveLibrary(t *testing.T) {
	_, ok := New(nil, ptr(10))
	assert.False(t, ok)
	_, ok = New(ptr(-1), nil)
	assert.False(t, ok)
}

func TestAcceptsAroundExpectedLength(t *testing.T) {
	s, _ := New(ptr(200), nil)
	assert.True(t, s.Accepts(210))
	assert.True(t, s.Accepts(200))
	assert.True(t, s.Accepts(150))
	assert.False(t, s.Accepts(500))
	assert.False(t, s.Accepts(100))
}

func TestWindowIsThreeSigma(t *testing.T) {
	s := Stat{Length: 100, StdDev: 10}
	assert.InDelta(t, 30, s.Window(), 0.01)
	assert.InDelta(t, 130, s.Max(), 0.01)
	assert.Equal(t, 5.0, s.Deviation(95))
}
