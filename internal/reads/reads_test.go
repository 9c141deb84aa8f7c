package reads

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"contigr/internal/graph"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(t *testing.T, specs ...[2]int) *Set {
	t.Helper()
	s := NewSet()
	for i, sp := range specs {
		lib, paired, err := ParseCategory(sp[0])
		require.NoError(t, err)
		_, err = s.Add("r", lib, paired, sp[1]+i)
		require.NoError(t, err)
	}
	return s
}

func TestParseCategory(t *testing.T) {
	lib, paired, err := ParseCategory(3)
	require.NoError(t, err)
	assert.Equal(t, 1, lib)
	assert.True(t, paired)

	lib, paired, err = ParseCategory(2 * graph.LongCategory)
	require.NoError(t, err)
	assert.Equal(t, graph.LongCategory, lib)
	assert.False(t, paired)

	_, _, err = ParseCategory(2*graph.LongCategory + 2)
	assert.ErrorIs(t, err, ErrCategory)
	_, _, err = ParseCategory(-1)
	assert.ErrorIs(t, err, ErrCategory)
}

func TestPairUpAdjacentReads(t *testing.T) {
	s := build(t, [2]int{1, 36}, [2]int{1, 36}, [2]int{1, 36}, [2]int{1, 36}, [2]int{1, 36})

	assert.Equal(t, 2, s.PairUp(0))
	m, ok := s.Mate(0)
	require.True(t, ok)
	assert.Equal(t, graph.ReadID(1), m)
	m, _ = s.Mate(3)
	assert.Equal(t, graph.ReadID(2), m)
	_, ok = s.Mate(4)
	assert.False(t, ok, "odd trailing read stays single")
}

func TestPairUpIsIdempotentAndPerLibrary(t *testing.T) {
	s := build(t, [2]int{1, 36}, [2]int{1, 36}, [2]int{3, 50}, [2]int{3, 50}, [2]int{0, 36})

	assert.Equal(t, 1, s.PairUp(0))
	assert.Equal(t, 1, s.PairUp(0))
	_, ok := s.Mate(2)
	assert.False(t, ok, "library 1 not paired yet")

	assert.Equal(t, 1, s.PairUp(1))
	m, ok := s.Mate(2)
	require.True(t, ok)
	assert.Equal(t, graph.ReadID(3), m)
	m, _ = s.Mate(1)
	assert.Equal(t, graph.ReadID(0), m)
	_, ok = s.Mate(4)
	assert.False(t, ok)
	assert.Equal(t, 3, s.Count(0))
	assert.Equal(t, 2, s.Count(1))
}

func TestDetachHidesMates(t *testing.T) {
	s := build(t, [2]int{1, 36}, [2]int{1, 36}, [2]int{1, 36}, [2]int{1, 36})
	s.PairUp(0)
	var d graph.Dubious
	d.Mark(1)
	d.Mark(99)

	assert.Equal(t, 1, s.Detach(&d))
	assert.True(t, s.Detached(1))
	_, ok := s.Mate(0)
	assert.False(t, ok)
	_, ok = s.Mate(1)
	assert.False(t, ok)
	_, ok = s.Mate(2)
	assert.True(t, ok)
	assert.Equal(t, 4, s.Len(), "detached reads stay in the set")
}

func TestLoadSequencesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Sequences")
	data := ">SEQ_0\t0\t1\nACGTACGT\n>SEQ_1\t1\t1\nACGTAC\n>SEQ_2\t2\t4\nACGTACGTACGT\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	s, err := Load(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, 3, s.Len())
	assert.Equal(t, Read{ID: 0, Name: "SEQ_0", Library: 0, Paired: true, Length: 8}, s.Get(0))
	assert.Equal(t, graph.LongCategory, s.Get(2).Library)
	assert.Equal(t, 12, s.Get(2).Length)
}

func TestLoadRejectsBadCategory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Sequences")
	require.NoError(t, os.WriteFile(path, []byte(">a 0 9\nACGT\n"), 0o644))
	_, err := Load(context.Background(), path)
	assert.ErrorIs(t, err, ErrCategory)
}
