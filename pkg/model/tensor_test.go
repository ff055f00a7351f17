package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTensor2Basics(t *testing.T) {
	m := NewTensor2(2, 3)
	defer m.Release()

	assert.Equal(t, 2, m.Rows())
	assert.Equal(t, 3, m.Cols())

	m.Set(1, 2, 42)
	assert.Equal(t, 42.0, m.At(1, 2))
	assert.Equal(t, 0.0, m.At(0, 0))

	row := m.Row(1)
	require.Len(t, row, 3)
	assert.Equal(t, 42.0, row[2])
}

func TestTensor2CloneIsIndependent(t *testing.T) {
	m := NewTensor2(1, 2)
	defer m.Release()
	m.Set(0, 0, 1)

	c := m.Clone()
	defer c.Release()
	c.Set(0, 0, 99)

	assert.Equal(t, 1.0, m.At(0, 0))
	assert.Equal(t, 99.0, c.At(0, 0))
}

func TestTensor2SliceRows(t *testing.T) {
	m := NewTensor2(3, 2)
	defer m.Release()
	for i := 0; i < 3; i++ {
		m.Set(i, 0, float64(i))
	}

	s := m.SliceRows(1, 3)
	defer s.Release()

	assert.Equal(t, 2, s.Rows())
	assert.Equal(t, 1.0, s.At(0, 0))
	assert.Equal(t, 2.0, s.At(1, 0))
}

func TestTensor2FlattenRoundTrip(t *testing.T) {
	m := NewTensor2(2, 2)
	defer m.Release()
	m.Set(0, 1, 5)
	m.Set(1, 0, 7)

	flat := m.Flatten()
	r := Tensor2FromFlat(2, 2, flat)
	defer r.Release()

	assert.Equal(t, 5.0, r.At(0, 1))
	assert.Equal(t, 7.0, r.At(1, 0))
}

func TestTensor3Basics(t *testing.T) {
	m := NewTensor3(2, 3, 4)
	defer m.Release()

	s, st, w := m.Dims()
	assert.Equal(t, 2, s)
	assert.Equal(t, 3, st)
	assert.Equal(t, 4, w)

	m.Set(1, 2, 3, 9)
	assert.Equal(t, 9.0, m.At(1, 2, 3))

	step := m.Step(1, 2)
	require.Len(t, step, 4)
	assert.Equal(t, 9.0, step[3])
}

func TestTensor3SliceSamples(t *testing.T) {
	m := NewTensor3(3, 1, 1)
	defer m.Release()
	for i := 0; i < 3; i++ {
		m.Set(i, 0, 0, float64(i))
	}

	s := m.SliceSamples(1, 3)
	defer s.Release()

	assert.Equal(t, 2, s.Samples())
	assert.Equal(t, 1.0, s.At(0, 0, 0))
	assert.Equal(t, 2.0, s.At(1, 0, 0))
}

func TestPooledBuffersAreZeroed(t *testing.T) {
	m := NewTensor2(2, 2)
	m.Set(0, 0, 1)
	m.Set(1, 1, 1)
	m.Release()

	// A fresh tensor of the same size may reuse the backing; it must
	// come back zeroed regardless.
	n := NewTensor2(2, 2)
	defer n.Release()
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			assert.Equal(t, 0.0, n.At(i, j))
		}
	}
}

func TestHasNaN(t *testing.T) {
	m := NewTensor2(1, 2)
	defer m.Release()
	assert.False(t, m.HasNaN())

	m.Set(0, 1, math.NaN())
	assert.True(t, m.HasNaN())
}
