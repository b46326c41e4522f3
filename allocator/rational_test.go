package allocator

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestNewRational(t *testing.T) {
	r := NewRational(2, 3)
	assert.Equal(t, uint64(2), r.Nominator)
	assert.Equal(t, uint64(3), r.Denominator)
}

func TestRational_MulUint32(t *testing.T) {
	r := NewRational(3, 5)
	result := r.MulUint32(22)
	assert.Equal(t, uint32(13), result)

	r = NewRational(80, 100)
	result = r.MulUint32(1 << 31)
	assert.Equal(t, uint32(1717986918), result)
}

func TestRational_Percent(t *testing.T) {
	table := []struct {
		name     string
		r        Rational
		expected uint32
	}{
		{
			name:     "whole",
			r:        NewRational(40, 40),
			expected: 100,
		},
		{
			name:     "round-down",
			r:        NewRational(1, 3),
			expected: 33,
		},
		{
			name:     "large-values",
			r:        NewRational(1<<30, 1<<31),
			expected: 50,
		},
		{
			name:     "empty-denominator",
			r:        NewRational(0, 0),
			expected: 0,
		},
	}

	for _, e := range table {
		t.Run(e.name, func(t *testing.T) {
			assert.Equal(t, e.expected, e.r.Percent())
		})
	}
}
