package main

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/QuangTung97/dynmem/allocator"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseTrace(t *testing.T) {
	input := `
# header comment
alloc a 16
ALLOC b 0x20   # hex size
fill a 0xAB
realloc a 64

free b
defrag
monitor
check
`
	ops, err := parseTrace(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []traceOp{
		{line: 3, kind: opAlloc, name: "a", size: 16},
		{line: 4, kind: opAlloc, name: "b", size: 32},
		{line: 5, kind: opFill, name: "a", value: 0xAB},
		{line: 6, kind: opRealloc, name: "a", size: 64},
		{line: 8, kind: opFree, name: "b"},
		{line: 9, kind: opDefrag},
		{line: 10, kind: opMonitor},
		{line: 11, kind: opCheck},
	}, ops)
}

func TestParseTrace_Errors(t *testing.T) {
	table := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "unknown-op",
			input:    "alloc a 4\nmalloc b 4\n",
			expected: `line 2: unknown operation "malloc"`,
		},
		{
			name:     "missing-argument",
			input:    "alloc a\n",
			expected: "line 1: alloc expects 2 argument(s), got 1",
		},
		{
			name:     "extra-argument",
			input:    "defrag now\n",
			expected: "line 1: defrag expects 0 argument(s), got 1",
		},
		{
			name:     "invalid-size",
			input:    "alloc a -3\n",
			expected: `line 1: invalid size "-3"`,
		},
		{
			name:     "size-overflow",
			input:    "realloc a 4294967296\n",
			expected: `line 1: invalid size "4294967296"`,
		},
		{
			name:     "invalid-byte",
			input:    "fill a 256\n",
			expected: `line 1: invalid byte "256"`,
		},
	}

	for _, e := range table {
		t.Run(e.name, func(t *testing.T) {
			_, err := parseTrace(strings.NewReader(e.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), e.expected)
		})
	}
}

func TestOpKind_String(t *testing.T) {
	for name, kind := range opNames {
		assert.Equal(t, name, kind.String())
	}
	assert.Equal(t, "unknown", opKind(100).String())
}

func TestReplayer_Replay(t *testing.T) {
	pool := allocator.New(allocator.Config{PoolSize: 64})
	r := newReplayer(pool, discardLogger())

	ops, err := parseTrace(strings.NewReader(`
alloc a 16
fill a 7
alloc b 16
realloc a 8
alloc big 100
free b
monitor
check
`))
	require.NoError(t, err)

	steps, err := r.replay(ops)
	require.NoError(t, err)
	require.Equal(t, 8, len(steps))

	assert.Equal(t, stepResult{Line: 2, Op: "alloc", Name: "a", Size: 16, Ptr: 4, OK: true}, steps[0])
	assert.Equal(t, stepResult{Line: 3, Op: "fill", Name: "a", Size: 16, Ptr: 4, OK: true}, steps[1])
	assert.Equal(t, stepResult{Line: 4, Op: "alloc", Name: "b", Size: 16, Ptr: 24, OK: true}, steps[2])
	assert.Equal(t, stepResult{Line: 5, Op: "realloc", Name: "a", Size: 8, Ptr: 44, OK: true}, steps[3])
	assert.Equal(t, stepResult{Line: 6, Op: "alloc", Name: "big", Size: 100, Ptr: allocator.NullPtr, OK: false}, steps[4])
	assert.Equal(t, stepResult{Line: 7, Op: "free", Name: "b", Ptr: 24, OK: true}, steps[5])

	assert.Equal(t, &allocator.Stats{
		FreeBlockCount:       3,
		UsedBlockCount:       1,
		FreeBytes:            40,
		UsedBytes:            8,
		LargestFreeBlock:     16,
		FragmentationPercent: 60,
	}, steps[6].Stats)

	assert.Equal(t, map[string]uint32{"a": 44}, r.handles)
	assert.Equal(t, []byte{7, 7, 7, 7, 7, 7, 7, 7}, pool.Bytes(44))
}

func TestReplayer_Errors(t *testing.T) {
	table := []struct {
		name  string
		input string
		check func(t *testing.T, err error)
	}{
		{
			name:  "free-unknown",
			input: "free x\n",
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, errUnknownHandle)
			},
		},
		{
			name:  "realloc-unknown",
			input: "alloc a 4\nrealloc b 8\n",
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, errUnknownHandle)
				assert.Contains(t, err.Error(), "line 2")
			},
		},
		{
			name:  "fill-after-free",
			input: "alloc a 4\nfree a\nfill a 1\n",
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, errUnknownHandle)
			},
		},
		{
			name:  "double-alloc",
			input: "alloc a 4\nalloc a 8\n",
			check: func(t *testing.T, err error) {
				assert.EqualError(t, err, `line 2: handle "a" is already allocated`)
			},
		},
	}

	for _, e := range table {
		t.Run(e.name, func(t *testing.T) {
			pool := allocator.New(allocator.Config{PoolSize: 64})
			ops, err := parseTrace(strings.NewReader(e.input))
			require.NoError(t, err)

			_, err = newReplayer(pool, discardLogger()).replay(ops)
			require.Error(t, err)
			e.check(t, err)
		})
	}
}
