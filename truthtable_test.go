// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package revsyn

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTruthTableAdd(t *testing.T) {
	tt := NewTruthTable(2, 2)
	require.NoError(t, tt.Add("01", "1-"))
	require.Error(t, tt.Add("011", "10"), "wrong input width")
	require.Error(t, tt.Add("01", "1"), "wrong output width")
	require.Error(t, tt.Add("0x", "10"), "invalid character")
	require.Equal(t, 1, tt.NumRows())
}

func TestFullySpecified(t *testing.T) {
	tt := FromPermutation([]uint64{0, 1, 3, 2}, 2)
	require.True(t, tt.FullySpecified())

	partial := NewTruthTable(2, 2)
	require.NoError(t, partial.Add("0-", "11"))
	require.False(t, partial.FullySpecified())

	incomplete := NewTruthTable(1, 1)
	require.NoError(t, incomplete.Add("0", "1"))
	require.False(t, incomplete.FullySpecified(), "missing rows")
}

func TestOutputPermutation(t *testing.T) {
	tt := NewTruthTable(2, 3)
	require.NoError(t, tt.Add("00", "011"))
	tt.Outputs = []string{"a", "b", "c"}

	tt.SetPermutation([]int{2, 0, 1})
	_, out := tt.Row(0)
	require.Equal(t, "101", out)
	require.Equal(t, []string{"c", "a", "b"}, tt.PermutedOutputs())
}

func TestNextPermutation(t *testing.T) {
	tt := NewTruthTable(1, 3)

	count := 1
	for tt.NextPermutation() {
		count++
	}
	require.Equal(t, 6, count, "3! permutations before wrapping")
	require.Equal(t, []int{0, 1, 2}, tt.Permutation(), "wraps to identity")
}

func TestCubeConversions(t *testing.T) {
	v, err := CubeToUint64("0110")
	require.NoError(t, err)
	require.Equal(t, uint64(6), v)

	_, err = CubeToUint64("01-0")
	require.Error(t, err)

	require.Equal(t, "0110", Uint64ToCube(6, 4))
	require.Equal(t, "110", Uint64ToCube(6, 3))
}

func TestPatternBits(t *testing.T) {
	// Line 0 is the most significant bit.
	require.True(t, PatternBit(0b100, 3, 0))
	require.False(t, PatternBit(0b100, 3, 2))
	require.Equal(t, uint64(0b101), PatternSet(0b100, 3, 2, true))
	require.Equal(t, uint64(0b001), PatternSet(0b101, 3, 0, false))
}
