// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package synth

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmbedHalfAdder(t *testing.T) {
	r := embedDoc(t, halfAdderPLA, nil)

	// mu* = 2 (two inputs map to 01), so k = max(2, 2+1) = 3.
	require.Equal(t, 3, r.Vars())
	require.Equal(t, 2, r.NumInputs())
	require.Equal(t, 2, r.NumOutputs())

	chi := r.Chi()
	require.True(t, r.IsBijection(chi))
	require.Zero(t, r.Manager().Satcount(chi, 6).Cmp(big.NewInt(8)), "8 minterms over 6 variables")

	// Projecting the unique image of each covered input reproduces the
	// cover; the introduced wire reads constant 0.
	fn := chiFunction(t, r)
	expected := map[uint64]uint64{0b00: 0b00, 0b01: 0b01, 0b10: 0b01, 0b11: 0b10}
	for in, out := range expected {
		y := fn[in] // first wire pinned to 0
		require.Equal(t, out, y>>1, "primary outputs for input %02b", in)
	}

	// Colliding rows received distinct garbage.
	require.NotEqual(t, fn[0b01], fn[0b10])
}

func TestEmbedConstantZeroFunction(t *testing.T) {
	// f(x) = 0 on two inputs: mu[0] = 4, k = max(2, 1+2) = 3.
	r := embedDoc(t, ".i 2\n.o 1\n-- 0\n.e\n", nil)
	require.Equal(t, 3, r.Vars())

	chi := r.Chi()
	require.True(t, r.IsBijection(chi))

	fn := chiFunction(t, r)
	for x := uint64(0); x < 4; x++ {
		y := fn[x] // first wire pinned to 0
		require.Zero(t, y>>2, "primary output must be 0 for input %02b", x)
	}
}

func TestEmbedInjectiveFunction(t *testing.T) {
	// A permutation needs no garbage: mu* = 1 and k = max(n, m).
	r := embedDoc(t, ".i 2\n.o 2\n00 00\n01 10\n10 11\n11 01\n.e\n", nil)
	require.Equal(t, 2, r.Vars())
	require.True(t, r.IsBijection(r.Chi()))

	fn := chiFunction(t, r)
	require.Equal(t, uint64(0b10), fn[0b01])
	require.Equal(t, uint64(0b11), fn[0b10])
	require.Equal(t, uint64(0b01), fn[0b11])
}

func TestEmbedPartialCoverDefaultsToZero(t *testing.T) {
	// Only one row; the complement is enumerated into zero rows.
	r := embedDoc(t, ".i 2\n.o 2\n11 10\n.e\n", nil)
	require.True(t, r.IsBijection(r.Chi()))

	fn := chiFunction(t, r)
	for x := uint64(0); x < 4; x++ {
		y := fn[x] >> uint(r.Vars()-2) // primary output bits
		if x == 0b11 {
			require.Equal(t, uint64(0b10), y)
		} else {
			require.Zero(t, y, "uncovered input %02b defaults to the zero output", x)
		}
	}
}

func TestEmbedConstValue(t *testing.T) {
	opts := &EmbedPLAOptions{ConstValue: true}
	r := embedDoc(t, halfAdderPLA, opts)
	require.True(t, r.ConstantValue())

	// With the constant pinned to 1 the covered patterns live in the upper
	// half of the input space.
	fn := chiFunction(t, r)
	require.Equal(t, uint64(0b10), fn[0b111]>>1, "input 11 with constant wire 1")
}

func TestEmbedDontCareInputs(t *testing.T) {
	// An input don't-care folds into the garbage schedule.
	r := embedDoc(t, ".i 2\n.o 1\n1- 1\n00 1\n01 0\n.e\n", nil)
	require.True(t, r.IsBijection(r.Chi()))

	fn := chiFunction(t, r)
	m := r.NumOutputs()
	shift := uint(r.Vars() - m)
	require.Equal(t, uint64(1), fn[0b10]>>shift)
	require.Equal(t, uint64(1), fn[0b11]>>shift)
	require.Equal(t, uint64(1), fn[0b00]>>shift)
	require.Equal(t, uint64(0), fn[0b01]>>shift)
}

func TestEmbedIdempotence(t *testing.T) {
	r1 := embedDoc(t, halfAdderPLA, nil)

	// Write the embedded relation back as a PLA and embed again: the
	// relation is already reversible, so the second embedding reproduces
	// it exactly.
	doc := r1.PLADocument()
	r2, err := EmbedPLADocument(doc, nil, nil)
	require.NoError(t, err)

	require.Equal(t, r1.Vars(), r2.Vars())
	require.Equal(t, chiFunction(t, r1), chiFunction(t, r2))
}

func TestEmbedWritePLARoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/chi.pla"

	doc := parseDoc(t, halfAdderPLA)
	_, err := EmbedPLADocument(doc, &EmbedPLAOptions{WritePLA: path}, nil)
	require.NoError(t, err)

	r2, err := EmbedPLA(path, nil, nil)
	require.NoError(t, err)
	require.True(t, r2.IsBijection(r2.Chi()))
}

func TestCalculateRequiredLines(t *testing.T) {
	require.Equal(t, 3, calculateRequiredLines(2, 2, big.NewInt(2)))
	require.Equal(t, 2, calculateRequiredLines(2, 2, big.NewInt(1)))
	require.Equal(t, 3, calculateRequiredLines(2, 1, big.NewInt(4)))
	require.Equal(t, 5, calculateRequiredLines(5, 2, big.NewInt(2)))
}

func TestEmbedBennett(t *testing.T) {
	doc := parseDoc(t, halfAdderPLA)
	r, err := EmbedPLABennettDocument(doc, nil, nil)
	require.NoError(t, err)

	// Bennett always uses n + m wires.
	require.Equal(t, 4, r.Vars())
	require.True(t, r.IsBijection(r.Chi()))

	// y_{0..m} = x_{0..m} xor f(x_{m..}), y_{m..} = x_{m..}.
	f := map[uint64]uint64{0b00: 0b00, 0b01: 0b01, 0b10: 0b01, 0b11: 0b10}
	fn := chiFunction(t, r)
	for x := uint64(0); x < 1<<4; x++ {
		top := x >> 2    // wires 0,1
		bottom := x & 3  // wires 2,3
		want := (top^f[bottom])<<2 | bottom
		require.Equal(t, want, fn[x], "input %04b", x)
	}
}

func TestEmbedBennettForcesZeroOutputs(t *testing.T) {
	// A '0' in the output cube is a forced bit for the Bennett embedder.
	doc := parseDoc(t, ".i 1\n.o 1\n0 1\n1 0\n.e\n")
	r, err := EmbedPLABennettDocument(doc, nil, nil)
	require.NoError(t, err)

	fn := chiFunction(t, r)
	// x = (y0=0, x0=1): f(1) = 0, so output wire keeps its 0.
	require.Equal(t, uint64(0b01), fn[0b01])
	// x = (y0=0, x0=0): f(0) = 1 flips the output wire.
	require.Equal(t, uint64(0b10), fn[0b00])
}

func TestEmbedZeroOutputsBoundary(t *testing.T) {
	// m = 0: the zero-cube pass dominates and k = n.
	r := embedDoc(t, ".i 2\n.o 0\n.e\n", nil)
	require.Equal(t, 2, r.Vars())
	require.True(t, r.IsBijection(r.Chi()))
}
