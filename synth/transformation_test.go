// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package synth

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/revsyn"
)

func randomPermutation(rng *rand.Rand, n int) []uint64 {
	perm := make([]uint64, 1<<uint(n))
	for i := range perm {
		perm[i] = uint64(i)
	}
	rng.Shuffle(len(perm), func(i, j int) { perm[i], perm[j] = perm[j], perm[i] })
	return perm
}

func TestTransformationBasedSingleToffoli(t *testing.T) {
	// The 3-bit permutation (0,1,2,3,4,5,7,6) is exactly one Toffoli with
	// controls on wires 0 and 1 and target wire 2.
	spec := revsyn.FromPermutation([]uint64{0, 1, 2, 3, 4, 5, 7, 6}, 3)

	opts := &TransformationOptions{Bidirectional: false}
	circ, err := TransformationBased(spec, opts, nil)
	require.NoError(t, err)

	require.Equal(t, 1, circ.NumGates())
	g := circ.Gates()[0]
	require.Equal(t, revsyn.ToffoliKind, g.Kind)
	require.Equal(t, 2, g.Target())
	require.ElementsMatch(t, []revsyn.Control{revsyn.Pos(0), revsyn.Pos(1)}, g.Controls)
}

func TestTransformationBasedRealizesSpec(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	perms := [][]uint64{
		{0, 1, 2, 3, 4, 5, 7, 6},
		{7, 6, 5, 4, 3, 2, 1, 0},
		{1, 2, 3, 4, 5, 6, 7, 0},
		randomPermutation(rng, 3),
		randomPermutation(rng, 4),
	}

	variants := map[string]*TransformationOptions{
		"Unidirectional": {Bidirectional: false},
		"Bidirectional":  {Bidirectional: true},
		"Fredkin":        {Bidirectional: true, Fredkin: true},
		"Lookback":       {Bidirectional: true, Fredkin: true, FredkinLookback: true},
	}

	for name, opts := range variants {
		t.Run(name, func(t *testing.T) {
			for _, perm := range perms {
				spec := revsyn.FromPermutation(perm, log2(len(perm)))
				circ, err := TransformationBased(spec, opts, nil)
				require.NoError(t, err)
				requireRealizes(t, circ, spec)
			}
		})
	}
}

func TestTransformationBasedRejectsPartialSpec(t *testing.T) {
	spec := revsyn.NewTruthTable(2, 2)
	require.NoError(t, spec.Add("0-", "11"))

	_, err := TransformationBased(spec, nil, nil)
	require.Error(t, err)
}

func TestTransformationBasedIdentity(t *testing.T) {
	spec := revsyn.FromPermutation([]uint64{0, 1, 2, 3}, 2)
	circ, err := TransformationBased(spec, nil, nil)
	require.NoError(t, err)
	require.Zero(t, circ.NumGates())
}

func TestTranspositionBasedRealizesSpec(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	perms := [][]uint64{
		{0, 1, 2, 3, 4, 5, 7, 6},
		{1, 0, 3, 2},
		{1, 2, 3, 4, 5, 6, 7, 0},
		randomPermutation(rng, 3),
		randomPermutation(rng, 4),
	}

	for _, perm := range perms {
		spec := revsyn.FromPermutation(perm, log2(len(perm)))
		circ, err := TranspositionBased(spec, nil)
		require.NoError(t, err)
		requireRealizes(t, circ, spec)
	}
}

func TestTranspositionBasedIdentity(t *testing.T) {
	spec := revsyn.FromPermutation([]uint64{0, 1, 2, 3}, 2)
	circ, err := TranspositionBased(spec, nil)
	require.NoError(t, err)
	require.Zero(t, circ.NumGates())
}
