// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package synth

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/revsyn/rcbdd"
)

// requireRealizesChi checks invariant 4: the relation of the synthesized
// circuit equals the characteristic relation the synthesizer started from.
func requireRealizesChi(t testing.TB, r *rcbdd.Relation, opts *CharacteristicOptions) {
	t.Helper()

	chi := r.Chi()
	circ, err := Characteristic(r, opts, nil)
	require.NoError(t, err)

	rel := r.CircuitRelation(circ)
	require.True(t, r.Manager().Equal(rel, chi), "circuit relation differs from chi")
}

func TestCharacteristicHalfAdder(t *testing.T) {
	r := embedDoc(t, halfAdderPLA, nil)
	requireRealizesChi(t, r, nil)
}

func TestCharacteristicConstantFunction(t *testing.T) {
	r := embedDoc(t, ".i 2\n.o 1\n-- 0\n.e\n", nil)
	requireRealizesChi(t, r, nil)
}

func TestCharacteristicThreeCycle(t *testing.T) {
	// chi realizes the cycle 000 -> 001 -> 010 -> 000 and fixes the rest.
	r, err := rcbdd.New(3)
	require.NoError(t, err)
	r.SetNumInputs(3)
	r.SetNumOutputs(3)

	fn := map[uint64]uint64{0: 1, 1: 2, 2: 0}
	for x := uint64(3); x < 8; x++ {
		fn[x] = x
	}
	r.SetChi(relationFromFunction(t, r, fn))
	require.True(t, r.IsBijection(r.Chi()))

	requireRealizesChi(t, r, nil)
}

func TestCharacteristicMethods(t *testing.T) {
	build := func(t *testing.T) *rcbdd.Relation {
		r, err := rcbdd.New(3)
		require.NoError(t, err)
		r.SetNumInputs(3)
		r.SetNumOutputs(3)
		fn := map[uint64]uint64{0: 3, 3: 5, 5: 0, 1: 1, 2: 6, 6: 2, 4: 7, 7: 4}
		r.SetChi(relationFromFunction(t, r, fn))
		return r
	}

	for name, method := range map[string]Method{
		"ResolveCycles":   MethodResolveCycles,
		"TranspositionsX": MethodTranspositionsX,
		"TranspositionsY": MethodTranspositionsY,
	} {
		t.Run(name, func(t *testing.T) {
			opts := DefaultCharacteristicOptions()
			opts.Method = method
			requireRealizesChi(t, build(t), opts)
		})
	}
}

func TestCharacteristicWireOrderingModes(t *testing.T) {
	for name, mode := range map[string]int{"Swap": 1, "Hamming": 2} {
		t.Run(name, func(t *testing.T) {
			r := embedDoc(t, halfAdderPLA, nil)
			opts := DefaultCharacteristicOptions()
			opts.Mode = mode
			requireRealizesChi(t, r, opts)
		})
	}
}

func TestCharacteristicDeterminism(t *testing.T) {
	run := func() string {
		r := embedDoc(t, halfAdderPLA, nil)
		circ, err := Characteristic(r, nil, nil)
		require.NoError(t, err)
		return gateSignature(circ)
	}
	require.Equal(t, run(), run(), "smart pickcube must make synthesis deterministic")
}

func TestCharacteristicRandomPickStillCorrect(t *testing.T) {
	r := embedDoc(t, halfAdderPLA, nil)
	opts := DefaultCharacteristicOptions()
	opts.SmartPickcube = false
	opts.Seed = 42
	requireRealizesChi(t, r, opts)
}

func TestCharacteristicIdentity(t *testing.T) {
	r, err := rcbdd.New(2)
	require.NoError(t, err)
	r.SetNumInputs(2)
	r.SetNumOutputs(2)
	r.SetChi(r.Identity())

	circ, err := Characteristic(r, nil, nil)
	require.NoError(t, err)
	require.Zero(t, circ.NumGates(), "identity needs no gates")
}

func TestCharacteristicStats(t *testing.T) {
	r := embedDoc(t, halfAdderPLA, nil)

	var stats CharacteristicStats
	circ, err := Characteristic(r, nil, &stats)
	require.NoError(t, err)

	require.Equal(t, uint64(circ.NumGates()), stats.GateCount)
	require.NotEmpty(t, stats.NodeCounts)
}

func TestCharacteristicCircuitMetadata(t *testing.T) {
	r := embedDoc(t, halfAdderPLA, nil)
	circ, err := Characteristic(r, nil, nil)
	require.NoError(t, err)

	require.Equal(t, 3, circ.Lines())
	require.Equal(t, []string{"0", "a", "b"}, circ.Inputs)
	require.Equal(t, "carry", circ.Outputs[0])
	require.Equal(t, "sum", circ.Outputs[1])
	require.NotNil(t, circ.Constants[0])
	require.False(t, *circ.Constants[0])
	require.Nil(t, circ.Constants[1])
	require.False(t, circ.Garbage[0])
	require.True(t, circ.Garbage[2])
}

func TestPathCubesFormEsop(t *testing.T) {
	r, err := rcbdd.New(2)
	require.NoError(t, err)
	m := r.Manager()

	f := m.Or(m.And(r.X(0), r.X(1)), m.Not(r.X(0)))
	cubes := PathCubes(m, f)
	require.NotEmpty(t, cubes)

	// Disjoint cubes: OR and XOR agree.
	rebuilt := m.Zero()
	for _, c := range cubes {
		node := m.CubeNode(c)
		require.True(t, m.IsZero(m.And(rebuilt, node)))
		rebuilt = m.Or(rebuilt, node)
	}
	require.True(t, m.Equal(rebuilt, f))
}
