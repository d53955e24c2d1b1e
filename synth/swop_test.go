// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package synth

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/revsyn"
)

func swopTestSpec() *revsyn.TruthTable {
	return revsyn.FromPermutation([]uint64{0, 1, 2, 3, 4, 5, 7, 6}, 3)
}

func TestSWOPDisabledMatchesInnerSynthesizer(t *testing.T) {
	spec := swopTestSpec()

	direct, err := TransformationBased(spec, nil, nil)
	require.NoError(t, err)

	wrapped, err := SWOP(spec, &SWOPOptions{Enable: false}, nil)
	require.NoError(t, err)

	require.Equal(t, gateSignature(direct), gateSignature(wrapped))
}

func TestSWOPExhaustiveNeverWorse(t *testing.T) {
	spec := swopTestSpec()

	direct, err := TransformationBased(spec, nil, nil)
	require.NoError(t, err)

	best, err := SWOP(spec, &SWOPOptions{Enable: true, Exhaustive: true}, nil)
	require.NoError(t, err)

	require.LessOrEqual(t, revsyn.GateCount(best), revsyn.GateCount(direct))
}

func TestSWOPExhaustiveVisitsAllPermutations(t *testing.T) {
	spec := swopTestSpec()

	steps := 0
	_, err := SWOP(spec, &SWOPOptions{
		Enable:     true,
		Exhaustive: true,
		StepFunc:   func() { steps++ },
	}, nil)
	require.NoError(t, err)
	require.Equal(t, 6, steps, "3! output permutations")
}

func TestSWOPSifting(t *testing.T) {
	spec := swopTestSpec()

	steps := 0
	circ, err := SWOP(spec, &SWOPOptions{
		Enable:   true,
		StepFunc: func() { steps++ },
	}, nil)
	require.NoError(t, err)
	require.NotNil(t, circ)
	require.Positive(t, steps)
}

func TestSWOPCustomCostAndSynthesis(t *testing.T) {
	spec := swopTestSpec()

	calls := 0
	synthesis := func(s *revsyn.TruthTable) (*revsyn.Circuit, error) {
		calls++
		return TranspositionBased(s, nil)
	}

	circ, err := SWOP(spec, &SWOPOptions{
		Enable:     true,
		Exhaustive: true,
		Synthesis:  synthesis,
		Cost:       revsyn.QuantumCost,
	}, nil)
	require.NoError(t, err)
	require.NotNil(t, circ)
	require.Equal(t, 6, calls)
}

func TestSWOPDisabledRealizesFunction(t *testing.T) {
	// With the search disabled the wrapper synthesizes the unpermuted
	// specification, so its circuit realizes the original function.
	spec := swopTestSpec()

	circ, err := SWOP(spec, &SWOPOptions{Enable: false}, nil)
	require.NoError(t, err)
	requireRealizes(t, circ, spec)
}
