// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package synth

import (
	"time"

	"github.com/pkg/errors"

	"github.com/luxfi/revsyn"
)

// TruthTableSynth is a truth-table based synthesis step, pluggable into the
// SWOP wrapper.
type TruthTableSynth func(spec *revsyn.TruthTable) (*revsyn.Circuit, error)

// SWOPOptions configures the synthesis-with-output-permutation wrapper.
type SWOPOptions struct {
	// Enable turns the permutation search on; when false the inner
	// synthesizer runs exactly once on the unpermuted specification.
	Enable bool
	// Exhaustive iterates all output permutations in lexicographic order
	// instead of sifting.
	Exhaustive bool
	// Synthesis is the inner synthesizer; transformation-based synthesis
	// with default options when nil.
	Synthesis TruthTableSynth
	// Cost compares candidate circuits; gate count when nil.
	Cost revsyn.CostFunc
	// StepFunc is called after every permutation step, e.g. for progress
	// reporting.
	StepFunc func()
}

// DefaultSWOPOptions returns the default wrapper configuration.
func DefaultSWOPOptions() *SWOPOptions {
	return &SWOPOptions{Enable: true}
}

// SWOP runs a truth-table synthesizer under output permutations and keeps
// the cheapest circuit. Sifting moves one output index at a time to its
// best position; the exhaustive mode scans all permutations.
func SWOP(spec *revsyn.TruthTable, opts *SWOPOptions, stats *Stats) (*revsyn.Circuit, error) {
	if opts == nil {
		opts = DefaultSWOPOptions()
	}
	start := time.Now()
	defer func() {
		if stats != nil {
			stats.Runtime = time.Since(start)
		}
	}()

	synthesis := opts.Synthesis
	if synthesis == nil {
		synthesis = func(s *revsyn.TruthTable) (*revsyn.Circuit, error) {
			return TransformationBased(s, nil, nil)
		}
	}
	cost := opts.Cost
	if cost == nil {
		cost = revsyn.GateCount
	}
	step := opts.StepFunc
	if step == nil {
		step = func() {}
	}

	// The wrapper permutes its own copy of the specification.
	spec2 := spec.Copy()

	if opts.Exhaustive {
		return swopExhaustive(spec2, opts, synthesis, cost, step)
	}
	return swopSifting(spec2, opts, synthesis, cost, step)
}

func swopExhaustive(spec2 *revsyn.TruthTable, opts *SWOPOptions, synthesis TruthTableSynth, cost revsyn.CostFunc, step func()) (*revsyn.Circuit, error) {
	var best *revsyn.Circuit
	var lastErr error

	for {
		tmp, err := synthesis(spec2)
		if err != nil {
			lastErr = err
		} else if best == nil || cost(tmp) < cost(best) {
			best = tmp
		}
		step()

		if !(opts.Enable && spec2.NextPermutation()) {
			break
		}
	}

	if best == nil {
		return nil, errors.Wrap(lastErr, "no permutation could be synthesized")
	}
	return best, nil
}

func swopSifting(spec2 *revsyn.TruthTable, opts *SWOPOptions, synthesis TruthTableSynth, cost revsyn.CostFunc, step func()) (*revsyn.Circuit, error) {
	nout := spec2.NumOutputs()

	perm := make([]int, nout)
	for i := range perm {
		perm[i] = i
	}
	bestPerm := append([]int(nil), perm...)

	if opts.Enable {
		minCosts := uint64(0)

		for i := 0; i < nout-1; i++ {
			current := indexOf(perm, i)
			bestPosition := current

			for {
				spec2.SetPermutation(perm)
				if tmp, err := synthesis(spec2); err == nil {
					if c := cost(tmp); minCosts == 0 || c < minCosts {
						minCosts = c
						bestPosition = current
						bestPerm = append([]int(nil), perm...)
					}
				}

				next := -1
				for j := current + 1; j < nout; j++ {
					if perm[j] > perm[current] {
						next = j
						break
					}
				}
				if next == -1 {
					step()
					break
				}
				perm[current], perm[next] = perm[next], perm[current]
				current = next
				step()
			}

			perm = append(perm[:indexOf(perm, i)], perm[indexOf(perm, i)+1:]...)
			perm = append(perm, 0)
			copy(perm[bestPosition+1:], perm[bestPosition:])
			perm[bestPosition] = i
		}
	}

	spec2.SetPermutation(bestPerm)
	circ, err := synthesis(spec2)
	if err != nil {
		return nil, err
	}
	step()
	return circ, nil
}

func indexOf(perm []int, v int) int {
	for i, p := range perm {
		if p == v {
			return i
		}
	}
	return -1
}
