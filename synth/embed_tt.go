// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package synth

import (
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/luxfi/revsyn"
)

// EmbedTruthTableOptions configures the truth-table embedder.
type EmbedTruthTableOptions struct {
	// GarbageName labels the introduced garbage outputs.
	GarbageName string
	// OutputOrder permutes the original outputs among the embedded lines;
	// identity when empty or of wrong length.
	OutputOrder []int
}

// DefaultEmbedTruthTableOptions returns the default embedder configuration.
func DefaultEmbedTruthTableOptions() *EmbedTruthTableOptions {
	return &EmbedTruthTableOptions{GarbageName: "g"}
}

// EmbedTruthTable embeds a small, fully enumerated specification into a
// reversible one by a greedy Hamming-distance assignment: the output value
// frequencies determine the number of garbage lines, every original row is
// assigned the closest extended output generated for its image, and the
// remaining input patterns are filled with the closest leftover outputs.
func EmbedTruthTable(base *revsyn.TruthTable, opts *EmbedTruthTableOptions, stats *Stats) (*revsyn.TruthTable, error) {
	if opts == nil {
		opts = DefaultEmbedTruthTableOptions()
	}
	start := time.Now()
	defer func() {
		if stats != nil {
			stats.Runtime = time.Since(start)
		}
	}()

	n, m := base.NumInputs(), base.NumOutputs()

	// Output value frequencies.
	counts := make(map[uint64]int)
	for i := 0; i < base.NumRows(); i++ {
		_, out := base.Row(i)
		ov, err := revsyn.CubeToUint64(out)
		if err != nil {
			return nil, errors.Wrap(err, "truth table must be fully specified")
		}
		counts[ov]++
	}

	maxCount := 0
	values := make([]uint64, 0, len(counts))
	for v, c := range counts {
		values = append(values, v)
		if c > maxCount {
			maxCount = c
		}
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	ag := ceilLog2(maxCount)
	if d := n - m; d > ag {
		ag = d
	}
	cons := m + ag - n
	bw := m + ag

	outputOrder := append([]int(nil), opts.OutputOrder...)
	if len(outputOrder) != m {
		outputOrder = outputOrder[:0]
		for i := 0; i < m; i++ {
			outputOrder = append(outputOrder, i)
		}
	}

	// Line positions not taken by an original output receive the garbage
	// bits.
	var leftPositions []int
	for order := 0; order < bw; order++ {
		if indexOf(outputOrder, order) == -1 {
			leftPositions = append(leftPositions, order)
		}
	}

	// Candidate extended outputs per original value.
	assignments := make(map[uint64][]uint64)
	for _, v := range values {
		var baseBits uint64
		for j := 0; j < m; j++ {
			bit := v >> uint(m-1-j) & 1
			baseBits |= bit << uint(bw-1-outputOrder[j])
		}

		cands := make([]uint64, 0, 1<<uint(ag))
		for j := uint64(0); j < 1<<uint(ag); j++ {
			assignment := baseBits
			for k := 0; k < ag; k++ {
				bit := j >> uint(ag-1-k) & 1
				assignment |= bit << uint(bw-1-leftPositions[k])
			}
			cands = append(cands, assignment)
		}
		assignments[v] = cands
	}

	allOutputs := make([]uint64, 1<<uint(bw))
	for i := range allOutputs {
		allOutputs[i] = uint64(i)
	}

	newSpec := make(map[uint64]uint64)

	for i := 0; i < base.NumRows(); i++ {
		in, out := base.Row(i)
		iv, err := revsyn.CubeToUint64(in)
		if err != nil {
			return nil, errors.Wrap(err, "truth table must be fully specified")
		}
		ov, _ := revsyn.CubeToUint64(out)

		cands := assignments[ov]
		best := closestIndex(cands, iv)
		newSpec[iv] = cands[best]

		allOutputs = removeValue(allOutputs, cands[best])
		assignments[ov] = append(cands[:best], cands[best+1:]...)
	}

	// Fill the patterns the base specification never mentions.
	for i := uint64(0); i < 1<<uint(bw); i++ {
		if _, ok := newSpec[i]; ok {
			continue
		}
		best := closestIndex(allOutputs, i)
		newSpec[i] = allOutputs[best]
		allOutputs = append(allOutputs[:best], allOutputs[best+1:]...)
	}

	spec := revsyn.NewTruthTable(bw, bw)
	for i := uint64(0); i < 1<<uint(bw); i++ {
		if err := spec.Add(revsyn.Uint64ToCube(i, bw), revsyn.Uint64ToCube(newSpec[i], bw)); err != nil {
			return nil, err
		}
	}

	for i := 0; i < cons; i++ {
		spec.Inputs[i] = "0"
		f := false
		spec.Constants[i] = &f
	}
	for i := 0; i < n; i++ {
		if i < len(base.Inputs) && base.Inputs[i] != "" {
			spec.Inputs[cons+i] = base.Inputs[i]
		} else {
			spec.Inputs[cons+i] = "i"
		}
	}

	for i := range spec.Outputs {
		spec.Outputs[i] = opts.GarbageName
		spec.Garbage[i] = true
	}
	for j, pos := range outputOrder {
		if j < len(base.Outputs) && base.Outputs[j] != "" {
			spec.Outputs[pos] = base.Outputs[j]
		} else {
			spec.Outputs[pos] = "o"
		}
		spec.Garbage[pos] = false
	}

	return spec, nil
}

func ceilLog2(v int) int {
	exp := 0
	for 1<<uint(exp) < v {
		exp++
	}
	return exp
}

// closestIndex returns the index of the candidate with minimal Hamming
// distance to the reference pattern.
func closestIndex(cands []uint64, ref uint64) int {
	best := 0
	for i := 1; i < len(cands); i++ {
		if hammingDistance(ref, cands[i]) < hammingDistance(ref, cands[best]) {
			best = i
		}
	}
	return best
}

func removeValue(values []uint64, v uint64) []uint64 {
	for i, x := range values {
		if x == v {
			return append(values[:i], values[i+1:]...)
		}
	}
	return values
}
