// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package synth

import (
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/luxfi/revsyn"
)

// TranspositionBased synthesizes a fully specified truth table by
// decomposing its permutation into cycles. Each cycle is rotated so its
// maximum-Hamming-distance edge is cut, then realized as a chain of
// transposition circuits.
func TranspositionBased(spec *revsyn.TruthTable, stats *Stats) (*revsyn.Circuit, error) {
	start := time.Now()
	defer func() {
		if stats != nil {
			stats.Runtime = time.Since(start)
		}
	}()

	if !spec.FullySpecified() {
		return nil, errors.New("truth table spec is not fully specified")
	}

	bw := spec.NumOutputs()
	circ := revsyn.NewCircuit(bw)
	circ.CopyMetadata(spec)

	values := make(map[uint64]uint64, spec.NumRows())
	keys := make([]uint64, 0, spec.NumRows())
	for i := 0; i < spec.NumRows(); i++ {
		in, out := spec.Row(i)
		iv, err := revsyn.CubeToUint64(in)
		if err != nil {
			return nil, err
		}
		ov, err := revsyn.CubeToUint64(out)
		if err != nil {
			return nil, err
		}
		values[iv] = ov
		keys = append(keys, iv)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	var cycles [][]uint64
	for _, startValue := range keys {
		if _, ok := values[startValue]; !ok {
			continue
		}
		var cycle []uint64
		target := startValue
		for {
			cycle = append(cycle, target)
			next := values[target]
			delete(values, target)
			target = next
			if target == startValue {
				break
			}
		}
		cycles = append(cycles, cycle)
	}

	// Rotate each cycle so its costliest edge is the one left unrealized.
	for _, cycle := range cycles {
		maxDistance, maxIndex := 0, 0
		for i := range cycle {
			first := cycle[i]
			second := cycle[(i+1)%len(cycle)]
			if d := hammingDistance(first, second); d > maxDistance {
				maxDistance = d
				maxIndex = i
			}
		}

		rotated := append(append([]uint64(nil), cycle[maxIndex+1:]...), cycle[:maxIndex+1]...)
		copy(cycle, rotated)
		for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
			cycle[i], cycle[j] = cycle[j], cycle[i]
		}
	}

	for _, cycle := range cycles {
		for i := 0; i+1 < len(cycle); i++ {
			circ.AppendCircuit(revsyn.TranspositionToCircuit(cycle[i], cycle[i+1], bw))
		}
	}

	return circ, nil
}
