// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package synth

import (
	"fmt"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/luxfi/revsyn"
	"github.com/luxfi/revsyn/pla"
)

// ReorderFunc permutes the cubes of an ESOP cover in place before
// translation, typically to reduce the number of polarity NOT gates.
type ReorderFunc func(cubes []pla.Cube)

// NoReordering keeps the cover order.
func NoReordering(cubes []pla.Cube) {}

// WeightedReordering groups cubes by the literal polarity of the most
// valuable variable, recursively: alpha weighs rarity of the variable,
// beta its polarity skew.
func WeightedReordering(alpha, beta float64) ReorderFunc {
	return func(cubes []pla.Cube) {
		if len(cubes) == 0 {
			return
		}
		vars := make([]int, len(cubes[0].In))
		for i := range vars {
			vars[i] = i
		}
		weightedReorder(cubes, vars, alpha, beta)
	}
}

func weightedReorder(cubes []pla.Cube, vars []int, alpha, beta float64) {
	if len(cubes) == 0 || len(vars) == 0 {
		return
	}

	costs := make([]float64, len(vars))
	for i, v := range vars {
		specified, skew := 0, 0
		for _, c := range cubes {
			switch c.In[v] {
			case '1':
				specified++
				skew++
			case '0':
				specified++
				skew--
			}
		}
		if specified > 0 {
			costs[i] = alpha*(1/float64(specified)) + beta*float64(skew)
		}
	}

	maxIndex := 0
	for i := range costs {
		if costs[i] > costs[maxIndex] {
			maxIndex = i
		}
	}
	best := vars[maxIndex]

	sort.SliceStable(cubes, func(i, j int) bool {
		return cubes[i].In[best] == '1' && cubes[j].In[best] != '1'
	})
	split := len(cubes)
	for i, c := range cubes {
		if c.In[best] != '1' {
			split = i
			break
		}
	}

	rest := make([]int, 0, len(vars)-1)
	rest = append(rest, vars[:maxIndex]...)
	rest = append(rest, vars[maxIndex+1:]...)

	weightedReorder(cubes[:split], rest, alpha, beta)
	weightedReorder(cubes[split:], rest, alpha, beta)
}

// ESOPOptions configures the ESOP-to-circuit translation.
type ESOPOptions struct {
	// SeparatePolarities doubles every input line into a positive and an
	// inverted copy so no polarity NOT gates are needed. Incompatible with
	// NegativeControlLines.
	SeparatePolarities bool
	// NegativeControlLines uses polarized controls instead of NOT-gate
	// polarity switching.
	NegativeControlLines bool
	// ShareCubeOnTarget realizes multi-output cubes with one Toffoli and a
	// CNOT fan-out instead of one Toffoli per output.
	ShareCubeOnTarget bool
	// Reordering permutes the cubes; only applied with positive controls.
	Reordering ReorderFunc
	// GarbageName labels garbage output lines.
	GarbageName string
}

// DefaultESOPOptions returns the default translator configuration.
func DefaultESOPOptions() *ESOPOptions {
	return &ESOPOptions{
		NegativeControlLines: true,
		ShareCubeOnTarget:    true,
		Reordering:           WeightedReordering(0.5, 0.5),
		GarbageName:          "--",
	}
}

// ESOP translates an exclusive-sum-of-products cover into a circuit: one
// Toffoli per (cube, output) pair, with the configured polarity and
// target-sharing modes.
func ESOP(doc *pla.Document, opts *ESOPOptions, stats *Stats) (*revsyn.Circuit, error) {
	if opts == nil {
		opts = DefaultESOPOptions()
	}
	if opts.SeparatePolarities && opts.NegativeControlLines {
		return nil, errors.New("cannot separate polarities with negative control lines enabled")
	}
	start := time.Now()
	defer func() {
		if stats != nil {
			stats.Runtime = time.Since(start)
		}
	}()

	n, m := doc.NumInputs, doc.NumOutputs
	inputNames := doc.InputLabels
	if len(inputNames) == 0 {
		inputNames = defaultNames("x%d", n)
	}
	outputNames := doc.OutputLabels
	if len(outputNames) == 0 {
		outputNames = defaultNames("y%d", m)
	}

	if opts.SeparatePolarities {
		return esopSeparatePolarities(doc, opts, inputNames, outputNames)
	}
	return esopShared(doc, opts, inputNames, outputNames)
}

// esopSeparatePolarities uses 2n input lines: the original inputs plus an
// inverted copy of each, prepared by a CNOT cascade.
func esopSeparatePolarities(doc *pla.Document, opts *ESOPOptions, inputNames, outputNames []string) (*revsyn.Circuit, error) {
	n, m := doc.NumInputs, doc.NumOutputs
	circ := revsyn.NewCircuit(2*n + m)

	for i := 0; i < n; i++ {
		circ.Inputs[i] = inputNames[i]
		circ.Inputs[n+i] = "1"
		circ.SetConstant(n+i, true)
		circ.Outputs[i] = opts.GarbageName
		circ.Outputs[n+i] = opts.GarbageName
		circ.Garbage[i] = true
		circ.Garbage[n+i] = true
	}
	for i := 0; i < m; i++ {
		circ.Inputs[2*n+i] = "0"
		circ.SetConstant(2*n+i, false)
		circ.Outputs[2*n+i] = outputNames[i]
	}

	// Inverted copies.
	for i := 0; i < n; i++ {
		circ.Append(revsyn.CNOT(i, n+i))
	}

	for _, cube := range doc.Cubes {
		var controls []revsyn.Control
		for i := 0; i < n; i++ {
			switch cube.In[i] {
			case '1':
				controls = append(controls, revsyn.Pos(i))
			case '0':
				controls = append(controls, revsyn.Pos(n+i))
			}
		}
		for i := 0; i < m; i++ {
			if cube.Out[i] == '1' {
				circ.Append(revsyn.Toffoli(controls, 2*n+i))
			}
		}
	}
	return circ, nil
}

// esopShared uses n+m lines and either polarized controls or NOT-gate
// polarity switching on the input lines.
func esopShared(doc *pla.Document, opts *ESOPOptions, inputNames, outputNames []string) (*revsyn.Circuit, error) {
	n, m := doc.NumInputs, doc.NumOutputs

	cubes := append([]pla.Cube(nil), doc.Cubes...)
	if !opts.NegativeControlLines && opts.Reordering != nil {
		opts.Reordering(cubes)
	}

	circ := revsyn.NewCircuit(n + m)
	for i := 0; i < n; i++ {
		circ.Inputs[i] = inputNames[i]
		circ.Outputs[i] = opts.GarbageName
		circ.Garbage[i] = true
	}
	for i := 0; i < m; i++ {
		circ.Inputs[n+i] = "0"
		circ.SetConstant(n+i, false)
		circ.Outputs[n+i] = outputNames[i]
	}

	polarity := make([]bool, n)
	for i := range polarity {
		polarity[i] = true
	}

	for _, cube := range cubes {
		var controls []revsyn.Control
		for i := 0; i < n; i++ {
			bit := cube.In[i]
			if bit != '0' && bit != '1' {
				continue
			}
			val := bit == '1'
			if opts.NegativeControlLines {
				controls = append(controls, revsyn.Control{Line: i, Polarity: val})
				continue
			}
			if polarity[i] != val {
				circ.Append(revsyn.NOT(i))
				polarity[i] = val
			}
			controls = append(controls, revsyn.Pos(i))
		}

		if !opts.ShareCubeOnTarget {
			for i := 0; i < m; i++ {
				if cube.Out[i] == '1' {
					circ.Append(revsyn.Toffoli(controls, n+i))
				}
			}
			continue
		}

		first := -1
		pos := circ.NumGates()
		for i := 0; i < m; i++ {
			if cube.Out[i] != '1' {
				continue
			}
			if first == -1 {
				circ.Append(revsyn.Toffoli(controls, n+i))
				first = n + i
			} else {
				// Conjugate the shared Toffoli with a CNOT fan-out.
				circ.Insert(pos, revsyn.CNOT(first, n+i))
				circ.Append(revsyn.CNOT(first, n+i))
			}
		}
	}

	// Restore input-line polarities so constant-free lines leave the
	// cascade unchanged.
	for i := 0; i < n; i++ {
		if !polarity[i] {
			circ.Append(revsyn.NOT(i))
			polarity[i] = true
		}
	}

	return circ, nil
}

func defaultNames(format string, n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf(format, i)
	}
	return names
}
