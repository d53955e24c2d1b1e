// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package revsyn

import "fmt"

// Patterns encode line values as binary numbers: line 0 is the most
// significant bit, line lines-1 the least significant one. This matches the
// left-to-right reading of a cube string such as "0110".

// PatternBit reports the value of a line in a pattern over the given number
// of lines.
func PatternBit(pattern uint64, lines, line int) bool {
	return pattern>>(uint(lines-1-line))&1 == 1
}

// PatternSet returns the pattern with the given line set to v.
func PatternSet(pattern uint64, lines, line int, v bool) uint64 {
	mask := uint64(1) << uint(lines-1-line)
	if v {
		return pattern | mask
	}
	return pattern &^ mask
}

// fires reports whether all controls of the gate match the pattern.
func (g Gate) fires(pattern uint64, lines int) bool {
	for _, ctl := range g.Controls {
		if PatternBit(pattern, lines, ctl.Line) != ctl.Polarity {
			return false
		}
	}
	return true
}

// Apply computes the output pattern of a single gate.
func (g Gate) Apply(pattern uint64, lines int) uint64 {
	if !g.fires(pattern, lines) {
		return pattern
	}
	switch g.Kind {
	case ToffoliKind:
		return pattern ^ (uint64(1) << uint(lines-1-g.Targets[0]))
	case FredkinKind:
		t1, t2 := g.Targets[0], g.Targets[1]
		b1 := PatternBit(pattern, lines, t1)
		b2 := PatternBit(pattern, lines, t2)
		pattern = PatternSet(pattern, lines, t1, b2)
		return PatternSet(pattern, lines, t2, b1)
	default:
		panic(fmt.Sprintf("revsyn: unknown gate kind %d", g.Kind))
	}
}

// Execute runs the circuit on an input pattern and returns the output
// pattern. Circuits wider than 64 lines are not supported by the simulator.
func (c *Circuit) Execute(input uint64) uint64 {
	if c.lines > 64 {
		panic("revsyn: simulation limited to 64 lines")
	}
	pattern := input
	for _, g := range c.gates {
		pattern = g.Apply(pattern, c.lines)
	}
	return pattern
}

// Permutation returns the full permutation realized by the circuit, indexed
// by input pattern.
func (c *Circuit) Permutation() []uint64 {
	size := uint64(1) << uint(c.lines)
	perm := make([]uint64, size)
	for i := uint64(0); i < size; i++ {
		perm[i] = c.Execute(i)
	}
	return perm
}
