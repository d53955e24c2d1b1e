// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

// Package revsyn provides the data model for reversible logic circuits:
// generalized Toffoli and Fredkin gates, circuits with per-line metadata,
// binary truth tables, circuit simulation and cost functions. The synthesis
// algorithms that produce circuits live in the synth subpackage; the
// characteristic-relation machinery lives in rcbdd.
package revsyn

import "fmt"

// Control is a polarized control line of a gate. A positive control fires
// when the line carries 1, a negative control when it carries 0.
type Control struct {
	Line     int
	Polarity bool
}

// Pos returns a positive control on the given line.
func Pos(line int) Control {
	return Control{Line: line, Polarity: true}
}

// Neg returns a negative control on the given line.
func Neg(line int) Control {
	return Control{Line: line, Polarity: false}
}

// GateKind discriminates the supported reversible gate families.
type GateKind uint8

const (
	// ToffoliKind is a generalized Toffoli: one target line inverted iff
	// all controls fire. CNOT and NOT are Toffolis with one and zero
	// controls.
	ToffoliKind GateKind = iota
	// FredkinKind is a controlled swap of two target lines.
	FredkinKind
)

// Gate is a single reversible gate. Toffoli gates carry exactly one target,
// Fredkin gates exactly two.
type Gate struct {
	Kind     GateKind
	Controls []Control
	Targets  []int
}

// Toffoli builds a generalized Toffoli gate.
func Toffoli(controls []Control, target int) Gate {
	return Gate{Kind: ToffoliKind, Controls: controls, Targets: []int{target}}
}

// Fredkin builds a controlled swap gate.
func Fredkin(controls []Control, t1, t2 int) Gate {
	return Gate{Kind: FredkinKind, Controls: controls, Targets: []int{t1, t2}}
}

// CNOT builds a Toffoli with a single positive control.
func CNOT(control, target int) Gate {
	return Toffoli([]Control{Pos(control)}, target)
}

// NOT builds an uncontrolled Toffoli.
func NOT(target int) Gate {
	return Toffoli(nil, target)
}

// Target returns the single target of a Toffoli gate.
func (g Gate) Target() int {
	return g.Targets[0]
}

// Circuit is an ordered sequence of gates over a fixed number of lines,
// together with per-line metadata: input and output labels, constant input
// values (nil when the line carries a primary input) and garbage flags.
type Circuit struct {
	gates []Gate
	lines int

	Inputs    []string
	Outputs   []string
	Constants []*bool
	Garbage   []bool
}

// NewCircuit creates an empty circuit with the given number of lines.
func NewCircuit(lines int) *Circuit {
	c := &Circuit{}
	c.SetLines(lines)
	return c
}

// Lines returns the number of lines.
func (c *Circuit) Lines() int {
	return c.lines
}

// SetLines resizes the circuit and its metadata to the given line count.
func (c *Circuit) SetLines(lines int) {
	c.lines = lines
	c.Inputs = resizeStrings(c.Inputs, lines)
	c.Outputs = resizeStrings(c.Outputs, lines)
	c.Constants = resizeConstants(c.Constants, lines)
	c.Garbage = resizeBools(c.Garbage, lines)
}

// Gates returns the gate sequence. The slice is owned by the circuit.
func (c *Circuit) Gates() []Gate {
	return c.gates
}

// NumGates returns the number of gates.
func (c *Circuit) NumGates() int {
	return len(c.gates)
}

// Clear removes all gates and resets the metadata, keeping the line count.
func (c *Circuit) Clear() {
	c.gates = nil
	lines := c.lines
	c.Inputs = nil
	c.Outputs = nil
	c.Constants = nil
	c.Garbage = nil
	c.SetLines(lines)
}

// Append adds a gate at the end of the circuit.
func (c *Circuit) Append(g Gate) {
	c.gates = append(c.gates, g)
}

// Prepend adds a gate at the beginning of the circuit.
func (c *Circuit) Prepend(g Gate) {
	c.Insert(0, g)
}

// Insert adds a gate before position pos.
func (c *Circuit) Insert(pos int, g Gate) {
	if pos < 0 || pos > len(c.gates) {
		panic(fmt.Sprintf("revsyn: gate insert position %d out of range", pos))
	}
	c.gates = append(c.gates, Gate{})
	copy(c.gates[pos+1:], c.gates[pos:])
	c.gates[pos] = g
}

// AppendCircuit adds all gates of other at the end of the circuit.
func (c *Circuit) AppendCircuit(other *Circuit) {
	c.gates = append(c.gates, other.gates...)
}

// PrependCircuit adds all gates of other at the beginning of the circuit.
func (c *Circuit) PrependCircuit(other *Circuit) {
	c.gates = append(other.gates[:len(other.gates):len(other.gates)], c.gates...)
}

// SetConstant pins the input of a line to a constant value.
func (c *Circuit) SetConstant(line int, v bool) {
	b := v
	c.Constants[line] = &b
}

// CopyMetadata copies line labels, constants and garbage flags from a truth
// table specification.
func (c *Circuit) CopyMetadata(t *TruthTable) {
	copy(c.Inputs, t.Inputs)
	copy(c.Outputs, t.Outputs)
	for i, v := range t.Constants {
		if i < len(c.Constants) {
			c.Constants[i] = cloneConstant(v)
		}
	}
	copy(c.Garbage, t.Garbage)
}

// Copy returns a deep copy of the circuit.
func (c *Circuit) Copy() *Circuit {
	dup := NewCircuit(c.lines)
	dup.gates = make([]Gate, len(c.gates))
	copy(dup.gates, c.gates)
	copy(dup.Inputs, c.Inputs)
	copy(dup.Outputs, c.Outputs)
	for i, v := range c.Constants {
		dup.Constants[i] = cloneConstant(v)
	}
	copy(dup.Garbage, c.Garbage)
	return dup
}

func cloneConstant(v *bool) *bool {
	if v == nil {
		return nil
	}
	b := *v
	return &b
}

func resizeStrings(s []string, n int) []string {
	out := make([]string, n)
	copy(out, s)
	return out
}

func resizeConstants(s []*bool, n int) []*bool {
	out := make([]*bool, n)
	copy(out, s)
	return out
}

func resizeBools(s []bool, n int) []bool {
	out := make([]bool, n)
	copy(out, s)
	return out
}
