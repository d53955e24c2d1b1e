// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package rcbdd

import (
	"fmt"
	"io"

	"github.com/luxfi/revsyn"
	"github.com/luxfi/revsyn/bdd"
	"github.com/luxfi/revsyn/pla"
)

// EachCube enumerates the cubes of chi as (input, output) strings of k
// tri-state bits each. The callback returns false to stop.
func (r *Relation) EachCube(fn func(in, out string) bool) {
	inBits := make([]byte, r.k)
	outBits := make([]byte, r.k)
	r.man.ForeachCube(r.chi, func(cube bdd.Cube) bool {
		for i := 0; i < r.k; i++ {
			inBits[i] = triChar(cube[XVar(i)])
			outBits[i] = triChar(cube[YVar(i)])
		}
		return fn(string(inBits), string(outBits))
	})
}

func triChar(v int8) byte {
	switch v {
	case 0:
		return '0'
	case 1:
		return '1'
	default:
		return '-'
	}
}

// TruthTable enumerates chi into a truth table over k inputs and k outputs.
func (r *Relation) TruthTable() (*revsyn.TruthTable, error) {
	t := revsyn.NewTruthTable(r.k, r.k)

	var addErr error
	r.EachCube(func(in, out string) bool {
		if err := t.Add(in, out); err != nil {
			addErr = err
			return false
		}
		return true
	})
	if addErr != nil {
		return nil, addErr
	}

	s := r.k - r.nin
	for i := 0; i < r.k; i++ {
		t.Inputs[i] = r.WireInputLabel(i)
		t.Outputs[i] = r.WireOutputLabel(i)
		if i < s {
			v := r.constValue
			t.Constants[i] = &v
		}
		t.Garbage[i] = i >= r.nout
	}
	return t, nil
}

// WireInputLabel names the input side of a wire: the constant value for
// introduced wires, the primary input name otherwise.
func (r *Relation) WireInputLabel(i int) string {
	s := r.k - r.nin
	if i < s {
		if r.constValue {
			return "1"
		}
		return "0"
	}
	if j := i - s; j < len(r.inputLabels) {
		return r.inputLabels[j]
	}
	return fmt.Sprintf("x%d", i-s)
}

// WireOutputLabel names the output side of a wire: the primary output name
// for the first m wires, a garbage name otherwise.
func (r *Relation) WireOutputLabel(i int) string {
	if i < r.nout {
		if i < len(r.outputLabels) {
			return r.outputLabels[i]
		}
		return fmt.Sprintf("y%d", i)
	}
	return fmt.Sprintf("g%d", i-r.nout)
}

// PLADocument renders chi as a PLA cover over k inputs and k outputs.
func (r *Relation) PLADocument() *pla.Document {
	doc := &pla.Document{NumInputs: r.k, NumOutputs: r.k}
	for i := 0; i < r.k; i++ {
		doc.InputLabels = append(doc.InputLabels, r.WireInputLabel(i))
		doc.OutputLabels = append(doc.OutputLabels, r.WireOutputLabel(i))
	}
	r.EachCube(func(in, out string) bool {
		doc.Cubes = append(doc.Cubes, pla.Cube{In: in, Out: out})
		return true
	})
	return doc
}

// WritePLA writes chi as a PLA cover.
func (r *Relation) WritePLA(w io.Writer) error {
	return r.PLADocument().Write(w)
}

// DumpTruthTable writes the cubes of chi line by line, for diagnostics.
func (r *Relation) DumpTruthTable(w io.Writer) {
	r.EachCube(func(in, out string) bool {
		fmt.Fprintf(w, "%s |-> %s\n", in, out)
		return true
	})
}
