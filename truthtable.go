// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package revsyn

import (
	"strings"

	"github.com/pkg/errors"
)

// TruthTable is an ordered list of (input cube, output cube) rows over
// tri-state bits {0,1,-}, together with the same per-line metadata a circuit
// carries. An output permutation can be installed to reorder output columns
// without rewriting the rows; it is used by the SWOP synthesis wrapper.
type TruthTable struct {
	nin, nout int
	ins       []string
	outs      []string
	perm      []int

	Inputs    []string
	Outputs   []string
	Constants []*bool
	Garbage   []bool
}

// NewTruthTable creates an empty truth table with the given arity.
func NewTruthTable(nin, nout int) *TruthTable {
	t := &TruthTable{nin: nin, nout: nout}
	t.Inputs = make([]string, nin)
	t.Outputs = make([]string, nout)
	t.Constants = make([]*bool, nin)
	t.Garbage = make([]bool, nout)
	t.perm = identityPerm(nout)
	return t
}

// FromPermutation builds a fully specified truth table from a bitset-indexed
// function over n lines.
func FromPermutation(fn []uint64, n int) *TruthTable {
	t := NewTruthTable(n, n)
	for i, v := range fn {
		t.mustAdd(Uint64ToCube(uint64(i), n), Uint64ToCube(v, n))
	}
	return t
}

// NumInputs returns the number of input columns.
func (t *TruthTable) NumInputs() int { return t.nin }

// NumOutputs returns the number of output columns.
func (t *TruthTable) NumOutputs() int { return t.nout }

// NumRows returns the number of rows.
func (t *TruthTable) NumRows() int { return len(t.ins) }

// Add appends a row. Cube lengths must match the table arity; input bits
// are over {0,1,-}, output bits over {0,1,-}.
func (t *TruthTable) Add(in, out string) error {
	if len(in) != t.nin {
		return errors.Errorf("input cube %q does not have %d bits", in, t.nin)
	}
	if len(out) != t.nout {
		return errors.Errorf("output cube %q does not have %d bits", out, t.nout)
	}
	if i := strings.IndexFunc(in, isNotTriState); i >= 0 {
		return errors.Errorf("invalid character %q in input cube %q", in[i], in)
	}
	if i := strings.IndexFunc(out, isNotTriState); i >= 0 {
		return errors.Errorf("invalid character %q in output cube %q", out[i], out)
	}
	t.ins = append(t.ins, in)
	t.outs = append(t.outs, out)
	return nil
}

func (t *TruthTable) mustAdd(in, out string) {
	if err := t.Add(in, out); err != nil {
		panic(err)
	}
}

// Row returns the i-th row with the output permutation applied.
func (t *TruthTable) Row(i int) (in, out string) {
	in = t.ins[i]
	raw := t.outs[i]
	if permIsIdentity(t.perm) {
		return in, raw
	}
	var sb strings.Builder
	for _, src := range t.perm {
		sb.WriteByte(raw[src])
	}
	return in, sb.String()
}

// PermutedOutputs returns the output labels with the permutation applied.
func (t *TruthTable) PermutedOutputs() []string {
	outs := make([]string, t.nout)
	for j, src := range t.perm {
		if src < len(t.Outputs) {
			outs[j] = t.Outputs[src]
		}
	}
	return outs
}

// FullySpecified reports whether the table is square (as many outputs as
// inputs), no row contains a don't-care bit and there are 2^n rows.
func (t *TruthTable) FullySpecified() bool {
	if t.nin != t.nout {
		return false
	}
	if uint64(len(t.ins)) != uint64(1)<<uint(t.nin) {
		return false
	}
	for i := range t.ins {
		if strings.ContainsRune(t.ins[i], '-') || strings.ContainsRune(t.outs[i], '-') {
			return false
		}
	}
	return true
}

// SetPermutation installs an output permutation; position j of every row
// output shows the raw column perm[j].
func (t *TruthTable) SetPermutation(perm []int) {
	t.perm = append([]int(nil), perm...)
}

// Permutation returns a copy of the installed output permutation.
func (t *TruthTable) Permutation() []int {
	return append([]int(nil), t.perm...)
}

// NextPermutation advances the output permutation to its lexicographic
// successor. It returns false once the permutation wraps around to the
// identity, mirroring the exhaustive iteration order of the SWOP wrapper.
func (t *TruthTable) NextPermutation() bool {
	return nextPermutation(t.perm)
}

// Copy returns a deep copy of the truth table.
func (t *TruthTable) Copy() *TruthTable {
	dup := NewTruthTable(t.nin, t.nout)
	dup.ins = append([]string(nil), t.ins...)
	dup.outs = append([]string(nil), t.outs...)
	dup.perm = append([]int(nil), t.perm...)
	copy(dup.Inputs, t.Inputs)
	copy(dup.Outputs, t.Outputs)
	for i, v := range t.Constants {
		dup.Constants[i] = cloneConstant(v)
	}
	copy(dup.Garbage, t.Garbage)
	return dup
}

// CubeToUint64 converts a fully specified cube string to its pattern value.
func CubeToUint64(cube string) (uint64, error) {
	var v uint64
	for i := 0; i < len(cube); i++ {
		v <<= 1
		switch cube[i] {
		case '1':
			v |= 1
		case '0':
		default:
			return 0, errors.Errorf("cube %q is not fully specified", cube)
		}
	}
	return v, nil
}

// Uint64ToCube converts a pattern value to a cube string over n bits.
func Uint64ToCube(v uint64, n int) string {
	buf := make([]byte, n)
	for i := 0; i < n; i++ {
		if v>>(uint(n-1-i))&1 == 1 {
			buf[i] = '1'
		} else {
			buf[i] = '0'
		}
	}
	return string(buf)
}

func isNotTriState(r rune) bool {
	return r != '0' && r != '1' && r != '-'
}

func identityPerm(n int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return p
}

func permIsIdentity(p []int) bool {
	for i, v := range p {
		if i != v {
			return false
		}
	}
	return true
}

// nextPermutation rearranges p into its lexicographic successor; when p is
// already the last permutation it wraps to the first one and returns false.
func nextPermutation(p []int) bool {
	i := len(p) - 2
	for i >= 0 && p[i] >= p[i+1] {
		i--
	}
	if i < 0 {
		reverseInts(p)
		return false
	}
	j := len(p) - 1
	for p[j] <= p[i] {
		j--
	}
	p[i], p[j] = p[j], p[i]
	reverseInts(p[i+1:])
	return true
}

func reverseInts(p []int) {
	for i, j := 0, len(p)-1; i < j; i, j = i+1, j-1 {
		p[i], p[j] = p[j], p[i]
	}
}
