// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package synth

import (
	"time"

	"github.com/pkg/errors"
	"github.com/willf/bitset"

	"github.com/luxfi/revsyn"
)

// ReedMullerOptions configures the Reed-Muller spectra synthesizer.
type ReedMullerOptions struct {
	// Bidirectional maintains the spectra of the inverse function as well
	// and clears each row on the side with fewer ones.
	Bidirectional bool
}

// DefaultReedMullerOptions returns the default configuration.
func DefaultReedMullerOptions() *ReedMullerOptions {
	return &ReedMullerOptions{Bidirectional: true}
}

// ReedMuller synthesizes a fully specified truth table from its Reed-Muller
// spectrum: the spectra rows are cleared bottom-up in three regimes (the
// constant row, variable rows at power-of-two indices, all other rows) by
// Toffoli gates whose effect is tracked directly on the spectra.
func ReedMuller(spec *revsyn.TruthTable, opts *ReedMullerOptions, stats *Stats) (*revsyn.Circuit, error) {
	if opts == nil {
		opts = DefaultReedMullerOptions()
	}
	start := time.Now()
	defer func() {
		if stats != nil {
			stats.Runtime = time.Since(start)
		}
	}()

	if !spec.FullySpecified() {
		return nil, errors.New("truth table spec is not fully specified")
	}

	n := spec.NumOutputs()
	size := 1 << uint(n)

	fn := newSpectra(size, n)
	ifn := newSpectra(size, n)
	for r := 0; r < spec.NumRows(); r++ {
		in, out := spec.Row(r)
		ipos := lsbValue(in)
		for i := 0; i < n; i++ {
			if out[i] == '1' {
				fn[ipos].Set(uint(i))
			}
		}
		if opts.Bidirectional {
			opos := lsbValue(out)
			for i := 0; i < n; i++ {
				if in[i] == '1' {
					ifn[opos].Set(uint(i))
				}
			}
		}
	}

	// Function vectors to Reed-Muller spectra.
	for m := 1; m < size; m *= 2 {
		for i := 0; i < size; i += 2 * m {
			for j := i; j < i+m; j++ {
				fn[j+m].InPlaceSymmetricDifference(fn[j])
				if opts.Bidirectional {
					ifn[j+m].InPlaceSymmetricDifference(ifn[j])
				}
			}
		}
	}

	circ := revsyn.NewCircuit(n)
	circ.CopyMetadata(spec)

	funcs := [2][]*bitset.BitSet{fn, ifn}
	insertAt := 0

	applyGate := func(offset int, controls []int, t int) {
		switch len(controls) {
		case 0:
			circ.Insert(insertAt, revsyn.NOT(t))
			insertAt += offset
			funcs[offset][0].Clear(uint(t))
			applyToffoliFront(funcs[1-offset], nil, t)
		case 1:
			circ.Insert(insertAt, revsyn.CNOT(controls[0], t))
			insertAt += offset
			applyCNOT(funcs[offset], controls[0], t)
			applyToffoliFront(funcs[1-offset], controls, t)
		default:
			ctl := make([]revsyn.Control, len(controls))
			for i, c := range controls {
				ctl[i] = revsyn.Pos(c)
			}
			circ.Insert(insertAt, revsyn.Toffoli(ctl, t))
			insertAt += offset
			applyToffoli(funcs[offset], controls, t)
			applyToffoliFront(funcs[1-offset], controls, t)
		}
	}

	chooseOffset := func(i int) int {
		if opts.Bidirectional &&
			hammingDistance(uint64(i), rowValue(ifn[0], n)) < hammingDistance(uint64(i), rowValue(fn[0], n)) {
			return 1
		}
		return 0
	}

	// Constant row.
	for j := 0; j < n; j++ {
		offset := 0
		if opts.Bidirectional && ifn[0].Count() < fn[0].Count() {
			offset = 1
		}
		if funcs[offset][0].Test(uint(j)) {
			applyGate(offset, nil, j)
		}
	}

	for i := 1; i < size-1; i++ {
		if i&(i-1) == 0 {
			// Variable row: index is a power of two.
			k := log2(i)
			offset := chooseOffset(i)
			row := funcs[offset][i]

			if !row.Test(uint(k)) {
				if s, ok := highestSet(row, n); ok {
					applyGate(offset, []int{s}, k)
				}
			}
			for j := 0; j < n; j++ {
				if j != k && row.Test(uint(j)) {
					applyGate(offset, []int{k}, j)
				}
			}
		} else {
			offset := chooseOffset(i)
			row := funcs[offset][i]
			if row.None() {
				continue
			}

			// The clearing column must not occur in the row index.
			s := -1
			for j := n - 1; j >= 0; j-- {
				if row.Test(uint(j)) && i&(1<<uint(j)) == 0 {
					s = j
					break
				}
			}
			if s < 0 {
				panic("synth: Reed-Muller row has no admissible clearing column")
			}

			var targets []int
			for j := 0; j < n; j++ {
				if j != s && row.Test(uint(j)) {
					applyGate(offset, []int{s}, j)
					targets = append(targets, j)
				}
			}

			var controls []int
			for j := 0; j < n; j++ {
				if i&(1<<uint(j)) != 0 {
					controls = append(controls, j)
				}
			}
			applyGate(offset, controls, s)

			for _, j := range targets {
				applyGate(offset, []int{s}, j)
			}
		}
	}

	return circ, nil
}

func newSpectra(size, width int) []*bitset.BitSet {
	rows := make([]*bitset.BitSet, size)
	for i := range rows {
		rows[i] = bitset.New(uint(width))
	}
	return rows
}

// lsbValue reads a cube string with position j mapped to bit j.
func lsbValue(cube string) uint64 {
	var v uint64
	for j := 0; j < len(cube); j++ {
		if cube[j] == '1' {
			v |= 1 << uint(j)
		}
	}
	return v
}

func rowValue(row *bitset.BitSet, width int) uint64 {
	var v uint64
	for j := 0; j < width; j++ {
		if row.Test(uint(j)) {
			v |= 1 << uint(j)
		}
	}
	return v
}

func highestSet(row *bitset.BitSet, width int) (int, bool) {
	for j := width - 1; j >= 0; j-- {
		if row.Test(uint(j)) {
			return j, true
		}
	}
	return 0, false
}

func log2(i int) int {
	k := 0
	for i > 1 {
		i >>= 1
		k++
	}
	return k
}

func applyCNOT(f []*bitset.BitSet, c, t int) {
	for _, row := range f {
		if row.Test(uint(c)) {
			row.Flip(uint(t))
		}
	}
}

func multiplyColumns(f []*bitset.BitSet, columns []int) *bitset.BitSet {
	size := len(f)
	m := bitset.New(uint(size))
	for r := 0; r < size; r++ {
		if f[r].Test(uint(columns[0])) {
			m.Set(uint(r))
		}
	}

	for i := 1; i < len(columns); i++ {
		mnew := bitset.New(uint(size))
		for r := 0; r < size; r++ {
			if !m.Test(uint(r)) {
				continue
			}
			for r2 := 0; r2 < size; r2++ {
				if f[r2].Test(uint(columns[i])) {
					mnew.Flip(uint(r | r2))
				}
			}
		}
		m = mnew
	}
	return m
}

func applyToffoli(f []*bitset.BitSet, controls []int, t int) {
	c := multiplyColumns(f, controls)
	for r := range f {
		if c.Test(uint(r)) {
			f[r].Flip(uint(t))
		}
	}
}

// applyToffoliFront tracks a gate inserted on the opposite side of the
// cascade: spectra mass in rows containing the target moves into the rows
// extended by the control set.
func applyToffoliFront(f []*bitset.BitSet, controls []int, t int) {
	if len(f) == 0 {
		return
	}
	cmask := 0
	for _, c := range controls {
		cmask |= 1 << uint(c)
	}
	tmask := 1 << uint(t)

	width := int(f[0].Len())
	for j := 0; j < width; j++ {
		for r := range f {
			if r&tmask != 0 && f[r].Test(uint(j)) {
				f[r&^tmask|cmask].Flip(uint(j))
			}
		}
	}
}
