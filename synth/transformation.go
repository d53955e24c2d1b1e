// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package synth

import (
	"log"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/luxfi/revsyn"
)

// Stats carries the optional runtime measurement of the simple
// synthesizers.
type Stats struct {
	Runtime time.Duration
}

// TransformationOptions configures the transformation-based synthesizer.
type TransformationOptions struct {
	// Bidirectional enables matching from both the input and the output
	// side, picking the Hamming-cheaper direction per row.
	Bidirectional bool
	// Fredkin enables speculative controlled-swap gates.
	Fredkin bool
	// FredkinLookback accepts a speculative swap that the cheap mask
	// ordering check rejects when it disturbs none of the earlier rows.
	FredkinLookback bool
	// Verbose logs the intermediate specification states.
	Verbose bool
}

// DefaultTransformationOptions returns the default configuration.
func DefaultTransformationOptions() *TransformationOptions {
	return &TransformationOptions{Bidirectional: true}
}

type ttRow struct {
	in, out uint64
}

// TransformationBased synthesizes a fully specified truth table row by row:
// each row is transformed toward the identity by Toffoli (and optionally
// Fredkin) gates chosen so that all earlier rows stay fixed.
func TransformationBased(spec *revsyn.TruthTable, opts *TransformationOptions, stats *Stats) (*revsyn.Circuit, error) {
	if opts == nil {
		opts = DefaultTransformationOptions()
	}
	if opts.FredkinLookback && !opts.Fredkin && opts.Verbose {
		log.Printf("[w] fredkin_lookback option has no effect since fredkin option is disabled")
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

	rows, err := specRows(spec)
	if err != nil {
		return nil, err
	}
	sortRows(rows)

	bw := spec.NumOutputs()
	circ := revsyn.NewCircuit(bw)
	circ.CopyMetadata(spec)

	if !opts.Bidirectional {
		if opts.Verbose {
			logRows(0, rows)
		}
		basicFirstStep(circ, rows, bw)
	}

	startIndex := 0
	if !opts.Bidirectional {
		startIndex = 1
	}
	pos := 0

	for i := startIndex; i < len(rows); i++ {
		if opts.Verbose {
			logRows(i, rows)
		}
		if rows[i].in == rows[i].out {
			continue
		}

		dir := dirBack
		index := i
		if opts.Bidirectional {
			other := i
			for j := range rows {
				if rows[j].out == rows[i].in {
					other = j
					break
				}
			}
			if hammingDistance(rows[other].in, rows[other].out) < hammingDistance(rows[i].in, rows[i].out) {
				dir = dirFront
				index = other
			}
		}

		adjustLine(circ, &pos, rows, bw, index, dir, opts.Fredkin, opts.FredkinLookback)
	}

	return circ, nil
}

type direction int

const (
	dirBack direction = iota
	dirFront
)

func specRows(spec *revsyn.TruthTable) ([]ttRow, error) {
	rows := make([]ttRow, 0, spec.NumRows())
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
		rows = append(rows, ttRow{in: iv, out: ov})
	}
	return rows, nil
}

func sortRows(rows []ttRow) {
	sort.Slice(rows, func(i, j int) bool { return rows[i].in < rows[j].in })
}

// basicFirstStep clears the output of the all-zero input row with NOT gates
// prepended to the circuit.
func basicFirstStep(circ *revsyn.Circuit, rows []ttRow, bw int) {
	for b := 0; b < bw; b++ {
		if rows[0].out>>uint(b)&1 == 1 {
			circ.Prepend(revsyn.NOT(bw - 1 - b))
			for i := range rows {
				rows[i].out ^= 1 << uint(b)
			}
		}
	}
}

// insertToffoli places a Toffoli gate and propagates its effect through the
// unfinished side of the specification.
func insertToffoli(circ *revsyn.Circuit, pos *int, rows []ttRow, bw int, controlMask uint64, target int, dir direction) {
	circ.Insert(*pos, revsyn.Toffoli(maskControls(controlMask, bw), bw-1-target))

	tbit := uint64(1) << uint(target)
	for i := range rows {
		b := &rows[i].out
		if dir == dirFront {
			b = &rows[i].in
		}
		if *b&controlMask == controlMask {
			*b ^= tbit
		}
	}

	if dir == dirFront {
		*pos++
		sortRows(rows)
	}
}

// insertFredkin places a controlled swap and propagates its effect.
func insertFredkin(circ *revsyn.Circuit, pos *int, rows []ttRow, bw int, controlMask uint64, t1, t2 int, dir direction) {
	circ.Insert(*pos, revsyn.Fredkin(maskControls(controlMask, bw), bw-1-t1, bw-1-t2))

	for i := range rows {
		b := &rows[i].out
		if dir == dirFront {
			b = &rows[i].in
		}
		if *b&controlMask == controlMask {
			b1 := *b >> uint(t1) & 1
			b2 := *b >> uint(t2) & 1
			if b1 != b2 {
				*b ^= 1<<uint(t1) | 1<<uint(t2)
			}
		}
	}

	if dir == dirFront {
		*pos++
		sortRows(rows)
	}
}

func maskControls(mask uint64, bw int) []revsyn.Control {
	var controls []revsyn.Control
	for b := 0; b < bw; b++ {
		if mask>>uint(b)&1 == 1 {
			controls = append(controls, revsyn.Pos(bw-1-b))
		}
	}
	return controls
}

// adjustLine emits the gates that map one row onto the identity while
// fixing all rows above it.
func adjustLine(circ *revsyn.Circuit, pos *int, rows []ttRow, bw, line int, dir direction, tryFredkin, lookback bool) {
	input, output := rows[line].in, rows[line].out
	diff := input ^ output

	var p, q, mask uint64
	if dir == dirBack {
		p, q, mask = diff&input, diff&output, output
	} else {
		p, q, mask = diff&output, diff&input, input
	}

	if tryFredkin {
		for {
			found := false
			for b1 := 0; b1 < bw && !found; b1++ {
				if p>>uint(b1)&1 == 0 {
					continue
				}
				for b2 := 0; b2 < bw; b2++ {
					if q>>uint(b2)&1 == 0 {
						continue
					}
					maskCopy := mask &^ (1<<uint(b1) | 1<<uint(b2))
					maskCompare := output
					if dir == dirBack {
						maskCompare = input
					}

					valid := maskCopy > maskCompare
					if !valid && lookback {
						// try harder: no earlier row may be disturbed
						valid = true
						for current := uint64(0); current != maskCompare; current++ {
							if current&maskCopy == maskCopy && current>>uint(b1)&1 != current>>uint(b2)&1 {
								valid = false
								break
							}
						}
					}

					if valid {
						insertFredkin(circ, pos, rows, bw, maskCopy, b1, b2, dir)
						p &^= 1 << uint(b1)
						q &^= 1 << uint(b2)
						mask |= 1 << uint(b1)
						mask &^= 1 << uint(b2)
						found = true
						break
					}
				}
			}
			if !found {
				break
			}
		}
	}

	// change 0 -> 1
	for b := 0; b < bw; b++ {
		if p>>uint(b)&1 == 1 {
			insertToffoli(circ, pos, rows, bw, mask, b, dir)
			mask |= 1 << uint(b)
		}
	}

	// change 1 -> 0
	for b := 0; b < bw; b++ {
		if q>>uint(b)&1 == 1 {
			mask &^= 1 << uint(b)
			insertToffoli(circ, pos, rows, bw, mask, b, dir)
		}
	}
}

func logRows(index int, rows []ttRow) {
	log.Printf("[i] state at index %d", index)
	for _, row := range rows {
		log.Printf("[i]   %b |-> %b", row.in, row.out)
	}
}
