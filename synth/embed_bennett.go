// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package synth

import (
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/luxfi/revsyn/bdd"
	"github.com/luxfi/revsyn/pla"
	"github.com/luxfi/revsyn/rcbdd"
)

// EmbedBennettOptions configures the Bennett-style embedder.
type EmbedBennettOptions struct {
	// TruthTable prints the embedded truth table after construction.
	TruthTable bool
	// WritePLA, when non-empty, writes chi back as a PLA to this path.
	WritePLA string
}

// EmbedPLABennett embeds a PLA in the Bennett scheme: k = n + m wires, the
// first m wires accumulate y_i = x_i xor f_i(x), the remaining n wires pass
// the inputs through unchanged. Simpler and more wasteful than EmbedPLA; it
// serves as a baseline.
//
// Unlike EmbedPLA, this embedder treats every output bit as completely
// specified: f_i is the disjunction of the input cubes of the rows whose
// i-th output bit is '1', so a '0' forces the bit.
func EmbedPLABennett(path string, opts *EmbedBennettOptions, stats *EmbedStats) (*rcbdd.Relation, error) {
	readStart := time.Now()
	doc, err := pla.ParseFile(path)
	if err != nil {
		return nil, err
	}
	if stats != nil {
		stats.RuntimeRead = time.Since(readStart)
	}
	return EmbedPLABennettDocument(doc, opts, stats)
}

// EmbedPLABennettDocument embeds an already parsed PLA cover in the Bennett
// scheme.
func EmbedPLABennettDocument(doc *pla.Document, opts *EmbedBennettOptions, stats *EmbedStats) (*rcbdd.Relation, error) {
	if opts == nil {
		opts = &EmbedBennettOptions{}
	}
	start := time.Now()
	defer func() {
		if stats != nil {
			stats.Runtime = time.Since(start)
		}
	}()

	n, m := doc.NumInputs, doc.NumOutputs

	r, err := rcbdd.New(n + m)
	if err != nil {
		return nil, err
	}
	r.SetNumInputs(n)
	r.SetNumOutputs(m)
	r.SetConstantValue(false)
	r.SetInputLabels(doc.InputLabels)
	r.SetOutputLabels(doc.OutputLabels)

	man := r.Manager()

	// Output functions over the input wires m .. m+n-1.
	outputs := make([]bdd.Node, m)
	for i := range outputs {
		outputs[i] = man.Zero()
	}
	for _, c := range doc.Cubes {
		icube, _ := pairedInputCube(r, c.In, m)
		for i := 0; i < m; i++ {
			if c.Out[i] == '1' {
				outputs[i] = man.Or(outputs[i], icube)
			}
		}
	}

	chi := man.One()
	for i := 0; i < m; i++ {
		chi = man.And(chi, man.Xnor(r.Y(i), man.Xor(r.X(i), outputs[i])))
	}
	for i := m; i < m+n; i++ {
		chi = man.And(chi, man.Xnor(r.X(i), r.Y(i)))
	}
	r.SetChi(chi)

	if opts.TruthTable {
		r.DumpTruthTable(os.Stdout)
	}
	if opts.WritePLA != "" {
		f, err := os.Create(opts.WritePLA)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		if err := r.WritePLA(f); err != nil {
			f.Close()
			return nil, err
		}
		if err := f.Close(); err != nil {
			return nil, errors.WithStack(err)
		}
	}
	return r, nil
}
