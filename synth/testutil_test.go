// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package synth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/revsyn"
	"github.com/luxfi/revsyn/bdd"
	"github.com/luxfi/revsyn/pla"
	"github.com/luxfi/revsyn/rcbdd"
)

const halfAdderPLA = `.i 2
.o 2
.ilb a b
.ob carry sum
00 00
01 01
10 01
11 10
.e
`

func parseDoc(t testing.TB, text string) *pla.Document {
	t.Helper()
	doc, err := pla.Parse(strings.NewReader(text))
	require.NoError(t, err, "parse PLA")
	return doc
}

func embedDoc(t testing.TB, text string, opts *EmbedPLAOptions) *rcbdd.Relation {
	t.Helper()
	r, err := EmbedPLADocument(parseDoc(t, text), opts, nil)
	require.NoError(t, err, "embed PLA")
	return r
}

// chiFunction expands a bijective relation into the function it encodes.
// Every cube of a bijective chi is a full minterm over the x and y
// variables, so the enumeration yields exactly 2^k rows.
func chiFunction(t testing.TB, r *rcbdd.Relation) map[uint64]uint64 {
	t.Helper()

	fn := make(map[uint64]uint64)
	r.EachCube(func(in, out string) bool {
		iv, err := revsyn.CubeToUint64(in)
		require.NoError(t, err, "bijective chi must bind all input variables")
		ov, err := revsyn.CubeToUint64(out)
		require.NoError(t, err, "bijective chi must bind all output variables")
		fn[iv] = ov
		return true
	})
	require.Len(t, fn, 1<<uint(r.Vars()))
	return fn
}

// relationFromFunction builds chi from an explicit pattern mapping.
func relationFromFunction(t testing.TB, r *rcbdd.Relation, fn map[uint64]uint64) bdd.Node {
	t.Helper()
	m := r.Manager()
	k := r.Vars()

	chi := m.Zero()
	for x, y := range fn {
		pair := m.One()
		for i := 0; i < k; i++ {
			if revsyn.PatternBit(x, k, i) {
				pair = m.And(pair, r.X(i))
			} else {
				pair = m.And(pair, r.NX(i))
			}
			if revsyn.PatternBit(y, k, i) {
				pair = m.And(pair, r.Y(i))
			} else {
				pair = m.And(pair, r.NY(i))
			}
		}
		chi = m.Or(chi, pair)
	}
	return chi
}

// requireRealizes checks that a circuit realizes a fully specified truth
// table pointwise.
func requireRealizes(t testing.TB, circ *revsyn.Circuit, spec *revsyn.TruthTable) {
	t.Helper()
	for i := 0; i < spec.NumRows(); i++ {
		in, out := spec.Row(i)
		iv, err := revsyn.CubeToUint64(in)
		require.NoError(t, err)
		ov, err := revsyn.CubeToUint64(out)
		require.NoError(t, err)
		require.Equal(t, ov, circ.Execute(iv), "input %s", in)
	}
}

func gateSignature(c *revsyn.Circuit) string {
	return c.String()
}
