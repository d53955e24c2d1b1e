// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package synth

import (
	"fmt"
	"log"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/luxfi/revsyn/bdd"
	"github.com/luxfi/revsyn/pla"
	"github.com/luxfi/revsyn/rcbdd"
)

// EmbedPLAOptions configures the PLA embedder.
type EmbedPLAOptions struct {
	// Verbose enables diagnostic dumps of chi and its minterm counts.
	Verbose bool
	// TruthTable prints the embedded truth table after construction.
	TruthTable bool
	// WritePLA, when non-empty, writes chi back as a PLA to this path.
	WritePLA string
	// ConstValue is the value pinned on the k-n introduced input wires.
	ConstValue bool
}

// DefaultEmbedPLAOptions returns the default embedder configuration.
func DefaultEmbedPLAOptions() *EmbedPLAOptions {
	return &EmbedPLAOptions{}
}

// EmbedStats carries optional embedder measurements.
type EmbedStats struct {
	Runtime     time.Duration
	RuntimeRead time.Duration
}

// EmbedPLA reads a PLA file and embeds the (possibly incompletely
// specified, possibly non-injective) multi-output function it describes
// into a reversible characteristic relation on the minimum number of wires.
func EmbedPLA(path string, opts *EmbedPLAOptions, stats *EmbedStats) (*rcbdd.Relation, error) {
	readStart := time.Now()
	doc, err := pla.ParseFile(path)
	if err != nil {
		return nil, err
	}
	if stats != nil {
		stats.RuntimeRead = time.Since(readStart)
	}
	return EmbedPLADocument(doc, opts, stats)
}

// EmbedPLADocument embeds an already parsed PLA cover.
//
// The construction runs in two passes. The first pass streams the cover to
// compute the fan-in multiplicity map mu and the covered input space; the
// uncovered complement is enumerated into cubes that map to the zero output
// pattern. The multiplicity maximum determines the wire count
// k = max(n, m + ceil(log2 mu*)). The second pass rebuilds the cover as a
// BDD over k paired variables, pinning the garbage output bits of colliding
// rows to successive patterns of a ripple-increment schedule so the result
// is injective.
func EmbedPLADocument(doc *pla.Document, opts *EmbedPLAOptions, stats *EmbedStats) (*rcbdd.Relation, error) {
	if opts == nil {
		opts = DefaultEmbedPLAOptions()
	}
	start := time.Now()
	defer func() {
		if stats != nil {
			stats.Runtime = time.Since(start)
		}
	}()

	n, m := doc.NumInputs, doc.NumOutputs

	cubes, mu, err := sizePass(doc)
	if err != nil {
		return nil, err
	}

	maxmu := big.NewInt(0)
	for _, v := range mu {
		if v.Cmp(maxmu) > 0 {
			maxmu = v
		}
	}
	k := calculateRequiredLines(n, m, maxmu)

	r, err := rcbdd.New(k)
	if err != nil {
		return nil, err
	}
	r.SetNumInputs(n)
	r.SetNumOutputs(m)
	r.SetConstantValue(opts.ConstValue)
	r.SetInputLabels(doc.InputLabels)
	r.SetOutputLabels(doc.OutputLabels)

	chi := buildChi(r, cubes, opts.ConstValue)
	r.SetChi(chi)

	if !r.IsBijection(chi) {
		man := r.Manager()
		panic(fmt.Sprintf(
			"synth: embedded relation is not a bijection: |chi| = %s (want %s), |chi_x| = %s, |chi_y| = %s (want %s each)",
			man.Satcount(chi, 2*k), pow2(uint(k)),
			man.Satcount(r.RemoveYs(chi), k), man.Satcount(r.RemoveXs(chi), k), pow2(uint(k))))
	}

	if opts.Verbose {
		man := r.Manager()
		log.Printf("[i] |f|:   %s", man.Satcount(chi, 2*k).String())
		log.Printf("[i] |f_x|: %s", man.Satcount(r.RemoveYs(chi), k).String())
		log.Printf("[i] |f_y|: %s", man.Satcount(r.RemoveXs(chi), k).String())
	}
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

// sizePass computes the multiplicity map over the cover and appends the
// uncovered input space as cubes mapping to the all-zero output pattern.
func sizePass(doc *pla.Document) ([]pla.Cube, map[string]*big.Int, error) {
	n, m := doc.NumInputs, doc.NumOutputs

	man, err := bdd.New(n)
	if err != nil {
		return nil, nil, err
	}

	mu := make(map[string]*big.Int)
	used := man.Zero()
	cubes := append([]pla.Cube(nil), doc.Cubes...)

	for _, c := range doc.Cubes {
		cube := scratchInputCube(man, c.In)
		patterns := man.Satcount(cube, n)
		addMu(mu, c.Out, patterns)
		used = man.Or(used, cube)
	}

	// Everything the cover leaves open maps to the zero output pattern.
	zeroOut := strings.Repeat("0", m)
	if _, ok := mu[zeroOut]; !ok {
		mu[zeroOut] = big.NewInt(0)
	}
	inBits := make([]byte, n)
	man.ForeachCube(man.Not(used), func(cube bdd.Cube) bool {
		for i := 0; i < n; i++ {
			inBits[i] = triBit(cube[i])
		}
		in := string(inBits)
		addMu(mu, zeroOut, man.Satcount(scratchInputCube(man, in), n))
		cubes = append(cubes, pla.Cube{In: in, Out: zeroOut})
		return true
	})

	return cubes, mu, nil
}

// buildChi runs the second pass over the combined cube list.
func buildChi(r *rcbdd.Relation, cubes []pla.Cube, constValue bool) bdd.Node {
	man := r.Manager()
	k, n, m := r.Vars(), r.NumInputs(), r.NumOutputs()
	s := k - n

	chi := man.Zero()
	mu := make(map[string]int64)

	// Garbage schedule: decStore[r] is the r-th ripple increment of the
	// garbage output variables y_{k-1} .. y_m.
	garbage := make([]bdd.Node, 0, k-m)
	for i := k - 1; i >= m; i-- {
		garbage = append(garbage, r.Y(i))
	}
	decStore := [][]bdd.Node{garbage}

	constVars := make([]int, s)
	for i := range constVars {
		constVars[i] = rcbdd.XVar(i)
	}

	for _, c := range cubes {
		icube, dontCares := pairedInputCube(r, c.In, s)
		ocube := outputCube(r, c.Out)
		patterns := man.Satcount(icube, n).Int64()

		// The y-space already used for these inputs, projected onto the
		// primary input variables.
		h := man.Exist(r.RemoveYs(chi), constVars...)

		fcube := man.One()
		for i := 0; i < s; i++ {
			if constValue {
				fcube = man.And(fcube, r.X(i))
			} else {
				fcube = man.And(fcube, r.NX(i))
			}
		}
		fcube = man.And(fcube, man.Not(h), icube, ocube)

		rank := mu[c.Out]
		for int64(len(decStore)) <= rank {
			decStore = append(decStore, decNext(man, decStore[len(decStore)-1]))
		}
		dec := decStore[rank]

		// Pin garbage output bits to the schedule pattern, folded with the
		// don't-care input bits from back to front.
		for i := 0; i < k-m; i++ {
			if i < len(dontCares) {
				fcube = man.And(fcube, man.Xnor(dec[i], dontCares[len(dontCares)-1-i]))
			} else {
				fcube = man.And(fcube, man.Not(dec[i]))
			}
		}

		chi = man.Or(chi, fcube)
		mu[c.Out] += patterns

		// Rows whose inputs were already covered keep their garbage but
		// intersect their outputs with the new constraint.
		overlap := man.And(h, icube)
		if !man.IsZero(overlap) {
			chi = man.And(chi, man.Or(man.Not(overlap), ocube))
		}
	}

	// Output bits the cover never forced default to 0.
	for i := 0; i < m; i++ {
		yi := rcbdd.YVar(i)
		f0 := man.AndExist(chi, man.NVar(yi), []int{yi})
		f1 := man.AndExist(chi, man.Var(yi), []int{yi})
		chi = man.Or(
			man.And(f1, man.Not(f0), man.Var(yi)),
			man.And(f1, f0, man.NVar(yi)),
		)
	}

	return completeBijection(r, chi)
}

// completeBijection extends the injective relation built from the cover to
// a bijection on all of {0,1}^k: inputs outside the constant-wire subspace
// are paired block-wise with the unused output patterns. Each round pairs
// one unused input cube with one unused output cube of equal size, linking
// their free variables so the block maps bijectively.
func completeBijection(r *rcbdd.Relation, chi bdd.Node) bdd.Node {
	man := r.Manager()

	unusedIn := man.Not(r.RemoveYs(chi))
	unusedOut := man.Not(r.RemoveXs(chi))

	for !man.IsZero(unusedIn) {
		icube, ok := man.PickOneCube(unusedIn, nil)
		if !ok {
			break
		}
		ocube, ok := man.PickOneCube(unusedOut, nil)
		if !ok {
			panic("synth: unused inputs left but no unused outputs")
		}

		freeX := freeVars(icube, r.XVars())
		freeY := freeVars(ocube, r.YVars())

		// Equalize block sizes by pinning surplus free variables to 0.
		for len(freeX) > len(freeY) {
			icube[freeX[len(freeX)-1]] = 0
			freeX = freeX[:len(freeX)-1]
		}
		for len(freeY) > len(freeX) {
			ocube[freeY[len(freeY)-1]] = 0
			freeY = freeY[:len(freeY)-1]
		}

		pair := man.And(man.CubeNode(icube), man.CubeNode(ocube))
		for i := range freeX {
			pair = man.And(pair, man.Xnor(man.Var(freeX[i]), man.Var(freeY[i])))
		}

		chi = man.Or(chi, pair)
		unusedIn = man.And(unusedIn, man.Not(man.CubeNode(icube)))
		unusedOut = man.And(unusedOut, man.Not(man.CubeNode(ocube)))
	}
	return chi
}

func freeVars(cube bdd.Cube, vars []int) []int {
	var free []int
	for _, v := range vars {
		if cube[v] < 0 {
			free = append(free, v)
		}
	}
	return free
}

// decNext ripples the garbage schedule one step further:
// next[i] = vars[i] xor (not vars[0] and ... and not vars[i-1]).
func decNext(man *bdd.Manager, vars []bdd.Node) []bdd.Node {
	next := make([]bdd.Node, len(vars))
	for i := range vars {
		carry := man.One()
		for j := 0; j < i; j++ {
			carry = man.And(carry, man.Not(vars[j]))
		}
		next[i] = man.Xor(vars[i], carry)
	}
	return next
}

// scratchInputCube lifts an input cube onto the plain variables of the
// sizing manager.
func scratchInputCube(man *bdd.Manager, in string) bdd.Node {
	cube := man.One()
	for i := 0; i < len(in); i++ {
		switch in[i] {
		case '0':
			cube = man.And(cube, man.NVar(i))
		case '1':
			cube = man.And(cube, man.Var(i))
		}
	}
	return cube
}

// pairedInputCube lifts an input cube onto the last n input variables of the
// relation, collecting the x literals of don't-care positions.
func pairedInputCube(r *rcbdd.Relation, in string, offset int) (bdd.Node, []bdd.Node) {
	man := r.Manager()
	cube := man.One()
	var dontCares []bdd.Node
	for i := 0; i < len(in); i++ {
		switch in[i] {
		case '0':
			cube = man.And(cube, r.NX(offset+i))
		case '1':
			cube = man.And(cube, r.X(offset+i))
		case '-':
			dontCares = append(dontCares, r.X(offset+i))
		}
	}
	return cube, dontCares
}

// outputCube lifts an output cube onto the output variables. Only '1' bits
// constrain the cube; '0', '-' and '~' leave the bit open, the final
// zero-default pass pins the open bits.
func outputCube(r *rcbdd.Relation, out string) bdd.Node {
	man := r.Manager()
	cube := man.One()
	for i := 0; i < len(out); i++ {
		if out[i] == '1' {
			cube = man.And(cube, r.Y(i))
		}
	}
	return cube
}

func addMu(mu map[string]*big.Int, out string, patterns *big.Int) {
	if v, ok := mu[out]; ok {
		v.Add(v, patterns)
	} else {
		mu[out] = new(big.Int).Set(patterns)
	}
}

func triBit(v int8) byte {
	switch v {
	case 0:
		return '0'
	case 1:
		return '1'
	default:
		return '-'
	}
}
