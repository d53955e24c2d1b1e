// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package synth

import (
	"log"
	"math/big"
	"math/rand"
	"time"

	"github.com/luxfi/revsyn"
	"github.com/luxfi/revsyn/bdd"
	"github.com/luxfi/revsyn/rcbdd"
)

// Method selects the cycle-resolution variant of the characteristic
// synthesizer.
type Method int

const (
	// MethodResolveCycles peels cofactor cycles into left/right control
	// functions rendered as Toffoli cascades.
	MethodResolveCycles Method = iota
	// MethodTranspositionsX resolves misoriented patterns pairwise with
	// transposition circuits applied on the input side.
	MethodTranspositionsX
	// MethodTranspositionsY resolves misoriented patterns pairwise with
	// transposition circuits applied on the output side.
	MethodTranspositionsY
)

// CoverFunc extracts an exclusive-sum-of-products cover from a control
// function. A minimizer can be plugged in here; when nil or failing, the
// synthesizer falls back to the disjoint path cubes of the BDD, which form
// a valid ESOP.
type CoverFunc func(man *bdd.Manager, f bdd.Node) ([]bdd.Cube, error)

// CharacteristicOptions configures the characteristic-function synthesizer.
type CharacteristicOptions struct {
	// Verbose enables diagnostic output per resolved wire.
	Verbose bool
	// Mode selects the wire ordering: 0 natural order, 1 swap heuristic
	// (try every remaining wire, commit to the cheapest), 2 Hamming
	// heuristic (fewest misoriented minterms first).
	Mode int
	// Method selects the cycle-resolution variant.
	Method Method
	// SmartPickcube makes minterm picks deterministic by resolving output
	// variables to their paired input choice.
	SmartPickcube bool
	// EsopCover minimizes control functions into ESOP covers.
	EsopCover CoverFunc
	// CreateGates can be disabled to run the decomposition for its counts
	// only.
	CreateGates bool
	// Seed drives the random minterm picks when SmartPickcube is off.
	Seed int64
}

// DefaultCharacteristicOptions returns the default synthesizer
// configuration.
func DefaultCharacteristicOptions() *CharacteristicOptions {
	return &CharacteristicOptions{
		Method:        MethodResolveCycles,
		SmartPickcube: true,
		CreateGates:   true,
	}
}

// CharacteristicStats carries optional synthesizer measurements.
type CharacteristicStats struct {
	Runtime      time.Duration
	Access       uint64
	GateCount    uint64
	ControlCount uint64
	NodeCounts   []int
}

// Characteristic synthesizes a circuit realizing the characteristic
// relation held by r. One target wire is processed per outer iteration;
// each iteration replaces chi by gL * chi * gR where gL and gR are
// single-target Toffoli cascade relations, until chi is the identity.
func Characteristic(r *rcbdd.Relation, opts *CharacteristicOptions, stats *CharacteristicStats) (*revsyn.Circuit, error) {
	if opts == nil {
		opts = DefaultCharacteristicOptions()
	}
	start := time.Now()

	cs := newCharSynth(r, opts)

	switch opts.Mode {
	case 1:
		cs.heuristicSwap()
	case 2:
		cs.heuristicHamming()
	default:
		cs.defaultSynthesis()
	}

	if stats != nil {
		stats.Runtime = time.Since(start)
		stats.Access = cs.access
		stats.GateCount = cs.totalGates
		stats.ControlCount = cs.totalControls
		stats.NodeCounts = cs.nodeCounts
	}
	return cs.circ, r.Manager().Err()
}

type charSynth struct {
	r    *rcbdd.Relation
	m    *bdd.Manager
	circ *revsyn.Circuit
	opts *CharacteristicOptions
	rng  *rand.Rand

	f             bdd.Node
	leftF, rightF bdd.Node
	v             int
	insertPos     int

	n, pp, np, p     bdd.Node
	nx, ppx, npx, px bdd.Node
	ny, ppy, npy, py bdd.Node

	totalGates    uint64
	totalControls uint64
	access        uint64
	nodeCounts    []int
}

func newCharSynth(r *rcbdd.Relation, opts *CharacteristicOptions) *charSynth {
	k, n, m := r.Vars(), r.NumInputs(), r.NumOutputs()

	circ := revsyn.NewCircuit(k)
	for i := 0; i < k; i++ {
		circ.Inputs[i] = r.WireInputLabel(i)
		if i < m {
			circ.Outputs[i] = r.WireOutputLabel(i)
		} else {
			circ.Outputs[i] = "-"
		}
		if i < k-n {
			circ.SetConstant(i, r.ConstantValue())
		}
		circ.Garbage[i] = i >= m
	}

	cs := &charSynth{
		r:    r,
		m:    r.Manager(),
		circ: circ,
		opts: opts,
		rng:  rand.New(rand.NewSource(opts.Seed)),
		f:    r.Chi(),
	}
	cs.nodeCounts = append(cs.nodeCounts, cs.m.NodeCount(cs.f))
	return cs
}

func (cs *charSynth) setVar(v int) {
	cs.v = v
	cs.leftF = cs.m.Zero()
	cs.rightF = cs.m.Zero()
}

func (cs *charSynth) computeCofactors() {
	r, f, v := cs.r, cs.f, cs.v

	cs.n = r.Cofactor(f, v, false, false)
	cs.pp = r.Cofactor(f, v, true, false)
	cs.np = r.Cofactor(f, v, false, true)
	cs.p = r.Cofactor(f, v, true, true)

	cs.nx = r.RemoveYs(cs.n)
	cs.ppx = r.RemoveYs(cs.pp)
	cs.npx = r.RemoveYs(cs.np)
	cs.px = r.RemoveYs(cs.p)

	cs.ny = r.RemoveXs(cs.n)
	cs.ppy = r.RemoveXs(cs.pp)
	cs.npy = r.RemoveXs(cs.np)
	cs.py = r.RemoveXs(cs.p)
}

func (cs *charSynth) applyGates(lf, rf bdd.Node) {
	cs.leftF = cs.m.Xor(cs.leftF, lf)
	cs.rightF = cs.m.Xor(cs.rightF, rf)

	gateLeft := cs.r.GateRelation(cs.v, lf)
	gateRight := cs.r.GateRelation(cs.v, cs.r.MoveYsToXs(rf))
	cs.f = cs.r.Compose(cs.r.Compose(gateLeft, cs.f), gateRight)
	cs.nodeCounts = append(cs.nodeCounts, cs.m.NodeCount(cs.f))
}

// onlyLeftGateShortcut makes chi symmetric on wire v with a single left
// control function when copying y_v onto x_v keeps the relation bijective.
func (cs *charSynth) onlyLeftGateShortcut() {
	m, r := cs.m, cs.r

	chiPrime := m.And(
		m.Exist(cs.f, rcbdd.XVar(cs.v)),
		m.Xnor(r.X(cs.v), r.Y(cs.v)),
	)
	if r.IsBijection(chiPrime) {
		lf := m.Exist(r.RemoveYs(m.And(m.Not(cs.f), chiPrime)), rcbdd.XVar(cs.v))
		cs.applyGates(lf, m.Zero())
	}
}

// resolveOneCycles removes patterns whose only misorientation on wire v is
// a direct swap.
func (cs *charSynth) resolveOneCycles() {
	cs.computeCofactors()
	lf := cs.m.And(cs.ppx, cs.npx)
	cs.applyGates(lf, cs.m.Zero())

	cs.computeCofactors()
	rf := cs.m.And(cs.ppy, cs.npy)
	cs.applyGates(cs.m.Zero(), rf)
}

func (cs *charSynth) resolveTwoCycles() {
	m, r := cs.m, cs.r

	cs.computeCofactors()
	fc := m.And(cs.ppy, cs.p, cs.npx)
	cs.applyGates(r.RemoveYs(fc), r.RemoveXs(fc))

	cs.computeCofactors()
	fc = m.And(cs.npy, cs.n, cs.ppx)
	cs.applyGates(r.RemoveYs(fc), r.RemoveXs(fc))
}

// pickResolver returns the cube-pick policy: deterministic fixed-point
// biased picking under SmartPickcube, coin flips otherwise.
func (cs *charSynth) pickResolver() bdd.Resolver {
	if cs.opts.SmartPickcube {
		return rcbdd.SmartResolver
	}
	return func(int, bdd.Cube) int8 {
		return int8(cs.rng.Intn(2))
	}
}

func (cs *charSynth) pickMinterm(f bdd.Node, vars []int) (bdd.Node, bool) {
	cube, ok := cs.m.PickOneCube(f, cs.pickResolver())
	if !ok {
		return cs.m.Zero(), false
	}
	minterm := cs.m.One()
	for _, v := range vars {
		if cube[v] == 1 {
			minterm = cs.m.And(minterm, cs.m.Var(v))
		} else {
			minterm = cs.m.And(minterm, cs.m.NVar(v))
		}
	}
	return minterm, true
}

// cycleStep follows one cycle through chi, alternating between extending
// the left and the right control function, until the followed cube returns
// to a misoriented cofactor. Cubes that leave the relation are repaired by
// extending chi with an unused input/output pair.
func (cs *charSynth) cycleStep() {
	m, r := cs.m, cs.r
	v := cs.v

	cs.computeCofactors()

	vars := append(cs.r.XVars(), cs.r.YVars()...)

	var cube bdd.Node
	if !m.IsZero(cs.pp) {
		cube, _ = cs.pickMinterm(cs.pp, vars)
	} else {
		seed := m.And(
			m.Not(r.RemoveXs(cs.f)),
			m.Not(r.RemoveYs(cs.f)),
			r.X(v), m.Not(r.Y(v)),
		)
		var ok bool
		cube, ok = cs.pickMinterm(seed, vars)
		if !ok {
			panic("synth: cycle step found no unused pattern to seed a cycle")
		}
		cs.f = m.Or(cs.f, cube)
	}

	const (
		changeLeft = iota
		changeRight
	)
	change := changeLeft

	lf := m.Zero()
	rf := m.Zero()
	var cubePart bdd.Node

	cs.access++

	for {
		if change == changeLeft {
			cubePart = m.Exist(r.RemoveYs(cube), rcbdd.XVar(v))
			lf = m.Or(lf, cubePart)
			cube = m.And(m.Not(r.X(v)), cubePart, cs.f)
		} else {
			cubePart = m.Exist(r.RemoveXs(cube), rcbdd.YVar(v))
			rf = m.Or(rf, cubePart)
			cube = m.And(r.Y(v), cubePart, cs.f)
		}

		// The followed cube left the relation: extend chi with an unused
		// input/output pair to keep it total.
		if m.IsZero(cube) {
			unusedOutputs := m.Not(r.RemoveXs(cs.f))
			unusedInputs := m.Not(r.RemoveYs(cs.f))

			var icube, ocube bdd.Node
			if change == changeLeft {
				icube = m.And(m.Not(r.X(v)), cubePart)
				ocube = cs.pickSideCube(unusedOutputs, r.Y(v), 1)
			} else {
				ocube = m.And(r.Y(v), cubePart)
				icube = cs.pickSideCube(unusedInputs, m.Not(r.X(v)), 0)
			}

			cube = m.And(icube, ocube)
			cs.f = m.Or(cs.f, cube)
			cs.computeCofactors()
		}

		change = 1 - change
		cs.access++

		if !m.IsZero(m.And(cube, m.Or(cs.pp, cs.np))) {
			break
		}
	}

	cs.applyGates(lf, rf)
}

// pickSideCube picks a full minterm over the x (offset 0) or y (offset 1)
// variables from the unused region, preferring the part that also fixes the
// current wire literal.
func (cs *charSynth) pickSideCube(unused, preferLit bdd.Node, offset int) bdd.Node {
	m := cs.m

	pool := m.And(unused, preferLit)
	if m.IsZero(pool) {
		pool = unused
	}
	cube, ok := m.PickOneCube(pool, nil)
	if !ok {
		panic("synth: no unused pattern left while repairing a cycle")
	}

	out := m.One()
	for i := 0; i < cs.r.Vars(); i++ {
		idx := 3*i + offset
		if cube[idx] == 1 {
			out = m.And(out, m.Var(idx))
		} else {
			out = m.And(out, m.NVar(idx))
		}
	}
	return out
}

func (cs *charSynth) resolveKCycles() {
	m, r := cs.m, cs.r
	for !m.IsZero(r.Cofactor(cs.f, cs.v, true, false)) || !m.IsZero(r.Cofactor(cs.f, cs.v, false, true)) {
		cs.computeCofactors()

		// No positive misorientation left but negative ones remain: a NOT
		// on both sides swaps the roles.
		if m.IsZero(cs.pp) && !m.IsZero(cs.np) {
			cs.applyGates(m.One(), m.One())
		}

		cs.cycleStep()
	}
}

func (cs *charSynth) resolveVar() {
	cs.onlyLeftGateShortcut()
	cs.resolveOneCycles()
	cs.resolveTwoCycles()
	cs.resolveKCycles()
}

func (cs *charSynth) defaultSynthesis() {
	for v := 0; v < cs.r.Vars(); v++ {
		cs.setVar(v)
		switch cs.opts.Method {
		case MethodTranspositionsX, MethodTranspositionsY:
			cs.resolveWithTranspositions()
		default:
			cs.resolveVar()
			cs.emitGates(cs.leftF, v, 0, true)
			cs.emitGates(cs.rightF, v, 1, true)
		}
	}
}

// heuristicSwap tries each remaining wire, scores the full resolution by
// its Toffoli count and commits to the cheapest one.
func (cs *charSynth) heuristicSwap() {
	remaining := make([]int, cs.r.Vars())
	for i := range remaining {
		remaining[i] = i
	}

	for len(remaining) > 0 {
		minCost := uint64(1<<64 - 1)
		best := remaining[0]

		for _, line := range remaining {
			oldChi := cs.f
			oldGates, oldControls := cs.totalGates, cs.totalControls

			cs.setVar(line)
			cs.resolveVar()
			cs.emitGates(cs.leftF, line, 0, false)
			cs.emitGates(cs.rightF, line, 1, false)

			if cost := cs.totalGates - oldGates; cost < minCost {
				minCost = cost
				best = line
			}

			cs.f = oldChi
			cs.totalGates, cs.totalControls = oldGates, oldControls
		}

		cs.setVar(best)
		cs.resolveVar()
		cs.emitGates(cs.leftF, best, 0, true)
		cs.emitGates(cs.rightF, best, 1, true)

		remaining = removeLine(remaining, best)

		if cs.opts.Verbose {
			log.Printf("[i] swap heuristic committed to wire %d", best)
		}
	}
}

// heuristicHamming picks the wire with the fewest misoriented minterms
// first.
func (cs *charSynth) heuristicHamming() {
	remaining := make([]int, cs.r.Vars())
	for i := range remaining {
		remaining[i] = i
	}

	for len(remaining) > 0 {
		var minCost *big.Int
		best := remaining[0]

		for _, line := range remaining {
			cost := cs.m.Satcount(cs.r.Cofactor(cs.f, line, false, true), 2*cs.r.Vars())
			if minCost == nil || cost.Cmp(minCost) < 0 {
				minCost = cost
				best = line
			}
		}

		cs.setVar(best)
		cs.resolveVar()
		cs.emitGates(cs.leftF, best, 0, true)
		cs.emitGates(cs.rightF, best, 1, true)

		remaining = removeLine(remaining, best)

		if cs.opts.Verbose {
			log.Printf("[i] Hamming heuristic committed to wire %d", best)
		}
	}
}

// resolveWithTranspositions resolves wire v pairwise: each step extracts a
// misoriented pattern pair, realizes the transposition as a circuit, and
// multiplies its relation onto chi from the chosen side.
func (cs *charSynth) resolveWithTranspositions() {
	m, r := cs.m, cs.r
	k, v := r.Vars(), cs.v

	onX := cs.opts.Method == MethodTranspositionsX

	for !m.IsZero(r.Cofactor(cs.f, v, true, false)) || !m.IsZero(r.Cofactor(cs.f, v, false, true)) {
		cs.computeCofactors()

		var fc bdd.Node
		var offset int
		if onX {
			fc = m.And(cs.ppx, r.MoveXsToTmp(cs.npx))
			for j := 0; j < v; j++ {
				fc = m.And(fc, m.Xnor(r.X(j), r.Z(j)))
			}
			offset = 0
		} else {
			fc = m.And(cs.ppy, r.MoveYsToTmp(cs.npy))
			for j := 0; j < v; j++ {
				fc = m.And(fc, m.Xnor(r.Y(j), r.Z(j)))
			}
			offset = 1
		}

		cube, ok := m.PickOneCube(fc, cs.pickResolver())
		if !ok {
			panic("synth: transposition step found no misoriented pair")
		}

		var p1, p2 uint64
		p1 = revsyn.PatternSet(p1, k, v, onX)
		p2 = revsyn.PatternSet(p2, k, v, !onX)
		for i := 0; i < k; i++ {
			if i == v {
				continue
			}
			p1 = revsyn.PatternSet(p1, k, i, cube[3*i+offset] == 1)
			p2 = revsyn.PatternSet(p2, k, i, cube[3*i+2] == 1)
		}

		tc := revsyn.TranspositionToCircuit(p1, p2, k)
		gcirc := r.CircuitRelation(tc)

		if onX {
			cs.f = r.Compose(gcirc, cs.f)
			cs.circ.AppendCircuit(tc)
		} else {
			cs.f = r.Compose(cs.f, gcirc)
			cs.circ.PrependCircuit(tc)
		}
		cs.totalGates += uint64(tc.NumGates())
	}
}

// emitGates renders a control function as Toffoli gates targeting wire v.
// Left gates (offset 0, controls on x variables) are appended after the
// previously emitted left gates; right gates (offset 1, controls on y
// variables) are inserted at the same point and the insertion cursor is
// rewound, so the final order is gL1 .. gLk target gRk .. gR1.
func (cs *charSynth) emitGates(gate bdd.Node, v, offset int, addToCircuit bool) {
	m := cs.m
	if m.IsZero(gate) {
		return
	}

	cubes := cs.coverOf(gate)

	count := 0
	for _, cube := range cubes {
		var controls []revsyn.Control
		for i := 0; i < cs.r.Vars(); i++ {
			if i == v {
				continue
			}
			if val := cube[3*i+offset]; val >= 0 {
				controls = append(controls, revsyn.Control{Line: i, Polarity: val == 1})
			}
		}
		if addToCircuit && cs.opts.CreateGates {
			cs.circ.Insert(cs.insertPos, revsyn.Toffoli(controls, v))
			cs.insertPos++
		}
		count++
		cs.totalControls += uint64(len(controls))
	}
	cs.totalGates += uint64(count)

	if addToCircuit && cs.opts.CreateGates && offset == 1 {
		cs.insertPos -= count
	}
}

// coverOf extracts an ESOP cover of a control function: the configured
// minimizer when present, the disjoint path cubes of the BDD otherwise or
// on minimizer failure.
func (cs *charSynth) coverOf(gate bdd.Node) []bdd.Cube {
	if cs.opts.EsopCover != nil {
		if cubes, err := cs.opts.EsopCover(cs.m, gate); err == nil {
			return cubes
		} else if cs.opts.Verbose {
			log.Printf("[w] ESOP minimization failed, falling back to path cubes: %v", err)
		}
	}
	return PathCubes(cs.m, gate)
}

// PathCubes collects the disjoint path cubes of f. Disjointness makes the
// cover a valid exclusive sum of products.
func PathCubes(man *bdd.Manager, f bdd.Node) []bdd.Cube {
	var cubes []bdd.Cube
	man.ForeachCube(f, func(c bdd.Cube) bool {
		cubes = append(cubes, append(bdd.Cube(nil), c...))
		return true
	})
	return cubes
}

func removeLine(lines []int, line int) []int {
	out := lines[:0]
	for _, l := range lines {
		if l != line {
			out = append(out, l)
		}
	}
	return out
}
