// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

// Package rcbdd maintains the characteristic relation chi(x, y) of a
// reversible function as a BDD over paired variables. For each logical wire
// i the manager holds three adjacent variables: the input variable x_i at
// index 3i, the output variable y_i at 3i+1 and a temporary z_i at 3i+2 used
// for relational composition.
package rcbdd

import (
	"math/big"

	"github.com/luxfi/revsyn"
	"github.com/luxfi/revsyn/bdd"
)

// Relation holds chi together with the wire metadata of the embedding.
type Relation struct {
	man  *bdd.Manager
	k    int
	nin  int
	nout int

	constValue   bool
	inputLabels  []string
	outputLabels []string

	chi bdd.Node
}

// New allocates a relation over k wires (3k BDD variables). chi starts as
// the empty relation.
func New(k int) (*Relation, error) {
	man, err := bdd.New(3 * k)
	if err != nil {
		return nil, err
	}
	return &Relation{man: man, k: k, chi: man.Zero()}, nil
}

// Manager returns the underlying decision-diagram manager.
func (r *Relation) Manager() *bdd.Manager { return r.man }

// Vars returns the number of logical wires k.
func (r *Relation) Vars() int { return r.k }

// NumInputs returns the number of primary inputs n of the embedded function.
func (r *Relation) NumInputs() int { return r.nin }

// SetNumInputs records the number of primary inputs.
func (r *Relation) SetNumInputs(n int) { r.nin = n }

// NumOutputs returns the number of primary outputs m.
func (r *Relation) NumOutputs() int { return r.nout }

// SetNumOutputs records the number of primary outputs.
func (r *Relation) SetNumOutputs(m int) { r.nout = m }

// ConstantValue returns the value pinned on the k-n introduced input wires.
func (r *Relation) ConstantValue() bool { return r.constValue }

// SetConstantValue records the constant used for the introduced input wires.
func (r *Relation) SetConstantValue(v bool) { r.constValue = v }

// SetInputLabels records the primary input names.
func (r *Relation) SetInputLabels(labels []string) {
	r.inputLabels = append([]string(nil), labels...)
}

// SetOutputLabels records the primary output names.
func (r *Relation) SetOutputLabels(labels []string) {
	r.outputLabels = append([]string(nil), labels...)
}

// InputLabels returns the primary input names.
func (r *Relation) InputLabels() []string { return r.inputLabels }

// OutputLabels returns the primary output names.
func (r *Relation) OutputLabels() []string { return r.outputLabels }

// Chi returns the current characteristic relation.
func (r *Relation) Chi() bdd.Node { return r.chi }

// SetChi replaces the characteristic relation.
func (r *Relation) SetChi(chi bdd.Node) { r.chi = chi }

// XVar returns the variable index of x_i.
func XVar(i int) int { return 3 * i }

// YVar returns the variable index of y_i.
func YVar(i int) int { return 3*i + 1 }

// ZVar returns the variable index of z_i.
func ZVar(i int) int { return 3*i + 2 }

// X returns the positive literal of x_i.
func (r *Relation) X(i int) bdd.Node { return r.man.Var(XVar(i)) }

// NX returns the negative literal of x_i.
func (r *Relation) NX(i int) bdd.Node { return r.man.NVar(XVar(i)) }

// Y returns the positive literal of y_i.
func (r *Relation) Y(i int) bdd.Node { return r.man.Var(YVar(i)) }

// NY returns the negative literal of y_i.
func (r *Relation) NY(i int) bdd.Node { return r.man.NVar(YVar(i)) }

// Z returns the positive literal of z_i.
func (r *Relation) Z(i int) bdd.Node { return r.man.Var(ZVar(i)) }

// XVars returns the variable indices of all input variables.
func (r *Relation) XVars() []int { return r.stride(0) }

// YVars returns the variable indices of all output variables.
func (r *Relation) YVars() []int { return r.stride(1) }

// ZVars returns the variable indices of all temporary variables.
func (r *Relation) ZVars() []int { return r.stride(2) }

func (r *Relation) stride(offset int) []int {
	vars := make([]int, r.k)
	for i := range vars {
		vars[i] = 3*i + offset
	}
	return vars
}

// Cofactor fixes wire v on both sides: x_v to cx and y_v to cy.
func (r *Relation) Cofactor(f bdd.Node, v int, cx, cy bool) bdd.Node {
	m := r.man
	lx, ly := m.NVar(XVar(v)), m.NVar(YVar(v))
	if cx {
		lx = m.Var(XVar(v))
	}
	if cy {
		ly = m.Var(YVar(v))
	}
	return m.AndExist(f, m.And(lx, ly), []int{XVar(v), YVar(v)})
}

// RemoveXs abstracts all input variables from f.
func (r *Relation) RemoveXs(f bdd.Node) bdd.Node {
	return r.man.Exist(f, r.XVars()...)
}

// RemoveYs abstracts all output variables from f.
func (r *Relation) RemoveYs(f bdd.Node) bdd.Node {
	return r.man.Exist(f, r.YVars()...)
}

// MoveXsToYs renames every x_i in f to y_i.
func (r *Relation) MoveXsToYs(f bdd.Node) bdd.Node {
	return r.man.Replace(f, r.XVars(), r.YVars())
}

// MoveYsToXs renames every y_i in f to x_i.
func (r *Relation) MoveYsToXs(f bdd.Node) bdd.Node {
	return r.man.Replace(f, r.YVars(), r.XVars())
}

// MoveXsToTmp renames every x_i in f to z_i.
func (r *Relation) MoveXsToTmp(f bdd.Node) bdd.Node {
	return r.man.Replace(f, r.XVars(), r.ZVars())
}

// MoveYsToTmp renames every y_i in f to z_i.
func (r *Relation) MoveYsToTmp(f bdd.Node) bdd.Node {
	return r.man.Replace(f, r.YVars(), r.ZVars())
}

// Compose returns the relational composition of a and b:
// exists z. a(x, z) and b(z, y).
func (r *Relation) Compose(a, b bdd.Node) bdd.Node {
	left := r.MoveYsToTmp(a)
	right := r.MoveXsToTmp(b)
	return r.man.AndExist(left, right, r.ZVars())
}

// GateRelation builds the relation of a single-target Toffoli gate on the
// given wire whose control function over the x variables is ctrl:
// (y_t = x_t xor ctrl(x)) and (y_j = x_j) for every other wire.
func (r *Relation) GateRelation(target int, ctrl bdd.Node) bdd.Node {
	m := r.man
	rel := m.Xnor(r.Y(target), m.Xor(r.X(target), ctrl))
	for j := 0; j < r.k; j++ {
		if j != target {
			rel = m.And(rel, m.Xnor(r.X(j), r.Y(j)))
		}
	}
	return rel
}

// controlFunction builds the conjunction of a gate's control literals over
// the x variables.
func (r *Relation) controlFunction(controls []revsyn.Control) bdd.Node {
	m := r.man
	ctrl := m.One()
	for _, c := range controls {
		if c.Polarity {
			ctrl = m.And(ctrl, r.X(c.Line))
		} else {
			ctrl = m.And(ctrl, r.NX(c.Line))
		}
	}
	return ctrl
}

// SingleGateRelation builds the relation of one circuit gate.
func (r *Relation) SingleGateRelation(g revsyn.Gate) bdd.Node {
	m := r.man
	ctrl := r.controlFunction(g.Controls)

	switch g.Kind {
	case revsyn.ToffoliKind:
		return r.GateRelation(g.Target(), ctrl)
	case revsyn.FredkinKind:
		t1, t2 := g.Targets[0], g.Targets[1]
		swapped := m.And(m.Xnor(r.Y(t1), r.X(t2)), m.Xnor(r.Y(t2), r.X(t1)))
		straight := m.And(m.Xnor(r.Y(t1), r.X(t1)), m.Xnor(r.Y(t2), r.X(t2)))
		rel := m.Ite(ctrl, swapped, straight)
		for j := 0; j < r.k; j++ {
			if j != t1 && j != t2 {
				rel = m.And(rel, m.Xnor(r.X(j), r.Y(j)))
			}
		}
		return rel
	default:
		panic("rcbdd: unknown gate kind")
	}
}

// CircuitRelation folds a gate sequence into a single relation by
// composition. The empty circuit yields the identity relation.
func (r *Relation) CircuitRelation(c *revsyn.Circuit) bdd.Node {
	rel := r.Identity()
	for _, g := range c.Gates() {
		rel = r.Compose(rel, r.SingleGateRelation(g))
	}
	return rel
}

// Identity returns the relation of the identity function on k wires.
func (r *Relation) Identity() bdd.Node {
	m := r.man
	rel := m.One()
	for i := 0; i < r.k; i++ {
		rel = m.And(rel, m.Xnor(r.X(i), r.Y(i)))
	}
	return rel
}

// IsBijection reports whether f is the characteristic relation of a
// bijection on k wires: 2^k minterms, total on inputs and on outputs.
func (r *Relation) IsBijection(f bdd.Node) bool {
	m := r.man
	count := m.Satcount(f, 2*r.k)
	want := new(big.Int).Lsh(big.NewInt(1), uint(r.k))
	if count.Cmp(want) != 0 {
		return false
	}
	return m.IsOne(r.RemoveYs(f)) && m.IsOne(r.RemoveXs(f))
}

// SmartResolver resolves free-choice output variables to the value chosen
// for their paired input variable. It biases picked cubes toward fixed
// points, which shortens the cycles the synthesizer has to peel, and makes
// the pick deterministic.
func SmartResolver(variable int, partial bdd.Cube) int8 {
	if variable%3 == 1 && partial[variable-1] >= 0 {
		return partial[variable-1]
	}
	return 0
}
