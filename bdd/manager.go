// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

// Package bdd is a thin semantic facade over the rudd decision-diagram
// engine: variables, Boolean operations, quantification, variable renaming,
// minterm counting and cube traversal. All synthesis code accesses the
// engine through this package.
//
// rudd keeps external references alive through finalizers, so there is no
// explicit ref/deref protocol at this boundary; a Node must simply not
// outlive its Manager. rudd uses a static variable order, which makes every
// traversal in this package a pure recursion over an immutable node table.
package bdd

import (
	"math/big"

	"github.com/dalzilio/rudd"
	"github.com/pkg/errors"
)

// Node is an opaque handle into the engine's node table.
type Node = rudd.Node

// Manager owns a fixed set of Boolean variables and the node table they
// live in.
type Manager struct {
	dd     *rudd.BDD
	varnum int
}

// New allocates a manager with the given number of variables.
func New(varnum int) (*Manager, error) {
	alloc := varnum
	if alloc < 1 {
		alloc = 1
	}
	dd, err := rudd.New(alloc, rudd.Nodesize(1<<18), rudd.Cachesize(1<<16))
	if err != nil {
		return nil, errors.Wrap(err, "allocate BDD manager")
	}
	return &Manager{dd: dd, varnum: alloc}, nil
}

// Varnum returns the number of variables the manager was created with.
func (m *Manager) Varnum() int { return m.varnum }

// Err surfaces the engine error state, e.g. after memory exhaustion.
func (m *Manager) Err() error {
	if !m.dd.Errored() {
		return nil
	}
	return errors.New(m.dd.Error())
}

// Zero returns the constant false function.
func (m *Manager) Zero() Node { return m.dd.False() }

// One returns the constant true function.
func (m *Manager) One() Node { return m.dd.True() }

// Var returns the positive literal of variable i.
func (m *Manager) Var(i int) Node { return m.dd.Ithvar(i) }

// NVar returns the negative literal of variable i.
func (m *Manager) NVar(i int) Node { return m.dd.NIthvar(i) }

// Not returns the complement of f.
func (m *Manager) Not(f Node) Node { return m.dd.Not(f) }

// And returns the conjunction of its arguments.
func (m *Manager) And(fs ...Node) Node { return m.dd.And(fs...) }

// Or returns the disjunction of its arguments.
func (m *Manager) Or(fs ...Node) Node { return m.dd.Or(fs...) }

// Xor returns the exclusive or of f and g.
func (m *Manager) Xor(f, g Node) Node { return m.dd.Apply(f, g, rudd.OPxor) }

// Xnor returns the biimplication of f and g.
func (m *Manager) Xnor(f, g Node) Node { return m.dd.Apply(f, g, rudd.OPbiimp) }

// Ite returns if-then-else over the three operands.
func (m *Manager) Ite(f, g, h Node) Node { return m.dd.Ite(f, g, h) }

// Equal reports structural equality, i.e. functional equivalence.
func (m *Manager) Equal(f, g Node) bool { return m.dd.Equal(f, g) }

// IsZero reports whether f is the constant false function.
func (m *Manager) IsZero(f Node) bool { return m.dd.Equal(f, m.dd.False()) }

// IsOne reports whether f is the constant true function.
func (m *Manager) IsOne(f Node) bool { return m.dd.Equal(f, m.dd.True()) }

// Exist abstracts the given variables existentially from f.
func (m *Manager) Exist(f Node, vars ...int) Node {
	if len(vars) == 0 {
		return f
	}
	return m.dd.Exist(f, m.dd.Makeset(vars))
}

// AndExist computes Exist(f AND g, vars) in one engine pass.
func (m *Manager) AndExist(f, g Node, vars []int) Node {
	return m.dd.AppEx(f, g, rudd.OPand, m.dd.Makeset(vars))
}

// Replace renames variables in f: from[i] becomes to[i]. The two lists must
// be disjoint renamings of equal length.
func (m *Manager) Replace(f Node, from, to []int) Node {
	r, err := m.dd.NewReplacer(from, to)
	if err != nil {
		panic(errors.Wrap(err, "bdd: build replacer"))
	}
	return m.dd.Replace(f, r)
}

// Cofactor restricts f by fixing variable i to the given value.
func (m *Manager) Cofactor(f Node, i int, value bool) Node {
	lit := m.NVar(i)
	if value {
		lit = m.Var(i)
	}
	return m.AndExist(f, lit, []int{i})
}

// Satcount counts the minterms of f as if it were a function of n
// variables, scaling the engine's full-space count accordingly.
func (m *Manager) Satcount(f Node, n int) *big.Int {
	count := m.dd.Satcount(f)
	if shift := uint(m.varnum - n); shift > 0 {
		count = new(big.Int).Rsh(count, shift)
	}
	return count
}

// NodeCount returns the number of nodes of the DAG rooted at f, terminals
// included. It walks a node-table snapshot obtained from the engine's
// iterator, which reports internal nodes only.
func (m *Manager) NodeCount(f Node) int {
	if f == nil {
		return 0
	}
	if m.IsZero(f) || m.IsOne(f) {
		return 1
	}

	nodes := m.snapshot(f)
	seen := make(map[int]struct{})
	m.countNodes(nodes, *f, seen)
	return len(seen)
}

func (m *Manager) countNodes(nodes map[int]tableNode, id int, seen map[int]struct{}) {
	if _, ok := seen[id]; ok {
		return
	}
	seen[id] = struct{}{}
	if id <= 1 {
		return
	}
	n := nodes[id]
	m.countNodes(nodes, n.low, seen)
	m.countNodes(nodes, n.high, seen)
}
