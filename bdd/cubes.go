// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package bdd

// Cube is a partial assignment over the manager's variables: 1 and 0 bind a
// variable, -1 leaves it unconstrained.
type Cube []int8

// Resolver decides the value of a free-choice variable during cube picking.
// It receives the variable index and the partial cube built so far.
type Resolver func(variable int, partial Cube) int8

// ZeroResolver always picks the else branch. It makes cube picking fully
// deterministic.
func ZeroResolver(int, Cube) int8 { return 0 }

// tableNode is one entry of a node-table snapshot. The engine reports nodes
// as plain ints: the ids 0 and 1 are the terminals, level is the variable
// index (the order is static, so the two coincide).
type tableNode struct {
	level     int
	low, high int
}

// snapshot collects the node table reachable from f into an id-indexed map.
// All traversals in this package walk such a snapshot; the engine's own
// iterator is the only node-inspection surface it exposes.
func (m *Manager) snapshot(f Node) map[int]tableNode {
	nodes := make(map[int]tableNode)
	m.dd.Allnodes(func(id, level, low, high int) error {
		nodes[id] = tableNode{level: level, low: low, high: high}
		return nil
	}, f)
	return nodes
}

// ForeachCube enumerates the disjoint path cubes of f in a deterministic
// order (else branch before then branch). The callback returns false to stop
// the enumeration. The cube passed to the callback is only valid during the
// call.
func (m *Manager) ForeachCube(f Node, fn func(Cube) bool) {
	if f == nil {
		return
	}
	cube := m.freshCube()
	nodes := m.snapshot(f)
	m.foreachCube(nodes, *f, cube, fn)
}

func (m *Manager) foreachCube(nodes map[int]tableNode, id int, cube Cube, fn func(Cube) bool) bool {
	if id == 0 {
		return true
	}
	if id == 1 {
		return fn(cube)
	}
	n := nodes[id]
	cube[n.level] = 0
	if !m.foreachCube(nodes, n.low, cube, fn) {
		return false
	}
	cube[n.level] = 1
	if !m.foreachCube(nodes, n.high, cube, fn) {
		return false
	}
	cube[n.level] = -1
	return true
}

// PickOneCube extracts one satisfying cube from f. At nodes where both
// branches are satisfiable the resolver chooses the direction; variables not
// on the chosen path stay unconstrained. Returns false when f is the zero
// function.
func (m *Manager) PickOneCube(f Node, resolve Resolver) (Cube, bool) {
	if f == nil || m.IsZero(f) {
		return nil, false
	}
	if resolve == nil {
		resolve = ZeroResolver
	}
	cube := m.freshCube()
	nodes := m.snapshot(f)

	id := *f
	for id != 1 {
		n := nodes[id]
		switch {
		case n.high == 0:
			cube[n.level] = 0
			id = n.low
		case n.low == 0:
			cube[n.level] = 1
			id = n.high
		default:
			if cube[n.level] = resolve(n.level, cube); cube[n.level] == 1 {
				id = n.high
			} else {
				id = n.low
			}
		}
	}
	return cube, true
}

// PickOneMinterm extracts one satisfying cube of f and completes it to a
// full minterm over the given variables, binding free variables to 0.
func (m *Manager) PickOneMinterm(f Node, vars []int) (Node, bool) {
	cube, ok := m.PickOneCube(f, ZeroResolver)
	if !ok {
		return m.Zero(), false
	}
	minterm := m.One()
	for _, v := range vars {
		if cube[v] == 1 {
			minterm = m.And(minterm, m.Var(v))
		} else {
			minterm = m.And(minterm, m.NVar(v))
		}
	}
	return minterm, true
}

// CubeNode builds the conjunction of the literals bound in the cube.
func (m *Manager) CubeNode(cube Cube) Node {
	conj := m.One()
	for v, val := range cube {
		switch val {
		case 0:
			conj = m.And(conj, m.NVar(v))
		case 1:
			conj = m.And(conj, m.Var(v))
		}
	}
	return conj
}

func (m *Manager) freshCube() Cube {
	cube := make(Cube, m.varnum)
	for i := range cube {
		cube[i] = -1
	}
	return cube
}
