// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package bdd

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestManager(t testing.TB, vars int) *Manager {
	t.Helper()
	m, err := New(vars)
	require.NoError(t, err, "create manager")
	return m
}

func TestBooleanOperations(t *testing.T) {
	m := newTestManager(t, 3)

	a, b := m.Var(0), m.Var(1)

	require.True(t, m.Equal(m.And(a, b), m.Not(m.Or(m.Not(a), m.Not(b)))), "De Morgan")
	require.True(t, m.Equal(m.Xor(a, a), m.Zero()))
	require.True(t, m.Equal(m.Xnor(a, b), m.Not(m.Xor(a, b))))
	require.True(t, m.Equal(m.Ite(a, b, m.Zero()), m.And(a, b)))
	require.True(t, m.IsOne(m.Or(a, m.Not(a))))
}

func TestExistAndCofactor(t *testing.T) {
	m := newTestManager(t, 3)

	f := m.And(m.Var(0), m.Var(1))

	require.True(t, m.Equal(m.Exist(f, 0), m.Var(1)))
	require.True(t, m.Equal(m.Cofactor(f, 0, true), m.Var(1)))
	require.True(t, m.IsZero(m.Cofactor(f, 0, false)))
	require.True(t, m.Equal(m.AndExist(m.Var(0), m.Var(1), []int{2}), f))
}

func TestReplace(t *testing.T) {
	m := newTestManager(t, 4)

	f := m.And(m.Var(0), m.NVar(1))
	g := m.Replace(f, []int{0, 1}, []int{2, 3})
	require.True(t, m.Equal(g, m.And(m.Var(2), m.NVar(3))))
}

func TestSatcount(t *testing.T) {
	m := newTestManager(t, 6)

	f := m.And(m.Var(0), m.Var(1))
	// Counted over the first three variables: minterms 110, 111.
	require.Zero(t, m.Satcount(f, 3).Cmp(big.NewInt(2)))
	require.Zero(t, m.Satcount(m.One(), 3).Cmp(big.NewInt(8)))
	require.Zero(t, m.Satcount(m.Zero(), 3).Cmp(big.NewInt(0)))
}

func TestForeachCube(t *testing.T) {
	m := newTestManager(t, 3)

	f := m.Or(m.And(m.Var(0), m.Var(1)), m.NVar(0))

	var cubes []Cube
	m.ForeachCube(f, func(c Cube) bool {
		cubes = append(cubes, append(Cube(nil), c...))
		return true
	})
	require.NotEmpty(t, cubes)

	// Path cubes are disjoint and rebuild the function.
	rebuilt := m.Zero()
	for _, c := range cubes {
		node := m.CubeNode(c)
		require.True(t, m.IsZero(m.And(rebuilt, node)), "cubes overlap")
		rebuilt = m.Or(rebuilt, node)
	}
	require.True(t, m.Equal(rebuilt, f))
}

func TestForeachCubeStops(t *testing.T) {
	m := newTestManager(t, 3)

	count := 0
	m.ForeachCube(m.One(), func(Cube) bool {
		count++
		return false
	})
	require.Equal(t, 1, count)
}

func TestPickOneCube(t *testing.T) {
	m := newTestManager(t, 4)

	t.Run("ZeroFunction", func(t *testing.T) {
		_, ok := m.PickOneCube(m.Zero(), nil)
		require.False(t, ok)
	})

	t.Run("CubeSatisfies", func(t *testing.T) {
		f := m.Or(m.And(m.Var(0), m.NVar(2)), m.And(m.NVar(0), m.Var(3)))
		cube, ok := m.PickOneCube(f, nil)
		require.True(t, ok)
		require.True(t, m.Equal(m.And(m.CubeNode(cube), f), m.CubeNode(cube)), "picked cube implies f")
	})

	t.Run("ResolverDrivesChoice", func(t *testing.T) {
		f := m.Xnor(m.Var(0), m.Var(1))
		one := func(int, Cube) int8 { return 1 }
		cube, ok := m.PickOneCube(f, one)
		require.True(t, ok)
		require.Equal(t, int8(1), cube[0])
		require.Equal(t, int8(1), cube[1])
	})
}

func TestPickOneMinterm(t *testing.T) {
	m := newTestManager(t, 4)

	f := m.Var(1)
	vars := []int{0, 1, 2, 3}
	minterm, ok := m.PickOneMinterm(f, vars)
	require.True(t, ok)

	// A minterm binds every requested variable and lies inside f.
	require.Zero(t, m.Satcount(minterm, 4).Cmp(big.NewInt(1)))
	require.True(t, m.Equal(m.And(minterm, f), minterm))
}

func TestNodeCount(t *testing.T) {
	m := newTestManager(t, 4)

	require.Equal(t, 1, m.NodeCount(m.One()))
	require.True(t, m.NodeCount(m.And(m.Var(0), m.Var(1))) > 2)
}
