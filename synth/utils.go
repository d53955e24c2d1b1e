// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

// Package synth implements the synthesis pipeline for reversible circuits:
// PLA and truth-table embedding into a characteristic relation, the
// cofactor-cycle synthesizer that factors the relation into Toffoli
// cascades, and the cover- and truth-table-based synthesis kernels
// (transformation-based, transposition-based, Reed-Muller, ESOP) together
// with the SWOP output-permutation wrapper.
package synth

import (
	"math/big"
	"math/bits"
)

// hammingDistance counts the differing bits of two patterns.
func hammingDistance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

// pow2 returns 2^n as a big integer.
func pow2(n uint) *big.Int {
	return new(big.Int).Lsh(big.NewInt(1), n)
}

// calculateRequiredLines computes the wire count of an embedding:
// max(n, m + ceil(log2 maxmu)).
func calculateRequiredLines(n, m int, maxmu *big.Int) int {
	exp := uint(0)
	for pow2(exp).Cmp(maxmu) < 0 {
		exp++
	}
	if k := m + int(exp); k > n {
		return k
	}
	return n
}
