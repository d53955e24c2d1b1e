// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package pla

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const halfAdder = `# half adder
.i 2
.o 2
.ilb a b
.ob carry sum
00 00
01 01
10 01
11 10
.e
`

func TestParse(t *testing.T) {
	doc, err := Parse(strings.NewReader(halfAdder))
	require.NoError(t, err)

	require.Equal(t, 2, doc.NumInputs)
	require.Equal(t, 2, doc.NumOutputs)
	require.Equal(t, []string{"a", "b"}, doc.InputLabels)
	require.Equal(t, []string{"carry", "sum"}, doc.OutputLabels)
	require.Len(t, doc.Cubes, 4)
	require.Equal(t, Cube{In: "01", Out: "01"}, doc.Cubes[1])
}

func TestParseDontCares(t *testing.T) {
	doc, err := Parse(strings.NewReader(".i 3\n.o 2\n1-0 1~\n--- 0-\n.e\n"))
	require.NoError(t, err)
	require.Len(t, doc.Cubes, 2)
	require.Equal(t, "1~", doc.Cubes[0].Out)
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"CubeBeforeHeader": "00 01\n.i 2\n.o 2\n.e\n",
		"WrongInputWidth":  ".i 2\n.o 1\n011 1\n.e\n",
		"WrongOutputWidth": ".i 2\n.o 2\n01 1\n.e\n",
		"BadInputChar":     ".i 2\n.o 1\n0~ 1\n.e\n",
		"BadOutputChar":    ".i 2\n.o 1\n01 x\n.e\n",
		"MissingColumns":   ".i 2\n.o 1\n01\n.e\n",
		"BadDirective":     ".i 2\n.o 1\n.frobnicate\n.e\n",
		"MissingHeader":    "# nothing\n.e\n",
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(text))
			require.Error(t, err)
		})
	}
}

func TestWriteRoundTrip(t *testing.T) {
	doc, err := Parse(strings.NewReader(halfAdder))
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, doc.Write(&sb))

	again, err := Parse(strings.NewReader(sb.String()))
	require.NoError(t, err)
	require.Equal(t, doc, again)
}

func TestWriteNormalizesTilde(t *testing.T) {
	doc := &Document{NumInputs: 1, NumOutputs: 2, Cubes: []Cube{{In: "1", Out: "1~"}}}

	var sb strings.Builder
	require.NoError(t, doc.Write(&sb))
	require.Contains(t, sb.String(), "1 1-")
	require.NotContains(t, sb.String(), "~")
}
