// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package revsyn

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// WriteReal serializes a circuit in the RevLib .real format. Negative
// controls are written with a leading dash on the variable name.
func WriteReal(w io.Writer, c *Circuit) error {
	bw := bufio.NewWriter(w)

	names := make([]string, c.Lines())
	for i := range names {
		names[i] = fmt.Sprintf("x%d", i)
	}

	fmt.Fprintln(bw, ".version 2.0")
	fmt.Fprintf(bw, ".numvars %d\n", c.Lines())
	fmt.Fprintf(bw, ".variables %s\n", strings.Join(names, " "))
	fmt.Fprintf(bw, ".inputs %s\n", strings.Join(orDefault(c.Inputs, names), " "))
	fmt.Fprintf(bw, ".outputs %s\n", strings.Join(orDefault(c.Outputs, names), " "))

	consts := make([]byte, c.Lines())
	for i, v := range c.Constants {
		switch {
		case v == nil:
			consts[i] = '-'
		case *v:
			consts[i] = '1'
		default:
			consts[i] = '0'
		}
	}
	fmt.Fprintf(bw, ".constants %s\n", consts)

	garbage := make([]byte, c.Lines())
	for i, g := range c.Garbage {
		if g {
			garbage[i] = '1'
		} else {
			garbage[i] = '-'
		}
	}
	fmt.Fprintf(bw, ".garbage %s\n", garbage)

	fmt.Fprintln(bw, ".begin")
	for _, g := range c.Gates() {
		switch g.Kind {
		case ToffoliKind:
			fmt.Fprintf(bw, "t%d", len(g.Controls)+1)
		case FredkinKind:
			fmt.Fprintf(bw, "f%d", len(g.Controls)+2)
		default:
			return errors.Errorf("cannot serialize gate kind %d", g.Kind)
		}
		for _, ctl := range g.Controls {
			if ctl.Polarity {
				fmt.Fprintf(bw, " %s", names[ctl.Line])
			} else {
				fmt.Fprintf(bw, " -%s", names[ctl.Line])
			}
		}
		for _, t := range g.Targets {
			fmt.Fprintf(bw, " %s", names[t])
		}
		fmt.Fprintln(bw)
	}
	fmt.Fprintln(bw, ".end")

	return errors.WithStack(bw.Flush())
}

// String renders the circuit in .real syntax, for diagnostics.
func (c *Circuit) String() string {
	var sb strings.Builder
	if err := WriteReal(&sb, c); err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	return sb.String()
}

func orDefault(labels, fallback []string) []string {
	out := make([]string, len(fallback))
	for i := range out {
		if i < len(labels) && labels[i] != "" {
			out[i] = labels[i]
		} else {
			out[i] = fallback[i]
		}
	}
	return out
}
