// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

// Package pla reads and writes PLA files in the Espresso subset used by the
// synthesis algorithms: .i/.o header, optional .ilb/.ob label lines, cube
// rows and a terminating .e. Rows are kept in file order; the embedders rely
// on that order.
package pla

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Cube is one cover row. In is over {0,1,-}; Out is over {0,1,-,~}. A dash
// in the input means universal quantification over that bit, a dash or tilde
// in the output leaves the bit unconstrained.
type Cube struct {
	In  string
	Out string
}

// Document is a parsed PLA cover.
type Document struct {
	NumInputs    int
	NumOutputs   int
	InputLabels  []string
	OutputLabels []string
	Cubes        []Cube
}

// Parse reads a PLA document from r.
func Parse(r io.Reader) (*Document, error) {
	doc := &Document{NumInputs: -1, NumOutputs: -1}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 1<<16), 1<<22)

	lineno := 0
	for sc.Scan() {
		lineno++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, ".") {
			fields := strings.Fields(line)
			switch fields[0] {
			case ".i":
				if _, err := fmt.Sscanf(line, ".i %d", &doc.NumInputs); err != nil {
					return nil, errors.Wrapf(err, "line %d: malformed .i", lineno)
				}
			case ".o":
				if _, err := fmt.Sscanf(line, ".o %d", &doc.NumOutputs); err != nil {
					return nil, errors.Wrapf(err, "line %d: malformed .o", lineno)
				}
			case ".ilb":
				doc.InputLabels = fields[1:]
			case ".ob":
				doc.OutputLabels = fields[1:]
			case ".e":
				return doc.validate()
			case ".p", ".type":
				// row count and cover type are informational
			default:
				return nil, errors.Errorf("line %d: unsupported directive %q", lineno, fields[0])
			}
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, errors.Errorf("line %d: cube row needs input and output column", lineno)
		}
		cube := Cube{In: fields[0], Out: fields[1]}
		if err := doc.checkCube(cube); err != nil {
			return nil, errors.Wrapf(err, "line %d", lineno)
		}
		doc.Cubes = append(doc.Cubes, cube)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.WithStack(err)
	}
	return doc.validate()
}

// ParseFile reads a PLA document from a file.
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()
	doc, err := Parse(f)
	return doc, errors.Wrapf(err, "parse %s", path)
}

func (d *Document) checkCube(c Cube) error {
	if d.NumInputs < 0 || d.NumOutputs < 0 {
		return errors.New("cube row before .i/.o header")
	}
	if len(c.In) != d.NumInputs {
		return errors.Errorf("input cube %q does not have %d bits", c.In, d.NumInputs)
	}
	if len(c.Out) != d.NumOutputs {
		return errors.Errorf("output cube %q does not have %d bits", c.Out, d.NumOutputs)
	}
	if strings.IndexFunc(c.In, invalidInBit) >= 0 {
		return errors.Errorf("invalid input cube %q", c.In)
	}
	if strings.IndexFunc(c.Out, invalidOutBit) >= 0 {
		return errors.Errorf("invalid output cube %q", c.Out)
	}
	return nil
}

func invalidInBit(r rune) bool {
	return r != '0' && r != '1' && r != '-'
}

func invalidOutBit(r rune) bool {
	return r != '0' && r != '1' && r != '-' && r != '~'
}

func (d *Document) validate() (*Document, error) {
	if d.NumInputs < 0 || d.NumOutputs < 0 {
		return nil, errors.New("missing .i/.o header")
	}
	if len(d.InputLabels) > 0 && len(d.InputLabels) != d.NumInputs {
		return nil, errors.Errorf(".ilb names %d inputs, header says %d", len(d.InputLabels), d.NumInputs)
	}
	if len(d.OutputLabels) > 0 && len(d.OutputLabels) != d.NumOutputs {
		return nil, errors.Errorf(".ob names %d outputs, header says %d", len(d.OutputLabels), d.NumOutputs)
	}
	return d, nil
}

// Write serializes the document. Output bits are normalized to {0,1,-}.
func (d *Document) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, ".i %d\n", d.NumInputs)
	fmt.Fprintf(bw, ".o %d\n", d.NumOutputs)
	if len(d.InputLabels) > 0 {
		fmt.Fprintf(bw, ".ilb %s\n", strings.Join(d.InputLabels, " "))
	}
	if len(d.OutputLabels) > 0 {
		fmt.Fprintf(bw, ".ob %s\n", strings.Join(d.OutputLabels, " "))
	}
	for _, c := range d.Cubes {
		fmt.Fprintf(bw, "%s %s\n", c.In, strings.ReplaceAll(c.Out, "~", "-"))
	}
	fmt.Fprintln(bw, ".e")
	return errors.WithStack(bw.Flush())
}

// WriteFile serializes the document to a file.
func (d *Document) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.WithStack(err)
	}
	if err := d.Write(f); err != nil {
		f.Close()
		return err
	}
	return errors.WithStack(f.Close())
}
