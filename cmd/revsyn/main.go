// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

// Command revsyn synthesizes reversible circuits from PLA descriptions and
// truth tables.
package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/luxfi/revsyn"
	"github.com/luxfi/revsyn/pla"
	"github.com/luxfi/revsyn/rcbdd"
	"github.com/luxfi/revsyn/synth"
)

// VERSION is injected by buildflags
var VERSION = "SELFBUILD"

func main() {
	app := cli.NewApp()
	app.Name = "revsyn"
	app.Usage = "reversible logic synthesis"
	app.Version = VERSION

	app.Commands = []cli.Command{
		embedCommand(),
		synthCommand(),
		ttCommand(),
		esopCommand(),
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("[e] %+v", err)
	}
}

func embedCommand() cli.Command {
	return cli.Command{
		Name:  "embed",
		Usage: "embed an irreversible PLA into a reversible relation",
		Flags: []cli.Flag{
			cli.StringFlag{Name: "pla, p", Usage: "input PLA file"},
			cli.StringFlag{Name: "write-pla, w", Usage: "write the embedded relation as PLA to this path"},
			cli.BoolFlag{Name: "bennett", Usage: "use the Bennett baseline embedding with n+m wires"},
			cli.BoolFlag{Name: "const-value", Usage: "pin introduced input wires to 1 instead of 0"},
			cli.BoolFlag{Name: "truth-table", Usage: "print the embedded truth table"},
			cli.BoolFlag{Name: "verbose, v", Usage: "diagnostic output"},
		},
		Action: func(c *cli.Context) error {
			r, err := embedFromFlags(c)
			if err != nil {
				return err
			}
			fmt.Printf("wires: %d\n", r.Vars())
			return nil
		},
	}
}

func embedFromFlags(c *cli.Context) (*rcbdd.Relation, error) {
	path := c.String("pla")
	if path == "" {
		return nil, errors.New("missing --pla input file")
	}

	if c.Bool("bennett") {
		opts := &synth.EmbedBennettOptions{
			TruthTable: c.Bool("truth-table"),
			WritePLA:   c.String("write-pla"),
		}
		return synth.EmbedPLABennett(path, opts, nil)
	}

	opts := &synth.EmbedPLAOptions{
		Verbose:    c.Bool("verbose"),
		TruthTable: c.Bool("truth-table"),
		WritePLA:   c.String("write-pla"),
		ConstValue: c.Bool("const-value"),
	}
	return synth.EmbedPLA(path, opts, nil)
}

func synthCommand() cli.Command {
	return cli.Command{
		Name:  "synth",
		Usage: "embed a PLA and synthesize a Toffoli circuit from its relation",
		Flags: []cli.Flag{
			cli.StringFlag{Name: "pla, p", Usage: "input PLA file"},
			cli.StringFlag{Name: "out, o", Usage: "output .real file (stdout when empty)"},
			cli.BoolFlag{Name: "bennett", Usage: "use the Bennett baseline embedding"},
			cli.BoolFlag{Name: "const-value", Usage: "pin introduced input wires to 1 instead of 0"},
			cli.IntFlag{Name: "mode", Usage: "wire ordering: 0 natural, 1 swap heuristic, 2 Hamming heuristic"},
			cli.StringFlag{Name: "method", Value: "cycles", Usage: "cycles, transpositions-x or transpositions-y"},
			cli.BoolTFlag{Name: "smart-pickcube", Usage: "deterministic minterm selection"},
			cli.BoolFlag{Name: "verbose, v", Usage: "diagnostic output"},
		},
		Action: func(c *cli.Context) error {
			r, err := embedFromFlags(c)
			if err != nil {
				return err
			}

			opts := synth.DefaultCharacteristicOptions()
			opts.Verbose = c.Bool("verbose")
			opts.Mode = c.Int("mode")
			opts.SmartPickcube = c.BoolT("smart-pickcube")
			switch c.String("method") {
			case "cycles":
				opts.Method = synth.MethodResolveCycles
			case "transpositions-x":
				opts.Method = synth.MethodTranspositionsX
			case "transpositions-y":
				opts.Method = synth.MethodTranspositionsY
			default:
				return errors.Errorf("unknown method %q", c.String("method"))
			}

			var stats synth.CharacteristicStats
			circ, err := synth.Characteristic(r, opts, &stats)
			if err != nil {
				return err
			}
			if c.Bool("verbose") {
				log.Printf("[i] gates: %d, controls: %d, runtime: %v",
					stats.GateCount, stats.ControlCount, stats.Runtime)
			}
			return writeCircuit(c.String("out"), circ)
		},
	}
}

func ttCommand() cli.Command {
	return cli.Command{
		Name:  "tt",
		Usage: "synthesize a fully specified truth table",
		Flags: []cli.Flag{
			cli.StringFlag{Name: "spec, s", Usage: "truth table as PLA rows, fully specified"},
			cli.StringFlag{Name: "out, o", Usage: "output .real file (stdout when empty)"},
			cli.StringFlag{Name: "algorithm, a", Value: "transformation", Usage: "transformation, transposition or reed-muller"},
			cli.BoolTFlag{Name: "bidirectional", Usage: "two-sided matching"},
			cli.BoolFlag{Name: "fredkin", Usage: "enable Fredkin gates"},
			cli.BoolFlag{Name: "fredkin-lookback", Usage: "validate speculative swaps against all earlier rows"},
			cli.BoolFlag{Name: "embed", Usage: "embed the table before synthesis"},
			cli.BoolFlag{Name: "swop", Usage: "wrap the synthesizer in an output-permutation search"},
			cli.BoolFlag{Name: "exhaustive", Usage: "exhaustive SWOP instead of sifting"},
			cli.StringFlag{Name: "cost", Value: "gates", Usage: "SWOP cost function: gates, quantum or transistor"},
			cli.BoolFlag{Name: "verbose, v", Usage: "diagnostic output"},
		},
		Action: func(c *cli.Context) error {
			spec, err := loadTruthTable(c.String("spec"))
			if err != nil {
				return err
			}

			if c.Bool("embed") {
				spec, err = synth.EmbedTruthTable(spec, nil, nil)
				if err != nil {
					return err
				}
			}

			base, err := baseSynth(c)
			if err != nil {
				return err
			}

			var circ *revsyn.Circuit
			if c.Bool("swop") {
				cost, err := costFunc(c.String("cost"))
				if err != nil {
					return err
				}
				circ, err = synth.SWOP(spec, &synth.SWOPOptions{
					Enable:     true,
					Exhaustive: c.Bool("exhaustive"),
					Synthesis:  base,
					Cost:       cost,
				}, nil)
				if err != nil {
					return err
				}
			} else {
				circ, err = base(spec)
				if err != nil {
					return err
				}
			}
			return writeCircuit(c.String("out"), circ)
		},
	}
}

func baseSynth(c *cli.Context) (synth.TruthTableSynth, error) {
	switch c.String("algorithm") {
	case "transformation":
		opts := &synth.TransformationOptions{
			Bidirectional:   c.BoolT("bidirectional"),
			Fredkin:         c.Bool("fredkin"),
			FredkinLookback: c.Bool("fredkin-lookback"),
			Verbose:         c.Bool("verbose"),
		}
		return func(s *revsyn.TruthTable) (*revsyn.Circuit, error) {
			return synth.TransformationBased(s, opts, nil)
		}, nil
	case "transposition":
		return func(s *revsyn.TruthTable) (*revsyn.Circuit, error) {
			return synth.TranspositionBased(s, nil)
		}, nil
	case "reed-muller":
		opts := &synth.ReedMullerOptions{Bidirectional: c.BoolT("bidirectional")}
		return func(s *revsyn.TruthTable) (*revsyn.Circuit, error) {
			return synth.ReedMuller(s, opts, nil)
		}, nil
	default:
		return nil, errors.Errorf("unknown algorithm %q", c.String("algorithm"))
	}
}

func costFunc(name string) (revsyn.CostFunc, error) {
	switch name {
	case "gates":
		return revsyn.GateCount, nil
	case "quantum":
		return revsyn.QuantumCost, nil
	case "transistor":
		return revsyn.TransistorCost, nil
	default:
		return nil, errors.Errorf("unknown cost function %q", name)
	}
}

func esopCommand() cli.Command {
	return cli.Command{
		Name:  "esop",
		Usage: "translate an ESOP PLA cover into a Toffoli cascade",
		Flags: []cli.Flag{
			cli.StringFlag{Name: "pla, p", Usage: "input ESOP PLA file"},
			cli.StringFlag{Name: "out, o", Usage: "output .real file (stdout when empty)"},
			cli.BoolFlag{Name: "separate-polarities", Usage: "double every input line into both polarities"},
			cli.BoolTFlag{Name: "negative-controls", Usage: "use polarized controls"},
			cli.BoolTFlag{Name: "share-target", Usage: "share one Toffoli per cube with CNOT fan-out"},
			cli.StringFlag{Name: "reordering", Value: "weighted", Usage: "cube reordering: none or weighted"},
			cli.Float64Flag{Name: "alpha", Value: 0.5, Usage: "weighted reordering alpha"},
			cli.Float64Flag{Name: "beta", Value: 0.5, Usage: "weighted reordering beta"},
			cli.StringFlag{Name: "garbage-name", Value: "--", Usage: "label for garbage outputs"},
		},
		Action: func(c *cli.Context) error {
			doc, err := pla.ParseFile(c.String("pla"))
			if err != nil {
				return err
			}

			opts := &synth.ESOPOptions{
				SeparatePolarities:   c.Bool("separate-polarities"),
				NegativeControlLines: c.BoolT("negative-controls"),
				ShareCubeOnTarget:    c.BoolT("share-target"),
				GarbageName:          c.String("garbage-name"),
			}
			switch c.String("reordering") {
			case "none":
				opts.Reordering = synth.NoReordering
			case "weighted":
				opts.Reordering = synth.WeightedReordering(c.Float64("alpha"), c.Float64("beta"))
			default:
				return errors.Errorf("unknown reordering %q", c.String("reordering"))
			}

			circ, err := synth.ESOP(doc, opts, nil)
			if err != nil {
				return err
			}
			return writeCircuit(c.String("out"), circ)
		},
	}
}

// loadTruthTable reads a truth table written as PLA rows.
func loadTruthTable(path string) (*revsyn.TruthTable, error) {
	if path == "" {
		return nil, errors.New("missing --spec input file")
	}
	doc, err := pla.ParseFile(path)
	if err != nil {
		return nil, err
	}
	t := revsyn.NewTruthTable(doc.NumInputs, doc.NumOutputs)
	for _, cube := range doc.Cubes {
		if err := t.Add(cube.In, strings.ReplaceAll(cube.Out, "~", "-")); err != nil {
			return nil, err
		}
	}
	copy(t.Inputs, doc.InputLabels)
	copy(t.Outputs, doc.OutputLabels)
	return t, nil
}

func writeCircuit(path string, circ *revsyn.Circuit) error {
	if path == "" {
		return revsyn.WriteReal(os.Stdout, circ)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.WithStack(err)
	}
	if err := revsyn.WriteReal(f, circ); err != nil {
		f.Close()
		return err
	}
	return errors.WithStack(f.Close())
}
