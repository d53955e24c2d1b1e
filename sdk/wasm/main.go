//go:build js && wasm

// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

// Package main provides WASM bindings for reversible logic synthesis
//
// Exports synthesis operations to JavaScript:
// - embed(plaText) -> {pla, wires}
// - synthesize(plaText, mode) -> {real, gates}
// - esop(plaText) -> {real, gates}
package main

import (
	"strings"
	"syscall/js"

	"github.com/luxfi/revsyn"
	"github.com/luxfi/revsyn/pla"
	"github.com/luxfi/revsyn/synth"
)

// embed parses a PLA text, embeds it into a reversible relation and returns
// the relation as PLA text together with the wire count.
func embed(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf("error: requires (plaText)")
	}

	doc, err := pla.Parse(strings.NewReader(args[0].String()))
	if err != nil {
		return js.ValueOf("error: " + err.Error())
	}

	r, err := synth.EmbedPLADocument(doc, nil, nil)
	if err != nil {
		return js.ValueOf("error: " + err.Error())
	}

	var sb strings.Builder
	if err := r.WritePLA(&sb); err != nil {
		return js.ValueOf("error: " + err.Error())
	}

	return map[string]interface{}{
		"pla":   sb.String(),
		"wires": r.Vars(),
	}
}

// synthesize embeds a PLA text and runs the characteristic-function
// synthesizer; the wire ordering mode is optional (0, 1 or 2).
func synthesize(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf("error: requires (plaText[, mode])")
	}

	doc, err := pla.Parse(strings.NewReader(args[0].String()))
	if err != nil {
		return js.ValueOf("error: " + err.Error())
	}

	r, err := synth.EmbedPLADocument(doc, nil, nil)
	if err != nil {
		return js.ValueOf("error: " + err.Error())
	}

	opts := synth.DefaultCharacteristicOptions()
	if len(args) > 1 {
		opts.Mode = args[1].Int()
	}

	circ, err := synth.Characteristic(r, opts, nil)
	if err != nil {
		return js.ValueOf("error: " + err.Error())
	}

	return circuitResult(circ)
}

// esop translates an ESOP PLA text into a Toffoli cascade.
func esop(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf("error: requires (plaText)")
	}

	doc, err := pla.Parse(strings.NewReader(args[0].String()))
	if err != nil {
		return js.ValueOf("error: " + err.Error())
	}

	circ, err := synth.ESOP(doc, nil, nil)
	if err != nil {
		return js.ValueOf("error: " + err.Error())
	}

	return circuitResult(circ)
}

// getVersion returns the synthesis library version
func getVersion(this js.Value, args []js.Value) interface{} {
	return js.ValueOf("1.0.0")
}

func circuitResult(circ *revsyn.Circuit) interface{} {
	var sb strings.Builder
	if err := revsyn.WriteReal(&sb, circ); err != nil {
		return js.ValueOf("error: " + err.Error())
	}
	return map[string]interface{}{
		"real":  sb.String(),
		"gates": circ.NumGates(),
	}
}

func main() {
	// Export functions to JavaScript global scope
	js.Global().Set("revsyn", map[string]interface{}{
		"version":    js.FuncOf(getVersion),
		"embed":      js.FuncOf(embed),
		"synthesize": js.FuncOf(synthesize),
		"esop":       js.FuncOf(esop),
	})

	// Keep the Go runtime alive
	select {}
}
