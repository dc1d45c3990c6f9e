// This file is part of pl0 - https://github.com/db47h/pl0
//
// Copyright 2016 Denis Bernard <db047h@gmail.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package diag provides the shared diagnostic list accumulated by every
// compiler stage, modeled on the assembler package's ErrAsm: a flat,
// append-only list of positioned messages with a combined Error() form.
package diag

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Phase identifies which pipeline stage raised a diagnostic.
type Phase string

// Compiler phases.
const (
	Lexical  Phase = "Lexical"
	Syntax   Phase = "Syntax"
	Semantic Phase = "Semantic"
	Runtime  Phase = "Runtime"
)

// Severity distinguishes fatal diagnostics from advisory ones.
type Severity string

// Diagnostic severities.
const (
	Error   Severity = "Error"
	Warning Severity = "Warning"
)

// Diagnostic is a single positioned message.
type Diagnostic struct {
	Phase     Phase
	Severity  Severity
	Line      int
	Message   string
	Suggest   string // optional "Did you mean '...'" candidate
}

func (d Diagnostic) String() string {
	msg := d.Message
	if d.Suggest != "" {
		msg += fmt.Sprintf(" Did you mean '%s'?", d.Suggest)
	}
	return fmt.Sprintf("[%s %s] Line %d: %s", d.Phase, d.Severity, d.Line, msg)
}

// Bag accumulates diagnostics across all pipeline stages in source order.
// It is the only piece of state shared, and mutated, by every stage.
type Bag struct {
	items []Diagnostic
}

// Add appends a diagnostic to the bag.
func (b *Bag) Add(d Diagnostic) {
	b.items = append(b.items, d)
}

// Errorf is a convenience for Add with an Error severity.
func (b *Bag) Errorf(phase Phase, line int, format string, args ...interface{}) {
	b.Add(Diagnostic{Phase: phase, Severity: Error, Line: line, Message: fmt.Sprintf(format, args...)})
}

// Warnf is a convenience for Add with a Warning severity.
func (b *Bag) Warnf(phase Phase, line int, format string, args ...interface{}) {
	b.Add(Diagnostic{Phase: phase, Severity: Warning, Line: line, Message: fmt.Sprintf(format, args...)})
}

// HasErrors reports whether any Error-severity diagnostic has been recorded.
// The pipeline must not proceed past a stage for which this is true.
func (b *Bag) HasErrors() bool {
	for _, d := range b.items {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Items returns the accumulated diagnostics in source order.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Len returns the number of accumulated diagnostics.
func (b *Bag) Len() int {
	return len(b.items)
}

// Error implements the error interface so a Bag can be returned/wrapped like
// any other error when non-empty.
func (b *Bag) Error() string {
	lines := make([]string, 0, len(b.items))
	for _, d := range b.items {
		lines = append(lines, d.String())
	}
	return strings.Join(lines, "\n")
}

// Print writes every diagnostic to w, one per line, colorizing severities
// when color is enabled (errors red, warnings yellow). It mirrors the color
// conventions used elsewhere in this codebase for terminal output.
func (b *Bag) Print(w io.Writer, useColor bool) {
	errColor := color.New(color.FgRed, color.Bold)
	warnColor := color.New(color.FgYellow, color.Bold)
	errColor.EnableColor()
	warnColor.EnableColor()
	if !useColor {
		errColor.DisableColor()
		warnColor.DisableColor()
	}
	for _, d := range b.items {
		tag := errColor.Sprintf("[%s %s]", d.Phase, d.Severity)
		if d.Severity == Warning {
			tag = warnColor.Sprintf("[%s %s]", d.Phase, d.Severity)
		}
		msg := d.Message
		if d.Suggest != "" {
			msg += fmt.Sprintf(" Did you mean '%s'?", d.Suggest)
		}
		fmt.Fprintf(w, "%s Line %d: %s\n", tag, d.Line, msg)
	}
}
