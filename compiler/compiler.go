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

// Package compiler wires the pipeline stages together: parse, then
// analyze, then generate, bailing out with the accumulated diagnostics as
// soon as a stage reports an error. It is the single entry point the CLI
// and tests use instead of calling parser/sema/codegen directly, the way
// asm.Assemble is the one call site that drives the teacher's scanner and
// parser together.
package compiler

import (
	"github.com/db47h/pl0/codegen"
	"github.com/db47h/pl0/diag"
	"github.com/db47h/pl0/parser"
	"github.com/db47h/pl0/pcode"
	"github.com/db47h/pl0/sema"
)

// Result is the outcome of compiling one source file: a program ready to
// run, and whatever diagnostics (errors and/or warnings) were collected
// along the way.
type Result struct {
	Program     *pcode.Program
	Diagnostics *diag.Bag
}

// Compile runs src through the lexer/parser, semantic analysis, and code
// generation in sequence. It stops after any stage that produced an
// error-severity diagnostic, returning a nil Program; warnings alone never
// stop the pipeline.
func Compile(src string) Result {
	bag := &diag.Bag{}

	prog := parser.Parse(src, bag)
	if bag.HasErrors() {
		return Result{Diagnostics: bag}
	}

	sema.Analyze(prog, bag)
	if bag.HasErrors() {
		return Result{Diagnostics: bag}
	}

	code := codegen.Generate(prog)
	return Result{Program: code, Diagnostics: bag}
}
