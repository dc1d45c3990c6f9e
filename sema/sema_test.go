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

package sema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/db47h/pl0/ast"
	"github.com/db47h/pl0/diag"
	"github.com/db47h/pl0/parser"
	"github.com/db47h/pl0/sema"
)

func analyze(t *testing.T, src string) (*ast.Program, *diag.Bag) {
	t.Helper()
	bag := &diag.Bag{}
	prog := parser.Parse(src, bag)
	require.False(t, bag.HasErrors(), "parse errors: %s", bag.Error())
	sema.Analyze(prog, bag)
	return prog, bag
}

func TestAnalyze_constantFolding(t *testing.T) {
	src := `
	program p;
	var x;
	begin
		x := 2 + 3 * 4
	end.
	`
	prog, bag := analyze(t, src)
	require.False(t, bag.HasErrors())
	asn := prog.Block.Body.(*ast.Compound).Stmts[0].(*ast.Assign)
	num, ok := asn.Expr.(*ast.Num)
	require.True(t, ok, "expected folded constant, got %T", asn.Expr)
	assert.Equal(t, 14, num.Value)
}

func TestAnalyze_divisionByZero(t *testing.T) {
	src := `
	program p;
	var x;
	begin
		x := 1 / 0
	end.
	`
	_, bag := analyze(t, src)
	require.True(t, bag.HasErrors())
	assert.Contains(t, bag.Error(), "division by zero")
}

func TestAnalyze_divisionByZeroWithNonConstantLHS(t *testing.T) {
	src := `
	program p;
	var x, y;
	begin
		y := 1;
		x := y / 0
	end.
	`
	_, bag := analyze(t, src)
	require.True(t, bag.HasErrors())
	assert.Contains(t, bag.Error(), "division by zero")
}

func TestAnalyze_truncatingDivision(t *testing.T) {
	src := `
	program p;
	var x;
	begin
		x := (0-7) / 2
	end.
	`
	prog, bag := analyze(t, src)
	require.False(t, bag.HasErrors())
	asn := prog.Block.Body.(*ast.Compound).Stmts[0].(*ast.Assign)
	num, ok := asn.Expr.(*ast.Num)
	require.True(t, ok)
	assert.Equal(t, -3, num.Value)
}

func TestAnalyze_undeclaredWithSuggestion(t *testing.T) {
	src := `
	program p;
	var count;
	begin
		coutn := 1
	end.
	`
	_, bag := analyze(t, src)
	require.True(t, bag.HasErrors())
	found := false
	for _, d := range bag.Items() {
		if d.Suggest == "count" {
			found = true
		}
	}
	assert.True(t, found, "expected a suggestion for 'count', diagnostics: %s", bag.Error())
}

func TestAnalyze_undeclaredNoSuggestion(t *testing.T) {
	src := `
	program p;
	var count;
	begin
		zzzzzzzzzz := 1
	end.
	`
	_, bag := analyze(t, src)
	require.True(t, bag.HasErrors())
	for _, d := range bag.Items() {
		assert.Empty(t, d.Suggest)
	}
}

func TestAnalyze_callArityMismatch(t *testing.T) {
	src := `
	program p;
	procedure inc(n);
	begin
		n := n + 1
	end;
	begin
		call inc
	end.
	`
	_, bag := analyze(t, src)
	require.True(t, bag.HasErrors())
	assert.Contains(t, bag.Error(), "expects 1 argument")
}

func TestAnalyze_assignToConstIsError(t *testing.T) {
	src := `
	program p;
	const limit = 10;
	begin
		limit := 5
	end.
	`
	_, bag := analyze(t, src)
	require.True(t, bag.HasErrors())
	assert.Contains(t, bag.Error(), "not a variable")
}

func TestAnalyze_nestedScopeNonLocalAccess(t *testing.T) {
	src := `
	program p;
	var x;
	procedure outer;
		var y;
		procedure inner;
		begin
			x := y
		end;
	begin
		call inner
	end;
	begin
		x := 0;
		call outer
	end.
	`
	_, bag := analyze(t, src)
	require.False(t, bag.HasErrors(), "unexpected errors: %s", bag.Error())
}

func TestAnalyze_deadBranchWarning(t *testing.T) {
	src := `
	program p;
	const zero = 0;
	var x;
	begin
		if zero > 1 then
			x := 1
		else
			x := 2
	end.
	`
	_, bag := analyze(t, src)
	require.False(t, bag.HasErrors())
	found := false
	for _, d := range bag.Items() {
		if d.Severity == diag.Warning {
			found = true
		}
	}
	assert.True(t, found, "expected a dead-branch warning")
}

func TestAnalyze_infiniteLoopWarning(t *testing.T) {
	src := `
	program p;
	const always = 1;
	var x;
	begin
		while always = 1 do
			x := x + 1
	end.
	`
	_, bag := analyze(t, src)
	require.False(t, bag.HasErrors())
	found := false
	for _, d := range bag.Items() {
		if d.Severity == diag.Warning {
			found = true
		}
	}
	assert.True(t, found, "expected an infinite-loop warning")
}

func TestAnalyze_duplicateDeclaration(t *testing.T) {
	src := `
	program p;
	var x, x;
	begin
		x := 1
	end.
	`
	_, bag := analyze(t, src)
	require.True(t, bag.HasErrors())
	assert.Contains(t, bag.Error(), "duplicate declaration")
}
