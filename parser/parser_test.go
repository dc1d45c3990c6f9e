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

package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/db47h/pl0/ast"
	"github.com/db47h/pl0/diag"
	"github.com/db47h/pl0/parser"
)

func TestParse_wellFormedProgramProducesCleanAST(t *testing.T) {
	bag := &diag.Bag{}
	prog := parser.Parse(`
	program gcd;
	var x, y, z;
	procedure g;
	var f, g;
	begin
		f := x;
		g := y;
		while f <> g do
		begin
			if f < g then g := g - f;
			if g < f then f := f - g
		end;
		z := f
	end;
	begin
		x := 84;
		y := 36;
		call g;
		write(z)
	end.
	`, bag)
	require.False(t, bag.HasErrors(), "unexpected errors: %s", bag.Error())
	require.Equal(t, "gcd", prog.Name)
	require.Len(t, prog.Block.Vars, 3)
	require.Len(t, prog.Block.Procs, 1)
	assert.Equal(t, "g", prog.Block.Procs[0].Name)
}

func TestParse_constDeclLineIsDeclarationStartNotFollowingToken(t *testing.T) {
	bag := &diag.Bag{}
	prog := parser.Parse(`
	program p;
	const
		a = 1,
		b = 2;
	var x;
	begin
		x := a + b
	end.
	`, bag)
	require.False(t, bag.HasErrors(), "parse errors: %s", bag.Error())
	require.Len(t, prog.Block.Consts, 2)
	assert.Equal(t, "a", prog.Block.Consts[0].Name)
	assert.Equal(t, 4, prog.Block.Consts[0].Line)
	assert.Equal(t, "b", prog.Block.Consts[1].Name)
	assert.Equal(t, 5, prog.Block.Consts[1].Line)
}

func TestParse_varDeclLineIsDeclarationStartNotFollowingToken(t *testing.T) {
	bag := &diag.Bag{}
	prog := parser.Parse(`
	program p;
	var
		x,
		y;
	begin
		x := 1;
		y := 2
	end.
	`, bag)
	require.False(t, bag.HasErrors(), "parse errors: %s", bag.Error())
	require.Len(t, prog.Block.Vars, 2)
	assert.Equal(t, "x", prog.Block.Vars[0].Name)
	assert.Equal(t, 4, prog.Block.Vars[0].Line)
	assert.Equal(t, "y", prog.Block.Vars[1].Name)
	assert.Equal(t, 5, prog.Block.Vars[1].Line)
}

func TestParse_panicModeRecoversFromTwoStatementErrors(t *testing.T) {
	bag := &diag.Bag{}
	// Two malformed assignments (missing ":=") in the same compound
	// statement: both must be reported, and parsing must reach the final
	// `end.` without crashing.
	parser.Parse(`
	program p;
	var x, y;
	begin
		x 1;
		y 2
	end.
	`, bag)
	errCount := 0
	for _, d := range bag.Items() {
		if d.Severity == diag.Error {
			errCount++
		}
	}
	assert.GreaterOrEqual(t, errCount, 2, "expected at least two syntax errors, got: %s", bag.Error())
}

func TestParse_missingProgramKeywordRecovers(t *testing.T) {
	bag := &diag.Bag{}
	parser.Parse(`
	p;
	var x;
	begin x := 1 end.
	`, bag)
	assert.True(t, bag.HasErrors())
}

func TestParse_valueParameterProcedureCall(t *testing.T) {
	bag := &diag.Bag{}
	prog := parser.Parse(`
	program p;
	var result;
	procedure add(a, b);
	begin
		result := a + b
	end;
	begin
		call add(1, 2)
	end.
	`, bag)
	require.False(t, bag.HasErrors(), "unexpected errors: %s", bag.Error())
	proc := prog.Block.Procs[0]
	assert.Equal(t, []string{"a", "b"}, proc.Params)
	call := prog.Block.Body.(*ast.Compound).Stmts[0].(*ast.Call)
	assert.Len(t, call.Args, 2)
}

func TestParse_ifElseAndWhile(t *testing.T) {
	bag := &diag.Bag{}
	prog := parser.Parse(`
	program p;
	var x;
	begin
		if x = 0 then
			x := 1
		else
			x := 2;
		while x < 10 do
			x := x + 1
	end.
	`, bag)
	require.False(t, bag.HasErrors(), "unexpected errors: %s", bag.Error())
	stmts := prog.Block.Body.(*ast.Compound).Stmts
	require.Len(t, stmts, 2)
	ifStmt, ok := stmts[0].(*ast.If)
	require.True(t, ok)
	assert.NotNil(t, ifStmt.Else)
	_, ok = stmts[1].(*ast.While)
	assert.True(t, ok)
}

func TestParse_readAndWrite(t *testing.T) {
	bag := &diag.Bag{}
	prog := parser.Parse(`
	program p;
	var a, b;
	begin
		read(a, b);
		write(a, b)
	end.
	`, bag)
	require.False(t, bag.HasErrors(), "unexpected errors: %s", bag.Error())
	stmts := prog.Block.Body.(*ast.Compound).Stmts
	read, ok := stmts[0].(*ast.Read)
	require.True(t, ok)
	assert.Len(t, read.Targets, 2)
	write, ok := stmts[1].(*ast.Write)
	require.True(t, ok)
	assert.Len(t, write.Exprs, 2)
}

func TestParse_operatorPrecedence(t *testing.T) {
	bag := &diag.Bag{}
	prog := parser.Parse(`
	program p;
	var x;
	begin
		x := 1 + 2 * 3
	end.
	`, bag)
	require.False(t, bag.HasErrors(), "unexpected errors: %s", bag.Error())
	asn := prog.Block.Body.(*ast.Compound).Stmts[0].(*ast.Assign)
	bin, ok := asn.Expr.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, ast.BinAdd, bin.Op)
	rhs, ok := bin.Right.(*ast.Binary)
	require.True(t, ok, "expected 2*3 to bind tighter than +")
	assert.Equal(t, ast.BinMul, rhs.Op)
}
