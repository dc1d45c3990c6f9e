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

// Package sema implements the semantic analyzer: name resolution against a
// symtab.Table, arity checking, constant folding, and the static safety
// checks (divide-by-zero, dead branches, trivial infinite loops). It walks
// the AST produced by the parser and decorates use sites in place; the
// symbol table itself is owned entirely by this package and is discarded
// once analysis completes.
package sema

import (
	"github.com/db47h/pl0/ast"
	"github.com/db47h/pl0/diag"
	"github.com/db47h/pl0/symtab"
)

// Analyzer walks a Program AST, resolving names and folding constants.
type Analyzer struct {
	syms *symtab.Table
	diag *diag.Bag
}

// Analyze performs semantic analysis on prog, decorating it in place.
// Callers must check bag.HasErrors() before generating code: a non-empty
// error set leaves the AST only partially decorated.
func Analyze(prog *ast.Program, bag *diag.Bag) {
	a := &Analyzer{syms: symtab.New(), diag: bag}
	a.syms.EnterScope(0)
	a.block(prog.Block)
	a.syms.ExitScope()
}

func (a *Analyzer) block(b *ast.Block) {
	level := a.syms.Level()

	for _, c := range b.Consts {
		sym := &symtab.Symbol{Name: c.Name, Kind: ast.ConstSym, Value: c.Value}
		if err := a.syms.Declare(c.Name, sym); err != nil {
			a.diag.Errorf(diag.Semantic, c.Line, "duplicate declaration of '%s'", c.Name)
		}
	}
	for _, v := range b.Vars {
		sym := &symtab.Symbol{Name: v.Name, Kind: ast.VarSym, Offset: a.syms.NextOffset()}
		if err := a.syms.Declare(v.Name, sym); err != nil {
			a.diag.Errorf(diag.Semantic, v.Line, "duplicate declaration of '%s'", v.Name)
		}
	}

	// Each procedure is declared just before its own body is analyzed, so
	// direct recursion and calls to earlier siblings resolve (and get
	// their arity checked), but each procedure's own block is only visible
	// while analyzing that block, and later siblings are not visible while
	// analyzing an earlier one (mutual forward references are unsupported).
	for _, proc := range b.Procs {
		sym := &symtab.Symbol{Name: proc.Name, Kind: ast.ProcSym, Proc: proc}
		proc.DeclLevel = level
		if err := a.syms.Declare(proc.Name, sym); err != nil {
			a.diag.Errorf(diag.Semantic, proc.Line, "duplicate declaration of '%s'", proc.Name)
		}
		a.syms.EnterScope(level + 1)
		// Parameters occupy offsets 3..3+len(Params)-1, ahead of the
		// block's own locals, using the same NextOffset sequence the
		// block's var declarations consume below: declaring them first
		// here reserves that low range for params before anything else
		// in the scope advances it.
		for _, pn := range proc.Params {
			psym := &symtab.Symbol{Name: pn, Kind: ast.VarSym, Offset: a.syms.NextOffset()}
			if err := a.syms.Declare(pn, psym); err != nil {
				a.diag.Errorf(diag.Semantic, proc.Line, "duplicate parameter name '%s'", pn)
			}
		}
		a.block(proc.Block)
		a.syms.ExitScope()
	}

	b.Body = a.stmt(b.Body)
}

func (a *Analyzer) stmt(s ast.Statement) ast.Statement {
	switch n := s.(type) {
	case *ast.Assign:
		a.resolveVarUse(n.Target)
		if n.Target.Kind != ast.Unresolved && n.Target.Kind != ast.VarSym {
			a.diag.Errorf(diag.Semantic, n.Target.ExprLine(), "cannot assign to '%s': not a variable", n.Target.Name)
		}
		n.Expr = a.expr(n.Expr)
		return n
	case *ast.Call:
		sym, _, err := a.syms.Resolve(n.Name)
		if err != nil {
			a.reportUndeclared(n.StmtLine(), n.Name)
			break
		}
		if sym.Kind != ast.ProcSym {
			a.diag.Errorf(diag.Semantic, n.StmtLine(), "'%s' is not a procedure", n.Name)
			break
		}
		if len(n.Args) != len(sym.Proc.Params) {
			a.diag.Errorf(diag.Semantic, n.StmtLine(), "procedure '%s' expects %d argument(s), got %d", n.Name, len(sym.Proc.Params), len(n.Args))
		}
		n.LevelDiff = a.syms.Level() - sym.Level
		n.Proc = sym.Proc
		for i, arg := range n.Args {
			n.Args[i] = a.expr(arg)
		}
		return n
	case *ast.If:
		n.Cond = a.cond(n.Cond)
		n.Then = a.stmt(n.Then)
		if n.Else != nil {
			n.Else = a.stmt(n.Else)
		}
		if v, ok := foldedCond(n.Cond); ok {
			if !v {
				a.diag.Warnf(diag.Semantic, n.StmtLine(), "condition is always false; 'then' branch is dead code")
			} else if n.Else != nil {
				a.diag.Warnf(diag.Semantic, n.StmtLine(), "condition is always true; 'else' branch is dead code")
			}
		}
		return n
	case *ast.While:
		n.Cond = a.cond(n.Cond)
		n.Body = a.stmt(n.Body)
		if v, ok := foldedCond(n.Cond); ok && v {
			a.diag.Warnf(diag.Semantic, n.StmtLine(), "condition is always true; loop never terminates")
		}
		return n
	case *ast.Compound:
		for i, c := range n.Stmts {
			n.Stmts[i] = a.stmt(c)
		}
		return n
	case *ast.Read:
		for _, t := range n.Targets {
			a.resolveVarUse(t)
			if t.Kind != ast.Unresolved && t.Kind != ast.VarSym {
				a.diag.Errorf(diag.Semantic, t.ExprLine(), "cannot read into '%s': not a variable", t.Name)
			}
		}
		return n
	case *ast.Write:
		for i, e := range n.Exprs {
			n.Exprs[i] = a.expr(e)
		}
		return n
	}
	return s
}

func (a *Analyzer) cond(c ast.Condition) ast.Condition {
	switch n := c.(type) {
	case *ast.Odd:
		n.Expr = a.expr(n.Expr)
		return n
	case *ast.Rel:
		n.Left = a.expr(n.Left)
		n.Right = a.expr(n.Right)
		return n
	}
	return c
}

func (a *Analyzer) expr(e ast.Expression) ast.Expression {
	switch n := e.(type) {
	case *ast.Num:
		return n
	case *ast.Var:
		a.resolveVarUse(n)
		if n.Kind == ast.ConstSym {
			return &ast.Num{ExprBase: ast.ExprBase{Line: n.Line}, Value: n.ConstVal}
		}
		return n
	case *ast.Unary:
		n.Expr = a.expr(n.Expr)
		if v, ok := foldedValue(n.Expr); ok {
			if n.Op == ast.UnaryMinus {
				v = -v
			}
			return &ast.Num{ExprBase: ast.ExprBase{Line: n.Line}, Value: v}
		}
		return n
	case *ast.Binary:
		n.Left = a.expr(n.Left)
		n.Right = a.expr(n.Right)
		lv, lok := foldedValue(n.Left)
		rv, rok := foldedValue(n.Right)
		if n.Op == ast.BinDiv && rok && rv == 0 {
			a.diag.Errorf(diag.Semantic, n.Line, "division by zero")
			return n
		}
		if lok && rok {
			return &ast.Num{ExprBase: ast.ExprBase{Line: n.Line}, Value: applyBinOp(n.Op, lv, rv)}
		}
		return n
	}
	return e
}

func (a *Analyzer) resolveVarUse(v *ast.Var) {
	sym, diff, err := a.syms.Resolve(v.Name)
	if err != nil {
		a.reportUndeclared(v.ExprLine(), v.Name)
		return
	}
	switch sym.Kind {
	case ast.ConstSym:
		v.Kind = ast.ConstSym
		v.ConstVal = sym.Value
	case ast.VarSym:
		v.Kind = ast.VarSym
		v.LevelDiff = diff
		v.Offset = sym.Offset
	case ast.ProcSym:
		a.diag.Errorf(diag.Semantic, v.ExprLine(), "'%s' is a procedure, not a value", v.Name)
	}
}

func (a *Analyzer) reportUndeclared(line int, name string) {
	d := diag.Diagnostic{Phase: diag.Semantic, Severity: diag.Error, Line: line, Message: "undeclared identifier '" + name + "'"}
	if sugg, ok := a.syms.Suggest(name); ok {
		d.Suggest = sugg
	}
	a.diag.Add(d)
}

// foldedValue reports whether e has already been folded to a constant
// (a *ast.Num), returning its value.
func foldedValue(e ast.Expression) (int, bool) {
	if n, ok := e.(*ast.Num); ok {
		return n.Value, true
	}
	return 0, false
}

// foldedCond reports whether c folds entirely to a constant truth value.
func foldedCond(c ast.Condition) (bool, bool) {
	switch n := c.(type) {
	case *ast.Odd:
		if v, ok := foldedValue(n.Expr); ok {
			return v%2 != 0, true
		}
	case *ast.Rel:
		lv, lok := foldedValue(n.Left)
		rv, rok := foldedValue(n.Right)
		if lok && rok {
			return applyRelOp(n.Op, lv, rv), true
		}
	}
	return false, false
}

func applyBinOp(op ast.BinOp, l, r int) int {
	switch op {
	case ast.BinAdd:
		return l + r
	case ast.BinSub:
		return l - r
	case ast.BinMul:
		return l * r
	case ast.BinDiv:
		return l / r // truncates toward zero, per Go integer division semantics
	}
	return 0
}

func applyRelOp(op ast.RelOp, l, r int) bool {
	switch op {
	case ast.RelEq:
		return l == r
	case ast.RelNeq:
		return l != r
	case ast.RelLt:
		return l < r
	case ast.RelLeq:
		return l <= r
	case ast.RelGt:
		return l > r
	case ast.RelGeq:
		return l >= r
	}
	return false
}
