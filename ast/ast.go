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

// Package ast defines the PL/0 abstract syntax tree: a small set of tagged
// sum types realized as Go interfaces with a closed set of implementations
// (exhaustive type switches stand in for a visitor hierarchy). Every node
// carries the source line it was parsed from. After semantic analysis,
// identifier-use nodes are decorated in place with their resolved symbol
// kind, level difference, and offset/entry address.
package ast

// SymKind classifies what a resolved identifier refers to.
type SymKind int

// Symbol kinds.
const (
	Unresolved SymKind = iota
	ConstSym
	VarSym
	ProcSym
)

// Program is the root node: `program name; block .`
type Program struct {
	Name  string
	Block *Block
	Line  int
}

// ConstDecl binds a name to a literal integer value at compile time.
type ConstDecl struct {
	Name  string
	Value int
	Line  int
}

// Block is the const/var/procedure header and body shared by the program
// and every procedure.
type Block struct {
	Consts []ConstDecl
	Vars   []VarDecl
	Procs  []*Procedure
	Body   Statement
	Line   int
}

// VarDecl is a single `var` declaration.
type VarDecl struct {
	Name string
	Line int
}

// Procedure is a nested, parameterless-or-valued procedure declaration.
type Procedure struct {
	Name   string
	Params []string
	Block  *Block
	Line   int

	// DeclLevel is the nesting level of the scope the procedure is
	// declared in (its symbol's level); the procedure's own block, and
	// its params/vars, live at DeclLevel+1. Filled in during semantic
	// analysis.
	DeclLevel int
	// Entry is the P-Code address CAL jumps to for this procedure: the
	// first instruction of its own body (its INT frame-allocation
	// instruction), past the JMP that skips over its nested procedures'
	// code and past those procedures' bodies themselves. Patched in by
	// the code generator once the whole block, including its nested
	// procedures, has been emitted; until then it holds the address of
	// the procedure's placeholder JMP, which forwards to the body.
	Entry int
}

// Statement is the sum type of all statement forms.
type Statement interface {
	stmtNode()
	StmtLine() int
}

type StmtBase struct{ Line int }

func (StmtBase) stmtNode()       {}
func (s StmtBase) StmtLine() int { return s.Line }

// Assign is `target := expr`.
type Assign struct {
	StmtBase
	Target *Var
	Expr   Expression
}

// Call is `call name(args...)`.
type Call struct {
	StmtBase
	Name string
	Args []Expression

	// Resolution, filled in by the semantic analyzer: LevelDiff is the
	// use-level minus the procedure's declaring level, and Proc is the
	// resolved declaration. The code generator reads Proc.Entry: for a
	// call to the procedure's own name or an earlier sibling it is already
	// the body address; for a call from a nested procedure to an enclosing
	// one it is still the enclosing procedure's placeholder JMP, which
	// jumps on to the body.
	LevelDiff int
	Proc      *Procedure
}

// If is `if cond then thenStmt [else elseStmt]`.
type If struct {
	StmtBase
	Cond Condition
	Then Statement
	Else Statement // nil if absent
}

// While is `while cond do body`.
type While struct {
	StmtBase
	Cond Condition
	Body Statement
}

// Compound is `begin stmts... end`.
type Compound struct {
	StmtBase
	Stmts []Statement
}

// Read is `read(names...)`.
type Read struct {
	StmtBase
	Targets []*Var
}

// Write is `write(exprs...)`.
type Write struct {
	StmtBase
	Exprs []Expression
}

// Condition is the sum type of both condition forms.
type Condition interface {
	condNode()
	CondLine() int
}

type CondBase struct{ Line int }

func (CondBase) condNode()       {}
func (c CondBase) CondLine() int { return c.Line }

// Odd is `odd expr`.
type Odd struct {
	CondBase
	Expr Expression
}

// RelOp enumerates the relational operators.
type RelOp int

// Relational operators.
const (
	RelEq RelOp = iota
	RelNeq
	RelLt
	RelLeq
	RelGt
	RelGeq
)

// Rel is `left op right`.
type Rel struct {
	CondBase
	Op    RelOp
	Left  Expression
	Right Expression
}

// Expression is the sum type of all expression forms.
type Expression interface {
	exprNode()
	ExprLine() int
}

type ExprBase struct{ Line int }

func (ExprBase) exprNode()       {}
func (e ExprBase) ExprLine() int { return e.Line }

// Num is an integer literal.
type Num struct {
	ExprBase
	Value int
}

// Var is an identifier reference, used both as an expression and (via
// Assign.Target / Read.Targets) as an assignment/read destination.
type Var struct {
	ExprBase
	Name string

	// Resolution, filled in by the semantic analyzer.
	Kind      SymKind
	LevelDiff int
	Offset    int // for VarSym
	ConstVal  int // for ConstSym
}

// UnaryOp enumerates the unary sign operators.
type UnaryOp int

// Unary operators.
const (
	UnaryPlus UnaryOp = iota
	UnaryMinus
)

// Unary is `(+|-) expr`.
type Unary struct {
	ExprBase
	Op   UnaryOp
	Expr Expression
}

// BinOp enumerates the binary arithmetic operators.
type BinOp int

// Binary operators.
const (
	BinAdd BinOp = iota
	BinSub
	BinMul
	BinDiv
)

// Binary is `left op right`.
type Binary struct {
	ExprBase
	Op    BinOp
	Left  Expression
	Right Expression
}
