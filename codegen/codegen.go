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

// Package codegen turns an analyzed AST into a pcode.Program. It follows the
// classic one-pass PL/0 scheme: every block starts with a placeholder JMP
// that is backpatched, once the block's nested procedures have all been
// emitted, to jump straight to the block's own INT/body; the jump target and
// the owning Procedure's resolved Entry address are patched at that same
// point, exactly like the assembler's forward label references are patched
// once their definition is reached.
package codegen

import (
	"github.com/db47h/pl0/ast"
	"github.com/db47h/pl0/pcode"
)

// generator accumulates emitted instructions for a whole program.
type generator struct {
	code []pcode.Instruction
	// frameSize is the stack-cell count (3 + params + vars) of the block
	// whose body is currently being emitted. Call sites use it to reset the
	// stack back to the caller's frame top after a call, undoing the
	// argument cells the call pushed below the callee's frame.
	frameSize int
}

// Generate compiles an analyzed program into P-Code. The caller must ensure
// the program has already passed semantic analysis with no errors.
func Generate(prog *ast.Program) *pcode.Program {
	g := &generator{}
	g.block(prog.Block, nil)
	return &pcode.Program{Code: g.code, Entry: g.code[0].A}
}

// emit appends an instruction and returns its address.
func (g *generator) emit(op pcode.Op, level, a int) int {
	addr := len(g.code)
	g.code = append(g.code, pcode.Instruction{Op: op, Level: level, A: a})
	return addr
}

func (g *generator) here() int { return len(g.code) }

func (g *generator) patchA(addr, a int) { g.code[addr].A = a }

// block emits the code for one block (the program, or a single procedure's
// body): a placeholder JMP, the nested procedure bodies in declaration
// order, the frame-allocation INT, a parameter-copy prelude (procedures
// with parameters only), the body statement, and a trailing return. The
// caller's CAL pushes the 3-word SL/DL/RA header immediately above the
// arguments it already evaluated onto the stack, so on entry the
// arguments sit just below the new frame base, at offsets -len(Params)..
// -1; INT reserves the frame's canonical 3+len(Params)+len(b.Vars) words,
// and the prelude then copies each argument up into its permanent slot at
// offsets 3..3+len(Params)-1, exactly where the rest of the body (and
// sema's declared offsets) expect to find it. proc is the Procedure this
// block belongs to, or nil for the program block. Its Entry points at the
// placeholder JMP while the nested procedures are emitted (so a call to it
// from one of them goes through that JMP), and is patched to the block's
// own body address once that is known.
//
// OPR 0,0 on return only unwinds the callee's own frame (T = B - 1); it
// never reaches down to the argument cells the caller pushed below that
// frame. g.stmt emits a follow-up INT at every call site with arguments to
// reset T back to this block's own frame top, so repeated calls to a
// parameterized procedure don't leak one stack cell per argument per call.
func (g *generator) block(b *ast.Block, proc *ast.Procedure) {
	jmpAddr := g.emit(pcode.JMP, 0, 0)
	if proc != nil {
		proc.Entry = jmpAddr
	}

	for _, nested := range b.Procs {
		g.block(nested.Block, nested)
	}

	bodyStart := g.here()
	g.patchA(jmpAddr, bodyStart)
	if proc != nil {
		proc.Entry = bodyStart
	}

	nparams := 0
	if proc != nil {
		nparams = len(proc.Params)
	}
	frameSize := 3 + nparams + len(b.Vars)
	g.emit(pcode.INT, 0, frameSize)
	for i := 0; i < nparams; i++ {
		g.emit(pcode.LOD, 0, -(nparams - i))
		g.emit(pcode.STO, 0, 3+i)
	}
	outer := g.frameSize
	g.frameSize = frameSize
	g.stmt(b.Body)
	g.frameSize = outer
	g.emit(pcode.OPR, 0, int(pcode.OprReturn))
}

func (g *generator) stmt(s ast.Statement) {
	switch n := s.(type) {
	case *ast.Assign:
		g.expr(n.Expr)
		g.emit(pcode.STO, n.Target.LevelDiff, n.Target.Offset)
	case *ast.Call:
		for _, arg := range n.Args {
			g.expr(arg)
		}
		g.emit(pcode.CAL, n.LevelDiff, n.Proc.Entry)
		if len(n.Args) > 0 {
			// Reclaim the argument cells CAL left below the callee's frame:
			// reset T to this block's own frame top.
			g.emit(pcode.INT, 0, g.frameSize)
		}
	case *ast.If:
		g.cond(n.Cond)
		jpcAddr := g.emit(pcode.JPC, 0, 0)
		g.stmt(n.Then)
		if n.Else == nil {
			g.patchA(jpcAddr, g.here())
			return
		}
		jmpAddr := g.emit(pcode.JMP, 0, 0)
		g.patchA(jpcAddr, g.here())
		g.stmt(n.Else)
		g.patchA(jmpAddr, g.here())
	case *ast.While:
		loopStart := g.here()
		g.cond(n.Cond)
		jpcAddr := g.emit(pcode.JPC, 0, 0)
		g.stmt(n.Body)
		g.emit(pcode.JMP, 0, loopStart)
		g.patchA(jpcAddr, g.here())
	case *ast.Compound:
		for _, c := range n.Stmts {
			g.stmt(c)
		}
	case *ast.Read:
		for _, t := range n.Targets {
			g.emit(pcode.RED, t.LevelDiff, t.Offset)
		}
	case *ast.Write:
		for _, e := range n.Exprs {
			g.expr(e)
			g.emit(pcode.WRT, 0, 0)
		}
	}
}

func (g *generator) cond(c ast.Condition) {
	switch n := c.(type) {
	case *ast.Odd:
		g.expr(n.Expr)
		g.emit(pcode.OPR, 0, int(pcode.OprOdd))
	case *ast.Rel:
		g.expr(n.Left)
		g.expr(n.Right)
		g.emit(pcode.OPR, 0, int(relOpr(n.Op)))
	}
}

func relOpr(op ast.RelOp) pcode.Op {
	switch op {
	case ast.RelEq:
		return pcode.OprEq
	case ast.RelNeq:
		return pcode.OprNeq
	case ast.RelLt:
		return pcode.OprLt
	case ast.RelLeq:
		return pcode.OprLeq
	case ast.RelGt:
		return pcode.OprGt
	case ast.RelGeq:
		return pcode.OprGeq
	}
	return pcode.OprEq
}

func (g *generator) expr(e ast.Expression) {
	switch n := e.(type) {
	case *ast.Num:
		g.emit(pcode.LIT, 0, n.Value)
	case *ast.Var:
		// Const uses are folded to *ast.Num by sema; only VarSym reaches
		// codegen here.
		g.emit(pcode.LOD, n.LevelDiff, n.Offset)
	case *ast.Unary:
		g.expr(n.Expr)
		if n.Op == ast.UnaryMinus {
			g.emit(pcode.OPR, 0, int(pcode.OprNeg))
		}
	case *ast.Binary:
		g.expr(n.Left)
		g.expr(n.Right)
		g.emit(pcode.OPR, 0, int(binOpr(n.Op)))
	}
}

func binOpr(op ast.BinOp) pcode.Op {
	switch op {
	case ast.BinAdd:
		return pcode.OprAdd
	case ast.BinSub:
		return pcode.OprSub
	case ast.BinMul:
		return pcode.OprMul
	case ast.BinDiv:
		return pcode.OprDiv
	}
	return pcode.OprAdd
}
