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

// Package parser implements a recursive-descent parser for PL/0 with
// panic-mode error recovery. On a syntax error it records a diagnostic,
// discards tokens until one belongs to the current synchronization set (or
// end-of-input), and resumes parsing from there, so that a single typo
// never hides the rest of the program's errors.
package parser

import (
	"fmt"

	"github.com/db47h/pl0/ast"
	"github.com/db47h/pl0/diag"
	"github.com/db47h/pl0/lexer"
	"github.com/db47h/pl0/token"
)

// syncSet is a set of token kinds used to resynchronize after a syntax
// error. Sets are combined cumulatively with their enclosing level's set.
type syncSet map[token.Kind]bool

func union(sets ...syncSet) syncSet {
	out := make(syncSet)
	for _, s := range sets {
		for k := range s {
			out[k] = true
		}
	}
	return out
}

var statementSync = syncSet{
	token.Semicolon: true, token.Comma: true, token.End: true, token.If: true,
	token.While: true, token.Begin: true, token.Call: true, token.Read: true,
	token.Write: true, token.Else: true, token.Ident: true,
}

var blockSync = union(statementSync, syncSet{
	token.Const: true, token.Var: true, token.Procedure: true,
})

var programSync = union(blockSync, syncSet{
	token.Period: true, token.EOF: true,
})

// Parser consumes a token stream and produces a Program AST.
type Parser struct {
	lex  *lexer.Lexer
	diag *diag.Bag
	tok  token.Token
}

// Parse lexes and parses src, returning the resulting AST (possibly
// partial) and recording diagnostics in bag. Callers must check
// bag.HasErrors() before proceeding to semantic analysis.
func Parse(src string, bag *diag.Bag) *ast.Program {
	p := &Parser{lex: lexer.New(src, bag), diag: bag}
	p.next()
	return p.parseProgram()
}

func (p *Parser) next() {
	p.tok = p.lex.NextToken()
}

func (p *Parser) at(k token.Kind) bool { return p.tok.Kind == k }

// expect consumes the current token if it has kind k, else reports a
// syntax error and leaves the token stream positioned for panic-mode
// recovery by the caller.
func (p *Parser) expect(k token.Kind) (token.Token, bool) {
	if p.tok.Kind == k {
		t := p.tok
		p.next()
		return t, true
	}
	p.errorf("expected %s, found %s", k, p.tok)
	return token.Token{}, false
}

func (p *Parser) errorf(format string, args ...interface{}) {
	p.diag.Add(diag.Diagnostic{Phase: diag.Syntax, Severity: diag.Error, Line: p.tok.Line, Message: fmt.Sprintf(format, args...)})
}

// sync discards tokens until the current token belongs to set or EOF is
// reached.
func (p *Parser) sync(set syncSet) {
	for !set[p.tok.Kind] && p.tok.Kind != token.EOF {
		p.next()
	}
}

func (p *Parser) parseProgram() *ast.Program {
	line := p.tok.Line
	if _, ok := p.expect(token.Program); !ok {
		p.sync(programSync)
	}
	name := ""
	if p.at(token.Ident) {
		name = p.tok.Lexeme
		p.next()
	} else {
		p.errorf("expected program name, found %s", p.tok)
		p.sync(programSync)
	}
	if _, ok := p.expect(token.Semicolon); !ok {
		p.sync(programSync)
	}
	block := p.parseBlock()
	if _, ok := p.expect(token.Period); !ok {
		p.sync(programSync)
	}
	return &ast.Program{Name: name, Block: block, Line: line}
}

func (p *Parser) parseBlock() *ast.Block {
	b := &ast.Block{Line: p.tok.Line}

	if p.at(token.Const) {
		p.next()
		for {
			line := p.tok.Line
			name := p.identOrRecover(blockSync)
			if _, ok := p.expect(token.Equal); !ok {
				p.sync(blockSync)
			}
			val := 0
			neg := false
			if p.at(token.Minus) {
				neg = true
				p.next()
			}
			if p.at(token.Int) {
				val = p.tok.Value
				p.next()
			} else {
				p.errorf("expected integer literal, found %s", p.tok)
				p.sync(blockSync)
			}
			if neg {
				val = -val
			}
			if name != "" {
				b.Consts = append(b.Consts, ast.ConstDecl{Name: name, Value: val, Line: line})
			}
			if p.at(token.Comma) {
				p.next()
				continue
			}
			break
		}
		if _, ok := p.expect(token.Semicolon); !ok {
			p.sync(blockSync)
		}
	}

	if p.at(token.Var) {
		p.next()
		for {
			line := p.tok.Line
			name := p.identOrRecover(blockSync)
			if name != "" {
				b.Vars = append(b.Vars, ast.VarDecl{Name: name, Line: line})
			}
			if p.at(token.Comma) {
				p.next()
				continue
			}
			break
		}
		if _, ok := p.expect(token.Semicolon); !ok {
			p.sync(blockSync)
		}
	}

	for p.at(token.Procedure) {
		b.Procs = append(b.Procs, p.parseProcedure())
	}

	b.Body = p.parseStatement()
	return b
}

func (p *Parser) parseProcedure() *ast.Procedure {
	line := p.tok.Line
	p.next() // consume 'procedure'
	name := p.identOrRecover(blockSync)
	proc := &ast.Procedure{Name: name, Line: line}
	if p.at(token.LParen) {
		p.next()
		if !p.at(token.RParen) {
			for {
				pn := p.identOrRecover(blockSync)
				if pn != "" {
					proc.Params = append(proc.Params, pn)
				}
				if p.at(token.Comma) {
					p.next()
					continue
				}
				break
			}
		}
		if _, ok := p.expect(token.RParen); !ok {
			p.sync(blockSync)
		}
	}
	if _, ok := p.expect(token.Semicolon); !ok {
		p.sync(blockSync)
	}
	proc.Block = p.parseBlock()
	if _, ok := p.expect(token.Semicolon); !ok {
		p.sync(blockSync)
	}
	return proc
}

func (p *Parser) identOrRecover(set syncSet) string {
	if p.at(token.Ident) {
		name := p.tok.Lexeme
		p.next()
		return name
	}
	p.errorf("expected identifier, found %s", p.tok)
	p.sync(set)
	return ""
}

// newVar builds an unresolved Var reference node; semantic analysis fills
// in its Kind/LevelDiff/Offset/ConstVal.
func newVar(line int, name string) *ast.Var {
	return &ast.Var{ExprBase: ast.ExprBase{Line: line}, Name: name, Kind: ast.Unresolved}
}

func (p *Parser) parseStatement() ast.Statement {
	line := p.tok.Line
	switch p.tok.Kind {
	case token.Ident:
		name := p.tok.Lexeme
		p.next()
		if _, ok := p.expect(token.Assign); !ok {
			p.sync(statementSync)
		}
		expr := p.parseExpression()
		return &ast.Assign{StmtBase: ast.StmtBase{Line: line}, Target: newVar(line, name), Expr: expr}
	case token.Call:
		p.next()
		name := p.identOrRecover(statementSync)
		var args []ast.Expression
		if p.at(token.LParen) {
			p.next()
			if !p.at(token.RParen) {
				for {
					args = append(args, p.parseExpression())
					if p.at(token.Comma) {
						p.next()
						continue
					}
					break
				}
			}
			if _, ok := p.expect(token.RParen); !ok {
				p.sync(statementSync)
			}
		}
		return &ast.Call{StmtBase: ast.StmtBase{Line: line}, Name: name, Args: args}
	case token.Read:
		p.next()
		if _, ok := p.expect(token.LParen); !ok {
			p.sync(statementSync)
		}
		var targets []*ast.Var
		for {
			name := p.identOrRecover(statementSync)
			if name != "" {
				targets = append(targets, newVar(line, name))
			}
			if p.at(token.Comma) {
				p.next()
				continue
			}
			break
		}
		if _, ok := p.expect(token.RParen); !ok {
			p.sync(statementSync)
		}
		return &ast.Read{StmtBase: ast.StmtBase{Line: line}, Targets: targets}
	case token.Write:
		p.next()
		if _, ok := p.expect(token.LParen); !ok {
			p.sync(statementSync)
		}
		var exprs []ast.Expression
		for {
			exprs = append(exprs, p.parseExpression())
			if p.at(token.Comma) {
				p.next()
				continue
			}
			break
		}
		if _, ok := p.expect(token.RParen); !ok {
			p.sync(statementSync)
		}
		return &ast.Write{StmtBase: ast.StmtBase{Line: line}, Exprs: exprs}
	case token.Begin:
		p.next()
		var stmts []ast.Statement
		stmts = append(stmts, p.parseStatement())
		for p.at(token.Semicolon) {
			p.next()
			stmts = append(stmts, p.parseStatement())
		}
		if _, ok := p.expect(token.End); !ok {
			p.sync(statementSync)
		}
		return &ast.Compound{StmtBase: ast.StmtBase{Line: line}, Stmts: stmts}
	case token.If:
		p.next()
		cond := p.parseCondition()
		if _, ok := p.expect(token.Then); !ok {
			p.sync(statementSync)
		}
		thenStmt := p.parseStatement()
		var elseStmt ast.Statement
		if p.at(token.Else) {
			p.next()
			elseStmt = p.parseStatement()
		}
		return &ast.If{StmtBase: ast.StmtBase{Line: line}, Cond: cond, Then: thenStmt, Else: elseStmt}
	case token.While:
		p.next()
		cond := p.parseCondition()
		if _, ok := p.expect(token.Do); !ok {
			p.sync(statementSync)
		}
		body := p.parseStatement()
		return &ast.While{StmtBase: ast.StmtBase{Line: line}, Cond: cond, Body: body}
	default:
		// empty statement: valid in PL/0's grammar (e.g. before `end`).
		return &ast.Compound{StmtBase: ast.StmtBase{Line: line}}
	}
}

func (p *Parser) parseCondition() ast.Condition {
	line := p.tok.Line
	if p.at(token.Odd) {
		p.next()
		return &ast.Odd{CondBase: ast.CondBase{Line: line}, Expr: p.parseExpression()}
	}
	left := p.parseExpression()
	var op ast.RelOp
	switch p.tok.Kind {
	case token.Equal:
		op = ast.RelEq
	case token.NotEqual:
		op = ast.RelNeq
	case token.Less:
		op = ast.RelLt
	case token.LessEq:
		op = ast.RelLeq
	case token.Greater:
		op = ast.RelGt
	case token.GreaterEq:
		op = ast.RelGeq
	default:
		p.errorf("expected relational operator, found %s", p.tok)
		return &ast.Rel{CondBase: ast.CondBase{Line: line}, Op: ast.RelEq, Left: left, Right: left}
	}
	p.next()
	right := p.parseExpression()
	return &ast.Rel{CondBase: ast.CondBase{Line: line}, Op: op, Left: left, Right: right}
}

func (p *Parser) parseExpression() ast.Expression {
	line := p.tok.Line
	var op ast.UnaryOp
	neg := false
	if p.at(token.Plus) {
		p.next()
	} else if p.at(token.Minus) {
		neg = true
		op = ast.UnaryMinus
		p.next()
	}
	term := p.parseTerm()
	if neg {
		term = &ast.Unary{ExprBase: ast.ExprBase{Line: line}, Op: op, Expr: term}
	}
	for p.at(token.Plus) || p.at(token.Minus) {
		opLine := p.tok.Line
		var bop ast.BinOp
		if p.at(token.Plus) {
			bop = ast.BinAdd
		} else {
			bop = ast.BinSub
		}
		p.next()
		rhs := p.parseTerm()
		term = &ast.Binary{ExprBase: ast.ExprBase{Line: opLine}, Op: bop, Left: term, Right: rhs}
	}
	return term
}

func (p *Parser) parseTerm() ast.Expression {
	factor := p.parseFactor()
	for p.at(token.Star) || p.at(token.Slash) {
		line := p.tok.Line
		var bop ast.BinOp
		if p.at(token.Star) {
			bop = ast.BinMul
		} else {
			bop = ast.BinDiv
		}
		p.next()
		rhs := p.parseFactor()
		factor = &ast.Binary{ExprBase: ast.ExprBase{Line: line}, Op: bop, Left: factor, Right: rhs}
	}
	return factor
}

func (p *Parser) parseFactor() ast.Expression {
	line := p.tok.Line
	switch p.tok.Kind {
	case token.Ident:
		name := p.tok.Lexeme
		p.next()
		return newVar(line, name)
	case token.Int:
		v := p.tok.Value
		p.next()
		return &ast.Num{ExprBase: ast.ExprBase{Line: line}, Value: v}
	case token.LParen:
		p.next()
		e := p.parseExpression()
		if _, ok := p.expect(token.RParen); !ok {
			p.sync(statementSync)
		}
		return e
	default:
		p.errorf("expected identifier, integer, or '(', found %s", p.tok)
		return &ast.Num{ExprBase: ast.ExprBase{Line: line}}
	}
}
