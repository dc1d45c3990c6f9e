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

// Package symtab implements the scoped symbol table used by the semantic
// analyzer: a simple stack of insertion-ordered scope maps, owned entirely
// by the analyzer and dropped before code generation ever sees it.
package symtab

import (
	"errors"

	"github.com/db47h/pl0/ast"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// ErrDuplicateName is returned by Declare when the innermost scope already
// binds the given name.
var ErrDuplicateName = errors.New("duplicate name in scope")

// ErrUndeclared is returned by Resolve when no enclosing scope binds the
// given name.
var ErrUndeclared = errors.New("undeclared identifier")

// Symbol is an entry in the table.
type Symbol struct {
	Name  string
	Kind  ast.SymKind
	Level int // nesting level of the scope this symbol was declared in

	// VarSym
	Offset int
	// ConstSym
	Value int
	// ProcSym
	Proc *ast.Procedure
}

// scope is a single nesting level: an insertion-ordered map from name to
// symbol, plus the next free variable offset for that frame.
type scope struct {
	level      int
	order      []string
	syms       map[string]*Symbol
	nextOffset int
}

// Table is the stack of active scopes.
type Table struct {
	scopes []*scope
}

// New returns an empty symbol table.
func New() *Table {
	return &Table{}
}

// EnterScope pushes a new, empty scope at the given nesting level. The next
// free variable offset is initialized to 3, reserving 0..2 for the
// activation record's SL/DL/RA.
func (t *Table) EnterScope(level int) {
	t.scopes = append(t.scopes, &scope{
		level:      level,
		syms:       make(map[string]*Symbol),
		nextOffset: 3,
	})
}

// ExitScope pops the innermost scope.
func (t *Table) ExitScope() {
	t.scopes = t.scopes[:len(t.scopes)-1]
}

// Level returns the nesting level of the innermost scope.
func (t *Table) Level() int {
	return t.current().level
}

func (t *Table) current() *scope {
	return t.scopes[len(t.scopes)-1]
}

// Declare adds name to the innermost scope. It fails with ErrDuplicateName
// if that scope already binds name.
func (t *Table) Declare(name string, sym *Symbol) error {
	s := t.current()
	if _, ok := s.syms[name]; ok {
		return ErrDuplicateName
	}
	sym.Level = s.level
	s.syms[name] = sym
	s.order = append(s.order, name)
	return nil
}

// NextOffset returns, and then reserves, the next free variable offset in
// the innermost scope.
func (t *Table) NextOffset() int {
	s := t.current()
	off := s.nextOffset
	s.nextOffset++
	return off
}

// Resolve looks up name from the innermost scope outward. On success it
// returns the symbol and the level difference (current level minus the
// symbol's declaring level, always >= 0). On failure it returns
// ErrUndeclared.
func (t *Table) Resolve(name string) (*Symbol, int, error) {
	cur := t.Level()
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if sym, ok := t.scopes[i].syms[name]; ok {
			return sym, cur - sym.Level, nil
		}
	}
	return nil, 0, ErrUndeclared
}

// Suggest returns the best spelling-correction candidate for an undeclared
// name, searched across every enclosing scope (innermost first). It returns
// ("", false) when no candidate is within the accepted edit distance:
// floor(len(name)/2), capped at 3. Ties are broken in favor of the
// innermost scope, then earliest declaration within that scope.
func (t *Table) Suggest(name string) (string, bool) {
	maxDist := len(name) / 2
	if maxDist > 3 {
		maxDist = 3
	}

	var best *suggestCandidate

	for depth, i := 0, len(t.scopes)-1; i >= 0; depth, i = depth+1, i-1 {
		s := t.scopes[i]
		for order, n := range s.order {
			d := fuzzy.LevenshteinDistance(name, n)
			if d == 0 || d > maxDist {
				continue
			}
			c := suggestCandidate{name: n, dist: d, depth: depth, order: order}
			if best == nil || c.better(*best) {
				best = &c
			}
		}
	}
	if best == nil {
		return "", false
	}
	return best.name, true
}

// suggestCandidate is a ranked Suggest match.
type suggestCandidate struct {
	name  string
	dist  int
	depth int // scope index from innermost (0 = innermost)
	order int // declaration order within that scope
}

func (a suggestCandidate) better(b suggestCandidate) bool {
	if a.dist != b.dist {
		return a.dist < b.dist
	}
	if a.depth != b.depth {
		return a.depth < b.depth
	}
	return a.order < b.order
}

// Names returns the names declared in the innermost scope, in declaration
// order.
func (t *Table) Names() []string {
	s := t.current()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
