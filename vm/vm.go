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

// Package vm implements the PL/0 stack machine: a single value stack
// holding both data and activation records, dispatched by a switch over
// pcode.Op exactly like the ngaro core's opcode loop. Activation records
// are [SL, DL, RA, params, locals...] starting at the frame base B. CAL
// pushes the 3-word SL/DL/RA header immediately above the arguments the
// caller already evaluated, so on entry the arguments momentarily sit
// just below B; the callee's own INT/copy prelude (codegen.block) moves
// them up into their permanent slots at offsets 3..3+len(Params)-1
// before the body runs.
package vm

import (
	"github.com/pkg/errors"

	"github.com/db47h/pl0/ioport"
	"github.com/db47h/pl0/pcode"
)

// Default resource limits, overridable via Option.
const (
	defaultStackSize = 4096
	defaultCallDepth = 256
)

// Sentinel errors identifying the class of runtime failure, so that
// callers can tell them apart with errors.Is/errors.Cause rather than by
// string matching.
var (
	// ErrStackOverflow is returned when the value stack would grow past
	// its configured size.
	ErrStackOverflow = errors.New("stack overflow")
	// ErrCallDepthExceeded is returned when nested CAL activations exceed
	// the configured limit, catching runaway recursion.
	ErrCallDepthExceeded = errors.New("call depth exceeded")
	// ErrDivisionByZero is returned by a runtime "/" that sema could not
	// fold away (e.g. division by a variable that turns out to be zero).
	ErrDivisionByZero = errors.New("division by zero")
	// ErrReturnFromMain names a return past the outermost frame. Run does
	// not return it: a return executed with no active call ends the run
	// cleanly.
	ErrReturnFromMain = errors.New("return from main program block")
	// ErrStepLimitExceeded is returned when an optional instruction budget,
	// configured via MaxSteps, is exhausted. It catches runaway loops that
	// never touch the call stack or value stack limits (e.g. a while loop
	// whose condition never becomes false), which ErrStackOverflow and
	// ErrCallDepthExceeded cannot see.
	ErrStepLimitExceeded = errors.New("instruction step limit exceeded")
)

// Option configures an Instance at construction time.
type Option func(*Instance) error

// StackSize sets the value stack's capacity, in words.
func StackSize(n int) Option {
	return func(i *Instance) error { i.stack = make([]int, n); return nil }
}

// MaxCallDepth sets the maximum number of nested procedure activations
// before ErrCallDepthExceeded is raised.
func MaxCallDepth(n int) Option {
	return func(i *Instance) error { i.maxCallDepth = n; return nil }
}

// IO sets the console I/O port used for read/write statements.
func IO(p ioport.Port) Option {
	return func(i *Instance) error { i.io = p; return nil }
}

// MaxSteps sets an optional instruction budget; Run fails with
// ErrStepLimitExceeded once InstructionCount would exceed it. A value of 0
// (the default) means no limit.
func MaxSteps(n int64) Option {
	return func(i *Instance) error { i.maxSteps = n; return nil }
}

// Instance is a single run of a compiled pcode.Program.
type Instance struct {
	code []pcode.Instruction

	stack []int
	t     int // index of the top-of-stack element; -1 when empty
	b     int // base of the current activation record
	p     int // program counter

	callDepth    int
	maxCallDepth int

	io ioport.Port

	insCount int64
	maxSteps int64
}

// New creates a VM instance ready to execute prog.
func New(prog *pcode.Program, opts ...Option) (*Instance, error) {
	i := &Instance{
		code:         prog.Code,
		t:            -1,
		b:            0,
		p:            prog.Entry,
		maxCallDepth: defaultCallDepth,
	}
	for _, opt := range opts {
		if err := opt(i); err != nil {
			return nil, err
		}
	}
	if i.stack == nil {
		i.stack = make([]int, defaultStackSize)
	}
	if i.io == nil {
		return nil, errors.New("vm: no IO port configured")
	}
	return i, nil
}

// Stack returns the live portion of the value stack, bottom first. The
// returned slice aliases the instance's internal storage and is only
// valid for inspection while Run is not executing.
func (i *Instance) Stack() []int {
	return i.stack[:i.t+1]
}

// PC returns the address of the next instruction to execute.
func (i *Instance) PC() int { return i.p }

// InstructionCount returns the number of instructions executed so far.
func (i *Instance) InstructionCount() int64 { return i.insCount }

func (i *Instance) push(v int) error {
	i.t++
	if i.t >= len(i.stack) {
		i.t--
		return ErrStackOverflow
	}
	i.stack[i.t] = v
	return nil
}

func (i *Instance) pop() int {
	v := i.stack[i.t]
	i.t--
	return v
}

// base walks `level` static links up from b, following the SL slot
// (offset 0) of each activation record in turn. level 0 returns b
// unchanged: the variable is in the current scope.
func (i *Instance) base(level int) int {
	b := i.b
	for ; level > 0; level-- {
		b = i.stack[b]
	}
	return b
}

// Run executes instructions until the program returns from its outermost
// block, a read/write I/O error occurs, a runtime fault is detected, or the
// configured MaxSteps budget (if any) is exhausted. On a clean exit it
// returns nil. Panics raised by an out-of-bounds stack access (a fault this
// package's own bookkeeping failed to catch) are recovered and reported as
// an error tagged with the faulting PC, mirroring the deferred-recover
// convention used throughout this codebase.
func (i *Instance) Run() (err error) {
	defer func() {
		if e := recover(); e != nil {
			switch e := e.(type) {
			case error:
				err = errors.Wrapf(e, "runtime fault at pc=%d, stack depth %d", i.p-1, i.t+1)
			default:
				panic(e)
			}
		}
	}()

	for {
		if i.p < 0 || i.p >= len(i.code) {
			return errors.Errorf("pc %d out of program bounds", i.p)
		}
		ins := i.code[i.p]
		i.p++
		i.insCount++
		if i.maxSteps != 0 && i.insCount > i.maxSteps {
			return ErrStepLimitExceeded
		}

		switch ins.Op {
		case pcode.LIT:
			if err := i.push(ins.A); err != nil {
				return err
			}
		case pcode.LOD:
			v := i.stack[i.base(ins.Level)+ins.A]
			if err := i.push(v); err != nil {
				return err
			}
		case pcode.STO:
			i.stack[i.base(ins.Level)+ins.A] = i.pop()
		case pcode.CAL:
			if i.callDepth >= i.maxCallDepth {
				return ErrCallDepthExceeded
			}
			newB := i.t + 1
			if err := i.push(i.base(ins.Level)); err != nil { // SL
				return err
			}
			if err := i.push(i.b); err != nil { // DL
				return err
			}
			if err := i.push(i.p); err != nil { // RA
				return err
			}
			i.b = newB
			i.p = ins.A
			i.callDepth++
		case pcode.INT:
			newT := i.b + ins.A - 1
			if newT >= len(i.stack) {
				return ErrStackOverflow
			}
			i.t = newT
		case pcode.JMP:
			i.p = ins.A
		case pcode.JPC:
			if i.pop() == 0 {
				i.p = ins.A
			}
		case pcode.OPR:
			if ins.A == int(pcode.OprReturn) {
				if i.callDepth == 0 {
					// The outermost block's own return: there is no
					// caller frame to pop back into, so the program is
					// simply done.
					return nil
				}
				i.t = i.b - 1
				i.p = i.stack[i.b+2]
				i.b = i.stack[i.b+1]
				i.callDepth--
				continue
			}
			if err := i.opr(ins.A); err != nil {
				return err
			}
		case pcode.RED:
			v, err := i.io.ReadInt()
			if err != nil {
				return errors.Wrap(err, "read")
			}
			i.stack[i.base(ins.Level)+ins.A] = v
		case pcode.WRT:
			if err := i.io.WriteInt(i.pop()); err != nil {
				return errors.Wrap(err, "write")
			}
		default:
			return errors.Errorf("illegal opcode %d at pc=%d", ins.Op, i.p-1)
		}
	}
}

// opr executes every OPR subcode except OprReturn, which Run handles
// directly since it needs to special-case the outermost block's return.
func (i *Instance) opr(sub int) error {
	switch pcode.Op(sub) {
	case pcode.OprNeg:
		i.stack[i.t] = -i.stack[i.t]
	case pcode.OprAdd:
		rhs := i.pop()
		i.stack[i.t] += rhs
	case pcode.OprSub:
		rhs := i.pop()
		i.stack[i.t] -= rhs
	case pcode.OprMul:
		rhs := i.pop()
		i.stack[i.t] *= rhs
	case pcode.OprDiv:
		rhs := i.pop()
		if rhs == 0 {
			return ErrDivisionByZero
		}
		i.stack[i.t] /= rhs
	case pcode.OprOdd:
		i.stack[i.t] = i.stack[i.t] & 1
	case pcode.OprEq:
		rhs := i.pop()
		i.stack[i.t] = boolInt(i.stack[i.t] == rhs)
	case pcode.OprNeq:
		rhs := i.pop()
		i.stack[i.t] = boolInt(i.stack[i.t] != rhs)
	case pcode.OprLt:
		rhs := i.pop()
		i.stack[i.t] = boolInt(i.stack[i.t] < rhs)
	case pcode.OprGeq:
		rhs := i.pop()
		i.stack[i.t] = boolInt(i.stack[i.t] >= rhs)
	case pcode.OprGt:
		rhs := i.pop()
		i.stack[i.t] = boolInt(i.stack[i.t] > rhs)
	case pcode.OprLeq:
		rhs := i.pop()
		i.stack[i.t] = boolInt(i.stack[i.t] <= rhs)
	default:
		return errors.Errorf("illegal opr subcode %d", sub)
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
