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

// Package pcode defines the instruction format shared by the code generator
// and the virtual machine: a dense, three-field (op, level, a) encoding,
// canonical in memory only (it is never persisted to disk).
package pcode

import "strconv"

// Op is a P-Code operation.
type Op int

// P-Code operations.
const (
	LIT Op = iota
	LOD
	STO
	CAL
	INT
	JMP
	JPC
	OPR
	RED
	WRT
)

var opNames = [...]string{
	LIT: "lit",
	LOD: "lod",
	STO: "sto",
	CAL: "cal",
	INT: "int",
	JMP: "jmp",
	JPC: "jpc",
	OPR: "opr",
	RED: "red",
	WRT: "wrt",
}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return "???"
}

// OPR subcodes.
const (
	OprReturn Op = iota
	OprNeg
	OprAdd
	OprSub
	OprMul
	OprDiv
	OprOdd
	_ // 7 unused
	OprEq
	OprNeq
	OprLt
	OprGeq
	OprGt
	OprLeq
)

var oprNames = [...]string{
	OprReturn: "ret",
	OprNeg:    "neg",
	OprAdd:    "add",
	OprSub:    "sub",
	OprMul:    "mul",
	OprDiv:    "div",
	OprOdd:    "odd",
	OprEq:     "eq",
	OprNeq:    "neq",
	OprLt:     "lt",
	OprGeq:    "geq",
	OprGt:     "gt",
	OprLeq:    "leq",
}

// Instruction is a single P-Code instruction: an opcode, a static-link level
// difference (meaningful for LOD/STO/CAL/RED only), and an address or literal
// argument.
type Instruction struct {
	Op    Op
	Level int
	A     int
}

// Mnemonic returns the disassembled form of the instruction, e.g. "lod 1, 3"
// or "opr 0, add".
func (ins Instruction) Mnemonic() string {
	if ins.Op == OPR {
		sub := "???"
		if int(ins.A) < len(oprNames) && oprNames[ins.A] != "" {
			sub = oprNames[ins.A]
		}
		return "opr 0, " + sub
	}
	return ins.Op.String() + " " + strconv.Itoa(ins.Level) + ", " + strconv.Itoa(ins.A)
}

// Program is a complete compiled P-Code image together with the address at
// which execution starts (the outermost block's initial JMP target, i.e.
// the program body).
type Program struct {
	Code  []Instruction
	Entry int
}
