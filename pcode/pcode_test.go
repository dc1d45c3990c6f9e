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

package pcode_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/db47h/pl0/pcode"
)

func TestInstruction_mnemonicPlainOpcode(t *testing.T) {
	ins := pcode.Instruction{Op: pcode.LOD, Level: 1, A: 3}
	assert.Equal(t, "lod 1, 3", ins.Mnemonic())
}

func TestInstruction_mnemonicOprSubcode(t *testing.T) {
	ins := pcode.Instruction{Op: pcode.OPR, Level: 0, A: int(pcode.OprAdd)}
	assert.Equal(t, "opr 0, add", ins.Mnemonic())
}

func TestInstruction_mnemonicOprReturn(t *testing.T) {
	ins := pcode.Instruction{Op: pcode.OPR, Level: 0, A: int(pcode.OprReturn)}
	assert.Equal(t, "opr 0, ret", ins.Mnemonic())
}

func TestInstruction_mnemonicUnknownOprSubcode(t *testing.T) {
	ins := pcode.Instruction{Op: pcode.OPR, Level: 0, A: 99}
	assert.Equal(t, "opr 0, ???", ins.Mnemonic())
}

func TestOp_stringNamesEveryOpcode(t *testing.T) {
	cases := map[pcode.Op]string{
		pcode.LIT: "lit",
		pcode.LOD: "lod",
		pcode.STO: "sto",
		pcode.CAL: "cal",
		pcode.INT: "int",
		pcode.JMP: "jmp",
		pcode.JPC: "jpc",
		pcode.OPR: "opr",
		pcode.RED: "red",
		pcode.WRT: "wrt",
	}
	for op, want := range cases {
		assert.Equal(t, want, op.String())
	}
}
