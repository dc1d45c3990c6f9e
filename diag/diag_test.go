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

package diag_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/db47h/pl0/diag"
)

func TestDiagnostic_stringFormat(t *testing.T) {
	d := diag.Diagnostic{Phase: diag.Semantic, Severity: diag.Error, Line: 7, Message: "undeclared identifier 'countr'"}
	assert.Equal(t, "[Semantic Error] Line 7: undeclared identifier 'countr'", d.String())
}

func TestDiagnostic_stringFormatWithSuggestion(t *testing.T) {
	d := diag.Diagnostic{Phase: diag.Semantic, Severity: diag.Error, Line: 7, Message: "undeclared identifier 'countr'", Suggest: "counter"}
	assert.Equal(t, "[Semantic Error] Line 7: undeclared identifier 'countr' Did you mean 'counter'?", d.String())
}

func TestBag_errorfAndWarnf(t *testing.T) {
	bag := &diag.Bag{}
	bag.Errorf(diag.Syntax, 1, "expected %s, found %s", "end", "eof")
	bag.Warnf(diag.Semantic, 2, "condition is always true")

	require.Len(t, bag.Items(), 2)
	assert.Equal(t, 2, bag.Len())
	assert.True(t, bag.HasErrors())
	assert.Equal(t, diag.Error, bag.Items()[0].Severity)
	assert.Equal(t, diag.Warning, bag.Items()[1].Severity)
}

func TestBag_hasErrorsFalseWithOnlyWarnings(t *testing.T) {
	bag := &diag.Bag{}
	bag.Warnf(diag.Semantic, 1, "loop never terminates")
	assert.False(t, bag.HasErrors())
}

func TestBag_errorJoinsAllDiagnostics(t *testing.T) {
	bag := &diag.Bag{}
	bag.Errorf(diag.Lexical, 1, "unexpected character %q", "@")
	bag.Errorf(diag.Syntax, 2, "expected ';'")

	msg := bag.Error()
	assert.Contains(t, msg, "[Lexical Error] Line 1:")
	assert.Contains(t, msg, "[Syntax Error] Line 2:")
}

func TestBag_printWithoutColorHasNoEscapeCodes(t *testing.T) {
	bag := &diag.Bag{}
	bag.Errorf(diag.Semantic, 3, "duplicate declaration of 'x'")

	var buf bytes.Buffer
	bag.Print(&buf, false)

	out := buf.String()
	assert.Contains(t, out, "[Semantic Error] Line 3: duplicate declaration of 'x'")
	assert.NotContains(t, out, "\x1b[")
}

func TestBag_printWithColorEmitsEscapeCodes(t *testing.T) {
	bag := &diag.Bag{}
	bag.Errorf(diag.Semantic, 3, "duplicate declaration of 'x'")
	bag.Warnf(diag.Semantic, 4, "condition is always true")

	var buf bytes.Buffer
	bag.Print(&buf, true)

	out := buf.String()
	assert.Contains(t, out, "\x1b[")
	assert.Contains(t, out, "Line 3: duplicate declaration of 'x'")
	assert.Contains(t, out, "Line 4: condition is always true")
}
