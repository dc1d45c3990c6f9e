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

// Package ioport provides the console I/O abstraction the virtual machine
// uses to implement the read/write statements. It mirrors the way the
// ngaro VM decouples its RED/WRT-equivalent opcodes from the concrete
// terminal: the VM only ever talks to the IOPort interface, and callers
// choose a concrete implementation (a plain byte stream for piped/batch
// use, or an interactive readline-backed one) when building the Instance.
package ioport

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pkg/errors"
)

// Port is the console I/O surface the virtual machine drives for `read`
// and `write` statements.
type Port interface {
	// ReadInt prompts for and returns the next whitespace-delimited
	// integer on the input.
	ReadInt() (int, error)
	// WriteInt writes a single integer followed by a newline.
	WriteInt(v int) error
	// Close releases any resources held by the port (e.g. restoring
	// terminal state). It is always safe to call, even more than once.
	Close() error
}

// StreamPort is a Port backed by a plain io.Reader/io.Writer pair, such as
// os.Stdin/os.Stdout or a pipe under test. Input is tokenized on
// whitespace, matching the classic PL/0 REPL's "? " prompt convention.
type StreamPort struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewStreamPort builds a StreamPort reading from r and writing to w.
func NewStreamPort(r io.Reader, w io.Writer) *StreamPort {
	s := bufio.NewScanner(r)
	s.Split(bufio.ScanWords)
	return &StreamPort{in: s, out: w}
}

// ReadInt implements Port.
func (p *StreamPort) ReadInt() (int, error) {
	fmt.Fprint(p.out, "? ")
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return 0, errors.Wrap(err, "read")
		}
		return 0, io.EOF
	}
	tok := strings.TrimSpace(p.in.Text())
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid integer input %q", tok)
	}
	return v, nil
}

// WriteInt implements Port.
func (p *StreamPort) WriteInt(v int) error {
	_, err := fmt.Fprintf(p.out, "%d\n", v)
	return err
}

// Close implements Port. StreamPort holds no closable resources.
func (p *StreamPort) Close() error { return nil }

// ReadlinePort is a Port backed by github.com/chzyer/readline, for
// interactive sessions: it gets history, line editing, and an explicit
// prompt for free.
type ReadlinePort struct {
	rl      *readline.Instance
	pending []string
}

// NewReadlinePort constructs a ReadlinePort prompting with "pl0? ".
func NewReadlinePort() (*ReadlinePort, error) {
	rl, err := readline.New("pl0? ")
	if err != nil {
		return nil, errors.Wrap(err, "initializing readline")
	}
	return &ReadlinePort{rl: rl}, nil
}

// ReadInt implements Port. Like StreamPort, a line may carry more than one
// whitespace-separated integer (e.g. for a "read(x, y)" statement); tokens
// left over from a line are served to subsequent calls before the next
// Readline prompt.
func (p *ReadlinePort) ReadInt() (int, error) {
	for len(p.pending) == 0 {
		line, err := p.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				return 0, io.EOF
			}
			return 0, errors.Wrap(err, "readline")
		}
		p.pending = strings.Fields(line)
	}
	tok := p.pending[0]
	p.pending = p.pending[1:]
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid integer input %q", tok)
	}
	return v, nil
}

// WriteInt implements Port.
func (p *ReadlinePort) WriteInt(v int) error {
	_, err := fmt.Fprintf(p.rl.Stdout(), "%d\n", v)
	return err
}

// Close implements Port.
func (p *ReadlinePort) Close() error {
	return p.rl.Close()
}
