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

package main

import (
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/db47h/pl0/compiler"
	"github.com/db47h/pl0/config"
)

func newCheckCmd() *cobra.Command {
	var watch bool
	var emitPCode bool
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Parse and analyze a PL/0 source file without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrDefault(cfgPath)
			if err != nil {
				return err
			}
			path := args[0]
			color := colorEnabled(cfg.Color, os.Stdout)
			if err := checkOnce(path, color, emitPCode); err != nil {
				if errors.Is(err, errCompileFailed) {
					os.Exit(exitCompileError)
				}
				fmt.Fprintln(os.Stderr, err)
				os.Exit(exitIOError)
			}
			if !watch {
				return nil
			}
			return watchAndCheck(path, color, emitPCode)
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "re-check on every save")
	cmd.Flags().BoolVar(&emitPCode, "emit-pcode", false, "print the generated P-Code listing on success")
	cmd.Flags().StringVar(&cfgPath, "config", ".pl0rc", "path to the configuration file")
	return cmd
}

// errCompileFailed is returned by checkOnce when the source was read fine
// but failed to compile, distinguishing it from an I/O error opening the
// file so the caller can map each to its own exit code.
var errCompileFailed = errors.New("compilation failed")

// checkOnce compiles path through the parser, semantic analyzer, and code
// generator, printing any diagnostics, and reports whether compilation
// succeeded. With emitPCode set, a successful compile also prints the
// generated instruction listing in mnemonic form.
func checkOnce(path string, color, emitPCode bool) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading %s", path)
	}
	res := compiler.Compile(string(src))
	res.Diagnostics.Print(os.Stdout, color)
	if res.Diagnostics.HasErrors() {
		return errCompileFailed
	}
	if emitPCode {
		for addr, ins := range res.Program.Code {
			fmt.Printf("%4d  %s\n", addr, ins.Mnemonic())
		}
	}
	return nil
}

// watchAndCheck re-runs checkOnce every time path is written to, until the
// process is interrupted. Modeled on the common fsnotify watch-and-rerun
// idiom: a single file watch, debounced implicitly by fsnotify coalescing
// rapid writes from editors that save via a temp-file-then-rename dance.
func watchAndCheck(path string, color, emitPCode bool) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "creating file watcher")
	}
	defer w.Close()
	if err := w.Add(path); err != nil {
		return errors.Wrapf(err, "watching %s", path)
	}
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				_ = checkOnce(path, color, emitPCode)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return errors.Wrap(err, "watching")
		}
	}
}
