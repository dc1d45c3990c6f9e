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

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/db47h/pl0/compiler"
	"github.com/db47h/pl0/config"
	"github.com/db47h/pl0/ioport"
	"github.com/db47h/pl0/vm"
)

func newRunCmd() *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Compile and run a PL/0 source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrDefault(cfgPath)
			if err != nil {
				return err
			}
			switch err := runFile(args[0], cfg); {
			case err == nil:
				return nil
			case errors.Is(err, errCompileFailed):
				os.Exit(exitCompileError)
			case errors.Is(err, errRunFailed):
				os.Exit(exitRuntimeError)
			default:
				fmt.Fprintln(os.Stderr, err)
				os.Exit(exitIOError)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&cfgPath, "config", ".pl0rc", "path to the configuration file")
	return cmd
}

// errRunFailed is returned by runFile when compilation succeeded but the
// program raised a runtime error, distinguishing it from a compile failure
// or an I/O error so the caller can map each to its own exit code.
var errRunFailed = errors.New("runtime error")

// runFile reports failures by returning an error rather than calling
// os.Exit directly, so the deferred port.Close() below always runs -
// leaving an interactive terminal back in cooked mode - before the caller
// decides on an exit code.
func runFile(path string, cfg config.Config) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading %s", path)
	}

	res := compiler.Compile(string(src))
	res.Diagnostics.Print(os.Stderr, colorEnabled(cfg.Color, os.Stderr))
	if res.Diagnostics.HasErrors() {
		return errCompileFailed
	}

	port := consolePort()
	defer port.Close()

	opts := []vm.Option{
		vm.IO(port),
		vm.StackSize(cfg.StackSize),
		vm.MaxCallDepth(cfg.MaxCallDepth),
	}
	if cfg.MaxSteps > 0 {
		opts = append(opts, vm.MaxSteps(int64(cfg.MaxSteps)))
	}
	inst, err := vm.New(res.Program, opts...)
	if err != nil {
		return errors.Wrap(err, "initializing VM")
	}

	if err := inst.Run(); err != nil {
		fmt.Fprintln(os.Stderr, errors.Cause(err))
		return errRunFailed
	}
	return nil
}

// consolePort picks a readline-backed interactive port when stdin is a
// terminal, and a plain buffered stream port otherwise (pipes, redirected
// files, CI runs).
func consolePort() ioport.Port {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		p, err := ioport.NewReadlinePort()
		if err == nil {
			return p
		}
	}
	return ioport.NewStreamPort(os.Stdin, os.Stdout)
}
