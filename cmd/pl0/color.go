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
	"os"

	"golang.org/x/term"
)

// colorEnabled reports whether diagnostics should be colorized: the config
// opts in, and the destination is actually a terminal rather than a pipe or
// a redirected file, where ANSI escapes would just be noise.
func colorEnabled(wantColor bool, f *os.File) bool {
	return wantColor && term.IsTerminal(int(f.Fd()))
}
