/*
   gsmac command: line-oriented command registry.

   Copyright (c) 2026, gsmac project contributors

   Permission is hereby granted, free of charge, to any person obtaining a
   copy of this software and associated documentation files (the "Software"),
   to deal in the Software without restriction, including without limitation
   the rights to use, copy, modify, merge, publish, distribute, sublicense,
   and/or sell copies of the Software, and to permit persons to whom the
   Software is furnished to do so, subject to the following conditions:

   The above copyright notice and this permission notice shall be included in
   all copies or substantial portions of the Software.

   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.  IN NO EVENT SHALL
   THE AUTHORS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
   IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
   CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.

*/

// Package command is the shell-facing registry the core exposes:
// register_command/dispatch_command, so a host shell (out of scope
// for this core) can drive the machine through named, categorized
// commands rather than linking against every subsystem directly.
package command

import (
	"fmt"
	"sort"
	"strings"
)

// Func is a registered command's implementation. args excludes the
// command name itself. Output is returned rather than written
// directly, so callers (a line shell, a test, a debug view) can route
// it wherever they like.
type Func func(args []string) (string, error)

// entry is one registered command.
type entry struct {
	Name     string
	Category string
	Help     string
	Fn       Func
}

// Registry holds every command registered against one machine
// instance. The zero value is ready to use.
type Registry struct {
	byName map[string]*entry
}

// Register installs fn under name, grouped under category for Help's
// listing and documented with helpString. Re-registering a name
// replaces the previous entry, matching how the orchestration layer
// reinstalls a fresh set after a machine reset.
func (r *Registry) Register(name, category, helpString string, fn Func) {
	if r.byName == nil {
		r.byName = make(map[string]*entry)
	}
	r.byName[strings.ToLower(name)] = &entry{Name: name, Category: category, Help: helpString, Fn: fn}
}

// Dispatch parses one line (command name followed by whitespace
// separated arguments) and invokes the matching registered command.
func (r *Registry) Dispatch(line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	name := strings.ToLower(fields[0])
	e, ok := r.byName[name]
	if !ok {
		return "", fmt.Errorf("unknown command %q", fields[0])
	}
	return e.Fn(fields[1:])
}

// Help renders every registered command grouped by category, sorted
// within each group, for a "help" command to print.
func (r *Registry) Help() string {
	byCategory := make(map[string][]*entry)
	for _, e := range r.byName {
		byCategory[e.Category] = append(byCategory[e.Category], e)
	}
	var categories []string
	for c := range byCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	var b strings.Builder
	for _, c := range categories {
		fmt.Fprintf(&b, "%s:\n", c)
		entries := byCategory[c]
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
		for _, e := range entries {
			fmt.Fprintf(&b, "  %-12s %s\n", e.Name, e.Help)
		}
	}
	return b.String()
}
