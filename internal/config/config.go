/*
 * gsmac - Machine profile configuration file parser
 *
 * Copyright 2026, gsmac project contributors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package config parses the line-oriented machine profile file that
// describes a board: RAM size, the ROM image path, attached disk
// images, and the timing mode the scheduler should run under.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Option is one "key value[,value...]" directive on a config line.
type Option struct {
	Name  string
	Value []string
}

// Profile is the fully parsed machine description.
type Profile struct {
	Model      string // "plus", "512ke", ...
	RAMBytes   uint32
	ROMPath    string
	Disks      []string
	TimingMode string // "unbounded", "accurate", "live"
	Options    []Option
}

var lineNumber int

// Load reads a profile from disk. Unknown directives are collected
// into Options rather than rejected, so a profile can carry
// device-specific settings the base parser doesn't know the shape of.
func Load(path string) (*Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parse(f)
}

func parse(r io.Reader) (*Profile, error) {
	p := &Profile{TimingMode: "unbounded"}
	reader := bufio.NewReader(r)
	lineNumber = 0
	for {
		raw, err := reader.ReadString('\n')
		lineNumber++
		if len(raw) == 0 && err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		if perr := applyLine(p, raw); perr != nil {
			return nil, perr
		}
		if err != nil && errors.Is(err, io.EOF) {
			break
		}
	}
	return p, nil
}

func applyLine(p *Profile, raw string) error {
	line := stripComment(raw)
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	fields := strings.Fields(line)
	key := strings.ToLower(fields[0])
	rest := fields[1:]

	switch key {
	case "model":
		if len(rest) != 1 {
			return fmt.Errorf("config line %d: model requires exactly one value", lineNumber)
		}
		p.Model = strings.ToLower(rest[0])
	case "ram":
		if len(rest) != 1 {
			return fmt.Errorf("config line %d: ram requires exactly one value", lineNumber)
		}
		n, err := parseSize(rest[0])
		if err != nil {
			return fmt.Errorf("config line %d: %w", lineNumber, err)
		}
		p.RAMBytes = n
	case "rom":
		if len(rest) != 1 {
			return fmt.Errorf("config line %d: rom requires exactly one value", lineNumber)
		}
		p.ROMPath = rest[0]
	case "disk":
		if len(rest) != 1 {
			return fmt.Errorf("config line %d: disk requires exactly one value", lineNumber)
		}
		p.Disks = append(p.Disks, rest[0])
	case "timing":
		if len(rest) != 1 {
			return fmt.Errorf("config line %d: timing requires exactly one value", lineNumber)
		}
		p.TimingMode = strings.ToLower(rest[0])
	default:
		opt := Option{Name: key}
		for _, v := range rest {
			opt.Value = append(opt.Value, strings.Split(v, ",")...)
		}
		p.Options = append(p.Options, opt)
	}
	return nil
}

func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		return line[:i]
	}
	return line
}

// parseSize accepts a plain byte count or a suffix of K/M (binary,
// case-insensitive): "128K", "4M", "4194304".
func parseSize(s string) (uint32, error) {
	s = strings.ToUpper(s)
	mult := uint64(1)
	switch {
	case strings.HasSuffix(s, "K"):
		mult = 1024
		s = s[:len(s)-1]
	case strings.HasSuffix(s, "M"):
		mult = 1024 * 1024
		s = s[:len(s)-1]
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q", s)
	}
	return uint32(n * mult), nil
}

// Get returns the first value of a named extra option, if present.
func (p *Profile) Get(name string) (string, bool) {
	for _, o := range p.Options {
		if o.Name == name && len(o.Value) > 0 {
			return o.Value[0], true
		}
	}
	return "", false
}
