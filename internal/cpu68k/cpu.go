/*
   gsmac cpu68k: M68000 register file and sprint entry point.

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

// Package cpu68k interprets the M68000 instruction set against a
// memory map, decode-and-execute style. Cycle counting beyond the
// scheduler's uniform CPI is not modeled, per the architecture-level
// fidelity this core targets; flags and exception stacking follow the
// reference manual.
package cpu68k

import (
	"log/slog"

	"github.com/tclark/gsmac/internal/device"
	"github.com/tclark/gsmac/internal/memmap"
)

// Memory is the subset of memmap.Map the interpreter needs; declared
// as an interface so tests can substitute a small fake.
type Memory interface {
	Read8(addr uint32) uint8
	Write8(addr uint32, v uint8)
	Read16(addr uint32) uint16
	Write16(addr uint32, v uint16)
	Read32(addr uint32) uint32
	Write32(addr uint32, v uint32)
}

var _ Memory = (*memmap.Map)(nil)

// Status register bit positions.
const (
	srC = 1 << iota
	srV
	srZ
	srN
	srX
	_
	_
	_
	srIPL0
	srIPL1
	srIPL2
	_
	_
	srS
	_
	srT
)

const srIPLMask = srIPL0 | srIPL1 | srIPL2

// CPU holds the complete M68000 programmer-visible state plus the
// interrupt-pending latch the scheduler's interrupt sinks write into.
type CPU struct {
	D [8]uint32 // data registers
	A [8]uint32 // address registers (A7 is the active stack pointer)
	SSP uint32  // supervisor stack pointer shadow
	USP uint32  // user stack pointer shadow
	PC  uint32
	SR  uint16

	pendingIPL int // highest interrupt level currently asserted, 0-7
	stopped    bool
	haltedDouble bool // double bus fault: illegal inside exception processing

	mem Memory
	log *slog.Logger

	// VectorBase is the address of the exception vector table; 0 on a
	// stock 68000 (no vector base register), kept as a field so a
	// later 68010+ profile could relocate it without touching every
	// call site.
	VectorBase uint32
}

func New(mem Memory, log *slog.Logger) *CPU {
	if log == nil {
		log = slog.Default()
	}
	return &CPU{mem: mem, log: log}
}

func (c *CPU) Supervisor() bool { return c.SR&srS != 0 }

func (c *CPU) setSupervisor(s bool) {
	if s == c.Supervisor() {
		return
	}
	if s {
		c.USP = c.A[7]
		c.A[7] = c.SSP
		c.SR |= srS
	} else {
		c.SSP = c.A[7]
		c.A[7] = c.USP
		c.SR &^= srS
	}
}

// Reset loads the initial SSP and PC from the reset vector (the ROM
// overlay maps these at address 0/4 during boot) and enters supervisor
// mode with interrupts masked at the reset level.
func (c *CPU) Reset() {
	c.SR = srS | srIPLMask
	c.SSP = c.mem.Read32(0)
	c.A[7] = c.SSP
	c.PC = c.mem.Read32(4)
	c.stopped = false
	c.haltedDouble = false
}

// RaiseInterrupt and LowerInterrupt implement device.InterruptSink:
// VIA aggregation raises/lowers IPL1, SCC aggregation raises/lowers
// IPL2. The pending level is re-evaluated as a max over every line
// still asserted by callers, so this package tracks only the single
// highest currently-pending level; callers are expected to call
// LowerInterrupt with the same level they raised once their own
// aggregate condition clears.
var _ device.InterruptSink = (*CPU)(nil)

func (c *CPU) RaiseInterrupt(level int) {
	if level > c.pendingIPL {
		c.pendingIPL = level
	}
}

func (c *CPU) LowerInterrupt(level int) {
	if c.pendingIPL == level {
		c.pendingIPL = 0
	}
}

func (c *CPU) currentIPLMask() int {
	return int(c.SR&srIPLMask) >> 8
}

// RunInstruction executes exactly one instruction (or services one
// pending interrupt) and returns false if the CPU has halted on a
// double bus fault (an exception raised while already processing one)
// - the only condition that stops sprint execution outright, matching
// STOP's "wait for interrupt" semantics which do not halt the sprint,
// they simply spin taking no action until IPL wakes it.
func (c *CPU) RunInstruction() bool {
	if c.haltedDouble {
		return false
	}
	if c.pendingIPL > 0 && c.pendingIPL > c.currentIPLMask() {
		c.takeInterrupt(c.pendingIPL)
		return true
	}
	if c.stopped {
		return true // idling; scheduler still advances cycles/events
	}
	op := c.fetchWord()
	c.execute(op)
	return true
}

func (c *CPU) fetchWord() uint16 {
	w := c.mem.Read16(c.PC)
	c.PC += 2
	return w
}

func (c *CPU) fetchLong() uint32 {
	hi := uint32(c.fetchWord())
	lo := uint32(c.fetchWord())
	return hi<<16 | lo
}
