/*
   gsmac cpu68k: top-level instruction decode.

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

package cpu68k

// execute decodes and runs a single instruction word already fetched
// from PC (PC has been advanced past it). The top 4 bits select one
// of sixteen instruction line groups, the traditional M68000 decode
// split.
func (c *CPU) execute(op uint16) {
	switch op >> 12 {
	case 0x0:
		c.execLine0(op)
	case 0x1:
		c.execMove(op, SizeByte)
	case 0x2:
		c.execMove(op, SizeLong)
	case 0x3:
		c.execMove(op, SizeWord)
	case 0x4:
		c.execLine4(op)
	case 0x5:
		c.execLine5(op)
	case 0x6:
		c.execBranch(op)
	case 0x7:
		c.execMoveq(op)
	case 0x8:
		c.execLine8(op)
	case 0x9:
		c.execLine9Sub(op)
	case 0xB:
		c.execLineB(op)
	case 0xC:
		c.execLineC(op)
	case 0xD:
		c.execLineD(op)
	case 0xE:
		c.execLineE(op)
	default:
		c.illegal()
	}
}

// execLine0 covers immediate/bit-manipulation/MOVEP opcodes (opcode
// word top nibble 0000).
func (c *CPU) execLine0(op uint16) {
	// Dynamic bit ops: 0000 rrr1 ooMMMRRR (o selects BTST/BCHG/BCLR/BSET).
	if op&0xF000 == 0 && op&0x38 != 0x08 && op&0x0100 != 0 {
		c.execBitDynamic(op)
		return
	}
	// MOVEP: 0000 rrr1 oo001 RRR
	if op&0xF138 == 0x0108 {
		c.execMovep(op)
		return
	}
	switch (op >> 8) & 0x0F {
	case 0x0:
		c.execImmediate(op, "ORI")
		return
	case 0x2:
		c.execImmediate(op, "ANDI")
		return
	case 0x4:
		c.execImmediate(op, "SUBI")
		return
	case 0x6:
		c.execImmediate(op, "ADDI")
		return
	case 0xA:
		c.execImmediate(op, "EORI")
		return
	case 0xC:
		c.execImmediate(op, "CMPI")
		return
	case 0x8:
		c.execBitStatic(op)
		return
	}
	c.illegal()
}
