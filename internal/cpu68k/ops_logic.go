/*
   gsmac cpu68k: AND/OR/MUL/DIV instruction families (lines 8 and C).

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

// execLine8 is the 1000 line: OR, DIVU, DIVS and SBCD.
func (c *CPU) execLine8(op uint16) {
	opmode := (op >> 6) & 7
	mode := (op >> 3) & 7
	switch {
	case opmode == 3:
		c.execDivu(op)
	case opmode == 7:
		c.execDivs(op)
	case opmode == 4 && (mode == 0 || mode == 1):
		c.execSbcd(op)
	default:
		c.execALULine(op, aluOr)
	}
}

// execLineC is the 1100 line: AND, MULU, MULS, ABCD and EXG. EXG and
// ABCD reuse opmode/mode combinations that would otherwise be illegal
// addressing-mode-direct forms of the to-memory AND (An-direct is not
// a data-alterable destination, so the encoding space is free).
func (c *CPU) execLineC(op uint16) {
	opmode := (op >> 6) & 7
	mode := (op >> 3) & 7
	switch {
	case opmode == 3:
		c.execMulu(op)
	case opmode == 7:
		c.execMuls(op)
	case opmode == 4 && (mode == 0 || mode == 1):
		c.execAbcd(op)
	case opmode == 5 && mode == 0:
		c.execExg(op)
	case opmode == 5 && mode == 1:
		c.execExg(op)
	case opmode == 6 && mode == 1:
		c.execExg(op)
	default:
		c.execALULine(op, aluAnd)
	}
}

func (c *CPU) execDivu(op uint16) {
	reg := int((op >> 9) & 7)
	mode := int((op >> 3) & 7)
	eaReg := int(op & 7)
	src := c.resolveEA(mode, eaReg, SizeWord)
	divisor := src.get(SizeWord)
	if divisor == 0 {
		c.raiseException(vecZeroDivide, 0, false)
		return
	}
	dividend := c.D[reg]
	quot := dividend / divisor
	rem := dividend % divisor
	if quot > 0xFFFF {
		c.setFlag(srV, true)
		return
	}
	c.D[reg] = (rem << 16) | (quot & 0xFFFF)
	c.setFlag(srC, false)
	c.setFlag(srV, false)
	c.setNZ(quot, SizeWord)
}

func (c *CPU) execDivs(op uint16) {
	reg := int((op >> 9) & 7)
	mode := int((op >> 3) & 7)
	eaReg := int(op & 7)
	src := c.resolveEA(mode, eaReg, SizeWord)
	divisor := int32(int16(src.get(SizeWord)))
	if divisor == 0 {
		c.raiseException(vecZeroDivide, 0, false)
		return
	}
	dividend := int32(c.D[reg])
	quot := dividend / divisor
	rem := dividend % divisor
	if quot > 32767 || quot < -32768 {
		c.setFlag(srV, true)
		return
	}
	c.D[reg] = (uint32(rem) << 16) | (uint32(quot) & 0xFFFF)
	c.setFlag(srC, false)
	c.setFlag(srV, false)
	c.setNZ(uint32(quot), SizeWord)
}

func (c *CPU) execMulu(op uint16) {
	reg := int((op >> 9) & 7)
	mode := int((op >> 3) & 7)
	eaReg := int(op & 7)
	src := c.resolveEA(mode, eaReg, SizeWord)
	a := src.get(SizeWord) & 0xFFFF
	b := c.D[reg] & 0xFFFF
	result := a * b
	c.D[reg] = result
	c.setFlag(srC, false)
	c.setFlag(srV, false)
	c.setNZ(result, SizeLong)
}

func (c *CPU) execMuls(op uint16) {
	reg := int((op >> 9) & 7)
	mode := int((op >> 3) & 7)
	eaReg := int(op & 7)
	src := c.resolveEA(mode, eaReg, SizeWord)
	a := int32(int16(src.get(SizeWord)))
	b := int32(int16(c.D[reg] & 0xFFFF))
	result := uint32(a * b)
	c.D[reg] = result
	c.setFlag(srC, false)
	c.setFlag(srV, false)
	c.setNZ(result, SizeLong)
}

// execAbcd/execSbcd implement packed-BCD add/subtract, byte-wise and
// digit-corrected, between two data registers or two predecrementing
// memory operands (same operand addressing convention as ADDX/SUBX).
func (c *CPU) execAbcd(op uint16) { c.execBCD(op, true) }
func (c *CPU) execSbcd(op uint16) { c.execBCD(op, false) }

func (c *CPU) execBCD(op uint16, add bool) {
	rx := int((op >> 9) & 7)
	ry := int(op & 7)
	useMem := op&0x08 != 0

	var dst, src uint32
	var writeBack func(uint32)
	if useMem {
		dstE := c.resolveEA(modeAIndPre, rx, SizeByte)
		srcE := c.resolveEA(modeAIndPre, ry, SizeByte)
		dst, src = dstE.get(SizeByte), srcE.get(SizeByte)
		writeBack = func(v uint32) { dstE.set(SizeByte, v) }
	} else {
		dst, src = c.D[rx]&0xFF, c.D[ry]&0xFF
		writeBack = func(v uint32) { c.D[rx] = (c.D[rx] &^ 0xFF) | (v & 0xFF) }
	}

	x := uint32(0)
	if c.flagX() {
		x = 1
	}

	var result uint32
	var carry bool
	if add {
		lo := (dst & 0xF) + (src & 0xF) + x
		hi := (dst >> 4 & 0xF) + (src >> 4 & 0xF)
		if lo > 9 {
			lo += 6
			hi++
		}
		if hi > 9 {
			hi += 6
			carry = true
		}
		result = ((hi << 4) | (lo & 0xF)) & 0xFF
	} else {
		lo := int32(dst&0xF) - int32(src&0xF) - int32(x)
		hi := int32(dst>>4&0xF) - int32(src>>4&0xF)
		if lo < 0 {
			lo += 10
			hi--
		}
		if hi < 0 {
			hi += 10
			carry = true
		}
		result = (uint32(hi&0xF) << 4) | uint32(lo&0xF)
	}
	c.setFlag(srC, carry)
	c.setFlag(srX, carry)
	if result != 0 {
		c.setFlag(srZ, false)
	}
	c.setFlag(srN, signBit(result, SizeByte))
	writeBack(result)
}
