/*
   gsmac cpu68k: effective address calculation.

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

// ea is a resolved effective address: either a register (mode Dn/An)
// or a memory location. Reads/writes go through get/set so callers
// never need to branch on addressing mode themselves.
type ea struct {
	c      *CPU
	mode   int
	reg    int
	addr   uint32 // valid when mode is a memory mode
	isMem  bool
}

const (
	modeDreg     = 0
	modeAreg     = 1
	modeAInd     = 2
	modeAIndPost = 3
	modeAIndPre  = 4
	modeAIndDisp = 5
	modeAIndIdx  = 6
	modeExt      = 7
)

// resolveEA decodes a 6-bit mode/register field, consuming any
// extension words from the instruction stream, and returns a handle
// usable for both reads and writes. size matters for Dn/An register
// access and for post-increment/pre-decrement step amounts.
func (c *CPU) resolveEA(mode, reg int, size Size) ea {
	e := ea{c: c, mode: mode, reg: reg}
	switch mode {
	case modeDreg, modeAreg:
		e.isMem = false
		return e
	case modeAInd:
		e.addr = c.A[reg]
		e.isMem = true
	case modeAIndPost:
		e.addr = c.A[reg]
		e.isMem = true
		step := uint32(size)
		if size == SizeByte && reg == 7 {
			step = 2 // A7 stays word-aligned
		}
		c.A[reg] += step
	case modeAIndPre:
		step := uint32(size)
		if size == SizeByte && reg == 7 {
			step = 2
		}
		c.A[reg] -= step
		e.addr = c.A[reg]
		e.isMem = true
	case modeAIndDisp:
		disp := int16(c.fetchWord())
		e.addr = c.A[reg] + uint32(int32(disp))
		e.isMem = true
	case modeAIndIdx:
		e.addr = c.indexedAddress(c.A[reg])
		e.isMem = true
	case modeExt:
		switch reg {
		case 0: // absolute short
			disp := int16(c.fetchWord())
			e.addr = uint32(int32(disp))
			e.isMem = true
		case 1: // absolute long
			e.addr = c.fetchLong()
			e.isMem = true
		case 2: // PC + displacement
			base := c.PC
			disp := int16(c.fetchWord())
			e.addr = base + uint32(int32(disp))
			e.isMem = true
		case 3: // PC + index
			e.addr = c.indexedAddress(c.PC)
			e.isMem = true
		case 4: // immediate
			e.isMem = false
			e.mode = modeExt
			e.reg = 4
		default:
			c.illegal()
		}
	}
	return e
}

// indexedAddress implements the brief extension word format: an 8-bit
// displacement plus a data or address register scaled x1 (the 68000
// does not support the scale-factor/full format of later members of
// the family).
func (c *CPU) indexedAddress(base uint32) uint32 {
	ext := c.fetchWord()
	disp := int8(ext & 0xFF)
	regNum := int((ext >> 12) & 7)
	isAddr := ext&0x8000 != 0
	longIdx := ext&0x0800 != 0

	var idx uint32
	if isAddr {
		idx = c.A[regNum]
	} else {
		idx = c.D[regNum]
	}
	if !longIdx {
		idx = signExtend(idx, SizeWord)
	}
	return base + idx + uint32(int32(disp))
}

func (e ea) get(size Size) uint32 {
	if !e.isMem {
		if e.mode == modeExt && e.reg == 4 {
			// Immediate operand.
			if size == SizeLong {
				return e.c.fetchLong()
			}
			w := e.c.fetchWord()
			if size == SizeByte {
				return uint32(w & 0xFF)
			}
			return uint32(w)
		}
		if e.mode == modeAreg {
			return signExtend(e.c.A[e.reg], size)
		}
		return e.c.D[e.reg] & size.mask()
	}
	switch size {
	case SizeByte:
		return uint32(e.c.mem.Read8(e.addr))
	case SizeWord:
		return uint32(e.c.mem.Read16(e.addr))
	default:
		return e.c.mem.Read32(e.addr)
	}
}

// getSigned is get() sign-extended to 32 bits, for instructions like
// ADDA/MOVEA that widen a word source.
func (e ea) getSigned(size Size) uint32 {
	return signExtend(e.get(size), size)
}

func (e ea) set(size Size, v uint32) {
	if !e.isMem {
		switch e.mode {
		case modeAreg:
			e.c.A[e.reg] = signExtend(v, size)
		default:
			m := size.mask()
			e.c.D[e.reg] = (e.c.D[e.reg] &^ m) | (v & m)
		}
		return
	}
	switch size {
	case SizeByte:
		e.c.mem.Write8(e.addr, uint8(v))
	case SizeWord:
		e.c.mem.Write16(e.addr, uint16(v))
	default:
		e.c.mem.Write32(e.addr, v)
	}
}
