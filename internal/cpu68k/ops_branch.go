/*
   gsmac cpu68k: branch and quick-arithmetic instruction families.

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

// condTrue evaluates one of the sixteen standard condition codes
// against the current flags.
func (c *CPU) condTrue(cc int) bool {
	z := c.SR&srZ != 0
	n := c.SR&srN != 0
	v := c.SR&srV != 0
	cf := c.SR&srC != 0
	switch cc {
	case 0x0: // T
		return true
	case 0x1: // F
		return false
	case 0x2: // HI
		return !cf && !z
	case 0x3: // LS
		return cf || z
	case 0x4: // CC
		return !cf
	case 0x5: // CS
		return cf
	case 0x6: // NE
		return !z
	case 0x7: // EQ
		return z
	case 0x8: // VC
		return !v
	case 0x9: // VS
		return v
	case 0xA: // PL
		return !n
	case 0xB: // MI
		return n
	case 0xC: // GE
		return n == v
	case 0xD: // LT
		return n != v
	case 0xE: // GT
		return n == v && !z
	default: // LE
		return z || n != v
	}
}

// execBranch implements BRA/BSR/Bcc, including the byte/word/long
// displacement encoding (0x00 in the low byte means a following
// extension word holds the real displacement).
func (c *CPU) execBranch(op uint16) {
	cc := int((op >> 8) & 0xF)
	disp8 := int8(op & 0xFF)
	base := c.PC

	var disp int32
	switch disp8 {
	case 0:
		disp = int32(int16(c.fetchWord()))
	case -1:
		disp = int32(c.fetchLong())
	default:
		disp = int32(disp8)
	}
	target := uint32(int32(base) + disp)

	if cc == 1 { // BSR
		c.A[7] -= 4
		c.mem.Write32(c.A[7], c.PC)
		c.PC = target
		return
	}
	if c.condTrue(cc) {
		c.PC = target
	}
}

// execLine5 covers ADDQ/SUBQ, Scc and DBcc, which all share the 0101
// top nibble. The two-bit size field at bits7-6 disambiguates: 11
// marks Scc/DBcc (an illegal size for quick arithmetic), anything else
// is ADDQ (bit8=0) or SUBQ (bit8=1).
func (c *CPU) execLine5(op uint16) {
	sizeBits := (op >> 6) & 3
	if sizeBits == 3 {
		mode := int((op >> 3) & 7)
		if mode == modeAreg {
			c.execDbcc(op)
			return
		}
		c.execScc(op)
		return
	}
	c.execQuick(op)
}

func (c *CPU) execQuick(op uint16) {
	size := sizeField((op >> 6) & 3)
	mode := int((op >> 3) & 7)
	eaReg := int(op & 7)
	isSub := op&0x0100 != 0
	imm := uint32((op >> 9) & 7)
	if imm == 0 {
		imm = 8
	}

	if mode == modeAreg {
		if isSub {
			c.A[eaReg] -= imm
		} else {
			c.A[eaReg] += imm
		}
		return
	}

	e := c.resolveEA(mode, eaReg, size)
	v := e.get(size)
	var result uint32
	if isSub {
		result = (v - imm) & size.mask()
		c.subFlags(v, imm, result, size)
	} else {
		result = (v + imm) & size.mask()
		c.addFlags(v, imm, result, size)
	}
	e.set(size, result)
}

func (c *CPU) execScc(op uint16) {
	cc := int((op >> 8) & 0xF)
	mode := int((op >> 3) & 7)
	eaReg := int(op & 7)
	e := c.resolveEA(mode, eaReg, SizeByte)
	var v uint32
	if c.condTrue(cc) {
		v = 0xFF
	}
	e.set(SizeByte, v)
}

func (c *CPU) execDbcc(op uint16) {
	cc := int((op >> 8) & 0xF)
	reg := int(op & 7)
	disp := int32(int16(c.fetchWord()))
	if c.condTrue(cc) {
		return
	}
	v := int16(c.D[reg] & 0xFFFF)
	v--
	c.D[reg] = (c.D[reg] &^ 0xFFFF) | uint32(uint16(v))
	if v != -1 {
		c.PC = uint32(int32(c.PC) - 2 + disp)
	}
}
