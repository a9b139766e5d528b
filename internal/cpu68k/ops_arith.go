/*
   gsmac cpu68k: ADD/SUB/CMP instruction families.

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

type aluKind int

const (
	aluAdd aluKind = iota
	aluSub
	aluAnd
	aluOr
)

// execALULine implements the shared register/opmode/ea layout common
// to ADD, SUB, AND and OR: opmode 000-010 computes Dn <- Dn op ea,
// opmode 100-110 computes ea <- ea op Dn (only AND/OR/ADD/SUB support
// this reversed, memory-destination form; the address-register-direct
// destination is not data-alterable and is rejected), and opmode
// 011/111 are ADDA/SUBA (word/long, ea sign-extended, no flags) -
// AND/OR have no address-register form so callers for those never
// reach opmode 3/7.
func (c *CPU) execALULine(op uint16, kind aluKind) {
	reg := int((op >> 9) & 7)
	opmode := (op >> 6) & 7
	mode := int((op >> 3) & 7)
	eaReg := int(op & 7)

	if kind == aluAdd || kind == aluSub {
		if opmode == 3 || opmode == 7 {
			size := SizeWord
			if opmode == 7 {
				size = SizeLong
			}
			src := c.resolveEA(mode, eaReg, size)
			v := src.getSigned(size)
			if kind == aluAdd {
				c.A[reg] += v
			} else {
				c.A[reg] -= v
			}
			return
		}
	}

	size := sizeField(opmode & 3)
	toMemory := opmode&4 != 0

	if !toMemory {
		src := c.resolveEA(mode, eaReg, size)
		v := src.get(size)
		dst := c.D[reg] & size.mask()
		result := c.applyALU(kind, dst, v, size)
		c.D[reg] = (c.D[reg] &^ size.mask()) | (result & size.mask())
		return
	}

	if mode == modeAreg {
		c.illegal()
		return
	}
	dstEA := c.resolveEA(mode, eaReg, size)
	dstVal := dstEA.get(size)
	srcVal := c.D[reg] & size.mask()
	result := c.applyALU(kind, dstVal, srcVal, size)
	dstEA.set(size, result)
}

func (c *CPU) applyALU(kind aluKind, dst, src uint32, size Size) uint32 {
	switch kind {
	case aluAdd:
		result := (dst + src) & size.mask()
		c.addFlags(dst, src, result, size)
		return result
	case aluSub:
		result := (dst - src) & size.mask()
		c.subFlags(dst, src, result, size)
		return result
	case aluAnd:
		result := dst & src
		c.logicFlags(result, size)
		return result
	default: // aluOr
		result := dst | src
		c.logicFlags(result, size)
		return result
	}
}

// execAddx/execSubx implement the extended (with-carry) forms, which
// operate between two data registers or two predecrementing memory
// operands, and fold in the X flag.
func (c *CPU) execAddx(op uint16) { c.execXOp(op, aluAdd) }
func (c *CPU) execSubx(op uint16) { c.execXOp(op, aluSub) }

func (c *CPU) execXOp(op uint16, kind aluKind) {
	size := sizeField((op >> 6) & 3)
	rx := int((op >> 9) & 7)
	ry := int(op & 7)
	useMem := op&0x08 != 0

	var dst, src uint32
	var writeBack func(uint32)
	if useMem {
		dstE := c.resolveEA(modeAIndPre, rx, size)
		srcE := c.resolveEA(modeAIndPre, ry, size)
		dst, src = dstE.get(size), srcE.get(size)
		writeBack = func(v uint32) { dstE.set(size, v) }
	} else {
		dst, src = c.D[rx]&size.mask(), c.D[ry]&size.mask()
		writeBack = func(v uint32) { c.D[rx] = (c.D[rx] &^ size.mask()) | (v & size.mask()) }
	}

	x := uint32(0)
	if c.flagX() {
		x = 1
	}
	var result uint32
	var carry, overflow bool
	if kind == aluAdd {
		result = (dst + src + x) & size.mask()
		d, s, r := signBit(dst, size), signBit(src, size), signBit(result, size)
		carry = carryOut(dst, src+x, result, size)
		overflow = d == s && r != d
	} else {
		result = (dst - src - x) & size.mask()
		d, s, r := signBit(dst, size), signBit(src, size), signBit(result, size)
		carry = borrowOut(dst, src+x, size)
		overflow = d != s && r != d
	}
	c.setFlag(srC, carry)
	c.setFlag(srX, carry)
	c.setFlag(srV, overflow)
	c.setFlag(srN, signBit(result, size))
	if result&size.mask() != 0 {
		c.setFlag(srZ, false) // ADDX/SUBX only clear Z, never set it, on a nonzero result
	}
	writeBack(result)
}

// execLine9Sub is the 1001 (SUB/SUBA/SUBX) line.
func (c *CPU) execLine9Sub(op uint16) {
	opmode := (op >> 6) & 7
	mode := (op >> 3) & 7
	if (opmode == 4 || opmode == 5 || opmode == 6) && (mode == modeDreg || mode == modeAreg) {
		c.execSubx(op)
		return
	}
	c.execALULine(op, aluSub)
}

// execLineD is the 1101 (ADD/ADDA/ADDX) line.
func (c *CPU) execLineD(op uint16) {
	opmode := (op >> 6) & 7
	mode := (op >> 3) & 7
	if (opmode == 4 || opmode == 5 || opmode == 6) && (mode == modeDreg || mode == modeAreg) {
		c.execAddx(op)
		return
	}
	c.execALULine(op, aluAdd)
}

// execLineB is the 1011 (CMP/CMPA/CMPM/EOR) line.
func (c *CPU) execLineB(op uint16) {
	reg := int((op >> 9) & 7)
	opmode := (op >> 6) & 7
	mode := int((op >> 3) & 7)
	eaReg := int(op & 7)

	switch {
	case opmode == 3 || opmode == 7:
		size := SizeWord
		if opmode == 7 {
			size = SizeLong
		}
		src := c.resolveEA(mode, eaReg, size)
		v := src.getSigned(size)
		dst := c.A[reg]
		result := (dst - v) & 0xFFFFFFFF
		c.subFlags(dst, v, result, SizeLong)

	case opmode <= 2:
		size := sizeField(opmode)
		src := c.resolveEA(mode, eaReg, size)
		v := src.get(size)
		dst := c.D[reg] & size.mask()
		result := (dst - v) & size.mask()
		c.subFlags(dst, v, result, size)

	default: // opmode 4-6: EOR or CMPM
		size := sizeField(opmode & 3)
		if mode == modeAreg {
			// CMPM: (Ax)+ - (Ay)+ wire both operands through
			// postincrement reads, flags only.
			srcE := c.resolveEA(modeAIndPost, eaReg, size)
			dstE := c.resolveEA(modeAIndPost, reg, size)
			s := srcE.get(size)
			d := dstE.get(size)
			result := (d - s) & size.mask()
			c.subFlags(d, s, result, size)
			return
		}
		dstEA := c.resolveEA(mode, eaReg, size)
		v := dstEA.get(size) ^ (c.D[reg] & size.mask())
		dstEA.set(size, v)
		c.logicFlags(v, size)
	}
}
