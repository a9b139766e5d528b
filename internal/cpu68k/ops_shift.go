/*
   gsmac cpu68k: shift and rotate instruction family (line E).

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

type shiftOp int

const (
	shiftASL shiftOp = iota
	shiftASR
	shiftLSL
	shiftLSR
	shiftROL
	shiftROR
	shiftROXL
	shiftROXR
)

// execLineE covers both the register shift/rotate forms (count or Dn
// count, operating on a data register of any size) and the single-bit
// memory forms (word only, ea as both source and destination).
func (c *CPU) execLineE(op uint16) {
	if (op>>6)&3 == 3 {
		// Memory shift: 1110 ooo 1 11 mmmRRR, one bit, word size.
		kind := shiftOp((op >> 9) & 3)
		dir := (op >> 8) & 1
		so := memShiftKind(kind, dir != 0)
		reg := int((op >> 3) & 7)
		eaReg := int(op & 7)
		e := c.resolveEA(reg, eaReg, SizeWord)
		v := e.get(SizeWord)
		result := c.doShift(so, v, 1, SizeWord)
		e.set(SizeWord, result)
		return
	}

	size := sizeField((op >> 6) & 3)
	dir := (op >> 8) & 1
	kindBits := shiftOp((op >> 3) & 3)
	useCountReg := (op>>5)&1 != 0
	reg := int(op & 7)

	var count uint32
	if useCountReg {
		countReg := int((op >> 9) & 7)
		count = c.D[countReg] % 64
	} else {
		imm := (op >> 9) & 7
		if imm == 0 {
			imm = 8
		}
		count = uint32(imm)
	}

	so := memShiftKind(kindBits, dir != 0)
	v := c.D[reg] & size.mask()
	result := c.doShift(so, v, count, size)
	c.D[reg] = (c.D[reg] &^ size.mask()) | (result & size.mask())
}

func memShiftKind(kind shiftOp, left bool) shiftOp {
	switch kind {
	case 0:
		if left {
			return shiftASL
		}
		return shiftASR
	case 1:
		if left {
			return shiftLSL
		}
		return shiftLSR
	case 2:
		if left {
			return shiftROXL
		}
		return shiftROXR
	default:
		if left {
			return shiftROL
		}
		return shiftROR
	}
}

// doShift performs count iterations of the selected operation on v,
// applying C/X/N/Z/V per instruction and leaving flags from the last
// shifted bit. A count of 0 (register form only) leaves N/Z set from
// the unshifted value and clears C, per the reference manual.
func (c *CPU) doShift(op shiftOp, v uint32, count uint32, size Size) uint32 {
	if count == 0 {
		c.setFlag(srC, false)
		c.setNZ(v, size)
		c.setFlag(srV, false)
		return v
	}

	signMask := size.signBit()
	mask := size.mask()
	lastOut := false
	overflow := false

	for i := uint32(0); i < count; i++ {
		switch op {
		case shiftASL:
			in := v&signMask != 0
			lastOut = v&signMask != 0
			v = (v << 1) & mask
			if (v&signMask != 0) != in {
				overflow = true
			}
		case shiftLSL, shiftROL:
			lastOut = v&signMask != 0
			v = (v << 1) & mask
			if op == shiftROL && lastOut {
				v |= 1
			}
		case shiftASR:
			lastOut = v&1 != 0
			sign := v & signMask
			v = (v >> 1) | sign
		case shiftLSR:
			lastOut = v&1 != 0
			v = v >> 1
		case shiftROR:
			lastOut = v&1 != 0
			v = v >> 1
			if lastOut {
				v |= signMask
			}
		case shiftROXL:
			x := uint32(0)
			if c.flagX() {
				x = 1
			}
			lastOut = v&signMask != 0
			v = ((v << 1) | x) & mask
			c.setFlag(srX, lastOut)
		case shiftROXR:
			x := uint32(0)
			if c.flagX() {
				x = signMask
			}
			lastOut = v&1 != 0
			v = (v >> 1) | x
			c.setFlag(srX, lastOut)
		}
	}
	switch op {
	case shiftROXL, shiftROXR:
		c.setFlag(srC, lastOut)
	case shiftROL, shiftROR:
		c.setFlag(srC, lastOut) // rotates never touch X
	default:
		c.setFlag(srC, lastOut)
		c.setFlag(srX, lastOut)
	}
	c.setFlag(srV, overflow)
	c.setNZ(v, size)
	return v
}
