/*
   gsmac cpu68k: MOVE family (MOVE, MOVEA, MOVEQ, MOVEM, MOVEP, LEA, PEA, EXG, SWAP, EXT).

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

// execMove handles the MOVE.size opcode line (top nibble 1/2/3). When
// the destination is an address register, this is really MOVEA: no
// flags change and the source is sign-extended rather than truncated.
func (c *CPU) execMove(op uint16, size Size) {
	dstReg := int((op >> 9) & 7)
	dstMode := int((op >> 6) & 7)
	srcMode := int((op >> 3) & 7)
	srcReg := int(op & 7)

	src := c.resolveEA(srcMode, srcReg, size)
	value := src.get(size)

	if dstMode == modeAreg {
		c.A[dstReg] = signExtend(value, size)
		return
	}

	dst := c.resolveEA(dstMode, dstReg, size)
	dst.set(size, value)
	c.logicFlags(value, size)
}

// execMoveq sign-extends an 8-bit immediate into Dn and sets flags.
func (c *CPU) execMoveq(op uint16) {
	reg := int((op >> 9) & 7)
	imm := int8(op & 0xFF)
	v := uint32(int32(imm))
	c.D[reg] = v
	c.logicFlags(v, SizeLong)
}

// execMovem transfers a register mask to/from memory. Only the
// control and predecrement/postincrement addressing modes are legal;
// the mask bit order is reversed for predecrement per the reference
// manual, and registers are stored from A7 down so D0 ends up at the
// lowest address.
func (c *CPU) execMovem(op uint16) {
	toRegs := op&0x0400 == 0
	isLong := op&0x0040 != 0
	size := SizeWord
	if isLong {
		size = SizeLong
	}
	mask := c.fetchWord()
	mode := int((op >> 3) & 7)
	reg := int(op & 7)

	if mode == modeAIndPre {
		// Predecrement: mask bit 0 = A7 ... bit 15 = D0, and we walk
		// registers from A7 down to D0, decrementing as we go.
		addr := c.A[reg]
		for i := 0; i < 16; i++ {
			if mask&(1<<uint(i)) == 0 {
				continue
			}
			addr -= uint32(size)
			regIdx := 15 - i
			var v uint32
			if regIdx < 8 {
				v = c.D[regIdx]
			} else {
				v = c.A[regIdx-8]
			}
			if size == SizeWord {
				c.mem.Write16(addr, uint16(v))
			} else {
				c.mem.Write32(addr, v)
			}
		}
		c.A[reg] = addr
		return
	}

	e := c.resolveEA(mode, reg, size)
	addr := e.addr
	for i := 0; i < 16; i++ {
		if mask&(1<<uint(i)) == 0 {
			continue
		}
		var v uint32
		if toRegs {
			if size == SizeWord {
				v = signExtend(uint32(c.mem.Read16(addr)), SizeWord)
			} else {
				v = c.mem.Read32(addr)
			}
			if i < 8 {
				c.D[i] = v
			} else {
				c.A[i-8] = v
			}
		} else {
			if i < 8 {
				v = c.D[i]
			} else {
				v = c.A[i-8]
			}
			if size == SizeWord {
				c.mem.Write16(addr, uint16(v))
			} else {
				c.mem.Write32(addr, v)
			}
		}
		addr += uint32(size)
	}
	if mode == modeAIndPost && toRegs {
		c.A[reg] = addr
	}
}

// execMovep transfers 2 or 4 bytes between a data register and memory
// at alternating byte addresses (odd data bus convention used by a
// handful of 6800-family peripherals); the Mac Plus ROM does not rely
// on it but it is part of the instruction set.
func (c *CPU) execMovep(op uint16) {
	dreg := int((op >> 9) & 7)
	areg := int(op & 7)
	disp := int16(c.fetchWord())
	addr := c.A[areg] + uint32(int32(disp))
	toMem := op&0x80 != 0
	isLong := op&0x40 != 0

	n := 2
	if isLong {
		n = 4
	}
	if toMem {
		v := c.D[dreg]
		shift := uint(n-1) * 8
		for i := 0; i < n; i++ {
			c.mem.Write8(addr, uint8(v>>shift))
			addr += 2
			shift -= 8
		}
		return
	}
	var v uint32
	for i := 0; i < n; i++ {
		v = v<<8 | uint32(c.mem.Read8(addr))
		addr += 2
	}
	if isLong {
		c.D[dreg] = v
	} else {
		c.D[dreg] = (c.D[dreg] &^ 0xFFFF) | (v & 0xFFFF)
	}
}

// execLea loads an effective address into an address register.
func (c *CPU) execLea(op uint16) {
	areg := int((op >> 9) & 7)
	mode := int((op >> 3) & 7)
	reg := int(op & 7)
	e := c.resolveEA(mode, reg, SizeLong)
	if !e.isMem {
		c.illegal()
		return
	}
	c.A[areg] = e.addr
}

// execPea pushes an effective address onto the stack.
func (c *CPU) execPea(op uint16) {
	mode := int((op >> 3) & 7)
	reg := int(op & 7)
	e := c.resolveEA(mode, reg, SizeLong)
	if !e.isMem {
		c.illegal()
		return
	}
	c.A[7] -= 4
	c.mem.Write32(c.A[7], e.addr)
}

// execExg swaps the full 32-bit contents of two registers.
func (c *CPU) execExg(op uint16) {
	rx := int((op >> 9) & 7)
	ry := int(op & 7)
	mode := (op >> 3) & 0x1F
	switch mode {
	case 0x08: // data-data
		c.D[rx], c.D[ry] = c.D[ry], c.D[rx]
	case 0x09: // addr-addr
		c.A[rx], c.A[ry] = c.A[ry], c.A[rx]
	case 0x11: // data-addr
		c.D[rx], c.A[ry] = c.A[ry], c.D[rx]
	default:
		c.illegal()
	}
}

// execSwap exchanges the two 16-bit halves of a data register.
func (c *CPU) execSwap(op uint16) {
	reg := int(op & 7)
	v := c.D[reg]
	v = v<<16 | v>>16
	c.D[reg] = v
	c.logicFlags(v, SizeLong)
}

// execExt sign-extends a data register's low byte to word, or low
// word to long.
func (c *CPU) execExt(op uint16) {
	reg := int(op & 7)
	toLong := op&0x40 != 0
	if toLong {
		v := signExtend(c.D[reg]&0xFFFF, SizeWord)
		c.D[reg] = v
		c.logicFlags(v, SizeLong)
	} else {
		v := signExtend(c.D[reg]&0xFF, SizeByte)
		c.D[reg] = (c.D[reg] &^ 0xFFFF) | (v & 0xFFFF)
		c.logicFlags(v, SizeWord)
	}
}
